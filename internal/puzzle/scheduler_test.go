package puzzle_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/uptriv/internal/cache"
	"github.com/vytor/uptriv/internal/content"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/puzzle"
	"github.com/vytor/uptriv/internal/repository"
	"github.com/vytor/uptriv/internal/repository/sqlite"
	"github.com/vytor/uptriv/internal/testutil"
	"github.com/vytor/uptriv/internal/testutil/mocks"
)

type SchedulerSuite struct {
	suite.Suite
	db        *sql.DB
	rows      repository.PuzzleCacheRepository
	mr        *miniredis.Miniredis
	scheduler *puzzle.Scheduler
	alice     int64
	bob       int64
}

func (s *SchedulerSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.rows = sqlite.NewPuzzleCacheRepository(s.db)
	store, err := content.Default()
	s.Require().NoError(err)

	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	s.scheduler = puzzle.NewScheduler(s.rows, store, cache.NewRedisMemo(client, time.Hour))
	s.alice = testutil.CreateUser(s.T(), s.db, "alice", "")
	s.bob = testutil.CreateUser(s.T(), s.db, "bob", "")
}

func (s *SchedulerSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SchedulerSuite) TestSameDaySamePuzzleForEveryone() {
	ctx := context.Background()

	a, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyNormal, s.alice)
	s.Require().NoError(err)
	b, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyNormal, s.bob)
	s.Require().NoError(err)
	s.Assert().Equal(a, b)
	s.Require().Len(a.Items, models.PuzzleSize)

	rowA, err := s.rows.GetForUser(ctx, "2024-05-01", s.alice)
	s.Require().NoError(err)
	rowB, err := s.rows.GetForUser(ctx, "2024-05-01", s.bob)
	s.Require().NoError(err)
	s.Assert().Equal(rowA.Content, rowB.Content)

	s.Assert().True(s.mr.Exists("uptriv:puzzle:2024-05-01:normal"))
}

func (s *SchedulerSuite) TestRepeatCallIsStable() {
	ctx := context.Background()

	first, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyExpert, s.alice)
	s.Require().NoError(err)
	second, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyExpert, s.alice)
	s.Require().NoError(err)
	s.Assert().Equal(first, second)
}

func (s *SchedulerSuite) TestDifficultySwitchReplacesRow() {
	ctx := context.Background()

	normal, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyNormal, s.alice)
	s.Require().NoError(err)
	expert, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyExpert, s.alice)
	s.Require().NoError(err)
	s.Assert().NotEqual(normal.Prompts(), expert.Prompts())

	row, err := s.rows.GetForUser(ctx, "2024-05-01", s.alice)
	s.Require().NoError(err)
	s.Assert().Equal(models.DifficultyExpert, row.Difficulty)

	// Bob still gets the shared normal puzzle even though Alice's normal row is gone.
	s.mr.FlushAll()
	bobNormal, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyNormal, s.bob)
	s.Require().NoError(err)
	s.Assert().Equal(normal.Items, bobNormal.Items)
}

func (s *SchedulerSuite) TestSharedRowIsReusedWithoutMemo() {
	ctx := context.Background()

	a, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyNormal, s.alice)
	s.Require().NoError(err)
	s.mr.FlushAll()

	b, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyNormal, s.bob)
	s.Require().NoError(err)
	s.Assert().Equal(a.Items, b.Items)
	s.Assert().True(s.mr.Exists("uptriv:puzzle:2024-05-01:normal"))
}

func (s *SchedulerSuite) TestNextDayAvoidsPreviousPrompts() {
	ctx := context.Background()

	day1, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-01", models.DifficultyNormal, s.alice)
	s.Require().NoError(err)
	day2, err := s.scheduler.GetDailyPuzzle(ctx, "2024-05-02", models.DifficultyNormal, s.alice)
	s.Require().NoError(err)

	seen := make(map[string]bool)
	for _, p := range day1.Prompts() {
		seen[p] = true
	}
	for _, p := range day2.Prompts() {
		s.Assert().False(seen[p], "prompt %q repeated", p)
	}
}

func (s *SchedulerSuite) TestConcurrentFirstRequests() {
	ctx := context.Background()

	users := make([]int64, 8)
	for i := range users {
		users[i] = testutil.CreateUser(s.T(), s.db, "player"+string(rune('a'+i)), "")
	}

	results := make([]*models.DailyPuzzle, len(users))
	errs := make([]error, len(users))
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, u int64) {
			defer wg.Done()
			results[i], errs[i] = s.scheduler.GetDailyPuzzle(ctx, "2024-06-01", models.DifficultyNormal, u)
		}(i, u)
	}
	wg.Wait()

	for i := range users {
		s.Require().NoError(errs[i])
		s.Assert().Equal(results[0].Items, results[i].Items)
	}
}

func (s *SchedulerSuite) TestPeekDoesNotStore() {
	ctx := context.Background()

	peeked, err := s.scheduler.Peek(ctx, "2024-07-01", models.DifficultyNormal)
	s.Require().NoError(err)
	s.Assert().Len(peeked.Items, models.PuzzleSize)

	row, err := s.rows.FindByDayDifficulty(ctx, "2024-07-01", models.DifficultyNormal)
	s.Require().NoError(err)
	s.Assert().Nil(row)
	s.Assert().False(s.mr.Exists("uptriv:puzzle:2024-07-01:normal"))

	played, err := s.scheduler.GetDailyPuzzle(ctx, "2024-07-01", models.DifficultyNormal, s.alice)
	s.Require().NoError(err)
	s.Assert().Equal(peeked.Items, played.Items)
}

func (s *SchedulerSuite) TestCancelledCallerStillResolvesSharedPuzzle() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	peeked, err := s.scheduler.Peek(ctx, "2024-07-02", models.DifficultyExpert)
	s.Require().NoError(err)
	s.Assert().Len(peeked.Items, models.PuzzleSize)

	again, err := s.scheduler.Peek(context.Background(), "2024-07-02", models.DifficultyExpert)
	s.Require().NoError(err)
	s.Assert().Equal(again.Items, peeked.Items)
}

func (s *SchedulerSuite) TestOnboardingIsFixed() {
	a, err := s.scheduler.Onboarding()
	s.Require().NoError(err)
	b, err := s.scheduler.Onboarding()
	s.Require().NoError(err)
	s.Assert().Equal(a, b)
	s.Assert().Equal(models.OnboardingDay, a.Day)
	s.Assert().Len(a.Items, models.PuzzleSize)
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func expertContent(t *testing.T, day string) string {
	store, err := content.Default()
	require.NoError(t, err)
	p, err := puzzle.Generate(day, models.DifficultyExpert, store.Pools(models.DifficultyExpert), nil)
	require.NoError(t, err)
	serialized, err := puzzle.Encode(p)
	require.NoError(t, err)
	return serialized
}

func TestGetDailyPuzzle_ReplacesRowOfRacingTier(t *testing.T) {
	ctx := context.Background()
	day := "2024-08-01"
	serialized := expertContent(t, day)
	store, err := content.Default()
	require.NoError(t, err)

	rows := new(mocks.MockPuzzleCacheRepository)
	rows.On("GetForUser", mock.Anything, day, int64(1)).Return(nil, nil)
	rows.On("FindByDayDifficulty", mock.Anything, day, models.DifficultyExpert).
		Return(&models.PuzzleCacheRow{ID: 3, Day: day, UserID: 2, Difficulty: models.DifficultyExpert, Content: serialized}, nil)
	want := models.PuzzleCacheRow{Day: day, UserID: 1, Difficulty: models.DifficultyExpert, Content: serialized}
	rows.On("InsertOrGet", mock.Anything, want).
		Return(&models.PuzzleCacheRow{ID: 7, Day: day, UserID: 1, Difficulty: models.DifficultyNormal, Content: "{}"}, nil).Once()
	rows.On("Delete", mock.Anything, int64(7)).Return(nil).Once()
	rows.On("InsertOrGet", mock.Anything, want).
		Return(&models.PuzzleCacheRow{ID: 8, Day: day, UserID: 1, Difficulty: models.DifficultyExpert, Content: serialized}, nil).Once()

	p, err := puzzle.NewScheduler(rows, store, nil).GetDailyPuzzle(ctx, day, models.DifficultyExpert, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyExpert, p.Difficulty)
	assert.Len(t, p.Items, models.PuzzleSize)
	rows.AssertExpectations(t)
}

func TestGetDailyPuzzle_GivesUpAfterOneRetry(t *testing.T) {
	ctx := context.Background()
	day := "2024-08-02"
	serialized := expertContent(t, day)
	store, err := content.Default()
	require.NoError(t, err)

	rows := new(mocks.MockPuzzleCacheRepository)
	rows.On("GetForUser", mock.Anything, day, int64(1)).Return(nil, nil)
	rows.On("FindByDayDifficulty", mock.Anything, day, models.DifficultyExpert).
		Return(&models.PuzzleCacheRow{ID: 3, Difficulty: models.DifficultyExpert, Content: serialized}, nil)
	rows.On("InsertOrGet", mock.Anything, mock.Anything).
		Return(&models.PuzzleCacheRow{ID: 7, Difficulty: models.DifficultyNormal}, nil).Twice()
	rows.On("Delete", mock.Anything, int64(7)).Return(nil).Once()

	_, err = puzzle.NewScheduler(rows, store, nil).GetDailyPuzzle(ctx, day, models.DifficultyExpert, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds difficulty normal")
	rows.AssertExpectations(t)
}
