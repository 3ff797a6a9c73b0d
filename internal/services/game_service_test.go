package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/uptriv/internal/content"
	"github.com/vytor/uptriv/internal/errors"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/puzzle"
	"github.com/vytor/uptriv/internal/repository"
	"github.com/vytor/uptriv/internal/services"
	"github.com/vytor/uptriv/internal/testutil/mocks"
)

const today = "2024-05-01"

type gameFixture struct {
	puzzles     *mocks.MockDailyPuzzles
	users       *mocks.MockUserRepository
	rows        *mocks.MockPuzzleCacheRepository
	answers     *mocks.MockAnswerRepository
	completions *mocks.MockCompletionRepository
	svc         services.GameService
}

func newGameFixture(t *testing.T) *gameFixture {
	store, err := content.Default()
	require.NoError(t, err)

	f := &gameFixture{
		puzzles:     new(mocks.MockDailyPuzzles),
		users:       new(mocks.MockUserRepository),
		rows:        new(mocks.MockPuzzleCacheRepository),
		answers:     new(mocks.MockAnswerRepository),
		completions: new(mocks.MockCompletionRepository),
	}
	f.svc = services.NewGameService(f.puzzles, f.users, f.rows, f.answers, f.completions, store,
		func() string { return today })
	t.Cleanup(func() {
		f.puzzles.AssertExpectations(t)
		f.users.AssertExpectations(t)
		f.rows.AssertExpectations(t)
		f.answers.AssertExpectations(t)
		f.completions.AssertExpectations(t)
	})
	return f
}

func fixturePuzzle(day, difficulty string) *models.DailyPuzzle {
	p := &models.DailyPuzzle{Day: day, Difficulty: difficulty}
	for _, c := range models.Categories {
		p.Items = append(p.Items, models.ContentItem{
			Category:    c,
			Subcategory: "general",
			Prompt:      c + " question",
			Answer:      c + " answer",
			Options:     []string{c + " answer", "wrong"},
			Difficulty:  difficulty,
		})
	}
	return p
}

func player(difficulty string) *models.User {
	return &models.User{ID: 7, Username: "sam", Difficulty: difficulty}
}

func TestStartRound_AlreadyPlayed(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	f.users.On("Get", mock.Anything, int64(7)).Return(player(models.DifficultyNormal), nil)
	f.completions.On("ListForDay", mock.Anything, int64(7), today).
		Return([]models.RoundCompletion{{UserID: 7, Day: today, Difficulty: models.DifficultyNormal, Score: 4}}, nil)

	_, err := f.svc.StartRound(ctx, 7, "")

	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAlreadyPlayed, appErr.Code)
	assert.Equal(t, []string{models.DifficultyNormal}, appErr.Details["played"])
	assert.Equal(t, []string{models.DifficultyExpert}, appErr.Details["available"])
}

func TestStartRound_ResumesPartialRound(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	p := fixturePuzzle(today, models.DifficultyExpert)

	f.users.On("Get", mock.Anything, int64(7)).Return(player(models.DifficultyNormal), nil)
	f.completions.On("ListForDay", mock.Anything, int64(7), today).
		Return([]models.RoundCompletion{{UserID: 7, Day: today, Difficulty: models.DifficultyNormal}}, nil)
	f.puzzles.On("GetDailyPuzzle", mock.Anything, today, models.DifficultyExpert, int64(7)).Return(p, nil)
	f.answers.On("List", mock.Anything, models.AnswerFilter{UserID: 7, Day: today, Difficulty: models.DifficultyExpert}).
		Return([]models.AnswerRecord{{Slot: 3, Correct: true}, {Slot: 1, Correct: false}}, nil)

	round, err := f.svc.StartRound(ctx, 7, models.DifficultyExpert)

	require.NoError(t, err)
	assert.Equal(t, models.DifficultyExpert, round.Difficulty)
	require.Len(t, round.Items, models.PuzzleSize)
	assert.Equal(t, []int{1, 3}, round.Answered)
	assert.Equal(t, 1, round.Score)
	assert.False(t, round.Complete)

	first := round.Items[0]
	assert.Equal(t, 0, first.Slot)
	assert.Equal(t, "World & U.S. News", first.CategoryName)
	assert.NotEmpty(t, first.Color)
	assert.NotEmpty(t, first.Emoji)
}

func TestStartRound_RejectsUnknownDifficulty(t *testing.T) {
	f := newGameFixture(t)
	f.users.On("Get", mock.Anything, int64(7)).Return(player(models.DifficultyNormal), nil)

	_, err := f.svc.StartRound(context.Background(), 7, "impossible")

	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func (f *gameFixture) expectOpenRound(t *testing.T, p *models.DailyPuzzle) {
	serialized, err := puzzle.Encode(*p)
	require.NoError(t, err)
	f.users.On("Get", mock.Anything, int64(7)).Return(player(p.Difficulty), nil)
	f.completions.On("ListForDay", mock.Anything, int64(7), p.Day).Return([]models.RoundCompletion{}, nil)
	f.rows.On("GetForUser", mock.Anything, p.Day, int64(7)).
		Return(&models.PuzzleCacheRow{ID: 1, Day: p.Day, UserID: 7, Difficulty: p.Difficulty, Content: serialized}, nil)
}

func TestSubmitAnswer_CompletesRound(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	p := fixturePuzzle(today, models.DifficultyNormal)
	f.expectOpenRound(t, p)

	f.answers.On("Record", mock.Anything, mock.MatchedBy(func(rec models.AnswerRecord) bool {
		return rec.Slot == 5 && rec.Category == "geography" && rec.Correct &&
			rec.CorrectAnswer == "geography answer" && rec.LatencyMs == 1200
	}), models.PuzzleSize).Return(&models.RoundCompletion{UserID: 7, Day: today, Difficulty: models.DifficultyNormal, Score: 5}, nil)
	f.answers.On("Accuracy", mock.Anything, models.AnswerFilter{
		Question:          "geography question",
		Difficulty:        models.DifficultyNormal,
		ExcludeOnboarding: true,
	}).Return(models.Accuracy{Correct: 2, Total: 3, Percentage: 67}, nil)

	res, err := f.svc.SubmitAnswer(ctx, 7, models.AnswerSubmission{Slot: 5, Answer: "geography answer", LatencyMs: 1200})

	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, "geography answer", res.CorrectAnswer)
	assert.Equal(t, 67, res.PercentCorrectAcrossAllPlayers)
	assert.True(t, res.RoundComplete)
	assert.Equal(t, 5, res.Score)
}

func TestSubmitAnswer_WrongAnswerKeepsRoundOpen(t *testing.T) {
	f := newGameFixture(t)
	p := fixturePuzzle(today, models.DifficultyNormal)
	f.expectOpenRound(t, p)

	f.answers.On("Record", mock.Anything, mock.MatchedBy(func(rec models.AnswerRecord) bool {
		return rec.Slot == 0 && !rec.Correct && rec.UserAnswer == "wrong"
	}), models.PuzzleSize).Return(nil, nil)
	f.answers.On("Accuracy", mock.Anything, mock.Anything).Return(models.Accuracy{Total: 1}, nil)

	res, err := f.svc.SubmitAnswer(context.Background(), 7, models.AnswerSubmission{Day: today, Slot: 0, Answer: "wrong"})

	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "news answer", res.CorrectAnswer)
	assert.False(t, res.RoundComplete)
}

func TestSubmitAnswer_SlotOutOfRange(t *testing.T) {
	f := newGameFixture(t)
	f.expectOpenRound(t, fixturePuzzle(today, models.DifficultyNormal))

	_, err := f.svc.SubmitAnswer(context.Background(), 7, models.AnswerSubmission{Slot: models.PuzzleSize, Answer: "x"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	f.answers.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAnswer_DuplicateSlot(t *testing.T) {
	f := newGameFixture(t)
	f.expectOpenRound(t, fixturePuzzle(today, models.DifficultyNormal))
	f.answers.On("Record", mock.Anything, mock.Anything, models.PuzzleSize).Return(nil, repository.ErrConflict)

	_, err := f.svc.SubmitAnswer(context.Background(), 7, models.AnswerSubmission{Slot: 2, Answer: "x"})

	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "already answered")
}

func TestSubmitAnswer_NoStartedRound(t *testing.T) {
	f := newGameFixture(t)
	f.users.On("Get", mock.Anything, int64(7)).Return(player(models.DifficultyNormal), nil)
	f.completions.On("ListForDay", mock.Anything, int64(7), today).Return([]models.RoundCompletion{}, nil)
	f.rows.On("GetForUser", mock.Anything, today, int64(7)).Return(nil, nil)

	_, err := f.svc.SubmitAnswer(context.Background(), 7, models.AnswerSubmission{Slot: 0, Answer: "x"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestSubmitAnswer_FutureDay(t *testing.T) {
	f := newGameFixture(t)
	f.users.On("Get", mock.Anything, int64(7)).Return(player(models.DifficultyNormal), nil)

	_, err := f.svc.SubmitAnswer(context.Background(), 7, models.AnswerSubmission{Day: "2024-05-02", Slot: 0})

	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestHistory_GroupsByDayAndDifficulty(t *testing.T) {
	f := newGameFixture(t)
	f.answers.On("List", mock.Anything, models.AnswerFilter{UserID: 7, ExcludeOnboarding: true}).Return([]models.AnswerRecord{
		{Day: "2024-04-30", Difficulty: models.DifficultyNormal, Slot: 0, Category: "news", Correct: true, LatencyMs: 1500},
		{Day: "2024-05-01", Difficulty: models.DifficultyNormal, Slot: 0, Category: "history", Correct: true},
		{Day: "2024-04-30", Difficulty: models.DifficultyNormal, Slot: 1, Category: "sports", Correct: false},
		{Day: "2024-05-01", Difficulty: models.DifficultyExpert, Slot: 0, Category: "science", Correct: false},
	}, nil)
	f.completions.On("ListForUser", mock.Anything, int64(7)).Return([]models.RoundCompletion{
		{UserID: 7, Day: "2024-04-30", Difficulty: models.DifficultyNormal, Score: 1},
	}, nil)

	rounds, err := f.svc.History(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, rounds, 3)
	assert.Equal(t, "2024-05-01", rounds[0].Day)
	assert.Equal(t, models.DifficultyNormal, rounds[0].Difficulty)
	assert.Equal(t, models.DifficultyExpert, rounds[1].Difficulty)

	last := rounds[2]
	assert.Equal(t, "2024-04-30", last.Day)
	assert.True(t, last.Complete)
	assert.Equal(t, 1, last.Score)
	assert.Equal(t, 2, last.Total)
	require.Len(t, last.Questions, 2)
	assert.Equal(t, "World & U.S. News", last.Questions[0].CategoryName)
	assert.InDelta(t, 1.5, last.Questions[0].LatencySec, 0.0001)
}

func TestShareText(t *testing.T) {
	f := newGameFixture(t)
	records := []models.AnswerRecord{}
	for i, c := range models.Categories {
		records = append(records, models.AnswerRecord{Slot: i, Category: c, Correct: i%2 == 0})
	}
	f.answers.On("List", mock.Anything, models.AnswerFilter{UserID: 7, Day: "2024-01-02", Difficulty: models.DifficultyNormal}).
		Return(records, nil)

	share, err := f.svc.ShareText(context.Background(), 7, "2024-01-02", "")

	require.NoError(t, err)
	assert.Equal(t, 3, share.Score)
	assert.Equal(t, 6, share.Total)
	assert.Contains(t, share.Text, "UpTriv Jan 02, 2024\n3/6\n\n")
	assert.Contains(t, share.Text, "🌍🟩")
	assert.Contains(t, share.Text, "📜🟥")
	assert.Contains(t, share.Text, "\n\nuptriv.com")
}

func TestShareText_UnplayedRound(t *testing.T) {
	f := newGameFixture(t)
	f.answers.On("List", mock.Anything, mock.Anything).Return([]models.AnswerRecord{}, nil)

	_, err := f.svc.ShareText(context.Background(), 7, "2024-01-02", models.DifficultyExpert)

	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestSubmitOnboardingAnswer_AdvancesProgress(t *testing.T) {
	f := newGameFixture(t)
	p := fixturePuzzle(models.OnboardingDay, models.DifficultyNormal)

	f.users.On("Get", mock.Anything, int64(7)).Return(player(models.DifficultyNormal), nil)
	f.puzzles.On("Onboarding").Return(p, nil)
	f.answers.On("Record", mock.Anything, mock.MatchedBy(func(rec models.AnswerRecord) bool {
		return rec.Day == models.OnboardingDay && rec.Slot == 2 && rec.Correct
	}), 0).Return(nil, nil)
	f.answers.On("Accuracy", mock.Anything, models.AnswerFilter{
		Question:   "science question",
		Difficulty: models.DifficultyNormal,
	}).Return(models.Accuracy{Correct: 1, Total: 1, Percentage: 100}, nil)
	f.answers.On("Count", mock.Anything, models.AnswerFilter{UserID: 7, OnlyOnboarding: true}).Return(3, nil)
	f.users.On("SetOnboardingProgress", mock.Anything, int64(7), 3).Return(nil)

	res, err := f.svc.SubmitOnboardingAnswer(context.Background(), 7, models.AnswerSubmission{Slot: 2, Answer: "science answer"})

	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 100, res.PercentCorrectAcrossAllPlayers)
	assert.False(t, res.RoundComplete)
}
