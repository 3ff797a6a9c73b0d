package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/uptriv/internal/api"
	"github.com/vytor/uptriv/internal/cache"
	"github.com/vytor/uptriv/internal/content"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/puzzle"
	"github.com/vytor/uptriv/internal/repository/sqlite"
	"github.com/vytor/uptriv/internal/services"
	"github.com/vytor/uptriv/internal/testutil"
)

const today = "2024-03-15"

type APISuite struct {
	suite.Suite
	srv    *httptest.Server
	client *http.Client
	ready  error
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	store, err := content.Default()
	s.Require().NoError(err)

	users := sqlite.NewUserRepository(db)
	friends := sqlite.NewFriendRepository(db)
	rows := sqlite.NewPuzzleCacheRepository(db)
	answers := sqlite.NewAnswerRepository(db)
	completions := sqlite.NewCompletionRepository(db)
	dismissals := sqlite.NewDismissalRepository(db)

	scheduler := puzzle.NewScheduler(rows, store, cache.NopMemo{})
	s.ready = nil
	server := &api.Server{
		UserService:        services.NewUserService(users, friends),
		GameService:        services.NewGameService(scheduler, users, rows, answers, completions, store, func() string { return today }),
		StatsService:       services.NewStatsService(answers, dismissals, store),
		LeaderboardService: services.NewLeaderboardService(users, friends, answers),
		Ready:              func(context.Context) error { return s.ready },
	}
	s.srv = httptest.NewServer(server.Routes())
	s.T().Cleanup(s.srv.Close)

	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	s.client = &http.Client{Jar: jar}
}

func (s *APISuite) do(method, path string, body any, out any) int {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal("application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *APISuite) TestProbes() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz", nil, nil))
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/readyz", nil, nil))

	s.ready = errors.New("database is locked")
	s.Equal(http.StatusServiceUnavailable, s.do(http.MethodGet, "/readyz", nil, nil))
}

func (s *APISuite) TestDeviceCookieKeepsIdentity() {
	var first, second struct {
		User  models.User `json:"user"`
		Today string      `json:"today"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/me", nil, &first))
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/me", nil, &second))

	s.NotZero(first.User.ID)
	s.Equal(first.User.ID, second.User.ID)
	s.True(first.User.Anonymous)
	s.Equal(today, first.Today)
}

func (s *APISuite) TestFullRoundThenAlreadyPlayed() {
	var round models.Round
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/rounds", nil, &round))
	s.Require().Len(round.Items, models.PuzzleSize)
	s.Equal(today, round.Day)
	s.Equal(models.DifficultyNormal, round.Difficulty)
	s.Empty(round.Answered)

	var res models.AnswerResult
	for i, item := range round.Items {
		sub := models.AnswerSubmission{Slot: item.Slot, Answer: item.Options[0], LatencyMs: 900}
		s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/rounds/answers", sub, &res))
		s.NotEmpty(res.CorrectAnswer)
		s.Equal(i == models.PuzzleSize-1, res.RoundComplete)
	}

	var again errorBody
	s.Require().Equal(http.StatusConflict, s.do(http.MethodPost, "/api/rounds", nil, &again))
	s.Equal("ALREADY_PLAYED", again.Error.Code)
	s.Equal([]any{models.DifficultyExpert}, again.Error.Details["available"])

	var expert models.Round
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/rounds", map[string]string{"difficulty": "expert"}, &expert))
	s.Equal(models.DifficultyExpert, expert.Difficulty)

	var share models.ShareText
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/share?day="+today, nil, &share))
	s.Equal(models.PuzzleSize, share.Total)
	s.Contains(share.Text, "UpTriv Mar 15, 2024")

	var history struct {
		Rounds []models.CompletedRound `json:"rounds"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/history", nil, &history))
	s.Require().Len(history.Rounds, 1)
	s.True(history.Rounds[0].Complete)

	var stats models.Stats
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/stats", nil, &stats))
	s.Equal(models.PuzzleSize, stats.TotalQuestions)
	s.Equal(1, stats.RoundsPlayed)
}

func (s *APISuite) TestResumeAndDuplicateSlot() {
	var round models.Round
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/rounds", nil, &round))

	sub := models.AnswerSubmission{Slot: 2, Answer: round.Items[2].Options[0]}
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/rounds/answers", sub, nil))

	var dup errorBody
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/rounds/answers", sub, &dup))
	s.Equal("VALIDATION_ERROR", dup.Error.Code)

	var resumed models.Round
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/rounds", nil, &resumed))
	s.Equal([]int{2}, resumed.Answered)
	s.Equal(round.Items, resumed.Items)
}

func (s *APISuite) TestValidationErrors() {
	var body errorBody
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/recommendations/dismiss", map[string]string{"title": ""}, &body))
	s.Equal("VALIDATION_ERROR", body.Error.Code)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/api/me/difficulty", map[string]string{"difficulty": "legendary"}, nil))
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/rounds", map[string]string{"level": "expert"}, nil))
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/history/nobody", nil, nil))
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/nowhere", nil, nil))
}

func (s *APISuite) TestOnboardingAdvancesProgress() {
	var round models.Round
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/onboarding", nil, &round))
	s.Equal(models.OnboardingDay, round.Day)

	for _, item := range round.Items[:3] {
		sub := models.AnswerSubmission{Slot: item.Slot, Answer: item.Options[0]}
		s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/onboarding/answers", sub, nil))
	}

	var me struct {
		User               models.User `json:"user"`
		OnboardingComplete bool        `json:"onboarding_complete"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/me", nil, &me))
	s.Equal(3, me.User.OnboardingProgress)
	s.False(me.OnboardingComplete)

	var stats models.Stats
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/stats", nil, &stats))
	s.Zero(stats.TotalQuestions)
}

func (s *APISuite) TestLeaderboardAndEligibility() {
	var board struct {
		Overall struct {
			Entries []map[string]any `json:"entries"`
		} `json:"overall"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/leaderboard", nil, &board))
	s.Len(board.Overall.Entries, 10)

	kinds := map[any]int{}
	for _, e := range board.Overall.Entries {
		kinds[e["kind"]]++
	}
	s.Equal(1, kinds["real"])
	s.Equal(9, kinds["synthetic"])

	var elig models.EligibilityResult
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/eligibility", nil, &elig))
	s.False(elig.Eligible)
	s.Equal(6, elig.RequiredAttempts)
}

func TestErrorEnvelopeWithoutDetails(t *testing.T) {
	srv := httptest.NewServer((&api.Server{}).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body["error"]["code"])
	assert.NotContains(t, body["error"], "details")
}
