package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vytor/uptriv/internal/content"
	"github.com/vytor/uptriv/internal/errors"
	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/puzzle"
	"github.com/vytor/uptriv/internal/repository"
)

// DailyPuzzles is the scheduler side the game service depends on.
type DailyPuzzles interface {
	GetDailyPuzzle(ctx context.Context, day, difficulty string, userID int64) (*models.DailyPuzzle, error)
	Onboarding() (*models.DailyPuzzle, error)
}

// GameService runs daily rounds: the session gate, answer recording, history and sharing.
type GameService interface {
	Today() string
	StartRound(ctx context.Context, userID int64, difficulty string) (*models.Round, error)
	SubmitAnswer(ctx context.Context, userID int64, sub models.AnswerSubmission) (*models.AnswerResult, error)
	History(ctx context.Context, userID int64) ([]models.CompletedRound, error)
	ShareText(ctx context.Context, userID int64, day, difficulty string) (*models.ShareText, error)
	StartOnboarding(ctx context.Context, userID int64) (*models.Round, error)
	SubmitOnboardingAnswer(ctx context.Context, userID int64, sub models.AnswerSubmission) (*models.AnswerResult, error)
}

type gameService struct {
	puzzles        DailyPuzzles
	userRepo       repository.UserRepository
	puzzleRepo     repository.PuzzleCacheRepository
	answerRepo     repository.AnswerRepository
	completionRepo repository.CompletionRepository
	content        content.Provider
	today          func() string
}

// NewGameService creates a new GameService. today returns the current puzzle day.
func NewGameService(
	puzzles DailyPuzzles,
	userRepo repository.UserRepository,
	puzzleRepo repository.PuzzleCacheRepository,
	answerRepo repository.AnswerRepository,
	completionRepo repository.CompletionRepository,
	provider content.Provider,
	today func() string,
) GameService {
	if today == nil {
		today = func() string { return models.DayOf(time.Now(), time.UTC) }
	}
	return &gameService{
		puzzles:        puzzles,
		userRepo:       userRepo,
		puzzleRepo:     puzzleRepo,
		answerRepo:     answerRepo,
		completionRepo: completionRepo,
		content:        provider,
		today:          today,
	}
}

func (s *gameService) Today() string {
	return s.today()
}

func (s *gameService) user(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewUnauthorizedError("unknown user")
	}
	return user, nil
}

// alreadyPlayed returns an ALREADY_PLAYED error when difficulty is finished for day.
func (s *gameService) alreadyPlayed(ctx context.Context, userID int64, day, difficulty string) error {
	done, err := s.completionRepo.ListForDay(ctx, userID, day)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list completions: %v", err)
		return errors.NewInternalError(err)
	}
	played := []string{}
	finished := false
	for _, c := range done {
		played = append(played, c.Difficulty)
		if c.Difficulty == difficulty {
			finished = true
		}
	}
	if !finished {
		return nil
	}
	available := []string{}
	for _, d := range models.Difficulties {
		open := true
		for _, p := range played {
			if p == d {
				open = false
			}
		}
		if open {
			available = append(available, d)
		}
	}
	return errors.NewAlreadyPlayedError(day, difficulty, played, available)
}

func (s *gameService) StartRound(ctx context.Context, userID int64, difficulty string) (*models.Round, error) {
	log := logger.FromContext(ctx)

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if difficulty == "" {
		difficulty = user.Difficulty
	}
	if !models.ValidDifficulty(difficulty) {
		return nil, errors.NewValidationError("difficulty", "must be 'normal' or 'expert'")
	}

	day := s.today()
	log.Debug("starting round: user_id=%d, day=%s, difficulty=%s", userID, day, difficulty)

	if err := s.alreadyPlayed(ctx, userID, day, difficulty); err != nil {
		return nil, err
	}

	p, err := s.puzzles.GetDailyPuzzle(ctx, day, difficulty, userID)
	if err != nil {
		log.Error("failed to get daily puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}

	answers, err := s.answerRepo.List(ctx, models.AnswerFilter{UserID: userID, Day: day, Difficulty: difficulty})
	if err != nil {
		log.Error("failed to list answers: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.round(p, answers), nil
}

func (s *gameService) round(p *models.DailyPuzzle, answers []models.AnswerRecord) *models.Round {
	r := &models.Round{
		Day:        p.Day,
		Difficulty: p.Difficulty,
		Items:      make([]models.RoundItem, len(p.Items)),
		Answered:   []int{},
	}
	for i, it := range p.Items {
		meta, _ := s.content.Category(it.Category)
		r.Items[i] = models.RoundItem{
			Slot:         i,
			Category:     it.Category,
			CategoryName: meta.Name,
			Color:        meta.Color,
			Emoji:        meta.Emoji,
			Prompt:       it.Prompt,
			Options:      it.Options,
		}
	}
	for _, a := range answers {
		r.Answered = append(r.Answered, a.Slot)
		if a.Correct {
			r.Score++
		}
	}
	sort.Ints(r.Answered)
	r.Complete = len(r.Answered) >= len(p.Items)
	return r
}

func (s *gameService) SubmitAnswer(ctx context.Context, userID int64, sub models.AnswerSubmission) (*models.AnswerResult, error) {
	log := logger.FromContext(ctx)

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.Difficulty == "" {
		sub.Difficulty = user.Difficulty
	}
	if !models.ValidDifficulty(sub.Difficulty) {
		return nil, errors.NewValidationError("difficulty", "must be 'normal' or 'expert'")
	}
	today := s.today()
	if sub.Day == "" {
		sub.Day = today
	}
	if _, err := time.Parse(models.DayLayout, sub.Day); err != nil || sub.Day > today {
		return nil, errors.NewValidationError("day", "must be a past or current YYYY-MM-DD day")
	}
	log.Debug("submitting answer: user_id=%d, day=%s, difficulty=%s, slot=%d", userID, sub.Day, sub.Difficulty, sub.Slot)

	if err := s.alreadyPlayed(ctx, userID, sub.Day, sub.Difficulty); err != nil {
		return nil, err
	}

	row, err := s.puzzleRepo.GetForUser(ctx, sub.Day, userID)
	if err != nil {
		log.Error("failed to load cached puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if row == nil || row.Difficulty != sub.Difficulty {
		return nil, errors.NewValidationError("difficulty", fmt.Sprintf("no %s round started for %s", sub.Difficulty, sub.Day))
	}
	p, err := puzzle.Decode(row.Day, row.Difficulty, row.Content)
	if err != nil {
		log.Error("failed to decode cached puzzle: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return s.record(ctx, userID, sub, p, models.PuzzleSize)
}

// record validates the slot, appends the answer and reports how everyone did on the question.
func (s *gameService) record(ctx context.Context, userID int64, sub models.AnswerSubmission, p *models.DailyPuzzle, roundSize int) (*models.AnswerResult, error) {
	log := logger.FromContext(ctx)

	if sub.Slot < 0 || sub.Slot >= len(p.Items) {
		return nil, errors.NewValidationError("slot", fmt.Sprintf("must be between 0 and %d", len(p.Items)-1))
	}
	if sub.LatencyMs < 0 {
		sub.LatencyMs = 0
	}
	item := p.Items[sub.Slot]
	correct := sub.Answer == item.Answer

	completion, err := s.answerRepo.Record(ctx, models.AnswerRecord{
		UserID:        userID,
		Day:           sub.Day,
		Difficulty:    sub.Difficulty,
		Slot:          sub.Slot,
		Category:      item.Category,
		Subcategory:   item.Subcategory,
		Question:      item.Prompt,
		CorrectAnswer: item.Answer,
		UserAnswer:    sub.Answer,
		Correct:       correct,
		LatencyMs:     sub.LatencyMs,
	}, roundSize)
	if err != nil {
		if stderrors.Is(err, repository.ErrConflict) {
			return nil, errors.NewValidationError("slot", "already answered")
		}
		log.Error("failed to record answer: %v", err)
		return nil, errors.NewInternalError(err)
	}

	acc, err := s.answerRepo.Accuracy(ctx, models.AnswerFilter{
		Question:          item.Prompt,
		Difficulty:        sub.Difficulty,
		ExcludeOnboarding: sub.Day != models.OnboardingDay,
	})
	if err != nil {
		log.Error("failed to aggregate question accuracy: %v", err)
		return nil, errors.NewInternalError(err)
	}

	res := &models.AnswerResult{
		Correct:                        correct,
		CorrectAnswer:                  item.Answer,
		PercentCorrectAcrossAllPlayers: acc.Percentage,
	}
	if completion != nil {
		res.RoundComplete = true
		res.Score = completion.Score
	}
	return res, nil
}

func (s *gameService) History(ctx context.Context, userID int64) ([]models.CompletedRound, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting history: user_id=%d", userID)

	answers, err := s.answerRepo.List(ctx, models.AnswerFilter{UserID: userID, ExcludeOnboarding: true})
	if err != nil {
		log.Error("failed to list answers: %v", err)
		return nil, errors.NewInternalError(err)
	}
	completions, err := s.completionRepo.ListForUser(ctx, userID)
	if err != nil {
		log.Error("failed to list completions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	complete := make(map[string]bool, len(completions))
	for _, c := range completions {
		complete[c.Day+"|"+c.Difficulty] = true
	}

	index := make(map[string]int)
	rounds := []models.CompletedRound{}
	for _, a := range answers {
		key := a.Day + "|" + a.Difficulty
		i, ok := index[key]
		if !ok {
			i = len(rounds)
			index[key] = i
			rounds = append(rounds, models.CompletedRound{
				Day:        a.Day,
				Difficulty: a.Difficulty,
				Complete:   complete[key],
				Questions:  []models.HistoryQuestion{},
			})
		}
		meta, _ := s.content.Category(a.Category)
		r := &rounds[i]
		r.Total++
		if a.Correct {
			r.Score++
		}
		r.Questions = append(r.Questions, models.HistoryQuestion{
			Slot:          a.Slot,
			Category:      a.Category,
			CategoryName:  meta.Name,
			Color:         meta.Color,
			Question:      a.Question,
			CorrectAnswer: a.CorrectAnswer,
			UserAnswer:    a.UserAnswer,
			Correct:       a.Correct,
			LatencySec:    float64(a.LatencyMs) / 1000,
		})
	}

	sort.SliceStable(rounds, func(i, j int) bool {
		if rounds[i].Day != rounds[j].Day {
			return rounds[i].Day > rounds[j].Day
		}
		return rounds[i].Difficulty < rounds[j].Difficulty
	})
	return rounds, nil
}

func (s *gameService) ShareText(ctx context.Context, userID int64, day, difficulty string) (*models.ShareText, error) {
	log := logger.FromContext(ctx)

	if day == "" {
		day = s.today()
	}
	date, err := time.Parse(models.DayLayout, day)
	if err != nil {
		return nil, errors.NewValidationError("day", "must be YYYY-MM-DD")
	}
	if difficulty == "" {
		difficulty = models.DifficultyNormal
	}
	if !models.ValidDifficulty(difficulty) {
		return nil, errors.NewValidationError("difficulty", "must be 'normal' or 'expert'")
	}

	answers, err := s.answerRepo.List(ctx, models.AnswerFilter{UserID: userID, Day: day, Difficulty: difficulty})
	if err != nil {
		log.Error("failed to list answers: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(answers) == 0 {
		return nil, errors.NewNotFoundError("round", day+"/"+difficulty)
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].Slot < answers[j].Slot })

	score := 0
	cells := make([]string, 0, len(answers))
	for _, a := range answers {
		meta, _ := s.content.Category(a.Category)
		mark := "🟥"
		if a.Correct {
			mark = "🟩"
			score++
		}
		cells = append(cells, meta.Emoji+mark)
	}

	title := "UpTriv " + date.Format("Jan 02, 2006")
	if difficulty == models.DifficultyExpert {
		title += " (Expert)"
	}
	text := fmt.Sprintf("%s\n%d/%d\n\n%s\n\nuptriv.com", title, score, len(answers), strings.Join(cells, " "))
	return &models.ShareText{Text: text, Score: score, Total: len(answers)}, nil
}

func (s *gameService) StartOnboarding(ctx context.Context, userID int64) (*models.Round, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting onboarding: user_id=%d", userID)

	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	p, err := s.puzzles.Onboarding()
	if err != nil {
		log.Error("failed to build onboarding quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	answers, err := s.answerRepo.List(ctx, models.AnswerFilter{UserID: userID, OnlyOnboarding: true})
	if err != nil {
		log.Error("failed to list onboarding answers: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.round(p, answers), nil
}

func (s *gameService) SubmitOnboardingAnswer(ctx context.Context, userID int64, sub models.AnswerSubmission) (*models.AnswerResult, error) {
	log := logger.FromContext(ctx)

	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	p, err := s.puzzles.Onboarding()
	if err != nil {
		log.Error("failed to build onboarding quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	sub.Day = models.OnboardingDay
	sub.Difficulty = p.Difficulty

	res, err := s.record(ctx, userID, sub, p, 0)
	if err != nil {
		return nil, err
	}

	answered, err := s.answerRepo.Count(ctx, models.AnswerFilter{UserID: userID, OnlyOnboarding: true})
	if err != nil {
		log.Error("failed to count onboarding answers: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.userRepo.SetOnboardingProgress(ctx, userID, answered); err != nil {
		log.Error("failed to advance onboarding: %v", err)
		return nil, errors.NewInternalError(err)
	}
	res.RoundComplete = answered >= len(p.Items)
	return res, nil
}
