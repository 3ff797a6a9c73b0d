package puzzle

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/vytor/uptriv/internal/cache"
	"github.com/vytor/uptriv/internal/content"
	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

// Scheduler hands out the shared daily puzzle and keeps one cache row per (day, user).
type Scheduler struct {
	rows    repository.PuzzleCacheRepository
	content content.Provider
	memo    cache.PuzzleMemo
	sf      singleflight.Group
}

func NewScheduler(rows repository.PuzzleCacheRepository, provider content.Provider, memo cache.PuzzleMemo) *Scheduler {
	if memo == nil {
		memo = cache.NopMemo{}
	}
	return &Scheduler{rows: rows, content: provider, memo: memo}
}

// GetDailyPuzzle returns the puzzle for (day, difficulty) and records it as userID's puzzle for day.
func (s *Scheduler) GetDailyPuzzle(ctx context.Context, day, difficulty string, userID int64) (*models.DailyPuzzle, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler").WithFields(map[string]any{
		"day":        day,
		"difficulty": difficulty,
		"user_id":    userID,
	})
	log.Debug("getting daily puzzle")

	row, err := s.rows.GetForUser(ctx, day, userID)
	if err != nil {
		return nil, fmt.Errorf("load cached puzzle: %w", err)
	}
	if row != nil {
		if row.Difficulty == difficulty {
			log.Debug("serving cached puzzle row")
			return Decode(day, difficulty, row.Content)
		}
		log.Info("difficulty changed from %s, replacing cached row", row.Difficulty)
		if err := s.rows.Delete(ctx, row.ID); err != nil {
			return nil, fmt.Errorf("delete stale puzzle row: %w", err)
		}
	}

	serialized, err := s.sharedContent(ctx, day, difficulty, true)
	if err != nil {
		return nil, err
	}

	want := models.PuzzleCacheRow{Day: day, UserID: userID, Difficulty: difficulty, Content: serialized}
	for attempt := 0; ; attempt++ {
		stored, err := s.rows.InsertOrGet(ctx, want)
		if err != nil {
			return nil, fmt.Errorf("store puzzle row: %w", err)
		}
		if stored.Difficulty == difficulty {
			return Decode(day, difficulty, stored.Content)
		}
		// A concurrent request for the other tier won the insert. The latest
		// request decides, as a sequential difficulty switch would.
		if attempt > 0 {
			return nil, fmt.Errorf("puzzle row for %s holds difficulty %s", day, stored.Difficulty)
		}
		log.Info("lost insert race to difficulty %s, replacing row", stored.Difficulty)
		if err := s.rows.Delete(ctx, stored.ID); err != nil {
			return nil, fmt.Errorf("delete raced puzzle row: %w", err)
		}
	}
}

// Peek returns the puzzle for (day, difficulty) without writing a cache row.
// Generated puzzles are not memoized here.
func (s *Scheduler) Peek(ctx context.Context, day, difficulty string) (*models.DailyPuzzle, error) {
	serialized, err := s.sharedContent(ctx, day, difficulty, false)
	if err != nil {
		return nil, err
	}
	return Decode(day, difficulty, serialized)
}

// Onboarding returns the fixed placement quiz.
func (s *Scheduler) Onboarding() (*models.DailyPuzzle, error) {
	p, err := Generate(models.OnboardingDay, models.DifficultyNormal, s.content.Pools(models.DifficultyNormal), nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// sharedContent finds the serialized puzzle every user gets for (day, difficulty),
// generating it when no row exists yet. Concurrent generations of one key collapse into one.
func (s *Scheduler) sharedContent(ctx context.Context, day, difficulty string, persist bool) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")

	if serialized, ok, err := s.memo.Get(ctx, day, difficulty); err == nil && ok {
		return serialized, nil
	}

	key := day + "|" + difficulty
	if !persist {
		key += "|peek"
	}
	// Callers share the result, so one caller's cancellation must not fail the rest.
	sfCtx := context.WithoutCancel(ctx)
	v, err, shared := s.sf.Do(key, func() (any, error) {
		existing, err := s.rows.FindByDayDifficulty(sfCtx, day, difficulty)
		if err != nil {
			return "", fmt.Errorf("find shared puzzle: %w", err)
		}
		if existing != nil {
			s.remember(sfCtx, day, difficulty, existing.Content)
			return existing.Content, nil
		}

		contents, err := s.rows.ContentsExcludingDay(sfCtx, day)
		if err != nil {
			return "", fmt.Errorf("load puzzle history: %w", err)
		}
		p, err := Generate(day, difficulty, s.content.Pools(difficulty), HistoryFromContents(contents))
		if err != nil {
			return "", err
		}
		serialized, err := Encode(p)
		if err != nil {
			return "", err
		}
		log.Info("generated puzzle: day=%s, difficulty=%s", day, difficulty)
		if persist {
			s.remember(sfCtx, day, difficulty, serialized)
		}
		return serialized, nil
	})
	if err != nil {
		log.Error("failed to resolve shared puzzle: %v", err)
		return "", err
	}
	if shared {
		log.Debug("shared in-flight puzzle lookup: day=%s, difficulty=%s", day, difficulty)
	}
	return v.(string), nil
}

// remember writes through to the memo. Failures are logged and ignored.
func (s *Scheduler) remember(ctx context.Context, day, difficulty, serialized string) {
	if err := s.memo.Put(ctx, day, difficulty, serialized); err != nil {
		logger.FromContext(ctx).WithPrefix("scheduler").Warn("memo put failed: %v", err)
	}
}
