package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

type completionRepository struct {
	db *sql.DB
}

// NewCompletionRepository creates a new CompletionRepository implementation
func NewCompletionRepository(db *sql.DB) repository.CompletionRepository {
	return &completionRepository{db: db}
}

func (r *completionRepository) Get(ctx context.Context, userID int64, day, difficulty string) (*models.RoundCompletion, error) {
	log := logger.FromContext(ctx).WithPrefix("completion_repo")
	log.Debug("getting completion: user_id=%d, day=%s, difficulty=%s", userID, day, difficulty)

	var c models.RoundCompletion
	err := r.db.QueryRowContext(ctx, `
SELECT user_id, day, difficulty, score, completed_at
FROM round_completions
WHERE user_id = ? AND day = ? AND difficulty = ?
`, userID, day, difficulty).Scan(&c.UserID, &c.Day, &c.Difficulty, &c.Score, &c.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get completion: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *completionRepository) ListForDay(ctx context.Context, userID int64, day string) ([]models.RoundCompletion, error) {
	return r.list(ctx, `WHERE user_id = ? AND day = ?`, userID, day)
}

func (r *completionRepository) ListForUser(ctx context.Context, userID int64) ([]models.RoundCompletion, error) {
	return r.list(ctx, `WHERE user_id = ?`, userID)
}

func (r *completionRepository) list(ctx context.Context, where string, args ...any) ([]models.RoundCompletion, error) {
	log := logger.FromContext(ctx).WithPrefix("completion_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, day, difficulty, score, completed_at
FROM round_completions
`+where+`
ORDER BY day DESC, difficulty ASC
`, args...)
	if err != nil {
		log.Error("failed to list completions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.RoundCompletion
	for rows.Next() {
		var c models.RoundCompletion
		if err := rows.Scan(&c.UserID, &c.Day, &c.Difficulty, &c.Score, &c.CompletedAt); err != nil {
			log.Error("failed to scan completion row: %v", err)
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
