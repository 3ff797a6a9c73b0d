package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/repository"
)

type dismissalRepository struct {
	db *sql.DB
}

// NewDismissalRepository creates a new DismissalRepository implementation
func NewDismissalRepository(db *sql.DB) repository.DismissalRepository {
	return &dismissalRepository{db: db}
}

func (r *dismissalRepository) Dismiss(ctx context.Context, userID int64, title string) error {
	log := logger.FromContext(ctx).WithPrefix("dismissal_repo")
	log.Debug("dismissing recommendation: user_id=%d, title=%s", userID, title)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO dismissed_recommendations (user_id, title) VALUES (?, ?)
ON CONFLICT(user_id, title) DO NOTHING
`, userID, title)
	if err != nil {
		log.Error("failed to dismiss recommendation: %v", err)
	}
	return err
}

func (r *dismissalRepository) Titles(ctx context.Context, userID int64) (map[string]bool, error) {
	log := logger.FromContext(ctx).WithPrefix("dismissal_repo")
	log.Debug("listing dismissed titles: user_id=%d", userID)

	rows, err := r.db.QueryContext(ctx, `SELECT title FROM dismissed_recommendations WHERE user_id = ?`, userID)
	if err != nil {
		log.Error("failed to list dismissed titles: %v", err)
		return nil, err
	}
	defer rows.Close()

	titles := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles[title] = true
	}
	return titles, rows.Err()
}
