package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

const puzzleCacheColumns = `id, day, user_id, difficulty, content, created_at`

type puzzleCacheRepository struct {
	db *sql.DB
}

// NewPuzzleCacheRepository creates a new PuzzleCacheRepository implementation
func NewPuzzleCacheRepository(db *sql.DB) repository.PuzzleCacheRepository {
	return &puzzleCacheRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCacheRow(row rowScanner) (*models.PuzzleCacheRow, error) {
	var c models.PuzzleCacheRow
	if err := row.Scan(&c.ID, &c.Day, &c.UserID, &c.Difficulty, &c.Content, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *puzzleCacheRepository) GetForUser(ctx context.Context, day string, userID int64) (*models.PuzzleCacheRow, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("getting cached puzzle: day=%s, user_id=%d", day, userID)

	row, err := scanCacheRow(r.db.QueryRowContext(ctx,
		`SELECT `+puzzleCacheColumns+` FROM puzzle_cache WHERE day = ? AND user_id = ?`, day, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get cached puzzle: %v", err)
		return nil, err
	}
	return row, nil
}

func (r *puzzleCacheRepository) FindByDayDifficulty(ctx context.Context, day, difficulty string) (*models.PuzzleCacheRow, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("finding shared puzzle: day=%s, difficulty=%s", day, difficulty)

	row, err := scanCacheRow(r.db.QueryRowContext(ctx, `
SELECT `+puzzleCacheColumns+`
FROM puzzle_cache
WHERE day = ? AND difficulty = ?
ORDER BY id ASC
LIMIT 1
`, day, difficulty))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to find shared puzzle: %v", err)
		return nil, err
	}
	return row, nil
}

func (r *puzzleCacheRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("deleting cached puzzle: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM puzzle_cache WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete cached puzzle: %v", err)
	}
	return err
}

func (r *puzzleCacheRepository) InsertOrGet(ctx context.Context, row models.PuzzleCacheRow) (*models.PuzzleCacheRow, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("insert-or-get cached puzzle: day=%s, user_id=%d, difficulty=%s", row.Day, row.UserID, row.Difficulty)

	var stored *models.PuzzleCacheRow
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO puzzle_cache (day, user_id, difficulty, content)
VALUES (?, ?, ?, ?)
ON CONFLICT(day, user_id) DO NOTHING
`, row.Day, row.UserID, row.Difficulty, row.Content)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Debug("cached puzzle already present: day=%s, user_id=%d", row.Day, row.UserID)
		}
		stored, err = scanCacheRow(tx.QueryRowContext(ctx,
			`SELECT `+puzzleCacheColumns+` FROM puzzle_cache WHERE day = ? AND user_id = ?`, row.Day, row.UserID))
		return err
	})
	if err != nil {
		log.Error("failed to insert-or-get cached puzzle: %v", err)
		return nil, err
	}
	return stored, nil
}

func (r *puzzleCacheRepository) ContentsExcludingDay(ctx context.Context, day string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("puzzle_repo")
	log.Debug("loading puzzle history excluding day=%s", day)

	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT content
FROM puzzle_cache
WHERE day <> ? AND day <> ?
`, day, models.OnboardingDay)
	if err != nil {
		log.Error("failed to load puzzle history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			log.Error("failed to scan puzzle history row: %v", err)
			return nil, err
		}
		contents = append(contents, c)
	}
	log.Debug("loaded %d distinct historical puzzles", len(contents))
	return contents, rows.Err()
}
