package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

type friendRepository struct {
	db *sql.DB
}

// NewFriendRepository creates a new FriendRepository implementation
func NewFriendRepository(db *sql.DB) repository.FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) AcceptedFriends(ctx context.Context, userID int64) ([]models.Friend, error) {
	log := logger.FromContext(ctx).WithPrefix("friend_repo")
	log.Debug("listing accepted friends: user_id=%d", userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.username
FROM friendships f
JOIN users u ON u.id = f.friend_id
WHERE f.user_id = ? AND f.status = 'accepted'
ORDER BY u.username
`, userID)
	if err != nil {
		log.Error("failed to list friends: %v", err)
		return nil, err
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			log.Error("failed to scan friend row: %v", err)
			return nil, err
		}
		friends = append(friends, f)
	}
	log.Debug("found %d friends", len(friends))
	return friends, rows.Err()
}

// Befriend stores an accepted friendship in both directions.
func (r *friendRepository) Befriend(ctx context.Context, userID, friendID int64) error {
	log := logger.FromContext(ctx).WithPrefix("friend_repo")
	log.Debug("befriending: user_id=%d, friend_id=%d", userID, friendID)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, pair := range [][2]int64{{userID, friendID}, {friendID, userID}} {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO friendships (user_id, friend_id, status) VALUES (?, ?, 'accepted')
ON CONFLICT(user_id, friend_id) DO UPDATE SET status = 'accepted'
`, pair[0], pair[1]); err != nil {
				log.Error("failed to insert friendship: %v", err)
				return err
			}
		}
		return nil
	})
}
