package repository

import (
	"context"
	"errors"

	"github.com/vytor/uptriv/internal/models"
)

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("repository: conflicting row exists")

// Lookups by key return (nil, nil) when nothing matches.

// UserRepository handles user data access
type UserRepository interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByDeviceToken(ctx context.Context, token string) (*models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
	UpdateDifficulty(ctx context.Context, id int64, difficulty string) error
	SetOnboardingProgress(ctx context.Context, id int64, progress int) error
}

// FriendRepository reads accepted friendships. Request workflows live elsewhere.
type FriendRepository interface {
	AcceptedFriends(ctx context.Context, userID int64) ([]models.Friend, error)
	Befriend(ctx context.Context, userID, friendID int64) error
}

// PuzzleCacheRepository handles the per-(day, user) puzzle rows
type PuzzleCacheRepository interface {
	GetForUser(ctx context.Context, day string, userID int64) (*models.PuzzleCacheRow, error)
	FindByDayDifficulty(ctx context.Context, day, difficulty string) (*models.PuzzleCacheRow, error)
	Delete(ctx context.Context, id int64) error
	// InsertOrGet stores row unless (day, user) already has one, and returns whichever row is stored.
	InsertOrGet(ctx context.Context, row models.PuzzleCacheRow) (*models.PuzzleCacheRow, error)
	// ContentsExcludingDay returns the distinct serialized puzzles of every other day.
	ContentsExcludingDay(ctx context.Context, day string) ([]string, error)
}

// AnswerRepository handles the append-only answer log
type AnswerRepository interface {
	// Record appends rec. When roundSize > 0 and rec completes the round, a
	// RoundCompletion is written in the same transaction and returned.
	Record(ctx context.Context, rec models.AnswerRecord, roundSize int) (*models.RoundCompletion, error)
	List(ctx context.Context, filter models.AnswerFilter) ([]models.AnswerRecord, error)
	Count(ctx context.Context, filter models.AnswerFilter) (int, error)
	Accuracy(ctx context.Context, filter models.AnswerFilter) (models.Accuracy, error)
	Population(ctx context.Context, filter models.PopulationFilter) ([]models.UserAccuracy, error)
}

// CompletionRepository reads round completion markers
type CompletionRepository interface {
	Get(ctx context.Context, userID int64, day, difficulty string) (*models.RoundCompletion, error)
	ListForDay(ctx context.Context, userID int64, day string) ([]models.RoundCompletion, error)
	ListForUser(ctx context.Context, userID int64) ([]models.RoundCompletion, error)
}

// DismissalRepository handles permanently dismissed recommendations
type DismissalRepository interface {
	Dismiss(ctx context.Context, userID int64, title string) error
	Titles(ctx context.Context, userID int64) (map[string]bool, error)
}
