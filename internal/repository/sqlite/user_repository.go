package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

const userColumns = `id, username, anonymous, COALESCE(device_token, ''), difficulty, onboarding_progress, created_at`

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var anonymous int
	if err := row.Scan(&u.ID, &u.Username, &anonymous, &u.DeviceToken, &u.Difficulty, &u.OnboardingProgress, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Anonymous = anonymous == 1
	return &u, nil
}

func (r *userRepository) getBy(ctx context.Context, column string, value any) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user by %s", column)

	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("user not found by %s", column)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *userRepository) GetByDeviceToken(ctx context.Context, token string) (*models.User, error) {
	return r.getBy(ctx, "device_token", token)
}

func (r *userRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("creating user: username=%s, anonymous=%t", user.Username, user.Anonymous)

	difficulty := user.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyNormal
	}
	var token any
	if user.DeviceToken != "" {
		token = user.DeviceToken
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, anonymous, device_token, difficulty)
VALUES (?, ?, ?, ?)
`, user.Username, boolToInt(user.Anonymous), token, difficulty)
	if err != nil {
		log.Error("failed to create user: %v", err)
		return nil, conflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get last insert id: %v", err)
		return nil, err
	}

	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Debug("user created: id=%d", u.ID)
	return u, nil
}

func (r *userRepository) UpdateDifficulty(ctx context.Context, id int64, difficulty string) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating difficulty: user_id=%d, difficulty=%s", id, difficulty)

	_, err := r.db.ExecContext(ctx, `UPDATE users SET difficulty = ? WHERE id = ?`, difficulty, id)
	if err != nil {
		log.Error("failed to update difficulty: %v", err)
	}
	return err
}

func (r *userRepository) SetOnboardingProgress(ctx context.Context, id int64, progress int) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("setting onboarding progress: user_id=%d, progress=%d", id, progress)

	// Progress only moves forward.
	_, err := r.db.ExecContext(ctx, `UPDATE users SET onboarding_progress = MAX(onboarding_progress, ?) WHERE id = ?`, progress, id)
	if err != nil {
		log.Error("failed to set onboarding progress: %v", err)
	}
	return err
}
