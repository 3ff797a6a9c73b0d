package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/uptriv/internal/errors"
	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

// UserService resolves players and manages their preferences
type UserService interface {
	// ResolveDevice returns the user bound to token, creating an anonymous
	// user (and a fresh token when token is empty or unknown) otherwise.
	ResolveDevice(ctx context.Context, token string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	SetDifficulty(ctx context.Context, id int64, difficulty string) (*models.User, error)
	AddFriend(ctx context.Context, id int64, friendUsername string) error
}

type userService struct {
	userRepo   repository.UserRepository
	friendRepo repository.FriendRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, friendRepo repository.FriendRepository) UserService {
	return &userService{userRepo: userRepo, friendRepo: friendRepo}
}

func (s *userService) ResolveDevice(ctx context.Context, token string) (*models.User, error) {
	log := logger.FromContext(ctx)

	if token != "" {
		user, err := s.userRepo.GetByDeviceToken(ctx, token)
		if err != nil {
			log.Error("failed to look up device token: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if user != nil {
			return user, nil
		}
		if _, err := uuid.Parse(token); err != nil {
			log.Debug("discarding malformed device token")
			token = ""
		}
	}
	if token == "" {
		token = uuid.NewString()
	}

	id := uuid.MustParse(token)
	user, err := s.userRepo.Create(ctx, models.User{
		Username:    "guest-" + strings.ReplaceAll(id.String(), "-", "")[:10],
		Anonymous:   true,
		DeviceToken: token,
		Difficulty:  models.DifficultyNormal,
	})
	if err != nil {
		log.Error("failed to create anonymous user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("anonymous user created: id=%d", user.ID)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user: id=%d", id)

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", id)
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user by username: %s", username)

	if strings.TrimSpace(username) == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", username)
	}
	return user, nil
}

func (s *userService) SetDifficulty(ctx context.Context, id int64, difficulty string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("setting difficulty: user_id=%d, difficulty=%s", id, difficulty)

	if !models.ValidDifficulty(difficulty) {
		return nil, errors.NewValidationError("difficulty", "must be 'normal' or 'expert'")
	}
	if err := s.userRepo.UpdateDifficulty(ctx, id, difficulty); err != nil {
		log.Error("failed to update difficulty: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetUser(ctx, id)
}

func (s *userService) AddFriend(ctx context.Context, id int64, friendUsername string) error {
	log := logger.FromContext(ctx)

	friend, err := s.GetByUsername(ctx, friendUsername)
	if err != nil {
		return err
	}
	if friend.ID == id {
		return errors.NewValidationError("username", "cannot befriend yourself")
	}
	if err := s.friendRepo.Befriend(ctx, id, friend.ID); err != nil {
		if stderrors.Is(err, repository.ErrConflict) {
			return nil
		}
		log.Error("failed to add friend: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("friendship stored: user_id=%d, friend_id=%d", id, friend.ID)
	return nil
}
