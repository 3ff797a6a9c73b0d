package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/uptriv/internal/models"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByDeviceToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateDifficulty(ctx context.Context, id int64, difficulty string) error {
	args := m.Called(ctx, id, difficulty)
	return args.Error(0)
}

func (m *MockUserRepository) SetOnboardingProgress(ctx context.Context, id int64, progress int) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

// MockFriendRepository is a mock implementation of repository.FriendRepository
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) AcceptedFriends(ctx context.Context, userID int64) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Friend), args.Error(1)
}

func (m *MockFriendRepository) Befriend(ctx context.Context, userID, friendID int64) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}
