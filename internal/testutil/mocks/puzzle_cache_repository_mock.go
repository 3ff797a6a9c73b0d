package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/uptriv/internal/models"
)

// MockPuzzleCacheRepository is a mock implementation of repository.PuzzleCacheRepository
type MockPuzzleCacheRepository struct {
	mock.Mock
}

func (m *MockPuzzleCacheRepository) GetForUser(ctx context.Context, day string, userID int64) (*models.PuzzleCacheRow, error) {
	args := m.Called(ctx, day, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PuzzleCacheRow), args.Error(1)
}

func (m *MockPuzzleCacheRepository) FindByDayDifficulty(ctx context.Context, day, difficulty string) (*models.PuzzleCacheRow, error) {
	args := m.Called(ctx, day, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PuzzleCacheRow), args.Error(1)
}

func (m *MockPuzzleCacheRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPuzzleCacheRepository) InsertOrGet(ctx context.Context, row models.PuzzleCacheRow) (*models.PuzzleCacheRow, error) {
	args := m.Called(ctx, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PuzzleCacheRow), args.Error(1)
}

func (m *MockPuzzleCacheRepository) ContentsExcludingDay(ctx context.Context, day string) ([]string, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockDailyPuzzles is a mock implementation of services.DailyPuzzles
type MockDailyPuzzles struct {
	mock.Mock
}

func (m *MockDailyPuzzles) GetDailyPuzzle(ctx context.Context, day, difficulty string, userID int64) (*models.DailyPuzzle, error) {
	args := m.Called(ctx, day, difficulty, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyPuzzle), args.Error(1)
}

func (m *MockDailyPuzzles) Onboarding() (*models.DailyPuzzle, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyPuzzle), args.Error(1)
}
