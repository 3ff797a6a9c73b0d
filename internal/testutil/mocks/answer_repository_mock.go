package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/uptriv/internal/models"
)

// MockAnswerRepository is a mock implementation of repository.AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) Record(ctx context.Context, rec models.AnswerRecord, roundSize int) (*models.RoundCompletion, error) {
	args := m.Called(ctx, rec, roundSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundCompletion), args.Error(1)
}

func (m *MockAnswerRepository) List(ctx context.Context, filter models.AnswerFilter) ([]models.AnswerRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnswerRecord), args.Error(1)
}

func (m *MockAnswerRepository) Count(ctx context.Context, filter models.AnswerFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockAnswerRepository) Accuracy(ctx context.Context, filter models.AnswerFilter) (models.Accuracy, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(models.Accuracy), args.Error(1)
}

func (m *MockAnswerRepository) Population(ctx context.Context, filter models.PopulationFilter) ([]models.UserAccuracy, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserAccuracy), args.Error(1)
}

// MockCompletionRepository is a mock implementation of repository.CompletionRepository
type MockCompletionRepository struct {
	mock.Mock
}

func (m *MockCompletionRepository) Get(ctx context.Context, userID int64, day, difficulty string) (*models.RoundCompletion, error) {
	args := m.Called(ctx, userID, day, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundCompletion), args.Error(1)
}

func (m *MockCompletionRepository) ListForDay(ctx context.Context, userID int64, day string) ([]models.RoundCompletion, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoundCompletion), args.Error(1)
}

func (m *MockCompletionRepository) ListForUser(ctx context.Context, userID int64) ([]models.RoundCompletion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoundCompletion), args.Error(1)
}

// MockDismissalRepository is a mock implementation of repository.DismissalRepository
type MockDismissalRepository struct {
	mock.Mock
}

func (m *MockDismissalRepository) Dismiss(ctx context.Context, userID int64, title string) error {
	args := m.Called(ctx, userID, title)
	return args.Error(0)
}

func (m *MockDismissalRepository) Titles(ctx context.Context, userID int64) (map[string]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}
