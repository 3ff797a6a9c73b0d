package services

import (
	"context"

	"github.com/vytor/uptriv/internal/analytics"
	"github.com/vytor/uptriv/internal/errors"
	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

// LeaderboardService ranks a player against their friends and decides tier promotion
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, userID int64, difficulty string) (*models.Leaderboard, error)
	CheckHardModeEligibility(ctx context.Context, userID int64) (*models.EligibilityResult, error)
}

type leaderboardService struct {
	userRepo   repository.UserRepository
	friendRepo repository.FriendRepository
	answerRepo repository.AnswerRepository
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(userRepo repository.UserRepository, friendRepo repository.FriendRepository, answerRepo repository.AnswerRepository) LeaderboardService {
	return &leaderboardService{userRepo: userRepo, friendRepo: friendRepo, answerRepo: answerRepo}
}

func (s *leaderboardService) user(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewUnauthorizedError("unknown user")
	}
	return user, nil
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, userID int64, difficulty string) (*models.Leaderboard, error) {
	log := logger.FromContext(ctx)

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if difficulty == "" {
		difficulty = user.Difficulty
	}
	if !models.ValidDifficulty(difficulty) {
		return nil, errors.NewValidationError("difficulty", "must be 'normal' or 'expert'")
	}
	log.Debug("building leaderboard: user_id=%d, difficulty=%s", userID, difficulty)

	friends, err := s.friendRepo.AcceptedFriends(ctx, userID)
	if err != nil {
		log.Error("failed to list friends: %v", err)
		return nil, errors.NewInternalError(err)
	}
	ids := make([]int64, 0, len(friends)+1)
	ids = append(ids, userID)
	for _, f := range friends {
		ids = append(ids, f.UserID)
	}

	board := &models.Leaderboard{Categories: make(map[string]models.RankedList, len(models.Categories))}
	board.Overall, err = s.rank(ctx, user, friends, ids, difficulty, "")
	if err != nil {
		return nil, err
	}
	for _, category := range models.Categories {
		list, err := s.rank(ctx, user, friends, ids, difficulty, category)
		if err != nil {
			return nil, err
		}
		board.Categories[category] = list
	}
	return board, nil
}

func (s *leaderboardService) rank(ctx context.Context, user *models.User, friends []models.Friend, ids []int64, difficulty, category string) (models.RankedList, error) {
	population, err := s.answerRepo.Population(ctx, models.PopulationFilter{
		Difficulty: difficulty,
		Category:   category,
		UserIDs:    ids,
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to aggregate leaderboard population: %v", err)
		return models.RankedList{}, errors.NewInternalError(err)
	}
	byUser := make(map[int64]models.UserAccuracy, len(population))
	for _, p := range population {
		byUser[p.UserID] = p
	}

	self := analytics.Player{
		UserID:   user.ID,
		Username: user.Username,
		Attempts: byUser[user.ID].Attempts,
		Correct:  byUser[user.ID].Correct,
	}
	players := make([]analytics.Player, 0, len(friends))
	for _, f := range friends {
		players = append(players, analytics.Player{
			UserID:   f.UserID,
			Username: f.Username,
			Attempts: byUser[f.UserID].Attempts,
			Correct:  byUser[f.UserID].Correct,
		})
	}
	return analytics.Rank(self, players, difficulty, category), nil
}

func (s *leaderboardService) CheckHardModeEligibility(ctx context.Context, userID int64) (*models.EligibilityResult, error) {
	log := logger.FromContext(ctx)

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.Debug("checking eligibility: user_id=%d, difficulty=%s", userID, user.Difficulty)

	acc, err := s.answerRepo.Accuracy(ctx, models.AnswerFilter{
		UserID:            userID,
		Difficulty:        user.Difficulty,
		ExcludeOnboarding: true,
	})
	if err != nil {
		log.Error("failed to aggregate accuracy: %v", err)
		return nil, errors.NewInternalError(err)
	}
	population, err := s.answerRepo.Population(ctx, models.PopulationFilter{
		Difficulty:  user.Difficulty,
		MinAttempts: analytics.EligibilityMinAttempts,
	})
	if err != nil {
		log.Error("failed to aggregate population: %v", err)
		return nil, errors.NewInternalError(err)
	}

	res := analytics.Eligibility(user.Difficulty, acc, population)
	log.Debug("eligibility: user_id=%d, eligible=%t, percentage=%d, threshold=%d", userID, res.Eligible, res.Percentage, res.Threshold)
	return &res, nil
}
