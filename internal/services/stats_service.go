package services

import (
	"context"
	"strings"

	"github.com/vytor/uptriv/internal/analytics"
	"github.com/vytor/uptriv/internal/errors"
	"github.com/vytor/uptriv/internal/logger"
	"github.com/vytor/uptriv/internal/models"
	"github.com/vytor/uptriv/internal/repository"
)

// StatsService aggregates a player's answer log into stats and recommendations
type StatsService interface {
	GetStats(ctx context.Context, userID int64) (*models.Stats, error)
	Recommendations(ctx context.Context, userID int64) (*models.RecommendationList, error)
	// DismissRecommendation hides title for good and returns the refreshed lists.
	DismissRecommendation(ctx context.Context, userID int64, title string) (*models.RecommendationList, error)
}

type statsService struct {
	answerRepo    repository.AnswerRepository
	dismissalRepo repository.DismissalRepository
	catalog       analytics.Catalog
}

// NewStatsService creates a new StatsService
func NewStatsService(answerRepo repository.AnswerRepository, dismissalRepo repository.DismissalRepository, catalog analytics.Catalog) StatsService {
	return &statsService{answerRepo: answerRepo, dismissalRepo: dismissalRepo, catalog: catalog}
}

func (s *statsService) GetStats(ctx context.Context, userID int64) (*models.Stats, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing stats: user_id=%d", userID)

	records, err := s.answerRepo.List(ctx, models.AnswerFilter{UserID: userID, ExcludeOnboarding: true})
	if err != nil {
		log.Error("failed to list answers: %v", err)
		return nil, errors.NewInternalError(err)
	}
	stats := analytics.ComputeStats(records)
	log.Debug("stats computed: user_id=%d, total=%d, overall=%d%%", userID, stats.TotalQuestions, stats.OverallPercentage)
	return &stats, nil
}

func (s *statsService) Recommendations(ctx context.Context, userID int64) (*models.RecommendationList, error) {
	log := logger.FromContext(ctx)

	stats, err := s.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	dismissed, err := s.dismissalRepo.Titles(ctx, userID)
	if err != nil {
		log.Error("failed to load dismissed recommendations: %v", err)
		return nil, errors.NewInternalError(err)
	}

	list := analytics.Recommend(*stats, s.catalog, dismissed)
	log.Debug("recommendations built: user_id=%d, weakness=%d, interest=%d", userID, len(list.Weakness), len(list.Interest))
	return &list, nil
}

func (s *statsService) DismissRecommendation(ctx context.Context, userID int64, title string) (*models.RecommendationList, error) {
	log := logger.FromContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.NewValidationError("title", "cannot be empty")
	}
	if err := s.dismissalRepo.Dismiss(ctx, userID, title); err != nil {
		log.Error("failed to dismiss recommendation: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("recommendation dismissed: user_id=%d, title=%q", userID, title)
	return s.Recommendations(ctx, userID)
}
