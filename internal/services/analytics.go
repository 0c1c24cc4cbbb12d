package services

import (
	"context"
	"time"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/repository"

	"go.uber.org/zap"
)

// AnalyticsService records usage events. Emission is fire-and-forget: the
// gating path never waits on it and never fails because of it.
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	logger        *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		logger:        logger,
	}
}

// Emit records an event asynchronously
func (s *AnalyticsService) Emit(event *models.AnalyticsEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.analyticsRepo.Create(ctx, event); err != nil {
			s.logger.Warn("failed to record analytics event",
				zap.String("event_type", string(event.EventType)),
				zap.Error(err))
		}
	}()
}
