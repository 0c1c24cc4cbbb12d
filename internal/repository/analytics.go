package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/docvault/docvault/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type analyticsRepository struct {
	*BaseRepository
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(mongodb *MongoDB) AnalyticsRepository {
	return &analyticsRepository{
		BaseRepository: NewBaseRepository(mongodb, "analytics"),
	}
}

// Create inserts an analytics event
func (r *analyticsRepository) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	event.ID = primitive.NewObjectID()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to create analytics event: %w", err)
	}
	return nil
}
