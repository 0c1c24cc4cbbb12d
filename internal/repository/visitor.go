package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/pkg"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type visitorRepository struct {
	*BaseRepository
}

// NewVisitorRepository creates a new visitor repository
func NewVisitorRepository(mongodb *MongoDB) VisitorRepository {
	return &visitorRepository{
		BaseRepository: NewBaseRepository(mongodb, "link_visitors"),
	}
}

// Create inserts a visitor record
func (r *visitorRepository) Create(ctx context.Context, record *models.VisitorRecord) error {
	record.ID = primitive.NewObjectID()
	record.VisitedAt = time.Now()
	record.UpdatedAt = record.VisitedAt

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to create visitor record: %w", err)
	}
	return nil
}

// ListByLink retrieves a link's visitor log with pagination
func (r *visitorRepository) ListByLink(ctx context.Context, linkID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.VisitorRecord, int64, error) {
	var records []*models.VisitorRecord
	filter := bson.M{"link_id": linkID}

	total, err := r.BaseRepository.List(ctx, filter, params, &records)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list visitor records: %w", err)
	}

	return records, total, nil
}

// DeleteByLink removes all visitor records for a link
func (r *visitorRepository) DeleteByLink(ctx context.Context, linkID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"link_id": linkID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete visitor records: %w", err)
	}

	return result.DeletedCount, nil
}
