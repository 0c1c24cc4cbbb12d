package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/pkg"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type documentRepository struct {
	*BaseRepository
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(mongodb *MongoDB) DocumentRepository {
	return &documentRepository{
		BaseRepository: NewBaseRepository(mongodb, "documents"),
	}
}

// Create inserts a document record
func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID retrieves document by ID
func (r *documentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	var doc models.Document
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, pkg.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document by ID: %w", err)
	}

	return &doc, nil
}

// ListByUser retrieves a user's documents with pagination
func (r *documentRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Document, int64, error) {
	var docs []*models.Document
	filter := bson.M{"user_id": userID}

	total, err := r.BaseRepository.List(ctx, filter, params, &docs)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, total, nil
}

// Delete permanently deletes a document record
func (r *documentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if result.DeletedCount == 0 {
		return pkg.ErrDocumentNotFound
	}

	return nil
}
