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

type linkRepository struct {
	*BaseRepository
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(mongodb *MongoDB) LinkRepository {
	return &linkRepository{
		BaseRepository: NewBaseRepository(mongodb, "links"),
	}
}

// Create inserts a new link. A duplicate (document_id, alias) pair surfaces
// as ErrAliasConflict rather than a generic database error.
func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	link.ID = primitive.NewObjectID()
	link.CreatedAt = time.Now()
	link.UpdatedAt = link.CreatedAt

	_, err := r.collection.InsertOne(ctx, link)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkg.ErrAliasConflict
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// GetByID retrieves link by ID
func (r *linkRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Link, error) {
	var link models.Link
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&link)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, pkg.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by ID: %w", err)
	}

	return &link, nil
}

// GetByToken retrieves link by its public token. Expiration is judged by the
// caller so that read paths can report LINK_EXPIRED distinctly.
func (r *linkRepository) GetByToken(ctx context.Context, token string) (*models.Link, error) {
	var link models.Link
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&link)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, pkg.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by token: %w", err)
	}

	return &link, nil
}

// ListByDocument retrieves all links for a document
func (r *linkRepository) ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*models.Link, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"document_id": documentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list links by document: %w", err)
	}
	defer cursor.Close(ctx)

	var links []*models.Link
	if err := cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("failed to decode links: %w", err)
	}

	return links, nil
}

// GetExpiredBefore retrieves links whose expiration passed before cutoff
func (r *linkRepository) GetExpiredBefore(ctx context.Context, cutoff primitive.DateTime) ([]*models.Link, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"expires_at": bson.M{"$lt": cutoff.Time()}})
	if err != nil {
		return nil, fmt.Errorf("failed to get expired links: %w", err)
	}
	defer cursor.Close(ctx)

	var links []*models.Link
	if err := cursor.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("failed to decode expired links: %w", err)
	}

	return links, nil
}

// IncrementViewCount increments the view counter
func (r *linkRepository) IncrementViewCount(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$inc": bson.M{"view_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}

	return nil
}

// Delete permanently deletes a link
func (r *linkRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.DeletedCount == 0 {
		return pkg.ErrLinkNotFound
	}

	return nil
}
