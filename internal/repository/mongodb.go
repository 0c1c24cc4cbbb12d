package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/docvault/docvault/internal/pkg"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB client wrapper
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect establishes connection to MongoDB
func Connect(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoDB := &MongoDB{
		client:   client,
		database: client.Database(dbName),
	}

	if err := mongoDB.createIndexes(); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongoDB, nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Collection returns a collection instance
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// createIndexes creates all necessary indexes
func (m *MongoDB) createIndexes() error {
	ctx := context.Background()

	// Link indexes. The partial unique index on (document_id, alias) turns a
	// create race into a single duplicate-key error instead of two inserts.
	linkIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "document_id", Value: 1}, {Key: "alias", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"alias": bson.M{"$gt": ""}}),
		},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := m.Collection("links").Indexes().CreateMany(ctx, linkIndexes); err != nil {
		return fmt.Errorf("failed to create link indexes: %w", err)
	}

	visitorIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "link_id", Value: 1}, {Key: "visited_at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}
	if _, err := m.Collection("link_visitors").Indexes().CreateMany(ctx, visitorIndexes); err != nil {
		return fmt.Errorf("failed to create visitor indexes: %w", err)
	}

	documentIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := m.Collection("documents").Indexes().CreateMany(ctx, documentIndexes); err != nil {
		return fmt.Errorf("failed to create document indexes: %w", err)
	}

	analyticsIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "link_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if _, err := m.Collection("analytics").Indexes().CreateMany(ctx, analyticsIndexes); err != nil {
		return fmt.Errorf("failed to create analytics indexes: %w", err)
	}

	return nil
}

// BaseRepository provides common repository functionality
type BaseRepository struct {
	collection *mongo.Collection
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(mongodb *MongoDB, collectionName string) *BaseRepository {
	return &BaseRepository{
		collection: mongodb.Collection(collectionName),
	}
}

// Update updates a document matching filter
func (r *BaseRepository) Update(ctx context.Context, filter bson.M, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	update := bson.M{"$set": updates}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	if result.MatchedCount == 0 {
		return pkg.ErrLinkNotFound
	}

	return nil
}

// List retrieves documents with pagination
func (r *BaseRepository) List(ctx context.Context, filter bson.M, params *pkg.PaginationParams, results interface{}) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	opts := options.Find()
	opts.SetSkip(int64(params.GetOffset()))
	opts.SetLimit(int64(params.Limit))
	opts.SetSort(bson.D{{Key: params.Sort, Value: params.GetSortDirection()}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return 0, fmt.Errorf("failed to decode documents: %w", err)
	}

	return total, nil
}
