package repository

import (
	"context"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/pkg"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkRepository defines link repository interface
type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Link, error)
	GetByToken(ctx context.Context, token string) (*models.Link, error)
	ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*models.Link, error)
	GetExpiredBefore(ctx context.Context, cutoff primitive.DateTime) ([]*models.Link, error)
	IncrementViewCount(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// VisitorRepository defines visitor log repository interface
type VisitorRepository interface {
	Create(ctx context.Context, record *models.VisitorRecord) error
	ListByLink(ctx context.Context, linkID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.VisitorRecord, int64, error)
	DeleteByLink(ctx context.Context, linkID primitive.ObjectID) (int64, error)
}

// DocumentRepository defines document repository interface
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Document, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AnalyticsRepository defines analytics repository interface
type AnalyticsRepository interface {
	Create(ctx context.Context, event *models.AnalyticsEvent) error
}

// Repository aggregates all repositories
type Repository struct {
	Link      LinkRepository
	Visitor   VisitorRepository
	Document  DocumentRepository
	Analytics AnalyticsRepository
}

// NewRepositories creates all repository instances
func NewRepositories(mongodb *MongoDB) *Repository {
	return &Repository{
		Link:      NewLinkRepository(mongodb),
		Visitor:   NewVisitorRepository(mongodb),
		Document:  NewDocumentRepository(mongodb),
		Analytics: NewAnalyticsRepository(mongodb),
	}
}
