package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/pkg"
	"github.com/docvault/docvault/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DocumentService handles document upload and lifecycle
type DocumentService struct {
	documentRepo repository.DocumentRepository
	linkService  *LinkService
	storage      *StorageService
	logger       *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	documentRepo repository.DocumentRepository,
	linkService *LinkService,
	storage *StorageService,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		linkService:  linkService,
		storage:      storage,
		logger:       logger,
	}
}

// Upload stores the file in the object store and persists its record
func (s *DocumentService) Upload(ctx context.Context, ownerID primitive.ObjectID, name string, body io.Reader, size int64, contentType string) (*models.Document, error) {
	if name == "" {
		return nil, pkg.ErrInvalidInput
	}

	suffix, err := pkg.GenerateSecureToken(8)
	if err != nil {
		return nil, pkg.ErrInternalServer.WithCause(err)
	}
	key := path.Join("documents", ownerID.Hex(), fmt.Sprintf("%s-%s", suffix, name))

	result, err := s.storage.Upload(ctx, key, body, size, contentType)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		UserID:      ownerID,
		Name:        name,
		StoragePath: result.Key,
		Size:        size,
		MimeType:    contentType,
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		// Best-effort rollback of the stored object.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned object after create failure",
				zap.String("key", key),
				zap.Error(delErr))
		}
		return nil, err
	}

	return doc, nil
}

// Get retrieves a document the owner controls
func (s *DocumentService) Get(ctx context.Context, ownerID, documentID primitive.ObjectID) (*models.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != ownerID {
		return nil, pkg.ErrDocumentNotFound
	}

	return doc, nil
}

// List lists the owner's documents with pagination
func (s *DocumentService) List(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Document, int64, error) {
	return s.documentRepo.ListByUser(ctx, ownerID, params)
}

// Delete removes a document, its links and their visitor logs, and the
// stored object itself.
func (s *DocumentService) Delete(ctx context.Context, ownerID, documentID primitive.ObjectID) error {
	doc, err := s.Get(ctx, ownerID, documentID)
	if err != nil {
		return err
	}

	if err := s.linkService.DeleteDocumentLinks(ctx, documentID); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored object",
			zap.String("key", doc.StoragePath),
			zap.Error(err))
	}

	return s.documentRepo.Delete(ctx, documentID)
}
