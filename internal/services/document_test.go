package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockStorageProvider struct {
	uploadFn func(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error)
	deleteFn func(ctx context.Context, key string) error
	urlFn    func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func (m *mockStorageProvider) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, body, size, contentType)
	}
	return &UploadResult{Key: key, Size: size}, nil
}

func (m *mockStorageProvider) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockStorageProvider) GetPresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.urlFn != nil {
		return m.urlFn(ctx, key, ttl)
	}
	return "https://s3.example.com/signed/" + key, nil
}

func newTestDocumentService(documentRepo *mockDocumentRepo, linkRepo *mockLinkRepo, visitorRepo *mockVisitorRepo, provider *mockStorageProvider, maxFileSize int64) *DocumentService {
	if documentRepo == nil {
		documentRepo = &mockDocumentRepo{}
	}
	if provider == nil {
		provider = &mockStorageProvider{}
	}

	storage := &StorageService{provider: provider, maxFileSize: maxFileSize}
	linkService := newTestLinkService(linkRepo, visitorRepo, documentRepo, nil)
	return NewDocumentService(documentRepo, linkService, storage, zap.NewNop())
}

func TestUploadStoresObjectAndRecord(t *testing.T) {
	ownerID := primitive.NewObjectID()

	var uploadedKey string
	provider := &mockStorageProvider{
		uploadFn: func(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error) {
			uploadedKey = key
			return &UploadResult{Key: key, Size: size}, nil
		},
	}

	var saved *models.Document
	documentRepo := &mockDocumentRepo{
		createFn: func(ctx context.Context, doc *models.Document) error {
			doc.ID = primitive.NewObjectID()
			saved = doc
			return nil
		},
	}

	svc := newTestDocumentService(documentRepo, nil, nil, provider, 0)
	doc, err := svc.Upload(context.Background(), ownerID, "report.pdf", strings.NewReader("content"), 7, "application/pdf")
	require.NoError(t, err)

	assert.Contains(t, uploadedKey, "documents/"+ownerID.Hex()+"/")
	assert.Contains(t, uploadedKey, "report.pdf")
	require.NotNil(t, saved)
	assert.Equal(t, uploadedKey, saved.StoragePath)
	assert.Equal(t, ownerID, doc.UserID)
	assert.Equal(t, "application/pdf", doc.MimeType)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := newTestDocumentService(nil, nil, nil, nil, 10)
	_, err := svc.Upload(context.Background(), primitive.NewObjectID(), "big.bin", strings.NewReader("x"), 11, "application/octet-stream")
	assert.ErrorIs(t, err, pkg.ErrFileTooLarge)
}

func TestUploadRollsBackObjectOnCreateFailure(t *testing.T) {
	deletedKey := ""
	provider := &mockStorageProvider{
		deleteFn: func(ctx context.Context, key string) error {
			deletedKey = key
			return nil
		},
	}
	documentRepo := &mockDocumentRepo{
		createFn: func(ctx context.Context, doc *models.Document) error {
			return pkg.ErrDatabaseError
		},
	}

	svc := newTestDocumentService(documentRepo, nil, nil, provider, 0)
	_, err := svc.Upload(context.Background(), primitive.NewObjectID(), "report.pdf", strings.NewReader("content"), 7, "application/pdf")

	assert.ErrorIs(t, err, pkg.ErrDatabaseError)
	assert.NotEmpty(t, deletedKey, "stored object must be rolled back")
}

func TestGetForeignDocumentHidden(t *testing.T) {
	doc := ownedDocument(primitive.NewObjectID())
	svc := newTestDocumentService(documentRepoWith(doc), nil, nil, nil, 0)

	_, err := svc.Get(context.Background(), primitive.NewObjectID(), doc.ID)
	assert.ErrorIs(t, err, pkg.ErrDocumentNotFound)
}

func TestDeleteCascadesLinksAndObject(t *testing.T) {
	ownerID := primitive.NewObjectID()
	doc := ownedDocument(ownerID)
	link := &models.Link{
		ID:         primitive.NewObjectID(),
		Token:      "abc123",
		DocumentID: doc.ID,
		CreatedBy:  ownerID,
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	var order []string
	documentRepo := &mockDocumentRepo{
		getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
			return doc, nil
		},
		deleteFn: func(ctx context.Context, id primitive.ObjectID) error {
			order = append(order, "document")
			return nil
		},
	}
	linkRepo := &mockLinkRepo{
		listByDocumentFn: func(ctx context.Context, documentID primitive.ObjectID) ([]*models.Link, error) {
			return []*models.Link{link}, nil
		},
		deleteFn: func(ctx context.Context, id primitive.ObjectID) error {
			order = append(order, "link")
			return nil
		},
	}
	visitorRepo := &mockVisitorRepo{
		deleteByLinkFn: func(ctx context.Context, linkID primitive.ObjectID) (int64, error) {
			order = append(order, "visitors")
			return 0, nil
		},
	}
	provider := &mockStorageProvider{
		deleteFn: func(ctx context.Context, key string) error {
			order = append(order, "object")
			return nil
		},
	}

	svc := newTestDocumentService(documentRepo, linkRepo, visitorRepo, provider, 0)
	require.NoError(t, svc.Delete(context.Background(), ownerID, doc.ID))
	assert.Equal(t, []string{"visitors", "link", "object", "document"}, order)
}
