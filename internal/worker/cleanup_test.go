package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/pkg"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type stubLinkRepo struct {
	expired    []*models.Link
	expiredErr error
	deleted    []primitive.ObjectID
	deleteErr  map[primitive.ObjectID]error
}

func (s *stubLinkRepo) Create(ctx context.Context, link *models.Link) error { return nil }

func (s *stubLinkRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Link, error) {
	return nil, pkg.ErrLinkNotFound
}

func (s *stubLinkRepo) GetByToken(ctx context.Context, token string) (*models.Link, error) {
	return nil, pkg.ErrLinkNotFound
}

func (s *stubLinkRepo) ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*models.Link, error) {
	return nil, nil
}

func (s *stubLinkRepo) GetExpiredBefore(ctx context.Context, cutoff primitive.DateTime) ([]*models.Link, error) {
	return s.expired, s.expiredErr
}

func (s *stubLinkRepo) IncrementViewCount(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (s *stubLinkRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.deleteErr[id]; err != nil {
		return err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubVisitorRepo struct {
	deleted      []primitive.ObjectID
	deleteErr    map[primitive.ObjectID]error
	perLinkCount int64
}

func (s *stubVisitorRepo) Create(ctx context.Context, record *models.VisitorRecord) error {
	return nil
}

func (s *stubVisitorRepo) ListByLink(ctx context.Context, linkID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.VisitorRecord, int64, error) {
	return nil, 0, nil
}

func (s *stubVisitorRepo) DeleteByLink(ctx context.Context, linkID primitive.ObjectID) (int64, error) {
	if err := s.deleteErr[linkID]; err != nil {
		return 0, err
	}
	s.deleted = append(s.deleted, linkID)
	return s.perLinkCount, nil
}

func expiredLink() *models.Link {
	return &models.Link{
		ID:        primitive.NewObjectID(),
		Token:     "dead",
		ExpiresAt: time.Now().Add(-48 * time.Hour),
	}
}

func TestRunOncePurgesExpiredLinks(t *testing.T) {
	a, b := expiredLink(), expiredLink()
	linkRepo := &stubLinkRepo{expired: []*models.Link{a, b}}
	visitorRepo := &stubVisitorRepo{perLinkCount: 2}

	w := NewCleanupWorker(linkRepo, visitorRepo, zap.NewNop(), time.Hour, 24*time.Hour)
	stats := w.RunOnce(context.Background())

	assert.Equal(t, int64(2), stats.LinksDeleted)
	assert.Equal(t, int64(4), stats.VisitorsDeleted)
	assert.Equal(t, int64(0), stats.Errors)
	assert.Equal(t, []primitive.ObjectID{a.ID, b.ID}, linkRepo.deleted)
	assert.Equal(t, []primitive.ObjectID{a.ID, b.ID}, visitorRepo.deleted)
}

func TestRunOnceVisitorFailureSkipsLinkDelete(t *testing.T) {
	a, b := expiredLink(), expiredLink()
	linkRepo := &stubLinkRepo{expired: []*models.Link{a, b}}
	visitorRepo := &stubVisitorRepo{
		deleteErr: map[primitive.ObjectID]error{a.ID: errors.New("write conflict")},
	}

	w := NewCleanupWorker(linkRepo, visitorRepo, zap.NewNop(), time.Hour, 24*time.Hour)
	stats := w.RunOnce(context.Background())

	// The failed link keeps its row so the next run can retry the cascade.
	assert.Equal(t, int64(1), stats.LinksDeleted)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, []primitive.ObjectID{b.ID}, linkRepo.deleted)
}

func TestRunOnceListFailure(t *testing.T) {
	linkRepo := &stubLinkRepo{expiredErr: errors.New("connection reset")}

	w := NewCleanupWorker(linkRepo, &stubVisitorRepo{}, zap.NewNop(), time.Hour, 24*time.Hour)
	stats := w.RunOnce(context.Background())

	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(0), stats.LinksDeleted)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	linkRepo := &stubLinkRepo{}
	w := NewCleanupWorker(linkRepo, &stubVisitorRepo{}, zap.NewNop(), time.Millisecond, 24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
