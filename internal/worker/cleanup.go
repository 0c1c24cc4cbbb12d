package worker

import (
	"context"
	"time"

	"github.com/docvault/docvault/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CleanupWorker purges links whose expiration passed longer ago than the
// retention window, along with their visitor logs. Expired links are dead
// the moment their expiration passes; this only reclaims storage.
type CleanupWorker struct {
	linkRepo    repository.LinkRepository
	visitorRepo repository.VisitorRepository
	logger      *zap.Logger

	interval  time.Duration
	retention time.Duration
}

// CleanupStats tracks one cleanup run
type CleanupStats struct {
	LinksDeleted    int64
	VisitorsDeleted int64
	Errors          int64
}

// NewCleanupWorker creates a cleanup worker
func NewCleanupWorker(
	linkRepo repository.LinkRepository,
	visitorRepo repository.VisitorRepository,
	logger *zap.Logger,
	interval, retention time.Duration,
) *CleanupWorker {
	return &CleanupWorker{
		linkRepo:    linkRepo,
		visitorRepo: visitorRepo,
		logger:      logger,
		interval:    interval,
		retention:   retention,
	}
}

// Run executes cleanup on the configured interval until ctx is done
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			stats := w.RunOnce(ctx)
			w.logger.Info("cleanup run finished",
				zap.Int64("links_deleted", stats.LinksDeleted),
				zap.Int64("visitors_deleted", stats.VisitorsDeleted),
				zap.Int64("errors", stats.Errors))
		}
	}
}

// RunOnce performs a single cleanup pass
func (w *CleanupWorker) RunOnce(ctx context.Context) CleanupStats {
	var stats CleanupStats

	cutoff := time.Now().Add(-w.retention)
	links, err := w.linkRepo.GetExpiredBefore(ctx, primitive.NewDateTimeFromTime(cutoff))
	if err != nil {
		w.logger.Error("failed to list expired links", zap.Error(err))
		stats.Errors++
		return stats
	}

	for _, link := range links {
		// Same cascade contract as owner-initiated deletion: visitor
		// records first, then the link.
		deleted, err := w.visitorRepo.DeleteByLink(ctx, link.ID)
		if err != nil {
			w.logger.Warn("failed to delete visitor records",
				zap.String("link_id", link.ID.Hex()),
				zap.Error(err))
			stats.Errors++
			continue
		}
		stats.VisitorsDeleted += deleted

		if err := w.linkRepo.Delete(ctx, link.ID); err != nil {
			w.logger.Warn("failed to delete expired link",
				zap.String("link_id", link.ID.Hex()),
				zap.Error(err))
			stats.Errors++
			continue
		}
		stats.LinksDeleted++
	}

	return stats
}
