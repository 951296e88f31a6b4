// Package scheduler runs the retention sweep: documents soft-deleted longer
// than the retention window are purged, blobs included.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/veridocs/veridocs/internal/clock"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	"github.com/veridocs/veridocs/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler requires db, log, clock, document service and store")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	DocumentSvc documentdomain.Service
	Store       storage.Store
	Config      Config `optional:"true"`
}

type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	documentSvc documentdomain.Service
	store       storage.Store
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.DocumentSvc == nil || p.Store == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler"),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		documentSvc: p.DocumentSvc,
		store:       p.Store,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("retention sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce purges one batch of expired tombstones. Per-document failures are
// logged and skipped so one stuck record cannot stall the sweep.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.Retention)

	expired, err := s.findExpired(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, doc := range expired {
		url, err := s.documentSvc.Purge(ctx, doc.ID)
		if err != nil {
			s.log.Warn("retention purge failed",
				zap.Int64("document_id", int64(doc.ID)),
				zap.Error(err),
			)
			continue
		}
		if url != "" {
			if err := s.store.Delete(ctx, storage.KeyFromURL(url)); err != nil {
				s.log.Warn("retention sweep left orphaned blob",
					zap.String("url", url),
					zap.Error(err),
				)
			}
		}
	}

	if len(expired) > 0 {
		s.log.Info("retention sweep purged documents", zap.Int("count", len(expired)))
	}
	return nil
}

func (s *Scheduler) findExpired(ctx context.Context, cutoff time.Time) ([]documentdomain.Document, error) {
	var docs []documentdomain.Document
	err := s.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Order("deleted_at ASC").
		Limit(s.cfg.BatchSize).
		Find(&docs).Error
	return docs, err
}
