package service

import (
	"context"
	"fmt"

	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	billingdomain "github.com/veridocs/veridocs/internal/billing/domain"
	"github.com/veridocs/veridocs/internal/clock"
	"github.com/veridocs/veridocs/internal/config"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	"github.com/veridocs/veridocs/internal/extraction/client"
	extractiondomain "github.com/veridocs/veridocs/internal/extraction/domain"
	"github.com/veridocs/veridocs/internal/storage"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	cfg      config.Config
	client   client.Client
	store    storage.Store
	repo     documentdomain.Repository
	billing  billingdomain.Service
	activity activitydomain.Service
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Config   config.Config
	Client   client.Client
	Store    storage.Store
	Repo     documentdomain.Repository
	Billing  billingdomain.Service
	Activity activitydomain.Service
}

func NewService(param ServiceParam) extractiondomain.Service {
	return &service{
		db:       param.DB,
		log:      param.Log.Named("extraction.service"),
		clock:    param.Clock,
		cfg:      param.Config,
		client:   param.Client,
		store:    param.Store,
		repo:     param.Repo,
		billing:  param.Billing,
		activity: param.Activity,
	}
}

func (s *service) Extract(ctx context.Context, documentID snowflake.ID) (*extractiondomain.Result, error) {
	doc, err := s.repo.FindByID(ctx, s.db, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, documentdomain.ErrDocumentNotFound
	}

	allowed, err := s.billing.HasCredits(ctx, doc.OrgID, s.cfg.ExtractionCreditCost)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, documentdomain.ErrInsufficientCredits
	}

	data, err := s.store.GetBytes(ctx, storage.KeyFromURL(doc.URL))
	if err != nil {
		return nil, err
	}

	result, err := s.client.Process(ctx, doc.Name, data)
	if err != nil {
		return nil, err
	}

	// The extraction succeeded; everything below is best-effort and must not
	// mask the result.
	if err := s.repo.UpdateFields(ctx, s.db, doc.ID, map[string]any{
		"extracted_text": result.RawText,
		"updated_at":     s.clock.Now(),
	}); err != nil {
		s.log.Error("failed to persist extracted text",
			zap.Int64("document_id", doc.ID.Int64()),
			zap.Error(err),
		)
	}

	if _, err := s.billing.DeductCredits(ctx, doc.OrgID, s.cfg.ExtractionCreditCost); err != nil {
		s.log.Error("credit deduction failed after extraction",
			zap.Int64("document_id", doc.ID.Int64()),
			zap.Int64("org_id", doc.OrgID.Int64()),
			zap.Error(err),
		)
	}

	s.activity.Record(ctx, doc.ID, activitydomain.ActionExtracted,
		fmt.Sprintf("extracted %d characters", len(result.RawText)))
	return result, nil
}
