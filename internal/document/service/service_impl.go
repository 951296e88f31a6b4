package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/veridocs/veridocs/internal/activity/domain"
	billingdomain "github.com/veridocs/veridocs/internal/billing/domain"
	"github.com/veridocs/veridocs/internal/clock"
	"github.com/veridocs/veridocs/internal/config"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	orderdomain "github.com/veridocs/veridocs/internal/order/domain"
	"github.com/veridocs/veridocs/internal/orgcontext"
	"github.com/veridocs/veridocs/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      config.Config
	repo     documentdomain.Repository
	billing  billingdomain.Service
	activity activitydomain.Service
	orders   orderdomain.Service
	sampler  documentdomain.Sampler
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     documentdomain.Repository
	Billing  billingdomain.Service
	Activity activitydomain.Service
	Orders   orderdomain.Service
	Sampler  documentdomain.Sampler `optional:"true"`
}

func NewService(param ServiceParam) documentdomain.Service {
	sampler := param.Sampler
	if sampler == nil {
		sampler = func(rate float64) bool { return rand.Float64() < rate }
	}
	return &service{
		db:       param.DB,
		log:      param.Log.Named("document.service"),
		genID:    param.GenID,
		clock:    param.Clock,
		cfg:      param.Config,
		repo:     param.Repo,
		billing:  param.Billing,
		activity: param.Activity,
		orders:   param.Orders,
		sampler:  sampler,
	}
}

func (s *service) Create(ctx context.Context, req documentdomain.CreateDocumentRequest) (*documentdomain.Document, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, documentdomain.ErrInvalidOrganization
	}
	uploaderID, ok := orgcontext.UserIDFromContext(ctx)
	if !ok {
		return nil, documentdomain.ErrInvalidUploader
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, documentdomain.ErrInvalidName
	}

	allowed, err := s.billing.HasCredits(ctx, orgID, s.cfg.UploadCreditCost)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, documentdomain.ErrInsufficientCredits
	}

	category := req.Category
	if category == "" {
		category = documentdomain.CategoryOther
	}

	doc := &documentdomain.Document{
		ID:             s.genID.Generate(),
		Name:           req.Name,
		Type:           req.Type,
		Category:       category,
		Status:         documentdomain.StatusUploaded,
		ApprovalStatus: documentdomain.ApprovalPending,
		URL:            req.URL,
		Size:           req.Size,
		PageCount:      req.PageCount,
		Source:         documentdomain.SourceUpload,
		OrgID:          orgID,
		UploaderID:     uploaderID,
		CreatedAt:      s.clock.Now(),
		UpdatedAt:      s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, doc); err != nil {
		return nil, err
	}

	if _, err := s.billing.DeductCredits(ctx, orgID, s.cfg.UploadCreditCost); err != nil {
		// The record already exists; a failed deduction is a billing incident,
		// not a reason to lose the upload.
		s.log.Error("credit deduction failed after upload",
			zap.Int64("document_id", doc.ID.Int64()),
			zap.Int64("org_id", orgID.Int64()),
			zap.Error(err),
		)
	}

	s.activity.Record(ctx, doc.ID, activitydomain.ActionUploaded, fmt.Sprintf("uploaded %q", doc.Name))
	s.log.Info("document created",
		zap.Int64("document_id", doc.ID.Int64()),
		zap.String("name", doc.Name),
		zap.Int64("org_id", orgID.Int64()),
	)
	return doc, nil
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*documentdomain.Document, error) {
	doc, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, documentdomain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *service) ListByStatus(ctx context.Context, req documentdomain.ListByStatusRequest) ([]documentdomain.Document, error) {
	return s.repo.ListByStatus(ctx, s.db, req.Status, req.OrgID)
}

func (s *service) ListByOrganization(ctx context.Context, req documentdomain.ListByOrganizationRequest) (documentdomain.ListDocumentsResponse, error) {
	if req.OrgID == 0 {
		return documentdomain.ListDocumentsResponse{}, documentdomain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 250 {
		pageSize = 250
	}

	var before *documentdomain.ListCursor
	if strings.TrimSpace(req.PageToken) != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return documentdomain.ListDocumentsResponse{}, documentdomain.ErrInvalidPageToken
		}
		parsed, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return documentdomain.ListDocumentsResponse{}, documentdomain.ErrInvalidPageToken
		}
		cursorID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return documentdomain.ListDocumentsResponse{}, documentdomain.ErrInvalidPageToken
		}
		before = &documentdomain.ListCursor{CreatedAt: parsed, ID: cursorID}
	}

	docs, err := s.repo.ListByOrganization(ctx, s.db, req.OrgID, before, pageSize+1)
	if err != nil {
		return documentdomain.ListDocumentsResponse{}, err
	}

	resp := documentdomain.ListDocumentsResponse{}
	if len(docs) > pageSize {
		docs = docs[:pageSize]
		last := docs[len(docs)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.Format(time.RFC3339Nano),
		})
		if err == nil {
			resp.NextPageToken = token
			resp.HasMore = true
		}
	}
	resp.Documents = docs
	return resp, nil
}

func (s *service) ListDeleted(ctx context.Context, orgID snowflake.ID) ([]documentdomain.Document, error) {
	return s.repo.ListDeleted(ctx, s.db, orgID)
}

func (s *service) Assign(ctx context.Context, documentID, operatorID snowflake.ID) error {
	if operatorID == 0 {
		return documentdomain.ErrInvalidOperator
	}

	claimed, err := s.repo.ClaimForOperator(ctx, s.db, documentID, operatorID, s.clock.Now())
	if err != nil {
		return err
	}
	if !claimed {
		doc, err := s.repo.FindByIDUnscoped(ctx, s.db, documentID)
		if err != nil {
			return err
		}
		if doc == nil {
			return documentdomain.ErrDocumentNotFound
		}
		// Claiming a document already held by the same operator is a no-op.
		if !doc.DeletedAt.Valid &&
			doc.Status == documentdomain.StatusProcessing &&
			doc.AssignedToID != nil && *doc.AssignedToID == operatorID {
			return nil
		}
		return documentdomain.NewInvalidTransition(doc.Status, documentdomain.StatusProcessing)
	}

	s.activity.Record(ctx, documentID, activitydomain.ActionAssigned, fmt.Sprintf("assigned to operator %d", operatorID))
	return nil
}

func (s *service) Release(ctx context.Context, documentID, operatorID snowflake.ID) error {
	if operatorID == 0 {
		return documentdomain.ErrInvalidOperator
	}

	released, err := s.repo.ReleaseFromOperator(ctx, s.db, documentID, operatorID, s.clock.Now())
	if err != nil {
		return err
	}
	if !released {
		doc, err := s.repo.FindByID(ctx, s.db, documentID)
		if err != nil {
			return err
		}
		if doc == nil {
			return documentdomain.ErrDocumentNotFound
		}
		if doc.Status == documentdomain.StatusProcessing {
			return documentdomain.ErrInvalidOperator
		}
		return documentdomain.NewInvalidTransition(doc.Status, documentdomain.StatusUploaded)
	}

	s.activity.Record(ctx, documentID, activitydomain.ActionReleased, fmt.Sprintf("released by operator %d", operatorID))
	return nil
}

func (s *service) SubmitForReview(ctx context.Context, documentID snowflake.ID) (documentdomain.DocumentStatus, error) {
	target := documentdomain.StatusCompleted
	if s.sampler(s.cfg.QASampleRate) {
		target = documentdomain.StatusQAReview
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.repo.TransitionStatus(ctx, tx, documentID,
			[]documentdomain.DocumentStatus{documentdomain.StatusProcessing},
			target,
			map[string]any{"updated_at": s.clock.Now()},
		)
		if err != nil {
			return err
		}
		if !moved {
			doc, err := s.repo.FindByID(ctx, tx, documentID)
			if err != nil {
				return err
			}
			if doc == nil {
				return documentdomain.ErrDocumentNotFound
			}
			return documentdomain.NewInvalidTransition(doc.Status, target)
		}
		return s.recomputeOwningOrder(ctx, tx, documentID)
	})
	if err != nil {
		return "", err
	}

	s.activity.Record(ctx, documentID, activitydomain.ActionSubmitted, fmt.Sprintf("submitted for review, routed to %s", target))
	return target, nil
}

func (s *service) ApplyQAOutcome(ctx context.Context, req documentdomain.ApplyQAOutcomeRequest) error {
	switch req.Outcome {
	case documentdomain.QAPassed, documentdomain.QAFailed, documentdomain.QANeedsCorrection:
	default:
		return documentdomain.ErrInvalidOutcome
	}
	if req.Score < 0 || req.Score > 100 {
		return documentdomain.ErrInvalidScore
	}

	target := documentdomain.StatusCompleted
	if req.Outcome != documentdomain.QAPassed {
		target = documentdomain.StatusRejected
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"qa_status":  req.Outcome,
			"updated_at": s.clock.Now(),
		}
		if target == documentdomain.StatusRejected && req.Notes != "" {
			updates["rejection_reason"] = req.Notes
		}

		moved, err := s.repo.TransitionStatus(ctx, tx, req.DocumentID,
			[]documentdomain.DocumentStatus{documentdomain.StatusQAReview},
			target, updates,
		)
		if err != nil {
			return err
		}
		if !moved {
			doc, err := s.repo.FindByID(ctx, tx, req.DocumentID)
			if err != nil {
				return err
			}
			if doc == nil {
				return documentdomain.ErrDocumentNotFound
			}
			return documentdomain.NewInvalidTransition(doc.Status, target)
		}

		review := &documentdomain.QualityReview{
			ID:         s.genID.Generate(),
			DocumentID: req.DocumentID,
			ReviewerID: req.ReviewerID,
			Status:     req.Outcome,
			Score:      req.Score,
			Notes:      req.Notes,
			CreatedAt:  s.clock.Now(),
			UpdatedAt:  s.clock.Now(),
		}
		if err := s.repo.UpsertQualityReview(ctx, tx, review); err != nil {
			return err
		}

		return s.recomputeOwningOrder(ctx, tx, req.DocumentID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, req.DocumentID, activitydomain.ActionQAReviewed,
		fmt.Sprintf("qa outcome %s, score %d", req.Outcome, req.Score))
	return nil
}

func (s *service) UpdateCategory(ctx context.Context, id snowflake.ID, category documentdomain.DocumentCategory) error {
	switch category {
	case documentdomain.CategorySalesInvoice, documentdomain.CategoryPurchaseInvoice,
		documentdomain.CategoryBankStatement, documentdomain.CategoryIdentityCard,
		documentdomain.CategoryOther:
	default:
		return documentdomain.ErrInvalidCategory
	}

	doc, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return documentdomain.ErrDocumentNotFound
	}
	return s.repo.UpdateFields(ctx, s.db, id, map[string]any{
		"category":   category,
		"updated_at": s.clock.Now(),
	})
}

func (s *service) UpdateApprovalStatus(ctx context.Context, id snowflake.ID, status documentdomain.ApprovalStatus, reason string) error {
	switch status {
	case documentdomain.ApprovalApproved, documentdomain.ApprovalDenied, documentdomain.ApprovalPending:
	default:
		return documentdomain.ErrInvalidOutcome
	}

	doc, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return documentdomain.ErrDocumentNotFound
	}

	updates := map[string]any{
		"approval_status": status,
		"updated_at":      s.clock.Now(),
	}
	if status == documentdomain.ApprovalDenied && reason != "" {
		updates["rejection_reason"] = reason
	}
	return s.repo.UpdateFields(ctx, s.db, id, updates)
}

func (s *service) SoftDelete(ctx context.Context, id snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return documentdomain.ErrDocumentNotFound
		}
		if err := s.repo.SoftDelete(ctx, tx, id); err != nil {
			return err
		}
		return s.recomputeOwningOrderOf(ctx, tx, doc)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, id, activitydomain.ActionDeleted, "moved to recycle bin")
	return nil
}

func (s *service) Restore(ctx context.Context, id snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.FindByIDUnscoped(ctx, tx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return documentdomain.ErrDocumentNotFound
		}
		if !doc.DeletedAt.Valid {
			return documentdomain.ErrDocumentNotDeleted
		}
		// Status survives the round trip; deletion is orthogonal to lifecycle.
		if err := s.repo.Restore(ctx, tx, id); err != nil {
			return err
		}
		return s.recomputeOwningOrderOf(ctx, tx, doc)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, id, activitydomain.ActionRestored, "restored from recycle bin")
	return nil
}

func (s *service) Purge(ctx context.Context, id snowflake.ID) (string, error) {
	var url string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.FindByIDUnscoped(ctx, tx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return documentdomain.ErrDocumentNotFound
		}
		url = doc.URL

		if err := s.repo.HardDelete(ctx, tx, id); err != nil {
			return err
		}
		return s.recomputeOwningOrderOf(ctx, tx, doc)
	})
	if err != nil {
		return "", err
	}

	s.log.Info("document purged", zap.Int64("document_id", id.Int64()))
	return url, nil
}

// recomputeOwningOrder re-derives the order status after a document mutation,
// inside the same transaction.
func (s *service) recomputeOwningOrder(ctx context.Context, tx *gorm.DB, documentID snowflake.ID) error {
	doc, err := s.repo.FindByIDUnscoped(ctx, tx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	return s.recomputeOwningOrderOf(ctx, tx, doc)
}

func (s *service) recomputeOwningOrderOf(ctx context.Context, tx *gorm.DB, doc *documentdomain.Document) error {
	if doc.OrderID == nil {
		return nil
	}
	_, err := s.orders.RecomputeStatus(ctx, tx, *doc.OrderID)
	return err
}

