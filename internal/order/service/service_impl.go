package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/veridocs/veridocs/internal/clock"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
	orderdomain "github.com/veridocs/veridocs/internal/order/domain"
	"github.com/veridocs/veridocs/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         orderdomain.Repository
	documentRepo documentdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         orderdomain.Repository
	DocumentRepo documentdomain.Repository
}

func NewService(param ServiceParam) orderdomain.Service {
	return &service{
		db:           param.DB,
		log:          param.Log.Named("order.service"),
		genID:        param.GenID,
		clock:        param.Clock,
		repo:         param.Repo,
		documentRepo: param.DocumentRepo,
	}
}

func (s *service) Create(ctx context.Context, req orderdomain.CreateOrderRequest) (*orderdomain.Order, error) {
	if req.OrgID == 0 {
		return nil, orderdomain.ErrInvalidOrganization
	}
	if req.RequesterID == 0 {
		return nil, orderdomain.ErrInvalidRequester
	}

	order := &orderdomain.Order{
		ID:          s.genID.Generate(),
		Status:      orderdomain.OrderPending,
		OrgID:       req.OrgID,
		RequesterID: req.RequesterID,
		Notes:       req.Notes,
		CreatedAt:   s.clock.Now(),
		UpdatedAt:   s.clock.Now(),
	}

	create := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			seq, err := s.repo.NextSequence(ctx, tx)
			if err != nil {
				return err
			}
			order.OrderNumber = fmt.Sprintf("ORD-%06d", seq)

			if err := s.repo.Insert(ctx, tx, order); err != nil {
				return err
			}

			docs, err := s.documentRepo.FindByIDs(ctx, tx, req.DocumentIDs)
			if err != nil {
				return err
			}
			if len(docs) != len(req.DocumentIDs) {
				return documentdomain.ErrDocumentNotFound
			}
			for _, doc := range docs {
				if doc.OrgID != req.OrgID {
					return orderdomain.ErrDocumentNotInOrg
				}
				if doc.OrderID != nil {
					return orderdomain.ErrDocumentLinked
				}
			}

			for _, doc := range docs {
				err := s.documentRepo.UpdateFields(ctx, tx, doc.ID, map[string]any{
					"order_id":   order.ID,
					"updated_at": s.clock.Now(),
				})
				if err != nil {
					return err
				}
			}

			if len(docs) > 0 {
				status, err := s.recompute(ctx, tx, order.ID)
				if err != nil {
					return err
				}
				order.Status = status
			}
			return nil
		})
	}

	err := create()
	if db.IsDuplicateKeyErr(err) {
		// Two concurrent creates can draw the same sequence; the loser
		// re-runs with a fresh number.
		err = create()
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.Int64("order_id", order.ID.Int64()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("documents", len(req.DocumentIDs)),
	)
	return order, nil
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*orderdomain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrOrderNotFound
	}
	return order, nil
}

func (s *service) RecomputeStatus(ctx context.Context, tx *gorm.DB, orderID snowflake.ID) (orderdomain.OrderStatus, error) {
	return s.recompute(ctx, tx, orderID)
}

func (s *service) recompute(ctx context.Context, tx *gorm.DB, orderID snowflake.ID) (orderdomain.OrderStatus, error) {
	order, err := s.repo.FindByID(ctx, tx, orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", orderdomain.ErrOrderNotFound
	}

	counts, err := s.repo.CountDocumentStatuses(ctx, tx, orderID)
	if err != nil {
		return "", err
	}

	status := deriveStatus(counts)
	if status == order.Status {
		return status, nil
	}

	updates := map[string]any{
		"status":     status,
		"updated_at": s.clock.Now(),
	}
	if status == orderdomain.OrderCompleted {
		updates["completed_at"] = s.clock.Now()
	} else if order.CompletedAt != nil {
		updates["completed_at"] = nil
	}

	if err := s.repo.UpdateStatus(ctx, tx, orderID, updates); err != nil {
		return "", err
	}

	s.log.Info("order status recomputed",
		zap.Int64("order_id", orderID.Int64()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(status)),
	)
	return status, nil
}

// deriveStatus maps document status counts to an order status. Rejections
// dominate so a single rejected document surfaces immediately.
func deriveStatus(counts orderdomain.StatusCounts) orderdomain.OrderStatus {
	switch {
	case counts.Total == 0:
		return orderdomain.OrderPending
	case counts.Rejected > 0:
		return orderdomain.OrderNeedsRevision
	case counts.Completed == counts.Total:
		return orderdomain.OrderCompleted
	case counts.QAReview > 0:
		return orderdomain.OrderInReview
	default:
		return orderdomain.OrderProcessing
	}
}

func (s *service) ListForReview(ctx context.Context, orgIDs []snowflake.ID) ([]orderdomain.Order, error) {
	return s.repo.ListByStatus(ctx, s.db, orgIDs, []orderdomain.OrderStatus{
		orderdomain.OrderInReview,
		orderdomain.OrderNeedsRevision,
	}, "created_at ASC")
}

func (s *service) ListCompleted(ctx context.Context, orgIDs []snowflake.ID) ([]orderdomain.Order, error) {
	return s.repo.ListByStatus(ctx, s.db, orgIDs, []orderdomain.OrderStatus{
		orderdomain.OrderCompleted,
	}, "updated_at DESC")
}
