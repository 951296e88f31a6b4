package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/veridocs/veridocs/internal/billing/domain"
	"github.com/veridocs/veridocs/internal/clock"
	organizationdomain "github.com/veridocs/veridocs/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const subscriptionPeriod = 30 * 24 * time.Hour

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  organizationdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  organizationdomain.Repository
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("billing.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// HasCredits implements domain.Service.
func (s *Service) HasCredits(ctx context.Context, orgID snowflake.ID, required int64) (bool, error) {
	if required <= 0 {
		required = 1
	}

	org, err := s.repo.FindByID(ctx, s.db, orgID)
	if err != nil {
		return false, err
	}
	if org == nil {
		// Unknown org means no credits, not a fault.
		return false, nil
	}

	if org.Type == organizationdomain.OrganizationTypeInternal {
		return true, nil
	}

	return org.Credits >= required, nil
}

// DeductCredits implements domain.Service.
func (s *Service) DeductCredits(ctx context.Context, orgID snowflake.ID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, billingdomain.ErrInvalidAmount
	}

	var balance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := s.repo.FindByID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return billingdomain.ErrOrganizationNotFound
		}

		if org.Type == organizationdomain.OrganizationTypeInternal {
			balance = org.Credits
			return nil
		}

		ok, err := s.repo.DecrementCredits(ctx, tx, orgID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return billingdomain.ErrInsufficientCredits
		}

		updated, err := s.repo.FindByID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		balance = updated.Credits
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug("credits deducted",
		zap.Int64("org_id", int64(orgID)),
		zap.Int64("amount", amount),
		zap.Int64("balance", balance),
	)
	return balance, nil
}

// RefundCredits implements domain.Service.
func (s *Service) RefundCredits(ctx context.Context, orgID snowflake.ID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, billingdomain.ErrInvalidAmount
	}

	var balance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := s.repo.FindByID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return billingdomain.ErrOrganizationNotFound
		}

		if org.Type == organizationdomain.OrganizationTypeInternal {
			balance = org.Credits
			return nil
		}

		if err := s.repo.IncrementCredits(ctx, tx, orgID, amount); err != nil {
			return err
		}

		updated, err := s.repo.FindByID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		balance = updated.Credits
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// AssignSubscription implements domain.Service.
func (s *Service) AssignSubscription(ctx context.Context, orgID, packageID snowflake.ID) (*organizationdomain.Subscription, error) {
	var created *organizationdomain.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := s.repo.FindByID(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return billingdomain.ErrOrganizationNotFound
		}

		pkg, err := s.repo.FindPackage(ctx, tx, packageID)
		if err != nil {
			return err
		}
		if pkg == nil {
			return billingdomain.ErrPackageNotFound
		}

		// A new assignment replaces any existing plan; terms can differ
		// structurally, so delete-then-create rather than update-in-place.
		existing, err := s.repo.FindSubscriptionByOrg(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.repo.DeleteSubscription(ctx, tx, existing.ID); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		sub := &organizationdomain.Subscription{
			ID:               s.genID.Generate(),
			OrgID:            orgID,
			PackageID:        pkg.ID,
			Status:           organizationdomain.SubscriptionStatusActive,
			RemainingCredits: pkg.MonthlyCredits,
			EndDate:          now.Add(subscriptionPeriod),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.repo.InsertSubscription(ctx, tx, sub); err != nil {
			return err
		}

		if err := s.repo.IncrementCredits(ctx, tx, orgID, pkg.MonthlyCredits); err != nil {
			return err
		}

		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("subscription assigned",
		zap.Int64("org_id", int64(orgID)),
		zap.Int64("package_id", int64(packageID)),
	)
	return created, nil
}
