// Package domain defines the credit ledger contract gating metered operations.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	organizationdomain "github.com/veridocs/veridocs/internal/organization/domain"
)

// Service meters operations against an organization's credit balance.
// INTERNAL organizations always pass checks and are never charged.
type Service interface {
	// HasCredits reports whether the organization can afford required credits.
	// A missing organization yields false, not an error.
	HasCredits(ctx context.Context, orgID snowflake.ID, required int64) (bool, error)
	// DeductCredits atomically decrements the balance and returns the new value.
	DeductCredits(ctx context.Context, orgID snowflake.ID, amount int64) (int64, error)
	// RefundCredits is the compensating action for callers that deduct before acting.
	RefundCredits(ctx context.Context, orgID snowflake.ID, amount int64) (int64, error)
	// AssignSubscription replaces the organization's plan and grants the
	// package's monthly credits in one transaction.
	AssignSubscription(ctx context.Context, orgID, packageID snowflake.ID) (*organizationdomain.Subscription, error)
}

var (
	ErrOrganizationNotFound = errors.New("organization_not_found")
	ErrPackageNotFound      = errors.New("package_not_found")
	ErrInsufficientCredits  = errors.New("insufficient_credits")
	ErrInvalidAmount        = errors.New("invalid_amount")
)
