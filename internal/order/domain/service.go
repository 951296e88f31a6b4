package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	OrgID       snowflake.ID `json:"org_id"`
	RequesterID snowflake.ID `json:"requester_id"`
	Notes       string       `json:"notes"`
	// DocumentIDs are linked to the new order; every document must belong to
	// the requesting organization and not already be part of another order.
	DocumentIDs []snowflake.ID `json:"document_ids"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)
	Get(ctx context.Context, id snowflake.ID) (*Order, error)

	// RecomputeStatus re-derives the order's status from its non-deleted
	// documents. It runs inside the caller's transaction so the document
	// mutation and the order status move together.
	RecomputeStatus(ctx context.Context, tx *gorm.DB, orderID snowflake.ID) (OrderStatus, error)

	// ListForReview returns orders awaiting attention, oldest first. The org
	// set supports callers that own several organizations; empty means
	// unscoped.
	ListForReview(ctx context.Context, orgIDs []snowflake.ID) ([]Order, error)
	// ListCompleted returns finished orders, most recent first, scoped the
	// same way.
	ListCompleted(ctx context.Context, orgIDs []snowflake.ID) ([]Order, error)
}

var (
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidRequester    = errors.New("invalid_requester")
	ErrDocumentNotInOrg    = errors.New("document_not_in_org")
	ErrDocumentLinked      = errors.New("document_already_linked")
)
