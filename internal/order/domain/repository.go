package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// StatusCounts tallies the non-deleted documents of an order per status.
type StatusCounts struct {
	Total      int64
	Uploaded   int64
	Processing int64
	QAReview   int64
	Completed  int64
	Rejected   int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	ListByStatus(ctx context.Context, db *gorm.DB, orgIDs []snowflake.ID, statuses []OrderStatus, orderBy string) ([]Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, updates map[string]any) error

	// CountDocumentStatuses aggregates the order's documents by status,
	// ignoring soft-deleted rows.
	CountDocumentStatuses(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (StatusCounts, error)
	// NextSequence returns the next value for order number generation.
	NextSequence(ctx context.Context, db *gorm.DB) (int64, error)
}
