// Package domain contains persistence models for processing orders.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrderStatus is derived from the statuses of the order's documents; it is
// recomputed after every document mutation, never set directly by callers.
type OrderStatus string

const (
	OrderPending       OrderStatus = "PENDING"
	OrderProcessing    OrderStatus = "PROCESSING"
	OrderInReview      OrderStatus = "IN_REVIEW"
	OrderNeedsRevision OrderStatus = "NEEDS_REVISION"
	OrderCompleted     OrderStatus = "COMPLETED"
)

// Order groups documents submitted together. Soft-deleted documents are
// excluded from every status computation.
type Order struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderNumber string       `gorm:"type:text;not null;uniqueIndex:ux_orders_number" json:"order_number"`
	Status      OrderStatus  `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"org_id"`
	RequesterID snowflake.ID `gorm:"not null" json:"requester_id"`
	Notes       string       `gorm:"type:text" json:"notes"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }
