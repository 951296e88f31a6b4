package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	Insert(ctx context.Context, db *gorm.DB, org *Organization) error
	// DecrementCredits applies a guarded decrement and reports whether a row
	// matched; a false return means the balance was below amount.
	DecrementCredits(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64) (bool, error)
	IncrementCredits(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64) error

	FindPackage(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Package, error)
	FindSubscriptionByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*Subscription, error)
	DeleteSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	InsertSubscription(ctx context.Context, db *gorm.DB, sub *Subscription) error
}
