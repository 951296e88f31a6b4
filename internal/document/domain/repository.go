package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListCursor is a keyset position: listings resume strictly after the row at
// (CreatedAt, ID) in the newest-first ordering. The id tiebreak keeps rows
// sharing a timestamp from being skipped across pages.
type ListCursor struct {
	CreatedAt time.Time
	ID        snowflake.ID
}

// Repository is the persistence boundary for documents. Soft-deleted rows are
// invisible to every method except the explicitly unscoped ones.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *Document) error
	InsertBatch(ctx context.Context, db *gorm.DB, docs []*Document) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Document, error)
	// FindByIDUnscoped also sees soft-deleted rows; used by restore and purge.
	FindByIDUnscoped(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Document, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Document, error)

	ListByStatus(ctx context.Context, db *gorm.DB, status DocumentStatus, orgID snowflake.ID) ([]Document, error)
	ListByOrganization(ctx context.Context, db *gorm.DB, orgID snowflake.ID, before *ListCursor, limit int) ([]Document, error)
	ListDeleted(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Document, error)

	// ClaimForOperator is the compare-and-swap behind Assign: the update only
	// matches claimable rows, so exactly one concurrent caller sees a row count
	// of one.
	ClaimForOperator(ctx context.Context, db *gorm.DB, id, operatorID snowflake.ID, now time.Time) (bool, error)
	// TransitionStatus conditionally moves status from one of the given states.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from []DocumentStatus, to DocumentStatus, updates map[string]any) (bool, error)
	ReleaseFromOperator(ctx context.Context, db *gorm.DB, id, operatorID snowflake.ID, now time.Time) (bool, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, updates map[string]any) error

	UpsertQualityReview(ctx context.Context, db *gorm.DB, review *QualityReview) error
	FindQualityReview(ctx context.Context, db *gorm.DB, documentID snowflake.ID) (*QualityReview, error)

	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Restore(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// HardDelete purges the document row and its dependent records.
	HardDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
