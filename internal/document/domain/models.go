// Package domain contains persistence models for documents and quality reviews.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentType mirrors the uploaded file kind.
type DocumentType string

const (
	DocumentTypePDF   DocumentType = "PDF"
	DocumentTypeImage DocumentType = "IMAGE"
)

type DocumentCategory string

const (
	CategorySalesInvoice    DocumentCategory = "SALES_INVOICE"
	CategoryPurchaseInvoice DocumentCategory = "PURCHASE_INVOICE"
	CategoryBankStatement   DocumentCategory = "BANK_STATEMENT"
	CategoryIdentityCard    DocumentCategory = "IDENTITY_CARD"
	CategoryOther           DocumentCategory = "OTHER"
)

// DocumentStatus is the processing state. Soft deletion is orthogonal and
// tracked via DeletedAt, never as a status value.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "UPLOADED"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusQAReview   DocumentStatus = "QA_REVIEW"
	StatusCompleted  DocumentStatus = "COMPLETED"
	StatusRejected   DocumentStatus = "REJECTED"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalDenied   ApprovalStatus = "DENIED"
)

// DocumentSource records how a document came to exist.
type DocumentSource string

const (
	SourceUpload DocumentSource = "UPLOAD"
	SourceMerge  DocumentSource = "MERGE_OPERATION"
	SourceSplit  DocumentSource = "SPLIT_OPERATION"
)

type QAReviewStatus string

const (
	QAPassed          QAReviewStatus = "PASSED"
	QAFailed          QAReviewStatus = "FAILED"
	QANeedsCorrection QAReviewStatus = "NEEDS_CORRECTION"
)

// Document is one uploaded or derived file under processing. The blob bytes
// live in object storage; URL is a pointer, not ownership.
type Document struct {
	ID              snowflake.ID     `gorm:"primaryKey" json:"id"`
	Name            string           `gorm:"type:text;not null" json:"name"`
	Type            DocumentType     `gorm:"type:text;not null" json:"type"`
	Category        DocumentCategory `gorm:"type:text;not null;default:'OTHER'" json:"category"`
	Status          DocumentStatus   `gorm:"type:text;not null;index" json:"status"`
	ApprovalStatus  ApprovalStatus   `gorm:"type:text;not null;default:'PENDING'" json:"approval_status"`
	RejectionReason *string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	QAStatus        QAReviewStatus   `gorm:"type:text" json:"qa_status,omitempty"`
	URL             string           `gorm:"type:text;not null" json:"url"`
	Size            int64            `gorm:"not null;default:0" json:"size"`
	PageCount       int              `gorm:"not null;default:0" json:"page_count"`
	ExtractedText   *string          `gorm:"type:text" json:"extracted_text,omitempty"`
	Source          DocumentSource   `gorm:"type:text;not null;default:'UPLOAD'" json:"source"`
	// SourceDocumentIDs is the provenance link for merge/split outputs; the
	// referenced documents are never deleted automatically.
	SourceDocumentIDs datatypes.JSONSlice[snowflake.ID] `gorm:"type:jsonb" json:"source_document_ids,omitempty"`
	OrgID             snowflake.ID                      `gorm:"not null;index" json:"org_id"`
	UploaderID        snowflake.ID                      `gorm:"not null;index" json:"uploader_id"`
	AssignedToID      *snowflake.ID                     `gorm:"index" json:"assigned_to_id,omitempty"`
	OrderID           *snowflake.ID                     `gorm:"index" json:"order_id,omitempty"`
	DeletedAt         gorm.DeletedAt                    `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt         time.Time                         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time                         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "documents" }

// QualityReview holds the single active review for a document; outcomes are
// upserted by document ID, latest review wins.
type QualityReview struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	DocumentID snowflake.ID   `gorm:"not null;uniqueIndex:ux_quality_reviews_document" json:"document_id"`
	ReviewerID snowflake.ID   `gorm:"not null;index" json:"reviewer_id"`
	Status     QAReviewStatus `gorm:"type:text;not null" json:"status"`
	Score      int            `gorm:"not null" json:"score"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (QualityReview) TableName() string { return "quality_reviews" }
