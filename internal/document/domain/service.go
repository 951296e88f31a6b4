package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/veridocs/veridocs/pkg/db/pagination"
)

// Sampler decides whether a submitted document is routed to QA review.
// Injectable so tests can force both branches.
type Sampler func(rate float64) bool

type CreateDocumentRequest struct {
	Name      string           `json:"name"`
	Type      DocumentType     `json:"type"`
	Category  DocumentCategory `json:"category"`
	URL       string           `json:"url"`
	Size      int64            `json:"size"`
	PageCount int              `json:"page_count"`
}

type ApplyQAOutcomeRequest struct {
	DocumentID snowflake.ID   `json:"document_id"`
	ReviewerID snowflake.ID   `json:"reviewer_id"`
	Outcome    QAReviewStatus `json:"outcome"`
	Score      int            `json:"score"`
	Notes      string         `json:"notes"`
}

type ListByStatusRequest struct {
	Status DocumentStatus
	// OrgID scopes the listing when nonzero.
	OrgID snowflake.ID
}

type ListByOrganizationRequest struct {
	pagination.Pagination
	OrgID snowflake.ID
}

type ListDocumentsResponse struct {
	pagination.PageInfo
	Documents []Document `json:"documents"`
}

type Service interface {
	Create(ctx context.Context, req CreateDocumentRequest) (*Document, error)
	Get(ctx context.Context, id snowflake.ID) (*Document, error)
	ListByStatus(ctx context.Context, req ListByStatusRequest) ([]Document, error)
	ListByOrganization(ctx context.Context, req ListByOrganizationRequest) (ListDocumentsResponse, error)
	ListDeleted(ctx context.Context, orgID snowflake.ID) ([]Document, error)

	// Assign claims a document for an operator. Exactly one concurrent caller
	// wins; the loser gets ErrInvalidTransition.
	Assign(ctx context.Context, documentID, operatorID snowflake.ID) error
	// Release returns a claimed document to the pool.
	Release(ctx context.Context, documentID, operatorID snowflake.ID) error
	// SubmitForReview moves a PROCESSING document to QA_REVIEW when sampled,
	// otherwise straight to COMPLETED. Returns the resulting status.
	SubmitForReview(ctx context.Context, documentID snowflake.ID) (DocumentStatus, error)
	ApplyQAOutcome(ctx context.Context, req ApplyQAOutcomeRequest) error

	UpdateCategory(ctx context.Context, id snowflake.ID, category DocumentCategory) error
	UpdateApprovalStatus(ctx context.Context, id snowflake.ID, status ApprovalStatus, reason string) error

	SoftDelete(ctx context.Context, id snowflake.ID) error
	Restore(ctx context.Context, id snowflake.ID) error
	// Purge removes the record irreversibly and returns the blob URL; deleting
	// the blob itself is the caller's explicit follow-up step.
	Purge(ctx context.Context, id snowflake.ID) (string, error)
}

var (
	ErrDocumentNotFound    = errors.New("document_not_found")
	ErrDocumentDeleted     = errors.New("document_deleted")
	ErrDocumentNotDeleted  = errors.New("document_not_deleted")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidUploader     = errors.New("invalid_uploader")
	ErrInvalidOperator     = errors.New("invalid_operator")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidOutcome      = errors.New("invalid_outcome")
	ErrInvalidScore        = errors.New("invalid_score")
	ErrInvalidCategory     = errors.New("invalid_category")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrInsufficientCredits = errors.New("insufficient_credits")
)

// InvalidTransitionError reports the state pair of a rejected transition so
// callers can render an actionable message. errors.Is matches
// ErrInvalidTransition.
type InvalidTransitionError struct {
	Current   DocumentStatus
	Requested DocumentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid_transition: %s -> %s", e.Current, e.Requested)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewInvalidTransition builds the typed transition error.
func NewInvalidTransition(current, requested DocumentStatus) error {
	return &InvalidTransitionError{Current: current, Requested: requested}
}
