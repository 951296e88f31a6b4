// Package domain defines the merge/split contract over stored documents.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	documentdomain "github.com/veridocs/veridocs/internal/document/domain"
)

type MergeRequest struct {
	// DocumentIDs defines final page order and is preserved exactly.
	DocumentIDs []snowflake.ID `json:"document_ids"`
	RequesterID snowflake.ID   `json:"requester_id"`
	Name        string         `json:"name"`
}

type Service interface {
	// MergeDocuments concatenates the sources into one new document. Sources
	// are left untouched.
	MergeDocuments(ctx context.Context, req MergeRequest) (*documentdomain.Document, error)
	// SplitDocument produces one new single-page document per source page.
	SplitDocument(ctx context.Context, documentID snowflake.ID) ([]documentdomain.Document, error)
}

var (
	ErrInsufficientInputs = errors.New("insufficient_inputs")
	ErrSinglePageDocument = errors.New("single_page_document")
	ErrMixedOrganizations = errors.New("mixed_organizations")
)
