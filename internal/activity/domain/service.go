package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/veridocs/veridocs/pkg/db/pagination"
)

type ListActivitiesRequest struct {
	pagination.Pagination
	DocumentID snowflake.ID
}

type ListActivitiesResponse struct {
	pagination.PageInfo
	Activities []DocumentActivity `json:"activities"`
}

type Service interface {
	// Record appends an entry. Failures are logged, never propagated; the
	// trail must not break the operation it describes.
	Record(ctx context.Context, documentID snowflake.ID, action, details string)
	List(ctx context.Context, req ListActivitiesRequest) (ListActivitiesResponse, error)
}

var (
	ErrInvalidDocument  = errors.New("invalid_document")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
