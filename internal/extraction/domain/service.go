// Package domain defines the OCR extraction contract and its result schema.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// StructuredFields is the fixed schema of financial fields the extraction
// service may return. Absent fields stay nil, never zero values, so
// downstream aggregation cannot mistake "missing" for "zero".
type StructuredFields struct {
	InvoiceNumber *string  `json:"invoice_number"`
	InvoiceDate   *string  `json:"invoice_date"`
	DueDate       *string  `json:"due_date"`
	VendorName    *string  `json:"vendor_name"`
	CustomerName  *string  `json:"customer_name"`
	TotalAmount   *float64 `json:"total_amount"`
	Currency      *string  `json:"currency"`
}

// Result is one extraction outcome.
type Result struct {
	RawText string           `json:"raw_text"`
	Fields  StructuredFields `json:"structured_data"`
}

type Service interface {
	// Extract sends the document bytes to the extraction service and applies
	// the result back onto the record. The record update is best-effort: a
	// failed write is logged and the result still returned.
	Extract(ctx context.Context, documentID snowflake.ID) (*Result, error)
}

var (
	ErrExtractionService = errors.New("extraction_service_error")
	ErrExtractionTimeout = errors.New("extraction_timeout")
)
