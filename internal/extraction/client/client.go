// Package client talks to the external OCR/AI extraction service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/veridocs/veridocs/internal/config"
	extractiondomain "github.com/veridocs/veridocs/internal/extraction/domain"
	"go.uber.org/zap"
)

// Client is the HTTP boundary to the extraction service. One call, no
// retries; retry policy belongs to the operator re-triggering extraction.
type Client interface {
	Process(ctx context.Context, filename string, data []byte) (*extractiondomain.Result, error)
}

type httpClient struct {
	log     *zap.Logger
	client  *http.Client
	baseURL string
}

func NewClient(cfg config.Config, log *zap.Logger) Client {
	return &httpClient{
		log:     log.Named("extraction.client"),
		client:  &http.Client{Timeout: cfg.ExtractionTimeout},
		baseURL: cfg.ExtractionURL,
	}
}

func (c *httpClient) Process(ctx context.Context, filename string, data []byte) (*extractiondomain.Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", extractiondomain.ErrExtractionTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", extractiondomain.ErrExtractionService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("extraction service returned failure",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet),
		)
		return nil, fmt.Errorf("%w: status %d", extractiondomain.ErrExtractionService, resp.StatusCode)
	}

	var result extractiondomain.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", extractiondomain.ErrExtractionService, err)
	}
	return &result, nil
}

func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
