// Package engine merges and splits PDF byte streams with pdfcpu.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Engine operates on in-memory PDF buffers. pdfcpu's stable surface is
// file-based, so every operation round-trips through a private temp dir.
type Engine interface {
	Merge(ctx context.Context, inputs [][]byte) ([]byte, error)
	Split(ctx context.Context, input []byte) ([][]byte, error)
	PageCount(ctx context.Context, input []byte) (int, error)
}

var ErrMalformedPDF = errors.New("malformed_pdf")

type pdfcpuEngine struct {
	conf *model.Configuration
}

func NewEngine() Engine {
	conf := model.NewDefaultConfiguration()
	// Scanner output is frequently out of spec; relaxed validation accepts it.
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfcpuEngine{conf: conf}
}

func (e *pdfcpuEngine) Merge(ctx context.Context, inputs [][]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "veridocs-merge-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	inFiles := make([]string, 0, len(inputs))
	for i, input := range inputs {
		path := filepath.Join(dir, fmt.Sprintf("in_%d.pdf", i))
		if err := os.WriteFile(path, input, 0o600); err != nil {
			return nil, err
		}
		inFiles = append(inFiles, path)
	}

	outFile := filepath.Join(dir, "merged.pdf")
	if err := api.MergeCreateFile(inFiles, outFile, false, e.conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPDF, err)
	}
	return os.ReadFile(outFile)
}

func (e *pdfcpuEngine) Split(ctx context.Context, input []byte) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "veridocs-split-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	inFile := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(inFile, input, 0o600); err != nil {
		return nil, err
	}

	pageCount, err := api.PageCountFile(inFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPDF, err)
	}

	outDir := filepath.Join(dir, "pages")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return nil, err
	}
	if err := api.SplitFile(inFile, outDir, 1, e.conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPDF, err)
	}

	// SplitFile names single-page outputs <base>_<page>.pdf, 1-based.
	pages := make([][]byte, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page, err := os.ReadFile(filepath.Join(outDir, fmt.Sprintf("source_%d.pdf", i)))
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (e *pdfcpuEngine) PageCount(ctx context.Context, input []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dir, err := os.MkdirTemp("", "veridocs-count-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	inFile := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(inFile, input, 0o600); err != nil {
		return 0, err
	}

	count, err := api.PageCountFile(inFile)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedPDF, err)
	}
	return count, nil
}
