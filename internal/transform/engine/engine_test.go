package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

// makePDF builds a minimal N-page PDF with a correct xref table.
func makePDF(t *testing.T, pages int) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 0, pages+2)

	offsets = append(offsets, buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	offsets = append(offsets, buf.Len())
	buf.WriteString(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pages))

	for i := 0; i < pages; i++ {
		offsets = append(offsets, buf.Len())
		buf.WriteString(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", i+3))
	}

	xrefPos := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefPos))

	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	eng := NewEngine()
	ctx := context.Background()

	for _, pages := range []int{1, 3, 7} {
		got, err := eng.PageCount(ctx, makePDF(t, pages))
		if err != nil {
			t.Fatalf("PageCount(%d pages): %v", pages, err)
		}
		if got != pages {
			t.Fatalf("expected %d pages, got %d", pages, got)
		}
	}
}

func TestPageCountMalformed(t *testing.T) {
	eng := NewEngine()

	_, err := eng.PageCount(context.Background(), []byte("not a pdf"))
	if !errors.Is(err, ErrMalformedPDF) {
		t.Fatalf("expected ErrMalformedPDF, got %v", err)
	}
}

func TestMergeConcatenatesPages(t *testing.T) {
	eng := NewEngine()
	ctx := context.Background()

	merged, err := eng.Merge(ctx, [][]byte{makePDF(t, 2), makePDF(t, 3)})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	count, err := eng.PageCount(ctx, merged)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 pages, got %d", count)
	}
}

func TestSplitYieldsSinglePages(t *testing.T) {
	eng := NewEngine()
	ctx := context.Background()

	pages, err := eng.Split(ctx, makePDF(t, 4))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(pages) != 4 {
		t.Fatalf("expected 4 outputs, got %d", len(pages))
	}
	for i, page := range pages {
		count, err := eng.PageCount(ctx, page)
		if err != nil {
			t.Fatalf("PageCount page %d: %v", i+1, err)
		}
		if count != 1 {
			t.Fatalf("expected page %d to be single-page, got %d", i+1, count)
		}
	}
}

func TestSplitMalformed(t *testing.T) {
	eng := NewEngine()

	_, err := eng.Split(context.Background(), []byte("garbage"))
	if !errors.Is(err, ErrMalformedPDF) {
		t.Fatalf("expected ErrMalformedPDF, got %v", err)
	}
}
