package query

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-pdf/pdf"
)

type stubReader struct {
	data   []byte
	meta   pdf.ArtifactMeta
	err    error
	closed bool
}

func (r *stubReader) Open(ctx context.Context, key string) (io.ReadCloser, pdf.ArtifactMeta, error) {
	_ = ctx
	if r.err != nil {
		return nil, pdf.ArtifactMeta{}, r.err
	}
	meta := r.meta
	meta.Filename = key
	return closeTracker{Reader: bytes.NewReader(r.data), closed: &r.closed}, meta, nil
}

type closeTracker struct {
	io.Reader
	closed *bool
}

func (c closeTracker) Close() error {
	*c.closed = true
	return nil
}

func textCode(err error) string {
	var ge *errors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

func TestInspectDocument_Validate(t *testing.T) {
	cases := []struct {
		name string
		msg  InspectDocument
		code string
	}{
		{name: "path", msg: InspectDocument{Path: "out.pdf"}},
		{name: "data", msg: InspectDocument{Data: []byte("%PDF")}},
		{name: "empty", msg: InspectDocument{}, code: "SOURCE_REQUIRED"},
		{name: "both", msg: InspectDocument{Path: "out.pdf", Data: []byte("%PDF")}, code: "SOURCE_AMBIGUOUS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textCode(tc.msg.Validate()); got != tc.code {
				t.Fatalf("expected %q, got %q", tc.code, got)
			}
		})
	}
}

func TestInspectDocumentHandler(t *testing.T) {
	handler := NewInspectDocumentHandler()

	_, err := handler.Query(context.Background(), InspectDocument{Path: filepath.Join(t.TempDir(), "missing.pdf")})
	if pdf.KindFromError(err) != pdf.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	garbage := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(garbage, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = handler.Query(context.Background(), InspectDocument{Path: garbage})
	if pdf.KindFromError(err) != pdf.KindValidation {
		t.Fatalf("expected validation error for malformed document, got %v", err)
	}

	if _, err := handler.Query(context.Background(), InspectDocument{}); textCode(err) != "SOURCE_REQUIRED" {
		t.Fatalf("expected SOURCE_REQUIRED, got %v", err)
	}
}

func TestStoredDocumentHandler(t *testing.T) {
	reader := &stubReader{data: []byte("%PDF-1.4 stored"), meta: pdf.ArtifactMeta{DocumentID: "doc-1", Pages: 2}}
	handler := NewStoredDocumentHandler(reader)

	got, err := handler.Query(context.Background(), StoredDocument{Key: "reports/q1.pdf"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	meta := got.Meta
	if meta.DocumentID != "doc-1" || meta.Pages != 2 || meta.Filename != "reports/q1.pdf" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if got.Key != "reports/q1.pdf" || string(got.Data) != "%PDF-1.4 stored" {
		t.Fatalf("unexpected document %q %q", got.Key, got.Data)
	}
	if !reader.closed {
		t.Fatalf("expected reader closed")
	}

	reader.err = pdf.NewError(pdf.KindNotFound, "missing", nil)
	if _, err := handler.Query(context.Background(), StoredDocument{Key: "nope.pdf"}); pdf.KindFromError(err) != pdf.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := handler.Query(context.Background(), StoredDocument{}); textCode(err) != "KEY_REQUIRED" {
		t.Fatalf("expected KEY_REQUIRED, got %v", err)
	}

	var nilHandler *StoredDocumentHandler
	if _, err := nilHandler.Query(context.Background(), StoredDocument{Key: "x"}); textCode(err) != "STORE_REQUIRED" {
		t.Fatalf("expected STORE_REQUIRED, got %v", err)
	}
}
