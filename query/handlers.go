package query

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-pdf/pdf"
)

// InspectDocumentHandler returns document page information.
type InspectDocumentHandler struct{}

func NewInspectDocumentHandler() *InspectDocumentHandler {
	return &InspectDocumentHandler{}
}

func (h *InspectDocumentHandler) Query(ctx context.Context, msg InspectDocument) (pdf.DocumentInfo, error) {
	_ = ctx
	if err := msg.Validate(); err != nil {
		return pdf.DocumentInfo{}, err
	}
	data := msg.Data
	if msg.Path != "" {
		content, err := os.ReadFile(msg.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return pdf.DocumentInfo{}, pdf.NewError(pdf.KindNotFound, fmt.Sprintf("document %q not found", msg.Path), err)
			}
			return pdf.DocumentInfo{}, errors.Wrap(err, errors.CategoryExternal, "read document failed").
				WithTextCode("DOCUMENT_READ")
		}
		data = content
	}
	return pdf.Inspect(data)
}

// DocumentReader opens saved documents.
type DocumentReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, pdf.ArtifactMeta, error)
}

// StoredDocumentResult is a saved document with its metadata.
type StoredDocumentResult struct {
	Key  string
	Data []byte
	Meta pdf.ArtifactMeta
}

// StoredDocumentHandler reads saved documents.
type StoredDocumentHandler struct {
	Store DocumentReader
}

func NewStoredDocumentHandler(store DocumentReader) *StoredDocumentHandler {
	return &StoredDocumentHandler{Store: store}
}

func (h *StoredDocumentHandler) Query(ctx context.Context, msg StoredDocument) (StoredDocumentResult, error) {
	if h == nil || h.Store == nil {
		return StoredDocumentResult{}, errors.New("document store is required", errors.CategoryInternal).
			WithTextCode("STORE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return StoredDocumentResult{}, err
	}
	rc, meta, err := h.Store.Open(ctx, msg.Key)
	if err != nil {
		return StoredDocumentResult{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return StoredDocumentResult{}, errors.Wrap(err, errors.CategoryExternal, "read stored document failed").
			WithTextCode("DOCUMENT_READ")
	}
	return StoredDocumentResult{Key: msg.Key, Data: data, Meta: meta}, nil
}
