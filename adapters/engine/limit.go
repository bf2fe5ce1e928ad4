package engine

import (
	"context"
	"fmt"

	"github.com/goliatone/go-pdf/pdf"
)

// DefaultMaxHTMLBytes guards the HTML size handed to an engine.
const DefaultMaxHTMLBytes int64 = 8 * 1024 * 1024

// RenderCloser is an engine holding resources that must be released.
type RenderCloser interface {
	pdf.Engine
	Close() error
}

// Limit rejects requests whose HTML exceeds maxBytes before calling next.
func Limit(next RenderCloser, maxBytes int64) RenderCloser {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxHTMLBytes
	}
	return limitedEngine{next: next, maxBytes: maxBytes}
}

type limitedEngine struct {
	next     RenderCloser
	maxBytes int64
}

func (e limitedEngine) Render(ctx context.Context, req pdf.RenderRequest) ([]byte, error) {
	if size := int64(len(req.HTML)); size > e.maxBytes {
		return nil, pdf.NewError(pdf.KindValidation, fmt.Sprintf("html is %d bytes, limit is %d", size, e.maxBytes), nil)
	}
	return e.next.Render(ctx, req)
}

func (e limitedEngine) Close() error {
	return e.next.Close()
}
