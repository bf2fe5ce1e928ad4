package pdf

import (
	"context"
	"errors"
	"io"
)

// Destination selects where Output sends the rendered document.
type Destination string

const (
	DestinationString   Destination = "S"
	DestinationFile     Destination = "F"
	DestinationDownload Destination = "D"
	DestinationInline   Destination = "I"
)

// ExternalAssetsPolicy controls how external assets are handled by engines.
type ExternalAssetsPolicy string

const (
	ExternalAssetsUnspecified ExternalAssetsPolicy = ""
	ExternalAssetsAllow       ExternalAssetsPolicy = "allow"
	ExternalAssetsBlock       ExternalAssetsPolicy = "block"
)

// PageOptions is the engine-facing page setup derived from Config.
// Lengths are in millimetres.
type PageOptions struct {
	PaperWidth           float64
	PaperHeight          float64
	Landscape            bool
	MarginTop            float64
	MarginBottom         float64
	MarginLeft           float64
	MarginRight          float64
	MarginHeader         float64
	MarginFooter         float64
	Scale                float64
	PrintBackground      bool
	PreferCSSPageSize    bool
	BaseURL              string
	ExternalAssetsPolicy ExternalAssetsPolicy
}

// RenderRequest contains HTML input and page options for PDF engines.
type RenderRequest struct {
	DocumentID string
	Title      string
	HTML       []byte
	Page       PageOptions
}

// Engine renders HTML content into PDF bytes.
type Engine interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf engine func is nil")
	}
	return f(ctx, req)
}

// ViewRenderer renders a named view into HTML.
type ViewRenderer interface {
	RenderView(ctx context.Context, name string, data map[string]any, w io.Writer) error
}

// ViewRendererFunc adapts a function to a ViewRenderer.
type ViewRendererFunc func(ctx context.Context, name string, data map[string]any, w io.Writer) error

func (f ViewRendererFunc) RenderView(ctx context.Context, name string, data map[string]any, w io.Writer) error {
	if f == nil {
		return errors.New("view renderer func is nil")
	}
	return f(ctx, name, data, w)
}

// Htmlable is implemented by values that know how to present themselves as HTML.
type Htmlable interface {
	ToHTML() (string, error)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
