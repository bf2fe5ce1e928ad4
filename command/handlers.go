package command

import (
	"context"
	"strings"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-pdf/pdf"
)

// RenderDocumentHandler renders documents through a factory.
type RenderDocumentHandler struct {
	Factory *pdf.Factory
}

func NewRenderDocumentHandler(factory *pdf.Factory) *RenderDocumentHandler {
	return &RenderDocumentHandler{Factory: factory}
}

func (h *RenderDocumentHandler) Execute(ctx context.Context, msg RenderDocument) error {
	if h == nil || h.Factory == nil {
		return errors.New("pdf factory is required", errors.CategoryInternal).
			WithTextCode("FACTORY_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	doc, err := h.load(ctx, msg)
	if err != nil {
		return err
	}
	if msg.Watermark != "" {
		doc.SetWatermarkText(msg.Watermark).ShowWatermark(true)
	}

	result := RenderResult{DocumentID: doc.ID(), Filename: doc.Filename()}
	if msg.Filename != "" {
		out, err := doc.Output(ctx, msg.Filename, pdf.DestinationFile, nil)
		if err != nil {
			return err
		}
		result.Filename = out.Filename
		result.Location = out.Location
		result.Data = out.Data
	} else {
		data, err := doc.Embed(ctx, "")
		if err != nil {
			return err
		}
		result.Data = data
	}
	if info, err := pdf.Inspect(result.Data); err == nil {
		result.Pages = info.Pages
	}

	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[RenderResult](ctx); res != nil {
		res.Store(result)
	}
	return nil
}

func (h *RenderDocumentHandler) load(ctx context.Context, msg RenderDocument) (*pdf.Document, error) {
	switch {
	case strings.TrimSpace(msg.View) != "":
		return h.Factory.LoadView(ctx, msg.View, msg.Data, nil, msg.Config)
	case strings.TrimSpace(msg.File) != "":
		return h.Factory.LoadFile(msg.File, msg.Config)
	default:
		return h.Factory.LoadHTML(msg.HTML, msg.Config)
	}
}
