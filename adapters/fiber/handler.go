package pdffiber

import (
	"github.com/gofiber/fiber/v2"
	pdfapi "github.com/goliatone/go-pdf/adapters/api"
	"github.com/goliatone/go-pdf/pdf"
)

// Config configures the fiber adapter.
type Config = pdfapi.Config

// Handler exposes PDF routes for fiber.
type Handler struct {
	controller *pdfapi.Controller
}

// NewHandler creates a fiber handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: pdfapi.NewController(cfg)}
}

// RegisterRoutes registers the view and render routes on r.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	base := pdfapi.DefaultBasePath
	if h != nil && h.controller != nil {
		base = h.controller.BasePath()
	}
	r.Get(base+"/:view", h.Handle)
	r.Post(base, h.Handle)
}

// Handle executes the shared rendering workflow.
func (h *Handler) Handle(c *fiber.Ctx) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		pdfapi.WriteError(fiberResponse{ctx: c}, pdf.NewError(pdf.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(fiberRequest{ctx: c}, fiberResponse{ctx: c})
	return nil
}

// Download renders doc and sends it as an attachment.
func Download(c *fiber.Ctx, doc *pdf.Document, filename string) error {
	if c == nil || doc == nil {
		return pdf.NewError(pdf.KindValidation, "context and document are required", nil)
	}
	return doc.Download(c.UserContext(), fiberResponse{ctx: c}, filename)
}

// Stream renders doc and sends it inline.
func Stream(c *fiber.Ctx, doc *pdf.Document, filename string) error {
	if c == nil || doc == nil {
		return pdf.NewError(pdf.KindValidation, "context and document are required", nil)
	}
	return doc.Stream(c.UserContext(), fiberResponse{ctx: c}, filename)
}
