package pdfhttp

import (
	"net/http"

	pdfapi "github.com/goliatone/go-pdf/adapters/api"
	"github.com/goliatone/go-pdf/pdf"
)

// Config configures the HTTP adapter.
type Config = pdfapi.Config

// Handler exposes PDF rendering endpoints over net/http.
type Handler struct {
	controller *pdfapi.Controller
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: pdfapi.NewController(cfg)}
}

// RegisterRoutes registers handlers on a compatible router.
func (h *Handler) RegisterRoutes(router any) {
	switch r := router.(type) {
	case interface{ Handle(string, http.Handler) }:
		r.Handle(h.basePath(), h)
		r.Handle(h.basePath()+"/", h)
	case interface {
		HandleFunc(string, func(http.ResponseWriter, *http.Request))
	}:
		r.HandleFunc(h.basePath(), h.ServeHTTP)
		r.HandleFunc(h.basePath()+"/", h.ServeHTTP)
	}
}

// ServeHTTP routes PDF endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	if h == nil || h.controller == nil {
		pdfapi.WriteError(httpResponse{w: w}, pdf.NewError(pdf.KindInternal, "handler is nil", nil))
		return
	}
	h.controller.Serve(httpRequest{r: r}, httpResponse{w: w})
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return pdfapi.DefaultBasePath
	}
	return h.controller.BasePath()
}
