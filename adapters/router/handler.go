package pdfrouter

import (
	pdfapi "github.com/goliatone/go-pdf/adapters/api"
	"github.com/goliatone/go-pdf/pdf"
	"github.com/goliatone/go-router"
)

// Config configures the go-router adapter.
type Config = pdfapi.Config

// Handler exposes PDF routes for go-router.
type Handler struct {
	controller *pdfapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: pdfapi.NewController(cfg)}
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	base := h.basePath()

	r.Get(base+"/:view", h.Handle)
	r.Post(base, h.Handle)
	r.Post(base+"/", h.Handle)
}

// Handle executes the shared rendering workflow.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		pdfapi.WriteError(routerResponse{ctx: c}, pdf.NewError(pdf.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(routerRequest{ctx: c}, routerResponse{ctx: c})
	return nil
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return pdfapi.DefaultBasePath
	}
	return h.controller.BasePath()
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
