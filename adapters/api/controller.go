package pdfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-pdf/pdf"
)

const (
	// DefaultBasePath is used when Config.BasePath is empty.
	DefaultBasePath = "/pdf"

	// DefaultMaxBodyBytes bounds POST bodies.
	DefaultMaxBodyBytes int64 = 4 * 1024 * 1024
)

var reservedQuery = map[string]struct{}{
	"disposition": {},
	"filename":    {},
}

// Config configures the shared controller.
type Config struct {
	Factory      *pdf.Factory
	BasePath     string
	Logger       pdf.Logger
	MaxBodyBytes int64
}

// Controller exposes PDF rendering for multiple transports.
type Controller struct {
	factory      *pdf.Factory
	basePath     string
	logger       pdf.Logger
	maxBodyBytes int64
}

// NewController creates a shared controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pdf.NopLogger{}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Controller{
		factory:      cfg.Factory,
		basePath:     basePath,
		logger:       logger,
		maxBodyBytes: maxBody,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes PDF endpoints.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, pdf.NewError(pdf.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, pdf.NewError(pdf.KindInternal, "request is nil", nil))
		return
	}
	path := req.Path()
	if path != c.basePath && !strings.HasPrefix(path, c.basePath+"/") {
		writeNotFound(res)
		return
	}

	suffix := strings.Trim(strings.TrimPrefix(path, c.basePath), "/")

	switch req.Method() {
	case http.MethodGet:
		if suffix == "" || strings.Contains(suffix, "/") {
			writeNotFound(res)
			return
		}
		c.RenderView(req, res, suffix)
	case http.MethodPost:
		if suffix != "" {
			writeNotFound(res)
			return
		}
		c.RenderPost(req, res)
	default:
		res.SetHeader("Allow", "GET,POST")
		res.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RenderView renders view with the query parameters as data.
func (c *Controller) RenderView(req Request, res Response, view string) {
	if c.factory == nil {
		WriteError(res, pdf.NewError(pdf.KindNotImpl, "pdf factory not configured", nil))
		return
	}
	data := map[string]any{}
	for key, value := range req.Queries() {
		if _, reserved := reservedQuery[key]; reserved {
			continue
		}
		data[key] = value
	}

	ctx := requestContext(req)
	doc, err := c.factory.LoadView(ctx, view, data, nil)
	if err != nil {
		WriteError(res, err)
		return
	}
	filename := req.Query("filename")
	if filename == "" {
		filename = view + ".pdf"
	}
	c.write(ctx, res, doc, filename, req.Query("disposition"))
}

// RenderPost renders a JSON payload or a raw HTML body.
func (c *Controller) RenderPost(req Request, res Response) {
	if c.factory == nil {
		WriteError(res, pdf.NewError(pdf.KindNotImpl, "pdf factory not configured", nil))
		return
	}
	body, err := c.readBody(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	payload := RenderPayload{}
	mediaType, _, _ := mime.ParseMediaType(req.Header("Content-Type"))
	switch mediaType {
	case "text/html":
		payload.HTML = string(body)
	case "", "application/json":
		if err := json.Unmarshal(body, &payload); err != nil {
			WriteError(res, pdf.NewError(pdf.KindValidation, "invalid request body", err))
			return
		}
	default:
		WriteError(res, pdf.NewError(pdf.KindValidation, fmt.Sprintf("unsupported content type %q", mediaType), nil))
		return
	}
	if q := req.Query("filename"); q != "" && payload.Filename == "" {
		payload.Filename = q
	}
	if q := req.Query("disposition"); q != "" && payload.Disposition == "" {
		payload.Disposition = q
	}

	ctx := requestContext(req)
	doc, err := c.documentFor(ctx, payload)
	if err != nil {
		WriteError(res, err)
		return
	}
	c.write(ctx, res, doc, payload.Filename, payload.Disposition)
}

func (c *Controller) documentFor(ctx context.Context, payload RenderPayload) (*pdf.Document, error) {
	if strings.TrimSpace(payload.HTML) == "" && strings.TrimSpace(payload.View) == "" {
		return nil, pdf.NewError(pdf.KindValidation, "html or view is required", nil)
	}
	override := pdf.Config{Title: payload.Title}
	if cfg := payload.Config; cfg != nil {
		override.Format = cfg.Format
		override.Orientation = cfg.Orientation
		override.Direction = cfg.Direction
		override.MarginTop = cfg.MarginTop
		override.MarginRight = cfg.MarginRight
		override.MarginLeft = cfg.MarginLeft
		override.MarginBottom = cfg.MarginBottom
	}

	doc, err := c.factory.New(override)
	if err != nil {
		return nil, err
	}
	if payload.View != "" {
		if err := doc.LoadView(ctx, payload.View, payload.Data, nil); err != nil {
			return nil, err
		}
	}
	if payload.HTML != "" {
		if err := doc.LoadHTML(payload.HTML); err != nil {
			return nil, err
		}
	}
	if payload.Watermark != "" {
		doc.SetWatermarkText(payload.Watermark).ShowWatermark(true)
	}
	return doc, nil
}

func (c *Controller) write(ctx context.Context, res Response, doc *pdf.Document, filename, disposition string) {
	var err error
	switch strings.ToLower(strings.TrimSpace(disposition)) {
	case "", "inline":
		err = doc.Stream(ctx, res, filename)
	case "attachment", "download":
		err = doc.Download(ctx, res, filename)
	default:
		err = pdf.NewError(pdf.KindValidation, fmt.Sprintf("unsupported disposition %q", disposition), nil)
	}
	if err != nil {
		c.logger.Errorf("pdfapi: document %s failed: %v", doc.ID(), err)
		WriteError(res, err)
	}
}

func (c *Controller) readBody(req Request) ([]byte, error) {
	body := req.Body()
	if body == nil {
		return nil, pdf.NewError(pdf.KindValidation, "request body is required", nil)
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, c.maxBodyBytes+1))
	if err != nil {
		return nil, pdf.NewError(pdf.KindValidation, "read request body", err)
	}
	if int64(len(data)) > c.maxBodyBytes {
		return nil, pdf.NewError(pdf.KindValidation, "request body too large", nil)
	}
	return data, nil
}

func requestContext(req Request) context.Context {
	if ctx := req.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// WriteError writes a JSON error response using the go-errors mapping.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := pdf.AsGoError(err)
	payload := ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	}
	_ = res.WriteJSON(StatusForError(ge), payload)
}

// StatusForError maps a go-errors error to an HTTP status.
func StatusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.TextCode {
	case "not_implemented":
		return http.StatusNotImplemented
	case "config_missing":
		return http.StatusInternalServerError
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeNotFound(res Response) {
	WriteError(res, pdf.NewError(pdf.KindNotFound, "not found", nil))
}
