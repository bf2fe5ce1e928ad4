package pdfrouter

import (
	"bytes"
	"context"
	"io"

	pdfapi "github.com/goliatone/go-pdf/adapters/api"
	"github.com/goliatone/go-pdf/pdf"
	"github.com/goliatone/go-router"
)

var _ pdfapi.Response = routerResponse{}
var _ pdfapi.Request = routerRequest{}

// Download renders doc and sends it as an attachment.
func Download(c router.Context, doc *pdf.Document, filename string) error {
	if c == nil || doc == nil {
		return pdf.NewError(pdf.KindValidation, "context and document are required", nil)
	}
	return doc.Download(c.Context(), routerResponse{ctx: c}, filename)
}

// Stream renders doc and sends it inline.
func Stream(c router.Context, doc *pdf.Document, filename string) error {
	if c == nil || doc == nil {
		return pdf.NewError(pdf.KindValidation, "context and document are required", nil)
	}
	return doc.Stream(c.Context(), routerResponse{ctx: c}, filename)
}

type routerRequest struct {
	ctx router.Context
}

func (req routerRequest) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx.Context()
}

func (req routerRequest) Method() string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Method()
}

func (req routerRequest) Path() string {
	if req.ctx == nil {
		return ""
	}
	if httpCtx, ok := router.AsHTTPContext(req.ctx); ok {
		if httpReq := httpCtx.Request(); httpReq != nil && httpReq.URL != nil {
			return httpReq.URL.Path
		}
	}
	return req.ctx.Path()
}

func (req routerRequest) Header(name string) string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Header(name)
}

func (req routerRequest) Query(name string) string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Query(name)
}

func (req routerRequest) Queries() map[string]string {
	if req.ctx == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(req.ctx.Queries()))
	for key, value := range req.ctx.Queries() {
		out[key] = value
	}
	return out
}

func (req routerRequest) Body() io.ReadCloser {
	if req.ctx == nil {
		return nil
	}
	return io.NopCloser(bytes.NewReader(req.ctx.Body()))
}

// Response adapts c to the controller and document output helpers.
func Response(c router.Context) pdfapi.Response {
	return routerResponse{ctx: c}
}

type routerResponse struct {
	ctx router.Context
}

func (res routerResponse) SetHeader(name, value string) {
	if res.ctx == nil {
		return
	}
	res.ctx.SetHeader(name, value)
}

func (res routerResponse) WriteHeader(status int) {
	if res.ctx == nil {
		return
	}
	res.ctx.Status(status)
}

func (res routerResponse) Write(data []byte) (int, error) {
	if res.ctx == nil {
		return 0, nil
	}
	if err := res.ctx.Send(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (res routerResponse) WriteJSON(status int, payload any) error {
	if res.ctx == nil {
		return nil
	}
	return res.ctx.JSON(status, payload)
}
