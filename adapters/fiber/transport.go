package pdffiber

import (
	"bytes"
	"context"
	"io"

	"github.com/gofiber/fiber/v2"
	pdfapi "github.com/goliatone/go-pdf/adapters/api"
)

var _ pdfapi.Response = fiberResponse{}
var _ pdfapi.Request = fiberRequest{}

type fiberRequest struct {
	ctx *fiber.Ctx
}

func (req fiberRequest) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx.UserContext()
}

func (req fiberRequest) Method() string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Method()
}

func (req fiberRequest) Path() string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Path()
}

func (req fiberRequest) Header(name string) string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Get(name)
}

func (req fiberRequest) Query(name string) string {
	if req.ctx == nil {
		return ""
	}
	return req.ctx.Query(name)
}

func (req fiberRequest) Queries() map[string]string {
	if req.ctx == nil {
		return map[string]string{}
	}
	return req.ctx.Queries()
}

func (req fiberRequest) Body() io.ReadCloser {
	if req.ctx == nil {
		return nil
	}
	// fasthttp reuses the request buffer once the handler returns.
	body := append([]byte(nil), req.ctx.Body()...)
	return io.NopCloser(bytes.NewReader(body))
}

// Response adapts c to the controller and document output helpers.
func Response(c *fiber.Ctx) pdfapi.Response {
	return fiberResponse{ctx: c}
}

type fiberResponse struct {
	ctx *fiber.Ctx
}

func (res fiberResponse) SetHeader(name, value string) {
	if res.ctx == nil {
		return
	}
	res.ctx.Set(name, value)
}

func (res fiberResponse) WriteHeader(status int) {
	if res.ctx == nil {
		return
	}
	res.ctx.Status(status)
}

func (res fiberResponse) Write(data []byte) (int, error) {
	if res.ctx == nil {
		return 0, nil
	}
	return res.ctx.Write(data)
}

func (res fiberResponse) WriteJSON(status int, payload any) error {
	if res.ctx == nil {
		return nil
	}
	return res.ctx.Status(status).JSON(payload)
}
