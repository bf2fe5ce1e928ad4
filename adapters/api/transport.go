package pdfapi

import (
	"context"
	"io"
)

// Request provides the request data the controller reads.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Header(name string) string
	Query(name string) string
	Queries() map[string]string
	Body() io.ReadCloser
}

// Response provides a minimal response interface for transport adapters.
type Response interface {
	SetHeader(name, value string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
}

// RenderPayload is the JSON body accepted by POST {base}.
type RenderPayload struct {
	HTML        string         `json:"html,omitempty"`
	View        string         `json:"view,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Filename    string         `json:"filename,omitempty"`
	Disposition string         `json:"disposition,omitempty"`
	Title       string         `json:"title,omitempty"`
	Watermark   string         `json:"watermark,omitempty"`
	Config      *ConfigPayload `json:"config,omitempty"`
}

// ConfigPayload carries per-request configuration overrides.
type ConfigPayload struct {
	Format       string   `json:"format,omitempty"`
	Orientation  string   `json:"orientation,omitempty"`
	Direction    string   `json:"direction,omitempty"`
	MarginTop    *float64 `json:"margin_top,omitempty"`
	MarginRight  *float64 `json:"margin_right,omitempty"`
	MarginBottom *float64 `json:"margin_bottom,omitempty"`
	MarginLeft   *float64 `json:"margin_left,omitempty"`
}

// ErrorResponse describes JSON error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
