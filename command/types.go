package command

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-pdf/pdf"
)

// RenderDocument renders one document from HTML, an HTML file or a view.
// With a Filename the document is saved; without one the bytes are returned
// in the result.
type RenderDocument struct {
	HTML      string         `yaml:"html"`
	File      string         `yaml:"file"`
	View      string         `yaml:"view"`
	Data      map[string]any `yaml:"data"`
	Filename  string         `yaml:"filename"`
	Watermark string         `yaml:"watermark"`
	Config    pdf.Config     `yaml:"config"`
	Result    *RenderResult  `yaml:"-"`
}

// RenderResult describes a rendered document.
type RenderResult struct {
	DocumentID string
	Filename   string
	Location   string
	Pages      int
	Data       []byte
}

func (RenderDocument) Type() string { return "pdf:render" }

func (msg RenderDocument) Validate() error {
	sources := 0
	for _, value := range []string{msg.HTML, msg.File, msg.View} {
		if strings.TrimSpace(value) != "" {
			sources++
		}
	}
	if sources == 0 {
		return errors.New("html, file or view is required", errors.CategoryValidation).
			WithTextCode("SOURCE_REQUIRED")
	}
	if sources > 1 {
		return errors.New("only one of html, file or view may be set", errors.CategoryValidation).
			WithTextCode("SOURCE_AMBIGUOUS")
	}
	if err := msg.Config.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid document config").
			WithTextCode("CONFIG_INVALID")
	}
	return nil
}
