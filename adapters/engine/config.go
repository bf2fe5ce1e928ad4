package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-pdf/pdf"
)

const (
	NameChromium    = "chromium"
	NameWKHTMLTOPDF = "wkhtmltopdf"
)

// Config selects and configures an engine.
type Config struct {
	Name         string        `yaml:"name"`
	BrowserPath  string        `yaml:"browser_path"`
	Command      string        `yaml:"command"`
	Args         []string      `yaml:"args"`
	Env          []string      `yaml:"env"`
	Timeout      time.Duration `yaml:"timeout"`
	Headless     *bool         `yaml:"headless"`
	Scale        float64       `yaml:"scale"`
	MaxHTMLBytes int64         `yaml:"max_html_bytes"`
}

// FromConfig builds the engine named by cfg.Name, defaulting to Chromium.
func FromConfig(cfg Config, logger pdf.Logger) (RenderCloser, error) {
	var engine RenderCloser
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "", NameChromium, "chrome", "chromedp":
		headless := true
		if cfg.Headless != nil {
			headless = *cfg.Headless
		}
		engine = &ChromiumEngine{
			BrowserPath: cfg.BrowserPath,
			Headless:    headless,
			Timeout:     cfg.Timeout,
			Args:        cfg.Args,
			Scale:       cfg.Scale,
			Logger:      logger,
		}
	case NameWKHTMLTOPDF:
		engine = WKHTMLTOPDFEngine{
			Command: cfg.Command,
			Args:    cfg.Args,
			Env:     cfg.Env,
			Timeout: cfg.Timeout,
		}
	default:
		return nil, pdf.NewError(pdf.KindValidation, fmt.Sprintf("unknown pdf engine: %s", cfg.Name), nil)
	}
	return Limit(engine, cfg.MaxHTMLBytes), nil
}
