package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-pdf/adapters/engine"
	"github.com/goliatone/go-pdf/pdf"
	"gopkg.in/yaml.v3"
)

const (
	adapterRouter = "router"
	adapterFiber  = "fiber"
)

// Config is the server configuration file.
type Config struct {
	Server ServerConfig  `yaml:"server"`
	PDF    pdf.Config    `yaml:"pdf"`
	Engine engine.Config `yaml:"engine"`
	Views  ViewsConfig   `yaml:"views"`
	Store  StoreConfig   `yaml:"store"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	BasePath     string `yaml:"base_path"`
	AllowOrigins string `yaml:"allow_origins"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`

	// Adapter selects go-router ("router") or plain fiber ("fiber").
	Adapter string `yaml:"adapter"`
}

// ViewsConfig configures the view renderer.
type ViewsConfig struct {
	Dir    string `yaml:"dir"`
	Ext    string `yaml:"ext"`
	Engine string `yaml:"engine"`
}

// StoreConfig configures where saved documents go.
type StoreConfig struct {
	Root    string `yaml:"root"`
	BaseURL string `yaml:"base_url"`
}

// Defaults returns the server defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			BasePath:     "/pdf",
			Adapter:      adapterRouter,
			AllowOrigins: "*",
		},
		PDF:    pdf.Defaults(),
		Engine: engine.Config{Name: engine.NameChromium, Timeout: 30 * time.Second},
		Views:  ViewsConfig{Dir: "./views", Ext: ".html", Engine: "template"},
	}
}

// LoadConfig reads path over the defaults, then applies environment
// overrides. An empty path skips the file.
func LoadConfig(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, pdf.NewError(pdf.KindNotFound, fmt.Sprintf("config file %q", path), err)
		}
		var file Config
		if err := yaml.Unmarshal(content, &file); err != nil {
			return Config{}, pdf.NewError(pdf.KindValidation, "invalid config file", err)
		}
		cfg = mergeConfig(cfg, file)
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg = applyEnv(cfg, lookup)

	switch cfg.Server.Adapter {
	case adapterRouter, adapterFiber:
	default:
		return Config{}, pdf.NewError(pdf.KindValidation, fmt.Sprintf("unknown server adapter: %s", cfg.Server.Adapter), nil)
	}
	if err := cfg.PDF.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeConfig(base, file Config) Config {
	out := base
	if file.Server.Host != "" {
		out.Server.Host = file.Server.Host
	}
	if file.Server.Port != "" {
		out.Server.Port = file.Server.Port
	}
	if file.Server.BasePath != "" {
		out.Server.BasePath = file.Server.BasePath
	}
	if file.Server.Adapter != "" {
		out.Server.Adapter = strings.ToLower(file.Server.Adapter)
	}
	if file.Server.AllowOrigins != "" {
		out.Server.AllowOrigins = file.Server.AllowOrigins
	}
	if file.Server.MaxBodyBytes > 0 {
		out.Server.MaxBodyBytes = file.Server.MaxBodyBytes
	}

	out.PDF = pdf.MergeConfig(base.PDF, file.PDF)

	if file.Engine.Name != "" {
		out.Engine.Name = file.Engine.Name
	}
	if file.Engine.BrowserPath != "" {
		out.Engine.BrowserPath = file.Engine.BrowserPath
	}
	if file.Engine.Command != "" {
		out.Engine.Command = file.Engine.Command
	}
	if len(file.Engine.Args) > 0 {
		out.Engine.Args = file.Engine.Args
	}
	if len(file.Engine.Env) > 0 {
		out.Engine.Env = file.Engine.Env
	}
	if file.Engine.Timeout > 0 {
		out.Engine.Timeout = file.Engine.Timeout
	}
	if file.Engine.Headless != nil {
		out.Engine.Headless = file.Engine.Headless
	}
	if file.Engine.Scale > 0 {
		out.Engine.Scale = file.Engine.Scale
	}
	if file.Engine.MaxHTMLBytes > 0 {
		out.Engine.MaxHTMLBytes = file.Engine.MaxHTMLBytes
	}

	if file.Views.Dir != "" {
		out.Views.Dir = file.Views.Dir
	}
	if file.Views.Ext != "" {
		out.Views.Ext = file.Views.Ext
	}
	if file.Views.Engine != "" {
		out.Views.Engine = file.Views.Engine
	}
	if file.Store.Root != "" {
		out.Store.Root = file.Store.Root
	}
	if file.Store.BaseURL != "" {
		out.Store.BaseURL = file.Store.BaseURL
	}
	return out
}

func applyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	get := func(key string) string {
		value, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(value)
	}

	if port := get("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if host := get("HOST"); host != "" {
		cfg.Server.Host = host
	}
	if adapter := get("PDF_SERVER_ADAPTER"); adapter != "" {
		cfg.Server.Adapter = strings.ToLower(adapter)
	}
	if name := get("PDF_ENGINE"); name != "" {
		cfg.Engine.Name = name
	}
	if path := get("PDF_CHROMIUM_PATH"); path != "" {
		cfg.Engine.BrowserPath = path
	}
	if path := get("PDF_WKHTMLTOPDF_PATH"); path != "" {
		cfg.Engine.Command = path
	}
	if headless := get("PDF_HEADLESS"); headless != "" {
		if parsed, err := strconv.ParseBool(headless); err == nil {
			cfg.Engine.Headless = &parsed
		}
	}
	if args := get("PDF_CHROMIUM_ARGS"); args != "" {
		cfg.Engine.Args = splitCSV(args)
	}
	if timeout := get("PDF_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil && parsed > 0 {
			cfg.Engine.Timeout = parsed
		}
	}
	if dir := get("PDF_VIEWS_DIR"); dir != "" {
		cfg.Views.Dir = dir
	}
	if root := get("PDF_STORE_ROOT"); root != "" {
		cfg.Store.Root = root
	}

	cfg.PDF = pdf.ApplyEnv(cfg.PDF, lookup)
	return cfg
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
