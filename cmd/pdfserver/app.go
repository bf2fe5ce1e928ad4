package main

import (
	"strings"

	"github.com/goliatone/go-pdf/adapters/engine"
	storefs "github.com/goliatone/go-pdf/adapters/store/fs"
	"github.com/goliatone/go-pdf/adapters/view"
	"github.com/goliatone/go-pdf/pdf"
)

// App holds the PDF services shared by every route.
type App struct {
	Config  Config
	Factory *pdf.Factory
	Engine  engine.RenderCloser
	Store   *storefs.Store
	Logger  pdf.Logger
}

// NewApp wires the engine, views, store and factory from cfg.
func NewApp(cfg Config, logger pdf.Logger) (*App, error) {
	if logger == nil {
		logger = pdf.NopLogger{}
	}
	renderer, err := engine.FromConfig(cfg.Engine, logger)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, renderer, logger)
}

func newApp(cfg Config, renderer engine.RenderCloser, logger pdf.Logger) (*App, error) {
	factoryCfg := pdf.FactoryConfig{
		Config: cfg.PDF,
		Engine: renderer,
		Logger: logger,
	}

	if cfg.Views.Dir != "" {
		views, err := buildViews(cfg.Views)
		if err != nil {
			logger.Errorf("views disabled: %v", err)
		} else {
			factoryCfg.Views = views
		}
	}
	var store *storefs.Store
	if cfg.Store.Root != "" {
		store = storefs.NewStore(cfg.Store.Root)
		store.BaseURL = cfg.Store.BaseURL
		factoryCfg.Store = store
	}

	factory, err := pdf.NewFactory(factoryCfg)
	if err != nil {
		_ = renderer.Close()
		return nil, err
	}
	pdf.SetDefault(factory)

	return &App{Config: cfg, Factory: factory, Engine: renderer, Store: store, Logger: logger}, nil
}

// BasePath returns the API base path.
func (a *App) BasePath() string {
	return "/" + strings.Trim(a.Config.Server.BasePath, "/")
}

// Close releases the engine.
func (a *App) Close() error {
	if a == nil || a.Engine == nil {
		return nil
	}
	return a.Engine.Close()
}

func buildViews(cfg ViewsConfig) (pdf.ViewRenderer, error) {
	switch strings.ToLower(cfg.Engine) {
	case "pongo2", "django":
		if err := view.RegisterToJSON(); err != nil {
			return nil, err
		}
		return view.NewPongo2Renderer(cfg.Dir, cfg.Ext)
	case "go-template", "gotemplate":
		return view.NewGoTemplateRenderer(cfg.Dir, cfg.Ext)
	default:
		return view.NewTemplateRenderer(cfg.Dir, cfg.Ext, nil)
	}
}

type healthPayload struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
}

func (a *App) health() healthPayload {
	name := a.Config.Engine.Name
	if name == "" {
		name = engine.NameChromium
	}
	return healthPayload{Status: "ok", Engine: name}
}
