package pdf

import (
	"context"
	"errors"
	"sync"
)

// ErrFacadeNotSet is returned by the package-level helpers before SetDefault.
var ErrFacadeNotSet = errors.New("facade factory has not been set")

// FactoryConfig holds the application-level dependencies shared by every
// document a Factory creates.
type FactoryConfig struct {
	Config Config
	Engine Engine
	Views  ViewRenderer
	Store  ArtifactStore
	Logger Logger
}

// Factory creates documents from application configuration. Every call
// returns a new Document.
type Factory struct {
	cfg    Config
	engine Engine
	views  ViewRenderer
	store  ArtifactStore
	logger Logger
}

// NewFactory validates the application configuration and returns a factory.
func NewFactory(cfg FactoryConfig) (*Factory, error) {
	merged := MergeConfig(Defaults(), cfg.Config)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	return &Factory{
		cfg:    merged,
		engine: cfg.Engine,
		views:  cfg.Views,
		store:  cfg.Store,
		logger: logger,
	}, nil
}

// Config returns the application configuration merged over defaults.
func (f *Factory) Config() Config {
	return f.cfg
}

// New creates a document with overrides layered over the application
// configuration.
func (f *Factory) New(overrides ...Config) (*Document, error) {
	cfg := MergeConfig(f.cfg, overrides...)
	doc, err := New(cfg,
		WithEngine(f.engine),
		WithViews(f.views),
		WithStore(f.store),
		WithLogger(f.logger),
	)
	if err != nil {
		return nil, err
	}
	f.logger.Debugf("pdf %s: created", doc.ID())
	return doc, nil
}

// Make creates a document with the given default filename.
func (f *Factory) Make(filename string, overrides ...Config) (*Document, error) {
	doc, err := f.New(overrides...)
	if err != nil {
		return nil, err
	}
	return doc.Make(filename), nil
}

// LoadHTML creates a document from an HTML string.
func (f *Factory) LoadHTML(html string, overrides ...Config) (*Document, error) {
	doc, err := f.New(overrides...)
	if err != nil {
		return nil, err
	}
	if err := doc.LoadHTML(html); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadFile creates a document from an HTML file.
func (f *Factory) LoadFile(path string, overrides ...Config) (*Document, error) {
	doc, err := f.New(overrides...)
	if err != nil {
		return nil, err
	}
	if err := doc.LoadFile(path); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadView creates a document from a rendered view.
func (f *Factory) LoadView(ctx context.Context, view string, data, mergeData map[string]any, overrides ...Config) (*Document, error) {
	doc, err := f.New(overrides...)
	if err != nil {
		return nil, err
	}
	if err := doc.LoadView(ctx, view, data, mergeData); err != nil {
		return nil, err
	}
	return doc, nil
}

var (
	facadeMu      sync.RWMutex
	facadeFactory *Factory
)

// SetDefault sets the factory used by the package-level helpers. Passing nil
// clears it.
func SetDefault(f *Factory) {
	facadeMu.Lock()
	defer facadeMu.Unlock()
	facadeFactory = f
}

// Default returns the factory set with SetDefault.
func Default() (*Factory, error) {
	facadeMu.RLock()
	defer facadeMu.RUnlock()
	if facadeFactory == nil {
		return nil, ErrFacadeNotSet
	}
	return facadeFactory, nil
}

// Make creates a document from the default factory.
func Make(filename string, overrides ...Config) (*Document, error) {
	f, err := Default()
	if err != nil {
		return nil, err
	}
	return f.Make(filename, overrides...)
}

// LoadHTML creates a document from an HTML string using the default factory.
func LoadHTML(html string, overrides ...Config) (*Document, error) {
	f, err := Default()
	if err != nil {
		return nil, err
	}
	return f.LoadHTML(html, overrides...)
}

// LoadFile creates a document from an HTML file using the default factory.
func LoadFile(path string, overrides ...Config) (*Document, error) {
	f, err := Default()
	if err != nil {
		return nil, err
	}
	return f.LoadFile(path, overrides...)
}

// LoadView creates a document from a rendered view using the default factory.
func LoadView(ctx context.Context, view string, data, mergeData map[string]any, overrides ...Config) (*Document, error) {
	f, err := Default()
	if err != nil {
		return nil, err
	}
	return f.LoadView(ctx, view, data, mergeData, overrides...)
}
