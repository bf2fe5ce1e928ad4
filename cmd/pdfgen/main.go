package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-pdf/adapters/engine"
	storefs "github.com/goliatone/go-pdf/adapters/store/fs"
	"github.com/goliatone/go-pdf/adapters/view"
	"github.com/goliatone/go-pdf/command"
	"github.com/goliatone/go-pdf/pdf"
	"github.com/goliatone/go-pdf/query"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type options struct {
	configPath    string
	publishConfig string
	inspect       string
	force         bool

	engineName  string
	browserPath string
	wkhtmltopdf string
	timeout     time.Duration

	batchFile     string
	batchMax      int
	batchInterval time.Duration

	htmlFile  string
	viewsDir  string
	viewsKind string
	viewExt   string
	view      string
	dataFile  string
	storeRoot string
	output    string
	title     string
	format    string
	landscape bool
	watermark string
	verbose   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "pdfgen: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.inspect != "" {
		info, err := query.NewInspectDocumentHandler().Query(ctx, query.InspectDocument{Path: opts.inspect})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d pages, %d bytes\n", opts.inspect, info.Pages, info.Size)
		return nil
	}

	if opts.publishConfig != "" {
		if err := pdf.PublishConfig(opts.publishConfig, opts.force); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "published config to %s\n", opts.publishConfig)
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	var logger pdf.Logger = pdf.NopLogger{}
	if opts.verbose {
		logger = &simpleLogger{out: stderr, prefix: "pdfgen"}
	}

	renderer, err := engine.FromConfig(engine.Config{
		Name:        opts.engineName,
		BrowserPath: opts.browserPath,
		Command:     opts.wkhtmltopdf,
		Timeout:     opts.timeout,
	}, logger)
	if err != nil {
		return err
	}
	defer renderer.Close()

	factoryCfg := pdf.FactoryConfig{Config: cfg, Engine: renderer, Logger: logger}
	if opts.viewsDir != "" {
		views, err := buildViews(opts)
		if err != nil {
			return err
		}
		factoryCfg.Views = views
	}
	if opts.storeRoot != "" {
		factoryCfg.Store = storefs.NewStore(opts.storeRoot)
	}
	factory, err := pdf.NewFactory(factoryCfg)
	if err != nil {
		return err
	}
	handler := command.NewRenderDocumentHandler(factory)

	if opts.batchFile != "" {
		batch := command.NewBatchRenderCommand(handler, nil, command.WithBatchLimits(command.BatchLimits{
			MaxDocuments: opts.batchMax,
			MinInterval:  opts.batchInterval,
		}))
		count, err := batch.Run(ctx, opts.batchFile)
		if err != nil {
			return fmt.Errorf("batch stopped after %d documents: %w", count, err)
		}
		fmt.Fprintf(stdout, "rendered %d documents from %s\n", count, opts.batchFile)
		return nil
	}

	msg := command.RenderDocument{
		File:      opts.htmlFile,
		View:      opts.view,
		Filename:  opts.output,
		Watermark: opts.watermark,
	}
	if opts.dataFile != "" {
		data, err := loadData(opts.dataFile)
		if err != nil {
			return err
		}
		msg.Data = data
	}
	return renderOne(ctx, handler, msg, stdout)
}

func renderOne(ctx context.Context, handler *command.RenderDocumentHandler, msg command.RenderDocument, stdout io.Writer) error {
	var result command.RenderResult
	msg.Result = &result
	if err := handler.Execute(ctx, msg); err != nil {
		return err
	}
	if msg.Filename == "" {
		_, err := stdout.Write(result.Data)
		return err
	}
	pages := "unknown"
	if result.Pages > 0 {
		pages = fmt.Sprintf("%d", result.Pages)
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes, %s pages, id %s)\n", result.Location, len(result.Data), pages, result.DocumentID)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("pdfgen", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&opts.publishConfig, "publish-config", "", "write the default config to this path and exit")
	fs.StringVar(&opts.inspect, "inspect", "", "print the page count of a PDF file and exit")
	fs.BoolVar(&opts.force, "force", false, "overwrite an existing file with --publish-config")

	fs.StringVar(&opts.engineName, "engine", engine.NameChromium, "rendering engine (chromium, wkhtmltopdf)")
	fs.StringVar(&opts.browserPath, "browser", "", "Chromium executable path")
	fs.StringVar(&opts.wkhtmltopdf, "wkhtmltopdf", "", "wkhtmltopdf executable path")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "render timeout")

	fs.StringVarP(&opts.htmlFile, "html", "i", "", "HTML file to render")
	fs.StringVar(&opts.viewsDir, "views", "", "views directory")
	fs.StringVar(&opts.viewsKind, "views-engine", "template", "view engine (template, pongo2, go-template)")
	fs.StringVar(&opts.viewExt, "views-ext", ".html", "view file extension")
	fs.StringVar(&opts.view, "view", "", "view to render, dot separated")
	fs.StringVar(&opts.dataFile, "data", "", "YAML or JSON file with view data")
	fs.StringVar(&opts.batchFile, "batch", "", "YAML list of render messages")
	fs.IntVar(&opts.batchMax, "batch-max", 0, "render at most this many batch documents (0 for all)")
	fs.DurationVar(&opts.batchInterval, "batch-interval", 0, "pause between batch documents")
	fs.StringVar(&opts.storeRoot, "store", "", "save documents under this directory")
	fs.StringVarP(&opts.output, "out", "o", "", "output file; stdout when empty")

	fs.StringVar(&opts.title, "title", "", "document title")
	fs.StringVar(&opts.format, "format", "", "page format")
	fs.BoolVar(&opts.landscape, "landscape", false, "landscape orientation")
	fs.StringVar(&opts.watermark, "watermark", "", "watermark text")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log rendering steps")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.publishConfig != "" || opts.batchFile != "" || opts.inspect != "" {
		return opts, nil
	}
	if opts.view != "" && opts.viewsDir == "" {
		return options{}, pdf.NewError(pdf.KindValidation, "--view requires --views", nil)
	}
	if (opts.htmlFile == "") == (opts.view == "") {
		return options{}, pdf.NewError(pdf.KindValidation, "exactly one of --html or --view is required", nil)
	}
	return opts, nil
}

func loadConfig(opts options) (pdf.Config, error) {
	cfg := pdf.Defaults()
	if opts.configPath != "" {
		fileCfg, err := pdf.LoadConfigFile(opts.configPath)
		if err != nil {
			return pdf.Config{}, err
		}
		cfg = pdf.MergeConfig(cfg, fileCfg)
	}
	cfg = pdf.ApplyEnv(cfg, os.LookupEnv)

	flags := pdf.Config{Title: opts.title, Format: opts.format}
	if opts.landscape {
		flags.Orientation = "L"
	}
	return pdf.MergeConfig(cfg, flags), nil
}

func buildViews(opts options) (pdf.ViewRenderer, error) {
	switch strings.ToLower(opts.viewsKind) {
	case "", "template":
		return view.NewTemplateRenderer(opts.viewsDir, opts.viewExt, nil)
	case "pongo2", "django":
		if err := view.RegisterToJSON(); err != nil {
			return nil, err
		}
		return view.NewPongo2Renderer(opts.viewsDir, opts.viewExt)
	case "go-template", "gotemplate":
		return view.NewGoTemplateRenderer(opts.viewsDir, opts.viewExt)
	default:
		return nil, pdf.NewError(pdf.KindValidation, fmt.Sprintf("unknown view engine: %s", opts.viewsKind), nil)
	}
}

func loadData(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, pdf.NewError(pdf.KindNotFound, fmt.Sprintf("read data file %q", path), err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, pdf.NewError(pdf.KindValidation, "invalid data file", err)
	}
	return data, nil
}

type simpleLogger struct {
	out    io.Writer
	prefix string
}

func (l *simpleLogger) Debugf(format string, args ...any) {
	fmt.Fprintf(l.out, "[DEBUG] %s: %s\n", l.prefix, fmt.Sprintf(format, args...))
}

func (l *simpleLogger) Infof(format string, args ...any) {
	fmt.Fprintf(l.out, "[INFO] %s: %s\n", l.prefix, fmt.Sprintf(format, args...))
}

func (l *simpleLogger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.out, "[ERROR] %s: %s\n", l.prefix, fmt.Sprintf(format, args...))
}
