package engine

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/goliatone/go-pdf/pdf"
)

const defaultScale = 1.0

// ChromiumEngine renders PDF output using a shared headless Chromium instance.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Timeout     time.Duration
	Args        []string
	Scale       float64
	Logger      pdf.Logger

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Render prints req.HTML to PDF in a new tab.
func (e *ChromiumEngine) Render(ctx context.Context, req pdf.RenderRequest) ([]byte, error) {
	if e == nil {
		return nil, pdf.NewError(pdf.KindInternal, "chromium engine is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := e.ensureBrowser(); err != nil {
		return nil, pdf.NewError(pdf.KindInternal, "chromium engine init failed", err)
	}

	tabCtx, cancel := chromedp.NewContext(e.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, e.Timeout)
		defer cancelTimeout()
	}

	params, err := buildPrintToPDFParams(req.Page, e.scale())
	if err != nil {
		return nil, err
	}
	htmlInput := injectBaseURL(req.HTML, req.Page.BaseURL)

	var output []byte
	actions := []chromedp.Action{}
	if req.Page.ExternalAssetsPolicy == pdf.ExternalAssetsBlock {
		actions = append(actions,
			network.Enable(),
			network.SetBlockedURLs().WithURLPatterns([]*network.BlockPattern{
				{URLPattern: "http://*", Block: true},
				{URLPattern: "https://*", Block: true},
			}),
		)
	}

	actions = append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(htmlInput)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			output, _, err = params.Do(ctx)
			return err
		}),
	)

	started := time.Now()
	if err := chromedp.Run(execCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			err = context.DeadlineExceeded
		}
		kind := pdf.KindFromError(err)
		return nil, pdf.NewError(kind, "chromium pdf render failed", err)
	}
	e.logger().Debugf("chromium: document %s printed in %s", req.DocumentID, time.Since(started))
	return output, nil
}

// Close releases Chromium resources if they have been initialized.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	if e.browserCancel != nil {
		e.browserCancel()
	}
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

func (e *ChromiumEngine) ensureBrowser() error {
	e.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if e.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(e.BrowserPath))
		}
		options = append(options, chromedp.Flag("headless", e.Headless))
		options = append(options, allocatorOptionsFromArgs(e.Args)...)

		e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		e.browserCtx, e.browserCancel = chromedp.NewContext(e.allocCtx)
		e.logger().Infof("chromium: browser allocator ready (path=%q headless=%t)", e.BrowserPath, e.Headless)
	})
	if e.allocCtx == nil || e.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

func (e *ChromiumEngine) scale() float64 {
	if e.Scale == 0 {
		return defaultScale
	}
	return e.Scale
}

func (e *ChromiumEngine) logger() pdf.Logger {
	if e.Logger == nil {
		return pdf.NopLogger{}
	}
	return e.Logger
}

// buildPrintToPDFParams converts page options (millimetres) into Chromium's
// print parameters (inches). Header and footer margins have no Chromium
// equivalent and are ignored.
func buildPrintToPDFParams(opts pdf.PageOptions, scale float64) (*page.PrintToPDFParams, error) {
	params := page.PrintToPDF()

	if opts.Scale != 0 {
		scale = opts.Scale
	}
	if scale == 0 {
		scale = defaultScale
	}
	if scale < 0.1 || scale > 2.0 {
		return nil, pdf.NewError(pdf.KindValidation, "pdf scale must be between 0.1 and 2.0", nil)
	}
	params = params.WithScale(scale)

	params = params.WithLandscape(opts.Landscape)
	params = params.WithPrintBackground(opts.PrintBackground)
	if opts.PreferCSSPageSize {
		params = params.WithPreferCSSPageSize(true)
	}

	if opts.PaperWidth < 0 || opts.PaperHeight < 0 {
		return nil, pdf.NewError(pdf.KindValidation, fmt.Sprintf("invalid paper size %vx%v", opts.PaperWidth, opts.PaperHeight), nil)
	}
	if opts.PaperWidth > 0 && opts.PaperHeight > 0 {
		params = params.
			WithPaperWidth(pdf.MillimetresToInches(opts.PaperWidth)).
			WithPaperHeight(pdf.MillimetresToInches(opts.PaperHeight))
	}

	params = params.
		WithMarginTop(pdf.MillimetresToInches(opts.MarginTop)).
		WithMarginBottom(pdf.MillimetresToInches(opts.MarginBottom)).
		WithMarginLeft(pdf.MillimetresToInches(opts.MarginLeft)).
		WithMarginRight(pdf.MillimetresToInches(opts.MarginRight))

	return params, nil
}

func injectBaseURL(htmlInput []byte, baseURL string) []byte {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return htmlInput
	}

	lower := strings.ToLower(string(htmlInput))
	if strings.Contains(lower, "<base") {
		return htmlInput
	}

	baseTag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(baseURL))
	if headIdx := strings.Index(lower, "<head"); headIdx >= 0 {
		if end := strings.Index(lower[headIdx:], ">"); end >= 0 {
			insertPos := headIdx + end + 1
			return append(append([]byte{}, htmlInput[:insertPos]...), append([]byte(baseTag), htmlInput[insertPos:]...)...)
		}
	}

	if htmlIdx := strings.Index(lower, "<html"); htmlIdx >= 0 {
		if end := strings.Index(lower[htmlIdx:], ">"); end >= 0 {
			insertPos := htmlIdx + end + 1
			injected := fmt.Sprintf("<head>%s</head>", baseTag)
			return append(append([]byte{}, htmlInput[:insertPos]...), append([]byte(injected), htmlInput[insertPos:]...)...)
		}
	}

	return append([]byte(baseTag), htmlInput...)
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		arg = strings.TrimPrefix(arg, "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
