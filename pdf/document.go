package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a PDF under construction. HTML is accumulated through the Load
// methods and rendered by the configured Engine when an output method is
// called. A Document is not safe for concurrent use.
type Document struct {
	id       string
	cfg      Config
	filename string

	engine Engine
	views  ViewRenderer
	store  ArtifactStore
	logger Logger
	now    func() time.Time

	fonts         *fontRegistry
	body          strings.Builder
	showWatermark bool
	watermark     Watermark
}

// Option customizes a Document.
type Option func(*Document)

// WithEngine sets the rendering engine.
func WithEngine(engine Engine) Option {
	return func(d *Document) {
		d.engine = engine
	}
}

// WithViews sets the view renderer used by LoadView.
func WithViews(views ViewRenderer) Option {
	return func(d *Document) {
		d.views = views
	}
}

// WithStore sets the store used by Save.
func WithStore(store ArtifactStore) Option {
	return func(d *Document) {
		d.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithID overrides the generated document id.
func WithID(id string) Option {
	return func(d *Document) {
		if strings.TrimSpace(id) != "" {
			d.id = id
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Document) {
		if now != nil {
			d.now = now
		}
	}
}

// WithFontDefinitions registers previously added font families.
func WithFontDefinitions(defs map[string]FontDefinition) Option {
	return func(d *Document) {
		d.fonts.restore(defs)
	}
}

// New creates a document. cfg is layered over Defaults and hard-coded
// fallbacks fill whatever is still unset.
func New(cfg Config, opts ...Option) (*Document, error) {
	merged := MergeConfig(Defaults(), cfg).Resolve()
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	d := &Document{
		id:       uuid.NewString(),
		cfg:      merged,
		filename: defaultFilename,
		logger:   NopLogger{},
		now:      time.Now,
		fonts:    newFontRegistry(merged.CustomFontPath),
		watermark: Watermark{
			Text:  merged.Watermark,
			Font:  merged.WatermarkFont,
			Alpha: *merged.WatermarkTextAlpha,
		},
	}
	d.cfg.Direction = merged.ResolvedDirection()
	d.cfg.Dir = ""

	if *merged.ShowWatermark && strings.TrimSpace(merged.Watermark) != "" {
		d.showWatermark = true
	}

	if merged.FontCachePath != "" {
		defs, err := ReadFontCache(merged.FontCachePath)
		if err != nil {
			return nil, err
		}
		d.fonts.restore(defs)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// ID returns the document id.
func (d *Document) ID() string { return d.id }

// Filename returns the default output filename.
func (d *Document) Filename() string { return d.filename }

// Config returns the resolved configuration.
func (d *Document) Config() Config { return d.cfg }

// Direction returns "ltr" or "rtl".
func (d *Document) Direction() string { return d.cfg.Direction }

// WatermarkEnabled reports whether output will be watermarked.
func (d *Document) WatermarkEnabled() bool {
	return d.showWatermark && strings.TrimSpace(d.watermark.Text) != ""
}

// Watermark returns the current watermark settings.
func (d *Document) Watermark() Watermark { return d.watermark }

// AvailableFonts lists registered font keys with their style suffix.
func (d *Document) AvailableFonts() []string {
	return append([]string(nil), d.fonts.available...)
}

// FontDefinitions returns the registered font families.
func (d *Document) FontDefinitions() map[string]FontDefinition {
	return d.fonts.snapshot()
}

// Make sets the default output filename when filename is not empty.
func (d *Document) Make(filename string) *Document {
	if strings.TrimSpace(filename) != "" {
		d.filename = filename
	}
	return d
}

// SetDirection sets the text direction; anything but "rtl" means "ltr".
func (d *Document) SetDirection(dir string) *Document {
	d.cfg.Direction = normalizeDirection(dir)
	return d
}

// SetTitle sets the document title used when the HTML has none.
func (d *Document) SetTitle(title string) *Document {
	d.cfg.Title = title
	return d
}

// SetAuthor sets the author written to the document information dictionary.
func (d *Document) SetAuthor(author string) *Document {
	d.cfg.Author = author
	return d
}

// SetDisplayMode sets the initial viewer display mode: fullpage, fullwidth,
// real, default, none or a zoom percentage.
func (d *Document) SetDisplayMode(mode string) error {
	if mode != "" && !validDisplayMode(mode) {
		return NewError(KindValidation, fmt.Sprintf("unsupported display mode: %s", mode), nil)
	}
	d.cfg.DisplayMode = mode
	return nil
}

// SetWatermarkText sets the watermark text. Use ShowWatermark to toggle it.
func (d *Document) SetWatermarkText(text string) *Document {
	d.watermark.Text = text
	return d
}

// SetWatermarkFont sets the watermark font family.
func (d *Document) SetWatermarkFont(font string) *Document {
	if strings.TrimSpace(font) != "" {
		d.watermark.Font = font
	}
	return d
}

// SetWatermarkAlpha sets the watermark opacity (0 to 1).
func (d *Document) SetWatermarkAlpha(alpha float64) error {
	if alpha < 0 || alpha > 1 {
		return NewError(KindValidation, "watermark alpha must be between 0 and 1", nil)
	}
	d.watermark.Alpha = alpha
	return nil
}

// ShowWatermark toggles the watermark without changing its text.
func (d *Document) ShowWatermark(show bool) *Document {
	d.showWatermark = show
	return d
}

// LoadHTML appends html to the document after converting numeric character
// references to UTF-8.
func (d *Document) LoadHTML(html string) error {
	d.body.WriteString(DecodeNumericEntities(html))
	return nil
}

// LoadHTMLFrom appends the HTML produced by src.
func (d *Document) LoadHTMLFrom(src Htmlable) error {
	if src == nil {
		return NewError(KindValidation, "html source is required", nil)
	}
	html, err := src.ToHTML()
	if err != nil {
		return NewError(KindValidation, "html source failed", err)
	}
	return d.LoadHTML(html)
}

// LoadFile appends the contents of an HTML file.
func (d *Document) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewError(KindNotFound, fmt.Sprintf("file %q not found", path), err)
		}
		return NewError(KindInternal, fmt.Sprintf("read file %q", path), err)
	}
	d.body.Write(data)
	return nil
}

// LoadView renders view with data layered over mergeData and appends the
// result.
func (d *Document) LoadView(ctx context.Context, view string, data, mergeData map[string]any) error {
	if d.views == nil {
		return NewError(KindConfigMissing, "view renderer is not configured", nil)
	}
	if strings.TrimSpace(view) == "" {
		return NewError(KindValidation, "view name is required", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	merged := make(map[string]any, len(data)+len(mergeData))
	for key, value := range mergeData {
		merged[key] = value
	}
	for key, value := range data {
		merged[key] = value
	}

	var buf bytes.Buffer
	if err := d.views.RenderView(ctx, view, merged, &buf); err != nil {
		if KindFromError(err) != KindInternal {
			return err
		}
		return NewError(KindInternal, fmt.Sprintf("render view %q", view), err)
	}
	d.body.Write(buf.Bytes())
	return nil
}

// AddCustomFont registers font families whose files live in the configured
// custom font path. With unicode set the families are flagged for OpenType
// layout and kashida justification.
func (d *Document) AddCustomFont(fonts FontData, unicode bool) error {
	if err := d.fonts.validate(fonts); err != nil {
		return err
	}
	d.fonts.add(fonts, unicode)
	d.logger.Debugf("pdf %s: registered fonts %v", d.id, d.fonts.available)

	if d.cfg.FontCachePath != "" {
		if err := WriteFontCache(d.cfg.FontCachePath, d.fonts.snapshot()); err != nil {
			return err
		}
	}
	return nil
}

// HTML returns the assembled document passed to the engine.
func (d *Document) HTML() ([]byte, error) {
	page, err := d.cfg.PageOptions()
	if err != nil {
		return nil, err
	}
	return d.assemble(page)
}

func (d *Document) assemble(page PageOptions) ([]byte, error) {
	style := baseStylesheet(d.cfg, page)
	if !isCoreMode(d.cfg.Mode) {
		faces, err := d.fonts.fontFaceCSS()
		if err != nil {
			return nil, err
		}
		style = faces + style
	}
	return assembleHTML(d.body.String(), assembleOptions{
		Title:     d.cfg.Title,
		Author:    d.cfg.Author,
		Lang:      languageFromMode(d.cfg.Mode),
		Direction: d.cfg.Direction,
		Style:     style,
	})
}

// Render converts the document into PDF bytes.
func (d *Document) Render(ctx context.Context) ([]byte, error) {
	if d.engine == nil {
		return nil, NewError(KindConfigMissing, "pdf engine is not configured", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	page, err := d.cfg.PageOptions()
	if err != nil {
		return nil, err
	}
	htmlInput, err := d.assemble(page)
	if err != nil {
		return nil, err
	}

	started := d.now()
	data, err := d.engine.Render(ctx, RenderRequest{
		DocumentID: d.id,
		Title:      d.cfg.Title,
		HTML:       htmlInput,
		Page:       page,
	})
	if err != nil {
		d.logger.Errorf("pdf %s: render failed: %v", d.id, err)
		var docErr *Error
		if !errors.As(err, &docErr) {
			return nil, NewError(KindFromError(err), "pdf render failed", err)
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, NewError(KindInternal, "pdf engine returned no output", nil)
	}

	if d.WatermarkEnabled() {
		data, err = ApplyWatermark(data, d.watermark)
		if err != nil {
			return nil, err
		}
	}
	data, err = ApplyMetadata(data, Metadata{
		Title:       d.cfg.Title,
		Author:      d.cfg.Author,
		DisplayMode: d.cfg.DisplayMode,
	})
	if err != nil {
		return nil, err
	}

	d.logger.Debugf("pdf %s: rendered %d bytes in %s", d.id, len(data), d.now().Sub(started))
	return data, nil
}

// Result describes the outcome of Output.
type Result struct {
	Filename string
	Location string
	Data     []byte
}

// Output renders the document and sends it to dest. res is required for
// DestinationDownload and DestinationInline and ignored otherwise. An empty
// filename falls back to the document filename.
func (d *Document) Output(ctx context.Context, filename string, dest Destination, res Response) (Result, error) {
	if strings.TrimSpace(filename) == "" {
		filename = d.filename
	}
	switch dest {
	case DestinationString, DestinationFile:
	case DestinationDownload, DestinationInline:
		if res == nil {
			return Result{}, NewError(KindValidation, "response is required", nil)
		}
	default:
		return Result{}, NewError(KindValidation, fmt.Sprintf("unsupported destination %q", dest), nil)
	}

	data, err := d.Render(ctx)
	if err != nil {
		return Result{}, err
	}
	result := Result{Filename: filename, Data: data}

	switch dest {
	case DestinationFile:
		location, err := d.save(ctx, filename, data)
		if err != nil {
			return Result{}, err
		}
		result.Location = location
	case DestinationDownload, DestinationInline:
		if err := WriteResponse(res, dest, filename, d.id, data); err != nil {
			return Result{}, err
		}
	}
	d.logger.Infof("pdf %s: output %s destination=%s bytes=%d", d.id, filename, dest, len(data))
	return result, nil
}

func (d *Document) save(ctx context.Context, filename string, data []byte) (string, error) {
	if d.store == nil {
		if err := writeFileAtomic(filename, data); err != nil {
			return "", err
		}
		return filename, nil
	}
	meta := ArtifactMeta{
		ContentType: ContentTypePDF,
		Filename:    SanitizeFilename(filename),
		DocumentID:  d.id,
		CreatedAt:   d.now(),
	}
	if info, err := Inspect(data); err == nil {
		meta.Pages = info.Pages
	}
	ref, err := d.store.Put(ctx, filename, bytes.NewReader(data), meta)
	if err != nil {
		return "", err
	}
	if ref.Location != "" {
		return ref.Location, nil
	}
	return ref.Key, nil
}

// Embed returns the rendered document.
func (d *Document) Embed(ctx context.Context, filename string) ([]byte, error) {
	result, err := d.Output(ctx, filename, DestinationString, nil)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Save writes the rendered document to filename, or to the configured store,
// and returns where it was written.
func (d *Document) Save(ctx context.Context, filename string) (string, error) {
	result, err := d.Output(ctx, filename, DestinationFile, nil)
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

// Download sends the document as an attachment.
func (d *Document) Download(ctx context.Context, res Response, filename string) error {
	_, err := d.Output(ctx, filename, DestinationDownload, res)
	return err
}

// Stream sends the document inline for display in the browser.
func (d *Document) Stream(ctx context.Context, res Response, filename string) error {
	_, err := d.Output(ctx, filename, DestinationInline, res)
	return err
}

// DownloadHTTP is Download for an http.ResponseWriter.
func (d *Document) DownloadHTTP(ctx context.Context, w http.ResponseWriter, filename string) error {
	return d.Download(ctx, HTTPResponse(w), filename)
}

// StreamHTTP is Stream for an http.ResponseWriter.
func (d *Document) StreamHTTP(ctx context.Context, w http.ResponseWriter, filename string) error {
	return d.Stream(ctx, HTTPResponse(w), filename)
}
