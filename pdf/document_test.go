package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-pdf/pdf/pdftest"
)

var fakePDF = pdftest.Minimal(1)

func assertRenderedPDF(t *testing.T, data []byte, pages int) {
	t.Helper()
	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("inspect output: %v", err)
	}
	if info.Pages != pages {
		t.Fatalf("expected %d pages, got %d", pages, info.Pages)
	}
}

type captureEngine struct {
	req   RenderRequest
	calls int
	err   error
}

func (e *captureEngine) Render(_ context.Context, req RenderRequest) ([]byte, error) {
	e.calls++
	e.req = req
	if e.err != nil {
		return nil, e.err
	}
	return fakePDF, nil
}

type stubStore struct {
	key  string
	meta ArtifactMeta
	data []byte
}

func (s *stubStore) Put(_ context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ArtifactRef{}, err
	}
	s.key = key
	s.meta = meta
	s.data = data
	return ArtifactRef{Key: key, Location: "mem://" + key, Meta: meta}, nil
}

type staticHTML string

func (s staticHTML) ToHTML() (string, error) { return string(s), nil }

func TestNewAppliesConfig(t *testing.T) {
	doc, err := New(Config{
		Title:         "Invoice",
		Author:        "Billing",
		Dir:           "rtl",
		ShowWatermark: Bool(true),
		Watermark:     "PAID",
		WatermarkFont: "serif",
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if doc.ID() == "" {
		t.Fatalf("expected document id")
	}
	if doc.Filename() != "document.pdf" {
		t.Fatalf("expected default filename, got %q", doc.Filename())
	}
	if doc.Direction() != "rtl" {
		t.Fatalf("expected rtl, got %q", doc.Direction())
	}
	if !doc.WatermarkEnabled() {
		t.Fatalf("expected watermark enabled")
	}
	wm := doc.Watermark()
	if wm.Text != "PAID" || wm.Font != "serif" || wm.Alpha != 0.1 {
		t.Fatalf("unexpected watermark: %+v", wm)
	}
	if doc.Config().Author != "Billing" {
		t.Fatalf("expected author")
	}
}

func TestNewWatermarkRequiresShowFlag(t *testing.T) {
	doc, err := New(Config{Watermark: "DRAFT"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if doc.WatermarkEnabled() {
		t.Fatalf("expected watermark disabled without show_watermark")
	}

	doc.SetWatermarkText("PAID")
	if doc.WatermarkEnabled() {
		t.Fatalf("expected SetWatermarkText to leave the watermark hidden")
	}
	doc.ShowWatermark(true)
	if !doc.WatermarkEnabled() {
		t.Fatalf("expected watermark shown")
	}
	doc.ShowWatermark(false)
	if doc.WatermarkEnabled() {
		t.Fatalf("expected watermark hidden")
	}
	doc.ShowWatermark(true).SetWatermarkText("")
	if doc.WatermarkEnabled() {
		t.Fatalf("expected empty text to disable watermark")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Orientation: "sideways"})
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDocumentSetters(t *testing.T) {
	doc, err := New(Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	doc.Make("report.pdf").SetTitle("Report").SetAuthor("Ops").SetDirection("rtl")
	doc.Make("")

	if doc.Filename() != "report.pdf" {
		t.Fatalf("expected filename kept, got %q", doc.Filename())
	}
	if doc.Direction() != "rtl" {
		t.Fatalf("expected rtl")
	}
	if err := doc.SetDisplayMode("fullwidth"); err != nil {
		t.Fatalf("display mode: %v", err)
	}
	if err := doc.SetDisplayMode("spiral"); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := doc.SetWatermarkAlpha(2); err == nil {
		t.Fatalf("expected alpha error")
	}

	html, err := doc.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, want := range []string{"<title>Report</title>", `content="Ops"`, `dir="rtl"`, "direction: rtl"} {
		if !strings.Contains(string(html), want) {
			t.Fatalf("expected %q in %s", want, html)
		}
	}
}

func TestLoadHTMLAppendsAndDecodes(t *testing.T) {
	doc, err := New(Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := doc.LoadHTML("<p>caf&#233;</p>"); err != nil {
		t.Fatalf("load html: %v", err)
	}
	if err := doc.LoadHTMLFrom(staticHTML("<p>second</p>")); err != nil {
		t.Fatalf("load htmlable: %v", err)
	}

	html, err := doc.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(string(html), "<p>café</p><p>second</p>") {
		t.Fatalf("unexpected html: %s", html)
	}
	if err := doc.LoadHTMLFrom(nil); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for nil source")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<p>from file</p>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := New(Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := doc.LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}
	html, _ := doc.HTML()
	if !strings.Contains(string(html), "<p>from file</p>") {
		t.Fatalf("expected file contents")
	}

	err = doc.LoadFile(filepath.Join(t.TempDir(), "missing.html"))
	if KindFromError(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadViewDataWinsOverMergeData(t *testing.T) {
	var gotView string
	views := ViewRendererFunc(func(_ context.Context, name string, data map[string]any, w io.Writer) error {
		gotView = name
		_, err := fmt.Fprintf(w, "<p>%v %v</p>", data["name"], data["extra"])
		return err
	})

	doc, err := New(Config{}, WithViews(views))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = doc.LoadView(context.Background(), "invoice", map[string]any{"name": "data"}, map[string]any{"name": "merge", "extra": "x"})
	if err != nil {
		t.Fatalf("load view: %v", err)
	}
	if gotView != "invoice" {
		t.Fatalf("expected view invoice, got %q", gotView)
	}
	html, _ := doc.HTML()
	if !strings.Contains(string(html), "<p>data x</p>") {
		t.Fatalf("unexpected html: %s", html)
	}
}

func TestLoadViewErrors(t *testing.T) {
	doc, err := New(Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := doc.LoadView(context.Background(), "invoice", nil, nil); KindFromError(err) != KindConfigMissing {
		t.Fatalf("expected config missing, got %v", err)
	}

	boom := errors.New("boom")
	doc, _ = New(Config{}, WithViews(ViewRendererFunc(func(context.Context, string, map[string]any, io.Writer) error {
		return boom
	})))
	err = doc.LoadView(context.Background(), "invoice", nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped view error, got %v", err)
	}
}

func TestRenderPassesPageOptions(t *testing.T) {
	engine := &captureEngine{}
	doc, err := New(Config{Format: "Letter", Orientation: "L", MarginTop: Float(5), BaseURL: "https://example.com/"}, WithEngine(engine), WithID("doc-1"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = doc.LoadHTML("<p>hello</p>")

	data, err := doc.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	assertRenderedPDF(t, data, 1)

	req := engine.req
	if req.DocumentID != "doc-1" {
		t.Fatalf("expected document id, got %q", req.DocumentID)
	}
	if !req.Page.Landscape || req.Page.PaperWidth != 215.9 {
		t.Fatalf("unexpected page options: %+v", req.Page)
	}
	if req.Page.MarginTop != 5 || req.Page.MarginLeft != 10 {
		t.Fatalf("unexpected margins: %+v", req.Page)
	}
	if req.Page.BaseURL != "https://example.com/" {
		t.Fatalf("expected base url")
	}
	if !strings.Contains(string(req.HTML), "<p>hello</p>") {
		t.Fatalf("expected body in request html")
	}
}

func TestRenderErrors(t *testing.T) {
	doc, _ := New(Config{})
	if _, err := doc.Embed(context.Background(), ""); KindFromError(err) != KindConfigMissing {
		t.Fatalf("expected config missing without engine, got %v", err)
	}

	boom := errors.New("chromium crashed")
	doc, _ = New(Config{}, WithEngine(&captureEngine{err: boom}))
	_, err := doc.Embed(context.Background(), "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected engine error propagated, got %v", err)
	}
	if KindFromError(err) != KindInternal {
		t.Fatalf("expected internal kind, got %s", KindFromError(err))
	}

	doc, _ = New(Config{}, WithEngine(&captureEngine{err: context.DeadlineExceeded}))
	_, err = doc.Embed(context.Background(), "")
	if KindFromError(err) != KindTimeout {
		t.Fatalf("expected timeout kind, got %v", err)
	}

	empty := EngineFunc(func(context.Context, RenderRequest) ([]byte, error) { return nil, nil })
	doc, _ = New(Config{}, WithEngine(empty))
	if _, err := doc.Embed(context.Background(), ""); KindFromError(err) != KindInternal {
		t.Fatalf("expected internal error for empty output, got %v", err)
	}
}

func TestOutputDestinations(t *testing.T) {
	engine := &captureEngine{}
	doc, err := New(Config{}, WithEngine(engine))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	doc.Make("default.pdf")

	result, err := doc.Output(context.Background(), "", DestinationString, nil)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if result.Filename != "default.pdf" {
		t.Fatalf("expected fallback filename, got %q", result.Filename)
	}

	if _, err := doc.Output(context.Background(), "x.pdf", Destination("Q"), nil); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for unknown destination, got %v", err)
	}
	if err := doc.Download(context.Background(), nil, "x.pdf"); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error without response, got %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("expected invalid outputs to skip rendering, got %d calls", engine.calls)
	}
}

func TestSaveWritesFile(t *testing.T) {
	doc, _ := New(Config{}, WithEngine(&captureEngine{}))
	path := filepath.Join(t.TempDir(), "out", "report.pdf")

	location, err := doc.Save(context.Background(), path)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if location != path {
		t.Fatalf("expected %q, got %q", path, location)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved: %v", err)
	}
	assertRenderedPDF(t, data, 1)
}

func TestSaveUsesStore(t *testing.T) {
	store := &stubStore{}
	doc, _ := New(Config{}, WithEngine(&captureEngine{}), WithStore(store), WithID("doc-7"))

	location, err := doc.Save(context.Background(), "reports/q1.pdf")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if location != "mem://reports/q1.pdf" {
		t.Fatalf("unexpected location %q", location)
	}
	if store.key != "reports/q1.pdf" || store.meta.DocumentID != "doc-7" {
		t.Fatalf("unexpected store call: %q %+v", store.key, store.meta)
	}
	if store.meta.ContentType != ContentTypePDF || store.meta.Filename != "reports_q1.pdf" {
		t.Fatalf("unexpected meta: %+v", store.meta)
	}
	assertRenderedPDF(t, store.data, 1)
	if store.meta.Pages != 1 {
		t.Fatalf("expected page count in meta, got %d", store.meta.Pages)
	}
}

func TestDownloadAndStreamHTTP(t *testing.T) {
	doc, _ := New(Config{}, WithEngine(&captureEngine{}), WithID("doc-9"))

	rec := httptest.NewRecorder()
	if err := doc.DownloadHTTP(context.Background(), rec, "report.pdf"); err != nil {
		t.Fatalf("download: %v", err)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="report.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Header().Get("Content-Type") != ContentTypePDF {
		t.Fatalf("expected pdf content type")
	}
	if rec.Header().Get(HeaderDocumentID) != "doc-9" {
		t.Fatalf("expected document id header")
	}
	assertRenderedPDF(t, rec.Body.Bytes(), 1)

	rec = httptest.NewRecorder()
	if err := doc.StreamHTTP(context.Background(), rec, ""); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `inline; filename="document.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
}
