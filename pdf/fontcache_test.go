package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshalFontDefinitions(t *testing.T) {
	defs := map[string]FontDefinition{
		"gosans": {
			Regular:    "Go-Regular.ttf",
			Bold:       "Go-Bold.ttf",
			UseOTL:     UnicodeUseOTL,
			UseKashida: UnicodeUseKashida,
		},
		"arial": {Regular: "arial.ttf"},
	}

	out, err := MarshalFontDefinitions(defs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `arial:
  R: arial.ttf
gosans:
  B: Go-Bold.ttf
  R: Go-Regular.ttf
  useKashida: 75
  useOTL: 0xFF
`
	if string(out) != want {
		t.Fatalf("unexpected output:\n%s", out)
	}

	again, err := MarshalFontDefinitions(defs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(again) != string(out) {
		t.Fatalf("expected deterministic output")
	}
}

func TestFontCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "fonts.yaml")
	defs := map[string]FontDefinition{
		"gosans": {Regular: "Go-Regular.ttf", UseOTL: UnicodeUseOTL, UseKashida: UnicodeUseKashida},
	}

	if err := WriteFontCache(path, defs); err != nil {
		t.Fatalf("write cache: %v", err)
	}
	loaded, err := ReadFontCache(path)
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	if loaded["gosans"] != defs["gosans"] {
		t.Fatalf("expected %+v, got %+v", defs["gosans"], loaded["gosans"])
	}
}

func TestReadFontCacheMissing(t *testing.T) {
	defs, err := ReadFontCache(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected no definitions")
	}
}

func TestAddCustomFontPersistsCache(t *testing.T) {
	dir := writeFontDir(t)
	cachePath := filepath.Join(t.TempDir(), "fonts.yaml")
	cfg := Config{CustomFontPath: dir, FontCachePath: cachePath}

	doc, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := doc.AddCustomFont(FontData{"GoSans": {FontRegular: "Go-Regular.ttf"}}, true); err != nil {
		t.Fatalf("add font: %v", err)
	}

	raw, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("read cache file: %v", err)
	}
	if !strings.Contains(string(raw), "useOTL: 0xFF") {
		t.Fatalf("expected hex useOTL in cache:\n%s", raw)
	}

	next, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := next.AvailableFonts(); len(got) != 1 || got[0] != "gosans" {
		t.Fatalf("expected cached font, got %v", got)
	}
}
