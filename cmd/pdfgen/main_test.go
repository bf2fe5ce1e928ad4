package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/goliatone/go-pdf/pdf"
	"github.com/goliatone/go-pdf/pdf/pdftest"
)

type fakeBinary struct {
	path  string
	input string
}

// html returns everything the binary read from stdin so far.
func (f fakeBinary) html(t *testing.T) string {
	t.Helper()
	content, err := os.ReadFile(f.input)
	if err != nil {
		t.Fatalf("read captured input: %v", err)
	}
	return string(content)
}

// fakeWKHTMLTOPDF writes a script that appends stdin to a capture file and
// answers with a one page PDF.
func fakeWKHTMLTOPDF(t *testing.T) fakeBinary {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.pdf")
	if err := os.WriteFile(fixture, pdftest.Minimal(1), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	bin := fakeBinary{
		path:  filepath.Join(dir, "fake-wkhtmltopdf"),
		input: filepath.Join(dir, "input.html"),
	}
	script := "#!/bin/sh\ncat >> '" + bin.input + "'\ncat '" + fixture + "'\n"
	if err := os.WriteFile(bin.path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return bin
}

func assertPDF(t *testing.T, data []byte) {
	t.Helper()
	info, err := pdf.Inspect(data)
	if err != nil {
		t.Fatalf("expected rendered pdf: %v", err)
	}
	if info.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", info.Pages)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRunPublishConfig(t *testing.T) {
	target := filepath.Join(t.TempDir(), "pdf.yaml")
	var stdout, stderr bytes.Buffer

	if err := run(context.Background(), []string{"--publish-config", target}, &stdout, &stderr); err != nil {
		t.Fatalf("publish: %v", err)
	}
	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(content), "# go-pdf configuration.") {
		t.Fatalf("unexpected config %q", content)
	}
	if !strings.Contains(stdout.String(), target) {
		t.Fatalf("expected confirmation, got %q", stdout.String())
	}

	if err := run(context.Background(), []string{"--publish-config", target}, &stdout, &stderr); err == nil {
		t.Fatalf("expected existing config to be kept")
	}
	if err := run(context.Background(), []string{"--publish-config", target, "--force"}, &stdout, &stderr); err != nil {
		t.Fatalf("forced publish: %v", err)
	}
}

func TestParseFlagsValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		ok   bool
	}{
		{name: "html", args: []string{"--html", "in.html"}, ok: true},
		{name: "view", args: []string{"--views", "views", "--view", "invoice"}, ok: true},
		{name: "batch", args: []string{"--batch", "batch.yaml"}, ok: true},
		{name: "nothing", args: nil},
		{name: "both", args: []string{"--html", "in.html", "--views", "views", "--view", "invoice"}},
		{name: "view without dir", args: []string{"--view", "invoice"}},
		{name: "unknown flag", args: []string{"--nope"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseFlags(tc.args, &bytes.Buffer{})
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRunRendersHTMLFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.html", "<p>caf&#233;</p>")
	output := filepath.Join(dir, "out.pdf")
	bin := fakeWKHTMLTOPDF(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"--engine", "wkhtmltopdf",
		"--wkhtmltopdf", bin.path,
		"--html", input,
		"--title", "Menu",
		"--out", output,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	assertPDF(t, content)
	if html := bin.html(t); !strings.Contains(html, "<title>Menu</title>") || !strings.Contains(html, "café") {
		t.Fatalf("unexpected engine input %q", html)
	}
	if !strings.Contains(stdout.String(), "wrote "+output) {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
}

func TestRunRendersViewToStore(t *testing.T) {
	dir := t.TempDir()
	views := filepath.Join(dir, "views")
	writeFile(t, views, "reports/summary.html", "<h1>{{ .title }}</h1>")
	data := writeFile(t, dir, "data.yaml", "title: Quarterly\n")
	store := filepath.Join(dir, "store")
	bin := fakeWKHTMLTOPDF(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"--engine", "wkhtmltopdf",
		"--wkhtmltopdf", bin.path,
		"--views", views,
		"--view", "reports.summary",
		"--data", data,
		"--store", store,
		"--out", "archive/summary.pdf",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(store, "archive", "summary.pdf"))
	if err != nil {
		t.Fatalf("read stored document: %v", err)
	}
	assertPDF(t, content)
	if html := bin.html(t); !strings.Contains(html, "<h1>Quarterly</h1>") {
		t.Fatalf("unexpected engine input %q", html)
	}
}

func TestRunRendersGoTemplateView(t *testing.T) {
	dir := t.TempDir()
	views := writeFile(t, filepath.Join(dir, "views"), "letters/welcome.html", "<p>Welcome {{ name }}</p>")
	data := writeFile(t, dir, "data.json", `{"name": "Ada"}`)
	output := filepath.Join(dir, "welcome.pdf")
	bin := fakeWKHTMLTOPDF(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"--engine", "wkhtmltopdf",
		"--wkhtmltopdf", bin.path,
		"--views", filepath.Dir(filepath.Dir(views)),
		"--views-engine", "go-template",
		"--view", "letters.welcome",
		"--data", data,
		"--out", output,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	assertPDF(t, content)
	if html := bin.html(t); !strings.Contains(html, "<p>Welcome Ada</p>") {
		t.Fatalf("unexpected engine input %q", html)
	}
}

func TestRunWritesStdout(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.html", "<p>stdout</p>")
	bin := fakeWKHTMLTOPDF(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"--engine", "wkhtmltopdf",
		"--wkhtmltopdf", bin.path,
		"--html", input,
		"--verbose",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertPDF(t, stdout.Bytes())
	if html := bin.html(t); !strings.Contains(html, "<p>stdout</p>") {
		t.Fatalf("unexpected engine input %q", html)
	}
	if !strings.Contains(stderr.String(), "[INFO] pdfgen:") {
		t.Fatalf("expected verbose log lines, got %q", stderr.String())
	}
}

func TestRunBatchHonorsLimits(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "out", "first.pdf")
	second := filepath.Join(dir, "out", "second.pdf")
	batch := writeFile(t, dir, "batch.yaml", "- html: <p>first</p>\n  filename: "+first+
		"\n- html: <p>second</p>\n  filename: "+second+"\n")

	cases := []struct {
		name     string
		args     []string
		rendered []string
		skipped  []string
		summary  string
	}{
		{
			name:     "all documents",
			rendered: []string{first, second},
			summary:  "rendered 2 documents",
		},
		{
			name:     "max documents",
			args:     []string{"--batch-max", "1"},
			rendered: []string{first},
			skipped:  []string{second},
			summary:  "rendered 1 documents",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := os.RemoveAll(filepath.Join(dir, "out")); err != nil {
				t.Fatalf("reset output: %v", err)
			}
			bin := fakeWKHTMLTOPDF(t)
			var stdout, stderr bytes.Buffer

			args := append([]string{
				"--engine", "wkhtmltopdf",
				"--wkhtmltopdf", bin.path,
				"--batch", batch,
			}, tc.args...)
			if err := run(context.Background(), args, &stdout, &stderr); err != nil {
				t.Fatalf("run: %v", err)
			}

			for _, path := range tc.rendered {
				content, err := os.ReadFile(path)
				if err != nil {
					t.Fatalf("read %s: %v", path, err)
				}
				assertPDF(t, content)
			}
			for _, path := range tc.skipped {
				if _, err := os.Stat(path); !os.IsNotExist(err) {
					t.Fatalf("expected %s to be skipped, got %v", path, err)
				}
			}
			if !strings.Contains(stdout.String(), tc.summary) {
				t.Fatalf("unexpected stdout %q", stdout.String())
			}
			if html := bin.html(t); !strings.Contains(html, "<p>first</p>") {
				t.Fatalf("unexpected engine input %q", html)
			}
		})
	}
}
