package view

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-pdf/pdf"
)

// TemplateRenderer renders html/template views parsed from a directory.
// Every file is parsed into one set, so views can call each other with
// {{template "partials/header.html" .}}.
type TemplateRenderer struct {
	templates *template.Template
	ext       string
}

// NewTemplateRenderer parses every file ending in ext below dir.
func NewTemplateRenderer(dir, ext string, funcs template.FuncMap) (*TemplateRenderer, error) {
	ext = normalizeExtension(ext)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, pdf.NewError(pdf.KindNotFound, fmt.Sprintf("views directory %q not found", dir), err)
	}

	root := template.New("").Funcs(template.FuncMap{"to_json": toJSON})
	if len(funcs) > 0 {
		root = root.Funcs(funcs)
	}

	err = filepath.WalkDir(dir, func(file string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if _, err := root.New(filepath.ToSlash(rel)).Parse(string(content)); err != nil {
			return pdf.NewError(pdf.KindValidation, fmt.Sprintf("parse view %q", rel), err)
		}
		return nil
	})
	if err != nil {
		if pdf.KindFromError(err) == pdf.KindValidation {
			return nil, err
		}
		return nil, pdf.NewError(pdf.KindInternal, "load views", err)
	}

	return &TemplateRenderer{templates: root, ext: ext}, nil
}

// RenderView executes the named view.
func (r *TemplateRenderer) RenderView(ctx context.Context, name string, data map[string]any, w io.Writer) error {
	if r == nil || r.templates == nil {
		return pdf.NewError(pdf.KindConfigMissing, "template renderer is not initialized", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	file, err := templateName(name, r.ext)
	if err != nil {
		return err
	}
	tmpl := r.templates.Lookup(file)
	if tmpl == nil {
		return pdf.NewError(pdf.KindNotFound, fmt.Sprintf("view %q not found", name), nil)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return pdf.NewError(pdf.KindValidation, fmt.Sprintf("render view %q", name), err)
	}
	return nil
}

// Views lists the parsed view file names.
func (r *TemplateRenderer) Views() []string {
	if r == nil || r.templates == nil {
		return nil
	}
	var names []string
	for _, tmpl := range r.templates.Templates() {
		if tmpl.Name() != "" {
			names = append(names, tmpl.Name())
		}
	}
	return names
}

func toJSON(value any) (template.JS, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return template.JS(payload), nil
}
