package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	template "github.com/goliatone/go-template"

	"github.com/goliatone/go-pdf/pdf"
)

// GoTemplateRenderer renders views through a go-template engine rooted at a
// views directory.
type GoTemplateRenderer struct {
	dir      string
	ext      string
	Renderer template.Renderer
}

// NewGoTemplateRenderer creates a go-template engine over dir with the
// to_json filter registered. Extra options are applied after the base dir and
// extension.
func NewGoTemplateRenderer(dir, ext string, opts ...template.Option) (*GoTemplateRenderer, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, pdf.NewError(pdf.KindNotFound, fmt.Sprintf("views directory %q not found", dir), err)
	}
	ext = normalizeExtension(ext)

	engine, err := template.NewRenderer(append([]template.Option{
		template.WithBaseDir(dir),
		template.WithExtension(ext),
	}, opts...)...)
	if err != nil {
		return nil, pdf.NewError(pdf.KindInternal, "create go-template engine", err)
	}
	if err := registerGoTemplateJSON(engine); err != nil {
		return nil, err
	}
	return &GoTemplateRenderer{dir: dir, ext: ext, Renderer: engine}, nil
}

// RenderView executes the named view.
func (r *GoTemplateRenderer) RenderView(ctx context.Context, name string, data map[string]any, w io.Writer) error {
	if r == nil || r.Renderer == nil {
		return pdf.NewError(pdf.KindConfigMissing, "go-template renderer is not initialized", nil)
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
	if _, err := os.Stat(filepath.Join(r.dir, filepath.FromSlash(file))); errors.Is(err, fs.ErrNotExist) {
		return pdf.NewError(pdf.KindNotFound, fmt.Sprintf("view %q not found", name), err)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, err := r.Renderer.Render(strings.TrimSuffix(file, r.ext), data, w); err != nil {
		return pdf.NewError(pdf.KindValidation, fmt.Sprintf("render view %q", name), err)
	}
	return nil
}

func registerGoTemplateJSON(engine *template.Engine) error {
	err := engine.RegisterFilter("to_json", func(input any, _ any) (any, error) {
		payload, err := json.Marshal(input)
		if err != nil {
			return "", err
		}
		return string(payload), nil
	})
	if err == nil || strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return pdf.NewError(pdf.KindInternal, "register to_json filter", err)
}
