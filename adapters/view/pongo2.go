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
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-pdf/pdf"
)

var registerFilters sync.Once

// Pongo2Renderer renders Django-style templates from a directory.
type Pongo2Renderer struct {
	dir string
	ext string
	set *pongo2.TemplateSet

	// Reload re-parses templates on every render instead of using the cache.
	Reload bool
}

// NewPongo2Renderer creates a renderer rooted at dir.
func NewPongo2Renderer(dir, ext string) (*Pongo2Renderer, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, pdf.NewError(pdf.KindNotFound, fmt.Sprintf("views directory %q not found", dir), err)
	}
	loader, err := pongo2.NewLocalFileSystemLoader(dir)
	if err != nil {
		return nil, pdf.NewError(pdf.KindInternal, "create pongo2 loader", err)
	}
	if err := RegisterToJSON(); err != nil {
		return nil, err
	}
	return &Pongo2Renderer{
		dir: dir,
		ext: normalizeExtension(ext),
		set: pongo2.NewSet("go-pdf", loader),
	}, nil
}

// RenderView executes the named view.
func (r *Pongo2Renderer) RenderView(ctx context.Context, name string, data map[string]any, w io.Writer) error {
	if r == nil || r.set == nil {
		return pdf.NewError(pdf.KindConfigMissing, "pongo2 renderer is not initialized", nil)
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

	var tpl *pongo2.Template
	if r.Reload {
		tpl, err = r.set.FromFile(file)
	} else {
		tpl, err = r.set.FromCache(file)
	}
	if err != nil {
		return pdf.NewError(pdf.KindValidation, fmt.Sprintf("parse view %q", name), err)
	}
	if err := tpl.ExecuteWriter(pongo2.Context(data), w); err != nil {
		return pdf.NewError(pdf.KindValidation, fmt.Sprintf("render view %q", name), err)
	}
	return nil
}

// RegisterToJSON registers the to_json filter with pongo2. It is safe to call
// more than once.
func RegisterToJSON() error {
	var regErr error
	registerFilters.Do(func() {
		if pongo2.FilterExists("to_json") {
			return
		}
		regErr = pongo2.RegisterFilter("to_json", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			payload, err := json.Marshal(in.Interface())
			if err != nil {
				return nil, &pongo2.Error{Sender: "filter:to_json", OrigError: err}
			}
			return pongo2.AsSafeValue(string(payload)), nil
		})
	})
	if regErr != nil && !strings.Contains(regErr.Error(), "already") {
		return pdf.NewError(pdf.KindInternal, "register to_json filter", regErr)
	}
	return nil
}
