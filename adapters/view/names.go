package view

import (
	"path"
	"strings"

	"github.com/goliatone/go-pdf/pdf"
)

const defaultExtension = ".html"

// templateName maps a view name onto a slash separated file name.
func templateName(view, ext string) (string, error) {
	name := strings.TrimSpace(view)
	if name == "" {
		return "", pdf.NewError(pdf.KindValidation, "view name is required", nil)
	}
	if ext == "" {
		ext = defaultExtension
	}
	name = strings.TrimSuffix(name, ext)
	name = strings.ReplaceAll(name, "\\", "/")
	if !strings.Contains(name, "/") {
		name = strings.ReplaceAll(name, ".", "/")
	}
	name = path.Clean("/" + name)[1:]
	if name == "" || name == "." {
		return "", pdf.NewError(pdf.KindValidation, "view name is required", nil)
	}
	return name + ext, nil
}

func normalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return defaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
