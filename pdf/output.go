package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	ContentTypePDF   = "application/pdf"
	HeaderDocumentID = "X-Document-Id"
)

// Response is the transport-neutral part of an HTTP response used by
// Download and Stream.
type Response interface {
	SetHeader(name, value string)
	Write(data []byte) (int, error)
}

// ArtifactMeta captures stored document metadata.
type ArtifactMeta struct {
	ContentType string
	Size        int64
	Filename    string
	DocumentID  string
	Pages       int
	CreatedAt   time.Time
}

// ArtifactRef references a stored document.
type ArtifactRef struct {
	Key      string
	Location string
	Meta     ArtifactMeta
}

// ArtifactStore stores saved documents.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
}

// WriteResponse writes data with the headers matching dest. Only
// DestinationDownload and DestinationInline are valid here.
func WriteResponse(res Response, dest Destination, filename, documentID string, data []byte) error {
	if res == nil {
		return NewError(KindValidation, "response is required", nil)
	}
	disposition := ""
	switch dest {
	case DestinationDownload:
		disposition = "attachment"
	case DestinationInline:
		disposition = "inline"
	default:
		return NewError(KindValidation, fmt.Sprintf("destination %q cannot be written to a response", dest), nil)
	}

	filename = SanitizeFilename(filename)
	res.SetHeader("Content-Type", ContentTypePDF)
	res.SetHeader("Content-Disposition", fmt.Sprintf("%s; filename=\"%s\"", disposition, filename))
	res.SetHeader("Content-Length", strconv.Itoa(len(data)))
	res.SetHeader("Cache-Control", "public, must-revalidate, max-age=0")
	res.SetHeader("Pragma", "public")
	res.SetHeader("Expires", "Sat, 26 Jul 1997 05:00:00 GMT")
	res.SetHeader("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	if documentID != "" {
		res.SetHeader(HeaderDocumentID, documentID)
	}
	if _, err := res.Write(data); err != nil {
		return NewError(KindInternal, "write pdf response", err)
	}
	return nil
}

// HTTPResponse adapts an http.ResponseWriter.
func HTTPResponse(w http.ResponseWriter) Response {
	return httpResponse{w: w}
}

type httpResponse struct {
	w http.ResponseWriter
}

func (res httpResponse) SetHeader(name, value string) {
	if res.w == nil {
		return
	}
	res.w.Header().Set(name, value)
}

func (res httpResponse) Write(data []byte) (int, error) {
	if res.w == nil {
		return 0, nil
	}
	return res.w.Write(data)
}

// SanitizeFilename strips characters that would break a Content-Disposition
// header or escape a directory and ensures a .pdf extension.
func SanitizeFilename(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = defaultFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewError(KindInternal, "create directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".pdf-*")
	if err != nil {
		return NewError(KindInternal, "create temp file", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return NewError(KindInternal, "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return NewError(KindInternal, "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return NewError(KindInternal, "close temp file", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return NewError(KindInternal, "chmod temp file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return NewError(KindInternal, "rename temp file", err)
	}
	return nil
}
