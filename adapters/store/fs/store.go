package storefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-pdf/pdf"
)

// Store keeps saved documents under Root with a JSON metadata sidecar.
type Store struct {
	Root string
	// BaseURL, when set, is used to build the Location of stored documents.
	BaseURL string
	Now     func() time.Time
}

var _ pdf.ArtifactStore = (*Store)(nil)

// NewStore creates a filesystem-backed document store.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Put writes the document atomically and returns its reference.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta pdf.ArtifactMeta) (pdf.ArtifactRef, error) {
	if err := s.check(key); err != nil {
		return pdf.ArtifactRef{}, err
	}
	if r == nil {
		return pdf.ArtifactRef{}, pdf.NewError(pdf.KindValidation, "document reader is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return pdf.ArtifactRef{}, pdf.NewError(pdf.KindFromError(err), "store canceled", err)
	}

	target, err := s.resolvePath(key)
	if err != nil {
		return pdf.ArtifactRef{}, err
	}

	size, err := writeAtomic(target, ".pdf-*", r)
	if err != nil {
		return pdf.ArtifactRef{}, pdf.NewError(pdf.KindInternal, fmt.Sprintf("store %q", key), err)
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.ContentType == "" {
		meta.ContentType = pdf.ContentTypePDF
	}
	if meta.Filename == "" {
		meta.Filename = filepath.Base(target)
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return pdf.ArtifactRef{}, pdf.NewError(pdf.KindInternal, "encode metadata", err)
	}
	if _, err := writeAtomic(metaPath(target), ".meta-*", strings.NewReader(string(payload))); err != nil {
		return pdf.ArtifactRef{}, pdf.NewError(pdf.KindInternal, "write metadata", err)
	}

	return pdf.ArtifactRef{Key: key, Location: s.location(key, target), Meta: meta}, nil
}

// Open reads a stored document and its metadata.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, pdf.ArtifactMeta, error) {
	_ = ctx
	if err := s.check(key); err != nil {
		return nil, pdf.ArtifactMeta{}, err
	}
	target, err := s.resolvePath(key)
	if err != nil {
		return nil, pdf.ArtifactMeta{}, err
	}

	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pdf.ArtifactMeta{}, pdf.NewError(pdf.KindNotFound, fmt.Sprintf("document %q not found", key), err)
		}
		return nil, pdf.ArtifactMeta{}, pdf.NewError(pdf.KindInternal, fmt.Sprintf("open %q", key), err)
	}

	meta := readMeta(target)
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	if meta.ContentType == "" {
		meta.ContentType = pdf.ContentTypePDF
	}
	return file, meta, nil
}

// Delete removes a stored document and its metadata.
func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	if err := s.check(key); err != nil {
		return err
	}
	target, err := s.resolvePath(key)
	if err != nil {
		return err
	}
	_ = os.Remove(target)
	_ = os.Remove(metaPath(target))
	return nil
}

func (s *Store) check(key string) error {
	if s == nil {
		return pdf.NewError(pdf.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return pdf.NewError(pdf.KindConfigMissing, "store root is required", nil)
	}
	if strings.TrimSpace(key) == "" {
		return pdf.NewError(pdf.KindValidation, "document key is required", nil)
	}
	return nil
}

func (s *Store) resolvePath(key string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(key)), "/")
	if rel == "" || rel == "." {
		return "", pdf.NewError(pdf.KindValidation, "invalid document key", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", pdf.NewError(pdf.KindInternal, "resolve store root", err)
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !within(root, target) {
		return "", pdf.NewError(pdf.KindValidation, "document key escapes root", nil)
	}
	return target, nil
}

// within reports whether target is strictly below root.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

func (s *Store) location(key, target string) string {
	if s.BaseURL == "" {
		return target
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimPrefix(path.Clean("/"+key), "/")
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func writeAtomic(target, pattern string, r io.Reader) (int64, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, err
	}
	return size, nil
}

func readMeta(target string) pdf.ArtifactMeta {
	data, err := os.ReadFile(metaPath(target))
	if err != nil {
		return pdf.ArtifactMeta{}
	}
	var meta pdf.ArtifactMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return pdf.ArtifactMeta{}
	}
	return meta
}

func metaPath(target string) string {
	return target + ".meta.json"
}
