package query

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// InspectDocument reads the page count of a rendered document, either from
// Data or from the file at Path.
type InspectDocument struct {
	Path string
	Data []byte
}

func (InspectDocument) Type() string { return "pdf:inspect" }

func (msg InspectDocument) Validate() error {
	hasPath := strings.TrimSpace(msg.Path) != ""
	if !hasPath && len(msg.Data) == 0 {
		return errors.New("path or data is required", errors.CategoryValidation).
			WithTextCode("SOURCE_REQUIRED")
	}
	if hasPath && len(msg.Data) > 0 {
		return errors.New("only one of path or data may be set", errors.CategoryValidation).
			WithTextCode("SOURCE_AMBIGUOUS")
	}
	return nil
}

// StoredDocument requests a saved document and its metadata.
type StoredDocument struct {
	Key string
}

func (StoredDocument) Type() string { return "pdf:stored" }

func (msg StoredDocument) Validate() error {
	if strings.TrimSpace(msg.Key) == "" {
		return errors.New("document key is required", errors.CategoryValidation).
			WithTextCode("KEY_REQUIRED")
	}
	return nil
}
