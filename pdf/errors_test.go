package pdf

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errorslib "github.com/goliatone/go-errors"
)

func TestAsGoErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		category errorslib.Category
		code     string
	}{
		{NewError(KindValidation, "bad input", nil), errorslib.CategoryValidation, "validation"},
		{NewError(KindConfigMissing, "custom_font_path not set", nil), errorslib.CategoryValidation, "config_missing"},
		{NewError(KindNotFound, "missing", nil), errorslib.CategoryNotFound, "not_found"},
		{context.DeadlineExceeded, errorslib.CategoryOperation, "timeout"},
		{context.Canceled, errorslib.CategoryOperation, "canceled"},
		{NewError(KindNotImpl, "nope", nil), errorslib.CategoryOperation, "not_implemented"},
		{NewError(KindInternal, "boom", nil), errorslib.CategoryInternal, "internal"},
		{errors.New("plain"), errorslib.CategoryInternal, "internal"},
	}

	for _, tc := range cases {
		mapped := AsGoError(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapping for %v", tc.err)
		}
		if mapped.Category != tc.category {
			t.Fatalf("expected category %s, got %s", tc.category, mapped.Category)
		}
		if mapped.TextCode != tc.code {
			t.Fatalf("expected text code %s, got %s", tc.code, mapped.TextCode)
		}
	}
}

func TestAsGoErrorNil(t *testing.T) {
	if AsGoError(nil) != nil {
		t.Fatalf("expected nil mapping for nil error")
	}
}

func TestKindFromError_Wrapped(t *testing.T) {
	base := NewError(KindConfigMissing, "custom_font_path not set", nil)
	wrapped := fmt.Errorf("add font: %w", base)
	if got := KindFromError(wrapped); got != KindConfigMissing {
		t.Fatalf("expected config_missing, got %q", got)
	}
	if got := KindFromError(fmt.Errorf("render: %w", context.DeadlineExceeded)); got != KindTimeout {
		t.Fatalf("expected timeout, got %q", got)
	}
	if got := KindFromError(nil); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewError(KindInternal, "wkhtmltopdf failed", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "wkhtmltopdf failed: exit status 1" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
