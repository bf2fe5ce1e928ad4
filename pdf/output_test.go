package pdf

import (
	"errors"
	"testing"
)

type recordingResponse struct {
	headers map[string]string
	body    []byte
	err     error
}

func (r *recordingResponse) SetHeader(name, value string) {
	if r.headers == nil {
		r.headers = map[string]string{}
	}
	r.headers[name] = value
}

func (r *recordingResponse) Write(data []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.body = append(r.body, data...)
	return len(data), nil
}

func TestWriteResponseHeaders(t *testing.T) {
	res := &recordingResponse{}
	if err := WriteResponse(res, DestinationInline, "q1 report.pdf", "doc-1", []byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}

	expect := map[string]string{
		"Content-Type":        "application/pdf",
		"Content-Disposition": `inline; filename="q1 report.pdf"`,
		"Content-Length":      "3",
		"Cache-Control":       "public, must-revalidate, max-age=0",
		"Pragma":              "public",
		"X-Document-Id":       "doc-1",
	}
	for key, want := range expect {
		if got := res.headers[key]; got != want {
			t.Fatalf("header %s: expected %q, got %q", key, want, got)
		}
	}
	if res.headers["Last-Modified"] == "" {
		t.Fatalf("expected Last-Modified")
	}
	if string(res.body) != "abc" {
		t.Fatalf("unexpected body %q", res.body)
	}
}

func TestWriteResponseErrors(t *testing.T) {
	if err := WriteResponse(&recordingResponse{}, DestinationFile, "a.pdf", "", nil); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for file destination, got %v", err)
	}
	if err := WriteResponse(nil, DestinationInline, "a.pdf", "", nil); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for nil response, got %v", err)
	}
	broken := errors.New("client gone")
	err := WriteResponse(&recordingResponse{err: broken}, DestinationDownload, "a.pdf", "", []byte("x"))
	if !errors.Is(err, broken) {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"":                "document.pdf",
		"report":          "report.pdf",
		"Report.PDF":      "Report.PDF",
		`a"b.pdf`:         "ab.pdf",
		"../../etc/x.pdf": ".._.._etc_x.pdf",
		"line\nbreak.pdf": "linebreak.pdf",
	}
	for input, want := range cases {
		if got := SanitizeFilename(input); got != want {
			t.Fatalf("SanitizeFilename(%q): expected %q, got %q", input, want, got)
		}
	}
}
