package engine

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-pdf/pdf"
)

// WKHTMLTOPDFEngine invokes wkhtmltopdf for HTML-to-PDF conversion.
type WKHTMLTOPDFEngine struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// Render executes wkhtmltopdf using stdin/stdout for HTML/PDF.
func (e WKHTMLTOPDFEngine) Render(ctx context.Context, req pdf.RenderRequest) ([]byte, error) {
	cmdPath := strings.TrimSpace(e.Command)
	if cmdPath == "" {
		cmdPath = "wkhtmltopdf"
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cmdCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := wkhtmltopdfArgs(req)
	args = append(args, e.Args...)
	args = append(args, "-", "-")
	cmd := exec.CommandContext(cmdCtx, cmdPath, args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(req.HTML)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := cmdCtx.Err(); ctxErr != nil {
			return nil, pdf.NewError(pdf.KindFromError(ctxErr), "wkhtmltopdf interrupted", ctxErr)
		}
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltopdf failed"
		}
		return nil, pdf.NewError(pdf.KindInternal, message, err)
	}
	return stdout.Bytes(), nil
}

// Close satisfies RenderCloser.
func (e WKHTMLTOPDFEngine) Close() error { return nil }

// wkhtmltopdfArgs maps page options onto command line flags. Lengths are
// passed in millimetres.
func wkhtmltopdfArgs(req pdf.RenderRequest) []string {
	opts := req.Page
	args := []string{"--quiet", "--encoding", "utf-8"}

	if opts.PaperWidth > 0 && opts.PaperHeight > 0 {
		args = append(args,
			"--page-width", mm(opts.PaperWidth),
			"--page-height", mm(opts.PaperHeight),
		)
	}
	if opts.Landscape {
		args = append(args, "--orientation", "Landscape")
	} else {
		args = append(args, "--orientation", "Portrait")
	}
	args = append(args,
		"--margin-top", mm(opts.MarginTop),
		"--margin-bottom", mm(opts.MarginBottom),
		"--margin-left", mm(opts.MarginLeft),
		"--margin-right", mm(opts.MarginRight),
	)
	if opts.MarginHeader > 0 {
		args = append(args, "--header-spacing", strconv.FormatFloat(opts.MarginHeader, 'f', -1, 64))
	}
	if opts.MarginFooter > 0 {
		args = append(args, "--footer-spacing", strconv.FormatFloat(opts.MarginFooter, 'f', -1, 64))
	}
	if opts.Scale > 0 && opts.Scale != 1 {
		args = append(args, "--zoom", strconv.FormatFloat(opts.Scale, 'f', -1, 64))
	}
	if opts.PrintBackground {
		args = append(args, "--background")
	} else {
		args = append(args, "--no-background")
	}
	if opts.ExternalAssetsPolicy == pdf.ExternalAssetsBlock {
		args = append(args, "--disable-external-links", "--disable-local-file-access")
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		args = append(args, "--title", title)
	}
	return args
}

func mm(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "mm"
}
