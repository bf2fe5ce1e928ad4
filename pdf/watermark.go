package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	watermarkPoints = 72
	watermarkColor  = "#808080"
)

var disablePDFCPUConfigDir sync.Once

// pdfcpuConfiguration returns a relaxed pdfcpu configuration. The first call
// switches pdfcpu to its built-in defaults for the whole process
// (api.DisableConfigDir), so no config directory or user fonts are read from
// disk. Hosts that rely on a pdfcpu config dir should call
// api.EnsureDefaultConfigAt after the first render.
func pdfcpuConfiguration() *model.Configuration {
	disablePDFCPUConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Watermark describes a text watermark stamped across every page.
type Watermark struct {
	Text  string
	Font  string
	Alpha float64
}

// watermarkFontName maps CSS-ish family names onto the PDF core fonts
// available to the stamping step.
func watermarkFontName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "serif", "times", "times-roman", "times new roman":
		return "Times-Roman"
	case "monospace", "mono", "courier", "courier new":
		return "Courier"
	case "helvetica-bold", "sans-serif-bold":
		return "Helvetica-Bold"
	default:
		return "Helvetica"
	}
}

func (w Watermark) description() string {
	alpha := w.Alpha
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return fmt.Sprintf("fontname:%s, points:%d, diagonal:1, opacity:%s, fillcolor:%s",
		watermarkFontName(w.Font), watermarkPoints, formatFloat(alpha), watermarkColor)
}

// ApplyWatermark stamps w onto every page of data.
func ApplyWatermark(data []byte, w Watermark) ([]byte, error) {
	if strings.TrimSpace(w.Text) == "" {
		return data, nil
	}

	conf := pdfcpuConfiguration()

	wm, err := api.TextWatermark(w.Text, w.description(), true, false, types.POINTS)
	if err != nil {
		return nil, NewError(KindValidation, "invalid watermark", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(data), &out, nil, wm, conf); err != nil {
		return nil, NewError(KindInternal, "apply watermark", err)
	}
	return out.Bytes(), nil
}
