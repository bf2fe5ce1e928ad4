package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Metadata is written into rendered output: title and author go to the
// document information dictionary, the display mode becomes the catalog
// open action.
type Metadata struct {
	Title       string
	Author      string
	DisplayMode string
}

// openAction returns the destination (without the page reference) a viewer
// should open with. A nil result leaves the viewer default.
func openAction(mode string) (types.Array, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case "", "default", "none":
		return nil, nil
	case "fullpage":
		return types.Array{types.Name("Fit")}, nil
	case "fullwidth":
		return types.Array{types.Name("FitH"), nil}, nil
	case "real":
		return types.Array{types.Name("XYZ"), nil, nil, types.Float(1)}, nil
	}
	zoom, err := strconv.ParseFloat(strings.TrimSuffix(mode, "%"), 64)
	if err != nil || zoom <= 0 {
		return nil, NewError(KindValidation, fmt.Sprintf("unsupported display mode: %s", mode), nil)
	}
	return types.Array{types.Name("XYZ"), nil, nil, types.Float(zoom / 100)}, nil
}

func (m Metadata) properties() map[string]string {
	props := map[string]string{}
	if title := strings.TrimSpace(m.Title); title != "" {
		props["Title"] = title
	}
	if author := strings.TrimSpace(m.Author); author != "" {
		props["Author"] = author
	}
	return props
}

// ApplyMetadata writes m into data and returns the rewritten PDF. data is
// returned as is when m carries nothing to write.
func ApplyMetadata(data []byte, m Metadata) ([]byte, error) {
	dest, err := openAction(m.DisplayMode)
	if err != nil {
		return nil, err
	}
	props := m.properties()
	if dest == nil && len(props) == 0 {
		return data, nil
	}

	ctx, err := api.ReadAndValidate(bytes.NewReader(data), pdfcpuConfiguration())
	if err != nil {
		return nil, NewError(KindInternal, "read rendered pdf", err)
	}

	if len(props) > 0 {
		if err := pdfcpu.PropertiesAdd(ctx, props); err != nil {
			return nil, NewError(KindInternal, "write document info", err)
		}
	}

	if dest != nil {
		_, pageRef, _, err := ctx.PageDict(1, false)
		if err != nil {
			return nil, NewError(KindInternal, "resolve first page", err)
		}
		if pageRef == nil {
			return nil, NewError(KindInternal, "rendered pdf has no pages", nil)
		}
		ctx.RootDict["OpenAction"] = append(types.Array{*pageRef}, dest...)
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, NewError(KindInternal, "write rendered pdf", err)
	}
	return out.Bytes(), nil
}
