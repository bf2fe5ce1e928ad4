package pdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

var customFormatPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*[xX]\s*([0-9]+(?:\.[0-9]+)?)\s*$`)

// Paper sizes in millimetres, portrait.
var pageSizesMM = map[string]PageSize{
	"A0":        {Width: 841, Height: 1189},
	"A1":        {Width: 594, Height: 841},
	"A2":        {Width: 420, Height: 594},
	"A3":        {Width: 297, Height: 420},
	"A4":        {Width: 210, Height: 297},
	"A5":        {Width: 148, Height: 210},
	"A6":        {Width: 105, Height: 148},
	"B4":        {Width: 250, Height: 353},
	"B5":        {Width: 176, Height: 250},
	"LETTER":    {Width: 215.9, Height: 279.4},
	"LEGAL":     {Width: 215.9, Height: 355.6},
	"LEDGER":    {Width: 279.4, Height: 431.8},
	"TABLOID":   {Width: 279.4, Height: 431.8},
	"EXECUTIVE": {Width: 184.15, Height: 266.7},
	"FOLIO":     {Width: 210, Height: 330},
}

// PageSize is a paper size in millimetres.
type PageSize struct {
	Width     float64
	Height    float64
	Landscape bool
}

// ParseFormat resolves a named paper size ("A4"), a named size with an
// orientation suffix ("A4-L") or a custom "WIDTHxHEIGHT" size in millimetres.
func ParseFormat(format string) (PageSize, error) {
	name := strings.ToUpper(strings.TrimSpace(format))
	if name == "" {
		name = defaultFormat
	}

	if matches := customFormatPattern.FindStringSubmatch(name); len(matches) == 3 {
		width, _ := strconv.ParseFloat(matches[1], 64)
		height, _ := strconv.ParseFloat(matches[2], 64)
		if width <= 0 || height <= 0 {
			return PageSize{}, NewError(KindValidation, fmt.Sprintf("invalid page format: %s", format), nil)
		}
		return PageSize{Width: width, Height: height}, nil
	}

	landscape := false
	if base, suffix, ok := strings.Cut(name, "-"); ok {
		switch suffix {
		case "L":
			landscape = true
		case "P":
		default:
			return PageSize{}, NewError(KindValidation, fmt.Sprintf("unsupported page format: %s", format), nil)
		}
		name = base
	}

	size, ok := pageSizesMM[name]
	if !ok {
		return PageSize{}, NewError(KindValidation, fmt.Sprintf("unsupported page format: %s", format), nil)
	}
	size.Landscape = landscape
	return size, nil
}

// ParseLength converts a CSS-like length ("10mm", "1in", "72pt") into
// millimetres. A bare number is taken as millimetres.
func ParseLength(value string) (float64, error) {
	matches := lengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, NewError(KindValidation, fmt.Sprintf("invalid length: %s", value), nil)
	}

	raw := matches[1]
	unit := strings.ToLower(matches[2])
	if unit == "" {
		unit = "mm"
	}

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, NewError(KindValidation, fmt.Sprintf("invalid length: %s", value), err)
	}

	switch unit {
	case "mm":
		return amount, nil
	case "cm":
		return amount * 10, nil
	case "in":
		return amount * 25.4, nil
	case "pt":
		return amount * 25.4 / 72.0, nil
	case "px":
		return amount * 25.4 / 96.0, nil
	default:
		return 0, NewError(KindValidation, fmt.Sprintf("unsupported length unit: %s", unit), nil)
	}
}

// MillimetresToInches converts a length for engines that work in inches.
func MillimetresToInches(mm float64) float64 {
	return mm / 25.4
}
