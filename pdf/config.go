package pdf

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultFilename       = "document.pdf"
	defaultFormat         = "A4"
	defaultOrientation    = "P"
	defaultMargin         = 10.0
	defaultWatermarkAlpha = 0.1
)

var displayModes = map[string]struct{}{
	"fullpage":  {},
	"fullwidth": {},
	"real":      {},
	"default":   {},
	"none":      {},
}

// Config holds document settings. Pointer fields distinguish "unset" from an
// explicit zero so that merging keeps the caller's intent.
type Config struct {
	Title           string  `yaml:"title"`
	Author          string  `yaml:"author"`
	Mode            string  `yaml:"mode"`
	Format          string  `yaml:"format"`
	DefaultFontSize float64 `yaml:"default_font_size"`
	DefaultFont     string  `yaml:"default_font"`
	CustomFontPath  string  `yaml:"custom_font_path"`
	FontCachePath   string  `yaml:"font_cache_path"`
	Dir             string  `yaml:"dir"`
	Direction       string  `yaml:"direction"`

	MarginLeft   *float64 `yaml:"margin_left"`
	MarginRight  *float64 `yaml:"margin_right"`
	MarginTop    *float64 `yaml:"margin_top"`
	MarginBottom *float64 `yaml:"margin_bottom"`
	MarginHeader *float64 `yaml:"margin_header"`
	MarginFooter *float64 `yaml:"margin_footer"`
	Orientation  string   `yaml:"orientation"`

	ShowWatermark      *bool    `yaml:"show_watermark"`
	Watermark          string   `yaml:"watermark"`
	WatermarkFont      string   `yaml:"watermark_font"`
	WatermarkTextAlpha *float64 `yaml:"watermark_text_alpha"`
	DisplayMode        string   `yaml:"display_mode"`

	PrintBackground      *bool                `yaml:"print_background"`
	BaseURL              string               `yaml:"base_url"`
	ExternalAssetsPolicy ExternalAssetsPolicy `yaml:"external_assets_policy"`
}

// Defaults returns the package configuration.
func Defaults() Config {
	return Config{
		Title:              "go-pdf",
		Mode:               "s",
		Format:             defaultFormat,
		DefaultFontSize:    13,
		DefaultFont:        "sans-serif",
		Direction:          "ltr",
		MarginLeft:         Float(defaultMargin),
		MarginRight:        Float(defaultMargin),
		MarginTop:          Float(defaultMargin),
		MarginBottom:       Float(defaultMargin),
		MarginHeader:       Float(0),
		MarginFooter:       Float(0),
		Orientation:        defaultOrientation,
		ShowWatermark:      Bool(false),
		Watermark:          "Document",
		WatermarkFont:      "sans-serif",
		WatermarkTextAlpha: Float(defaultWatermarkAlpha),
		DisplayMode:        "fullpage",
		PrintBackground:    Bool(true),
	}
}

// MergeConfig layers overrides on top of base. Later overrides win; only
// fields set on an override replace the accumulated value.
func MergeConfig(base Config, overrides ...Config) Config {
	merged := base
	for _, override := range overrides {
		merged = mergeConfig(merged, override)
	}
	return merged
}

func mergeConfig(base, override Config) Config {
	merged := base
	if override.Title != "" {
		merged.Title = override.Title
	}
	if override.Author != "" {
		merged.Author = override.Author
	}
	if override.Mode != "" {
		merged.Mode = override.Mode
	}
	if override.Format != "" {
		merged.Format = override.Format
	}
	if override.DefaultFontSize != 0 {
		merged.DefaultFontSize = override.DefaultFontSize
	}
	if override.DefaultFont != "" {
		merged.DefaultFont = override.DefaultFont
	}
	if override.CustomFontPath != "" {
		merged.CustomFontPath = override.CustomFontPath
	}
	if override.FontCachePath != "" {
		merged.FontCachePath = override.FontCachePath
	}
	if override.Dir != "" {
		merged.Dir = override.Dir
	}
	if override.Direction != "" {
		merged.Direction = override.Direction
	}
	if override.MarginLeft != nil {
		merged.MarginLeft = Float(*override.MarginLeft)
	}
	if override.MarginRight != nil {
		merged.MarginRight = Float(*override.MarginRight)
	}
	if override.MarginTop != nil {
		merged.MarginTop = Float(*override.MarginTop)
	}
	if override.MarginBottom != nil {
		merged.MarginBottom = Float(*override.MarginBottom)
	}
	if override.MarginHeader != nil {
		merged.MarginHeader = Float(*override.MarginHeader)
	}
	if override.MarginFooter != nil {
		merged.MarginFooter = Float(*override.MarginFooter)
	}
	if override.Orientation != "" {
		merged.Orientation = override.Orientation
	}
	if override.ShowWatermark != nil {
		merged.ShowWatermark = Bool(*override.ShowWatermark)
	}
	if override.Watermark != "" {
		merged.Watermark = override.Watermark
	}
	if override.WatermarkFont != "" {
		merged.WatermarkFont = override.WatermarkFont
	}
	if override.WatermarkTextAlpha != nil {
		merged.WatermarkTextAlpha = Float(*override.WatermarkTextAlpha)
	}
	if override.DisplayMode != "" {
		merged.DisplayMode = override.DisplayMode
	}
	if override.PrintBackground != nil {
		merged.PrintBackground = Bool(*override.PrintBackground)
	}
	if override.BaseURL != "" {
		merged.BaseURL = override.BaseURL
	}
	if override.ExternalAssetsPolicy != "" {
		merged.ExternalAssetsPolicy = override.ExternalAssetsPolicy
	}
	return merged
}

// Resolve fills the fields that still have no value with hard-coded fallbacks.
func (c Config) Resolve() Config {
	out := c
	if strings.TrimSpace(out.Format) == "" {
		out.Format = defaultFormat
	}
	if strings.TrimSpace(out.Orientation) == "" {
		out.Orientation = defaultOrientation
	}
	out.Orientation = strings.ToUpper(strings.TrimSpace(out.Orientation))
	if out.MarginLeft == nil {
		out.MarginLeft = Float(defaultMargin)
	}
	if out.MarginRight == nil {
		out.MarginRight = Float(defaultMargin)
	}
	if out.MarginTop == nil {
		out.MarginTop = Float(defaultMargin)
	}
	if out.MarginBottom == nil {
		out.MarginBottom = Float(defaultMargin)
	}
	if out.MarginHeader == nil {
		out.MarginHeader = Float(0)
	}
	if out.MarginFooter == nil {
		out.MarginFooter = Float(0)
	}
	if out.ShowWatermark == nil {
		out.ShowWatermark = Bool(false)
	}
	if out.WatermarkTextAlpha == nil {
		out.WatermarkTextAlpha = Float(defaultWatermarkAlpha)
	}
	if out.PrintBackground == nil {
		out.PrintBackground = Bool(true)
	}
	return out
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	resolved := c.Resolve()
	switch resolved.Orientation {
	case "P", "L":
	default:
		return NewError(KindValidation, fmt.Sprintf("unsupported orientation: %s", c.Orientation), nil)
	}
	if _, err := ParseFormat(resolved.Format); err != nil {
		return err
	}
	margins := map[string]*float64{
		"margin_left":   resolved.MarginLeft,
		"margin_right":  resolved.MarginRight,
		"margin_top":    resolved.MarginTop,
		"margin_bottom": resolved.MarginBottom,
		"margin_header": resolved.MarginHeader,
		"margin_footer": resolved.MarginFooter,
	}
	for name, value := range margins {
		if *value < 0 {
			return NewError(KindValidation, fmt.Sprintf("%s must not be negative", name), nil)
		}
	}
	if alpha := *resolved.WatermarkTextAlpha; alpha < 0 || alpha > 1 {
		return NewError(KindValidation, "watermark_text_alpha must be between 0 and 1", nil)
	}
	if resolved.DefaultFontSize < 0 {
		return NewError(KindValidation, "default_font_size must not be negative", nil)
	}
	if resolved.DisplayMode != "" && !validDisplayMode(resolved.DisplayMode) {
		return NewError(KindValidation, fmt.Sprintf("unsupported display mode: %s", resolved.DisplayMode), nil)
	}
	switch resolved.ExternalAssetsPolicy {
	case ExternalAssetsUnspecified, ExternalAssetsAllow, ExternalAssetsBlock:
	default:
		return NewError(KindValidation, fmt.Sprintf("unsupported external assets policy: %s", resolved.ExternalAssetsPolicy), nil)
	}
	return nil
}

// ResolvedDirection returns "rtl" when dir (or, failing that, direction) asks
// for it and "ltr" otherwise.
func (c Config) ResolvedDirection() string {
	dir := strings.TrimSpace(c.Dir)
	if dir == "" {
		dir = strings.TrimSpace(c.Direction)
	}
	return normalizeDirection(dir)
}

// PageOptions derives engine page options from the resolved configuration.
func (c Config) PageOptions() (PageOptions, error) {
	resolved := c.Resolve()
	size, err := ParseFormat(resolved.Format)
	if err != nil {
		return PageOptions{}, err
	}
	return PageOptions{
		PaperWidth:           size.Width,
		PaperHeight:          size.Height,
		Landscape:            size.Landscape || resolved.Orientation == "L",
		MarginTop:            *resolved.MarginTop,
		MarginBottom:         *resolved.MarginBottom,
		MarginLeft:           *resolved.MarginLeft,
		MarginRight:          *resolved.MarginRight,
		MarginHeader:         *resolved.MarginHeader,
		MarginFooter:         *resolved.MarginFooter,
		PrintBackground:      *resolved.PrintBackground,
		BaseURL:              resolved.BaseURL,
		ExternalAssetsPolicy: resolved.ExternalAssetsPolicy,
	}, nil
}

func normalizeDirection(dir string) string {
	if dir == "rtl" {
		return "rtl"
	}
	return "ltr"
}

func validDisplayMode(mode string) bool {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if _, ok := displayModes[mode]; ok {
		return true
	}
	zoom, err := strconv.ParseFloat(strings.TrimSuffix(mode, "%"), 64)
	return err == nil && zoom > 0
}

// Float returns a pointer to value.
func Float(value float64) *float64 {
	return &value
}

// Bool returns a pointer to value.
func Bool(value bool) *bool {
	return &value
}
