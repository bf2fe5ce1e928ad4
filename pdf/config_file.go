package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const publishedConfigHeader = `# go-pdf configuration.
#
# mode: "c" core fonts only, "s" embedded subset fonts, or a language tag.
# format: A0-A6, B4, B5, Letter, Legal, Ledger, Tabloid, Executive, Folio,
#         optionally suffixed with -L/-P, or WIDTHxHEIGHT in millimetres.
# custom_font_path: directory holding the font files passed to AddCustomFont.
# orientation: P portrait, L landscape.
# display_mode: fullpage, fullwidth, real, default, none or a zoom percentage.
# watermark_text_alpha: 0 to 1.
`

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, NewError(KindNotFound, fmt.Sprintf("config file %q not found", path), err)
		}
		return Config{}, NewError(KindInternal, "read config file", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, NewError(KindValidation, "invalid config file", err)
	}
	return cfg, nil
}

// MarshalConfig encodes cfg as YAML.
func MarshalConfig(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, NewError(KindInternal, "encode config", err)
	}
	if err := enc.Close(); err != nil {
		return nil, NewError(KindInternal, "encode config", err)
	}
	return buf.Bytes(), nil
}

// PublishConfig writes the package defaults to path so an application can
// edit them. Existing files are kept unless force is set.
func PublishConfig(path string, force bool) error {
	if strings.TrimSpace(path) == "" {
		return NewError(KindValidation, "config path is required", nil)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return NewError(KindValidation, fmt.Sprintf("config file %q already exists", path), nil)
		}
	}
	payload, err := MarshalConfig(Defaults())
	if err != nil {
		return err
	}
	return writeFileAtomic(path, append([]byte(publishedConfigHeader), payload...))
}

// ApplyEnv overrides cfg from PDF_* variables found through lookup.
// Values that fail to parse are ignored.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		value, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(value)
	}

	override := Config{
		Title:                get("PDF_TITLE"),
		Author:               get("PDF_AUTHOR"),
		Mode:                 get("PDF_MODE"),
		Format:               get("PDF_FORMAT"),
		DefaultFont:          get("PDF_DEFAULT_FONT"),
		CustomFontPath:       get("PDF_CUSTOM_FONT_PATH"),
		FontCachePath:        get("PDF_FONT_CACHE_PATH"),
		Dir:                  get("PDF_DIR"),
		Direction:            get("PDF_DIRECTION"),
		Orientation:          get("PDF_ORIENTATION"),
		Watermark:            get("PDF_WATERMARK"),
		WatermarkFont:        get("PDF_WATERMARK_FONT"),
		DisplayMode:          get("PDF_DISPLAY_MODE"),
		BaseURL:              get("PDF_BASE_URL"),
		ExternalAssetsPolicy: ExternalAssetsPolicy(get("PDF_EXTERNAL_ASSETS_POLICY")),
	}

	if size := get("PDF_DEFAULT_FONT_SIZE"); size != "" {
		if parsed, err := strconv.ParseFloat(size, 64); err == nil {
			override.DefaultFontSize = parsed
		}
	}
	margins := map[string]**float64{
		"PDF_MARGIN_LEFT":   &override.MarginLeft,
		"PDF_MARGIN_RIGHT":  &override.MarginRight,
		"PDF_MARGIN_TOP":    &override.MarginTop,
		"PDF_MARGIN_BOTTOM": &override.MarginBottom,
		"PDF_MARGIN_HEADER": &override.MarginHeader,
		"PDF_MARGIN_FOOTER": &override.MarginFooter,
	}
	for key, target := range margins {
		if raw := get(key); raw != "" {
			if parsed, err := ParseLength(raw); err == nil {
				*target = Float(parsed)
			}
		}
	}
	if show := get("PDF_SHOW_WATERMARK"); show != "" {
		if parsed, err := strconv.ParseBool(show); err == nil {
			override.ShowWatermark = Bool(parsed)
		}
	}
	if alpha := get("PDF_WATERMARK_TEXT_ALPHA"); alpha != "" {
		if parsed, err := strconv.ParseFloat(alpha, 64); err == nil {
			override.WatermarkTextAlpha = Float(parsed)
		}
	}
	if printBg := get("PDF_PRINT_BACKGROUND"); printBg != "" {
		if parsed, err := strconv.ParseBool(printBg); err == nil {
			override.PrintBackground = Bool(parsed)
		}
	}

	return MergeConfig(cfg, override)
}
