package pdf

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// FontStyle identifies a face within a font family.
type FontStyle string

const (
	FontRegular    FontStyle = "R"
	FontBold       FontStyle = "B"
	FontItalic     FontStyle = "I"
	FontBoldItalic FontStyle = "BI"
)

// Unicode font flags recorded on definitions added with unicode support.
const (
	UnicodeUseOTL     = 0xFF
	UnicodeUseKashida = 75
)

var fontStyles = []FontStyle{FontRegular, FontBold, FontItalic, FontBoldItalic}

// FontFamily maps styles to font file names relative to the custom font path.
type FontFamily map[FontStyle]string

// FontData maps family names to their files.
//
//	pdf.FontData{
//		"SourceSans": {
//			pdf.FontRegular: "SourceSansPro-Regular.ttf",
//			pdf.FontBold:    "SourceSansPro-Bold.ttf",
//		},
//	}
type FontData map[string]FontFamily

// FontDefinition is a registered font family.
type FontDefinition struct {
	Regular    string `yaml:"R,omitempty"`
	Bold       string `yaml:"B,omitempty"`
	Italic     string `yaml:"I,omitempty"`
	BoldItalic string `yaml:"BI,omitempty"`
	UseOTL     int    `yaml:"useOTL,omitempty"`
	UseKashida int    `yaml:"useKashida,omitempty"`
}

// File returns the file registered for style.
func (d FontDefinition) File(style FontStyle) string {
	switch style {
	case FontRegular:
		return d.Regular
	case FontBold:
		return d.Bold
	case FontItalic:
		return d.Italic
	case FontBoldItalic:
		return d.BoldItalic
	default:
		return ""
	}
}

func (d *FontDefinition) setFile(style FontStyle, file string) {
	switch style {
	case FontRegular:
		d.Regular = file
	case FontBold:
		d.Bold = file
	case FontItalic:
		d.Italic = file
	case FontBoldItalic:
		d.BoldItalic = file
	}
}

// Styles lists the styles with a file, in R, B, I, BI order.
func (d FontDefinition) Styles() []FontStyle {
	styles := make([]FontStyle, 0, len(fontStyles))
	for _, style := range fontStyles {
		if d.File(style) != "" {
			styles = append(styles, style)
		}
	}
	return styles
}

// Unicode reports whether the definition carries the unicode flags.
func (d FontDefinition) Unicode() bool {
	return d.UseOTL != 0 || d.UseKashida != 0
}

// NormalizeFontPath converts backslashes to slashes and trims trailing
// separators. An empty result means no font directory is configured.
func NormalizeFontPath(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	dir = strings.ReplaceAll(dir, "\\", "/")
	trimmed := strings.TrimRight(dir, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// fontDirectory returns the directory with a trailing slash, as used when
// registering the font directory on a new document.
func fontDirectory(dir string) string {
	normalized := NormalizeFontPath(dir)
	if normalized == "" {
		return ""
	}
	if strings.HasSuffix(normalized, "/") {
		return normalized
	}
	return normalized + "/"
}

type fontRegistry struct {
	dir         string
	definitions map[string]FontDefinition
	available   []string
	data        map[string][]byte
}

func newFontRegistry(dir string) *fontRegistry {
	return &fontRegistry{
		dir:         fontDirectory(dir),
		definitions: make(map[string]FontDefinition),
		data:        make(map[string][]byte),
	}
}

// validate checks every referenced file before anything is registered.
func (r *fontRegistry) validate(fonts FontData) error {
	if len(fonts) == 0 {
		return NewError(KindValidation, "font data is required", nil)
	}
	if r.dir == "" {
		return NewError(KindConfigMissing, "custom_font_path is not set", nil)
	}

	for _, family := range sortedFamilies(fonts) {
		files := fonts[family]
		for _, style := range fontStyles {
			file := strings.TrimSpace(files[style])
			if file == "" {
				continue
			}
			fontFile := path.Join(strings.TrimRight(r.dir, "/"), file)
			data, err := os.ReadFile(filepath.FromSlash(fontFile))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return NewError(KindNotFound, fmt.Sprintf("font file %q does not exist", fontFile), err)
				}
				return NewError(KindInternal, fmt.Sprintf("read font file %q", fontFile), err)
			}
			if err := validateFontData(data); err != nil {
				return NewError(KindValidation, fmt.Sprintf("font file %q is not a usable font", fontFile), err)
			}
			r.data[fontFile] = data
		}
	}
	return nil
}

// add registers families under lowercase keys and extends the available font
// list with key+style, the regular style contributing the bare key.
func (r *fontRegistry) add(fonts FontData, unicode bool) {
	for _, family := range sortedFamilies(fonts) {
		files := fonts[family]
		key := strings.ToLower(strings.TrimSpace(family))
		if key == "" {
			continue
		}

		var def FontDefinition
		for _, style := range fontStyles {
			file := strings.TrimSpace(files[style])
			if file == "" {
				continue
			}
			def.setFile(style, file)
			r.available = appendUnique(r.available, key+strings.Trim(string(style), "R"))
		}
		if unicode {
			def.UseKashida = UnicodeUseKashida
			def.UseOTL = UnicodeUseOTL
		}
		r.definitions[key] = def
	}
}

func (r *fontRegistry) restore(defs map[string]FontDefinition) {
	for key, def := range defs {
		key = strings.ToLower(key)
		if _, exists := r.definitions[key]; exists {
			continue
		}
		r.definitions[key] = def
		for _, style := range def.Styles() {
			r.available = appendUnique(r.available, key+strings.Trim(string(style), "R"))
		}
	}
}

// fontFaceCSS renders @font-face rules with the font files inlined as data
// URIs so engines never need file access.
func (r *fontRegistry) fontFaceCSS() (string, error) {
	if len(r.definitions) == 0 || r.dir == "" {
		return "", nil
	}
	keys := make([]string, 0, len(r.definitions))
	for key := range r.definitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		def := r.definitions[key]
		for _, style := range def.Styles() {
			fontFile := path.Join(strings.TrimRight(r.dir, "/"), def.File(style))
			data, ok := r.data[fontFile]
			if !ok {
				loaded, err := os.ReadFile(filepath.FromSlash(fontFile))
				if err != nil {
					return "", NewError(KindNotFound, fmt.Sprintf("font file %q does not exist", fontFile), err)
				}
				data = loaded
				r.data[fontFile] = data
			}
			weight, fontStyle := cssFace(style)
			mimeType, format := fontFormat(fontFile)
			fmt.Fprintf(&b, "@font-face { font-family: %q; src: url(\"data:%s;base64,%s\") format(%q); font-weight: %s; font-style: %s; }\n",
				key, mimeType, base64.StdEncoding.EncodeToString(data), format, weight, fontStyle)
		}
	}
	return b.String(), nil
}

func (r *fontRegistry) snapshot() map[string]FontDefinition {
	out := make(map[string]FontDefinition, len(r.definitions))
	for key, def := range r.definitions {
		out[key] = def
	}
	return out
}

func cssFace(style FontStyle) (weight, fontStyle string) {
	switch style {
	case FontBold:
		return "700", "normal"
	case FontItalic:
		return "400", "italic"
	case FontBoldItalic:
		return "700", "italic"
	default:
		return "400", "normal"
	}
}

func fontFormat(file string) (mimeType, format string) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".otf":
		return "font/otf", "opentype"
	case ".woff":
		return "font/woff", "woff"
	case ".woff2":
		return "font/woff2", "woff2"
	case ".ttc":
		return "font/collection", "collection"
	default:
		return "font/ttf", "truetype"
	}
}

// validateFontData checks that data is a parseable sfnt font or collection.
// WOFF containers are accepted on their signature alone.
func validateFontData(data []byte) error {
	switch {
	case bytes.HasPrefix(data, []byte("wOFF")), bytes.HasPrefix(data, []byte("wOF2")):
		return nil
	case bytes.HasPrefix(data, []byte("ttcf")):
		collection, err := sfnt.ParseCollection(data)
		if err != nil {
			return err
		}
		if collection.NumFonts() == 0 {
			return errors.New("font collection is empty")
		}
		return nil
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return err
	}
	if f.NumGlyphs() == 0 {
		return errors.New("font has no glyphs")
	}
	return nil
}

// FontFamilyName reads the family name stored in a font file.
func FontFamilyName(data []byte) (string, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", err
	}
	var buf sfnt.Buffer
	return f.Name(&buf, sfnt.NameIDFamily)
}

func sortedFamilies(fonts FontData) []string {
	families := make([]string, 0, len(fonts))
	for family := range fonts {
		families = append(families, family)
	}
	sort.Strings(families)
	return families
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
