package pdf

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/language"
)

var numericEntityPattern = regexp.MustCompile(`&#([xX][0-9a-fA-F]+|[0-9]+);`)

// Core font families used when mode is "c".
var coreFontFamilies = map[string]string{
	"sans-serif": "Helvetica, Arial, sans-serif",
	"sans":       "Helvetica, Arial, sans-serif",
	"helvetica":  "Helvetica, Arial, sans-serif",
	"serif":      "\"Times New Roman\", Times, serif",
	"times":      "\"Times New Roman\", Times, serif",
	"monospace":  "\"Courier New\", Courier, monospace",
	"mono":       "\"Courier New\", Courier, monospace",
	"courier":    "\"Courier New\", Courier, monospace",
}

// DecodeNumericEntities converts numeric character references (&#233; and
// &#xE9;) into UTF-8. References to markup-significant ASCII characters are
// left encoded so decoding never introduces new tags.
func DecodeNumericEntities(input string) string {
	if !strings.Contains(input, "&#") {
		return input
	}
	return numericEntityPattern.ReplaceAllStringFunc(input, func(ref string) string {
		body := ref[2 : len(ref)-1]
		var (
			code int64
			err  error
		)
		if body[0] == 'x' || body[0] == 'X' {
			code, err = strconv.ParseInt(body[1:], 16, 32)
		} else {
			code, err = strconv.ParseInt(body, 10, 32)
		}
		if err != nil {
			return ref
		}
		r := rune(code)
		if !utf8.ValidRune(r) || r == 0 {
			return ref
		}
		switch r {
		case '<', '>', '&', '"', '\'':
			return ref
		}
		return string(r)
	})
}

// languageFromMode returns the language tag encoded in an mPDF-style mode
// string, or "" for the font modes ("", "c", "s", "utf-8").
func languageFromMode(mode string) string {
	mode = strings.TrimSpace(mode)
	switch strings.ToLower(mode) {
	case "", "c", "s", "utf-8", "+acjk", "-acjk":
		return ""
	}
	mode = strings.TrimSuffix(strings.TrimSuffix(mode, "-x"), "-s")
	tag, err := language.Parse(mode)
	if err != nil {
		return ""
	}
	return tag.String()
}

func isCoreMode(mode string) bool {
	return strings.EqualFold(strings.TrimSpace(mode), "c")
}

type assembleOptions struct {
	Title     string
	Author    string
	Lang      string
	Direction string
	Style     string
}

// assembleHTML parses the accumulated document and injects metadata and the
// generated stylesheet. The generated stylesheet is placed first in <head> so
// document styles keep precedence.
func assembleHTML(source string, opts assembleOptions) ([]byte, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, NewError(KindValidation, "parse html", err)
	}

	root := findElement(doc, atom.Html)
	head := findElement(doc, atom.Head)
	if root == nil || head == nil {
		return nil, NewError(KindInternal, "html document has no head", nil)
	}

	if opts.Direction != "" && attr(root, "dir") == "" {
		setAttr(root, "dir", opts.Direction)
	}
	if opts.Lang != "" && attr(root, "lang") == "" {
		setAttr(root, "lang", opts.Lang)
	}

	var injected []*html.Node
	if !hasMetaCharset(head) {
		injected = append(injected, element(atom.Meta, "", html.Attribute{Key: "charset", Val: "utf-8"}))
	}
	if opts.Title != "" && findElement(head, atom.Title) == nil {
		injected = append(injected, element(atom.Title, opts.Title))
	}
	if opts.Author != "" && !hasMetaName(head, "author") {
		injected = append(injected, element(atom.Meta, "",
			html.Attribute{Key: "name", Val: "author"},
			html.Attribute{Key: "content", Val: opts.Author},
		))
	}
	if strings.TrimSpace(opts.Style) != "" {
		injected = append(injected, element(atom.Style, opts.Style, html.Attribute{Key: "data-pdf", Val: "defaults"}))
	}

	first := head.FirstChild
	for _, node := range injected {
		head.InsertBefore(node, first)
	}

	if doc.FirstChild == nil || doc.FirstChild.Type != html.DoctypeNode {
		doc.InsertBefore(&html.Node{Type: html.DoctypeNode, Data: "html"}, doc.FirstChild)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, NewError(KindInternal, "render html", err)
	}
	return buf.Bytes(), nil
}

// baseStylesheet renders page defaults: page box, default font and direction.
func baseStylesheet(cfg Config, page PageOptions) string {
	var b strings.Builder

	width, height := page.PaperWidth, page.PaperHeight
	if page.Landscape && width < height {
		width, height = height, width
	}
	fmt.Fprintf(&b, "@page { size: %smm %smm; margin: %smm %smm %smm %smm; }\n",
		formatFloat(width), formatFloat(height),
		formatFloat(page.MarginTop), formatFloat(page.MarginRight),
		formatFloat(page.MarginBottom), formatFloat(page.MarginLeft),
	)

	var body []string
	if family := fontFamilyCSS(cfg.DefaultFont, isCoreMode(cfg.Mode)); family != "" {
		body = append(body, "font-family: "+family)
	}
	if cfg.DefaultFontSize > 0 {
		body = append(body, "font-size: "+formatFloat(cfg.DefaultFontSize)+"pt")
	}
	body = append(body, "direction: "+cfg.ResolvedDirection())
	fmt.Fprintf(&b, "body { %s; }\n", strings.Join(body, "; "))
	return b.String()
}

func fontFamilyCSS(name string, core bool) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	key := strings.ToLower(name)
	if core {
		if family, ok := coreFontFamilies[key]; ok {
			return family
		}
		return coreFontFamilies["sans-serif"]
	}
	switch key {
	case "sans-serif", "serif", "monospace", "cursive", "fantasy", "system-ui":
		return key
	}
	return fmt.Sprintf("%q, sans-serif", key)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func element(a atom.Atom, text string, attrs ...html.Attribute) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
	if text != "" {
		node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return node
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func hasMetaCharset(head *html.Node) bool {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Meta {
			continue
		}
		if attr(c, "charset") != "" {
			return true
		}
		if strings.EqualFold(attr(c, "http-equiv"), "content-type") {
			return true
		}
	}
	return false
}

func hasMetaName(head *html.Node, name string) bool {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Meta && strings.EqualFold(attr(c, "name"), name) {
			return true
		}
	}
	return false
}
