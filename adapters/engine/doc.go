// Package engine provides the HTML-to-PDF engines documents render with.
//
// ChromiumEngine drives a shared headless Chromium through chromedp and
// WKHTMLTOPDFEngine pipes HTML through the wkhtmltopdf binary. FromConfig
// picks one by name.
package engine
