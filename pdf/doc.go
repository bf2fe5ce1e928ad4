// Package pdf builds PDF documents from HTML.
//
// A Document accumulates HTML from strings, files or views and hands it to an
// Engine (see adapters/engine) for rendering. Configuration is layered:
// per-document overrides win over application configuration, which wins over
// Defaults.
//
//	factory, err := pdf.NewFactory(pdf.FactoryConfig{Config: cfg, Engine: engine})
//	doc, err := factory.LoadHTML("<h1>Invoice</h1>")
//	data, err := doc.Embed(ctx, "invoice.pdf")
//
// The package-level Make, LoadHTML, LoadFile and LoadView helpers use the
// factory registered with SetDefault.
package pdf
