// Package pdfapi implements the transport-neutral PDF rendering endpoints
// shared by the net/http, go-router and fiber adapters.
//
// Routes, relative to the base path (default /pdf):
//
//	GET  {base}/{view}  render a view; query parameters become view data
//	POST {base}         render a JSON RenderPayload or a raw text/html body
//
// The disposition query parameter selects inline (default) or attachment and
// filename overrides the default filename.
package pdfapi
