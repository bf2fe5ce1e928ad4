// Package pdfrouter serves the pdfapi endpoints on go-router and provides
// Download and Stream helpers for router.Context handlers.
package pdfrouter
