// Package pdfhttp serves the pdfapi endpoints over net/http.
package pdfhttp
