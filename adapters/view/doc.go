// Package view renders named views into HTML for pdf.Document.LoadView.
//
// View names use dots or slashes as separators ("emails.invoice" and
// "emails/invoice" both resolve to emails/invoice.html under the views
// directory). TemplateRenderer uses html/template; Pongo2Renderer uses pongo2
// for Django-style templates with inheritance. Both expose a to_json helper for
// embedding data in scripts.
package view
