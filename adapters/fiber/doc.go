// Package pdffiber sends documents on a *fiber.Ctx and serves the pdfapi
// endpoints on a fiber router.
package pdffiber
