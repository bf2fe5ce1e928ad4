package main

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	pdfapi "github.com/goliatone/go-pdf/adapters/api"
	pdffiber "github.com/goliatone/go-pdf/adapters/fiber"
	pdfrouter "github.com/goliatone/go-pdf/adapters/router"
	"github.com/goliatone/go-pdf/pdf"
	"github.com/goliatone/go-pdf/query"
	"github.com/goliatone/go-router"
)

type server interface {
	Serve(addr string) error
	Shutdown(ctx context.Context) error
}

func buildServer(app *App) (server, error) {
	if app.Config.Server.Adapter == adapterFiber {
		return fiberServer{app: newFiberApp(app)}, nil
	}

	srv := router.NewFiberAdapter(fiberAppInitializer(app))
	app.SetupRoutes(srv.Router())
	return srv, nil
}

// SetupRoutes registers the go-router routes.
func (a *App) SetupRoutes(r router.Router[*fiber.App]) {
	r.Get("/health", func(c router.Context) error {
		return c.JSON(http.StatusOK, a.health())
	})

	r.Get("/documents/:key", func(c router.Context) error {
		a.serveStoredDocument(c.Context(), pdfrouter.Response(c), c.Param("key"), c.Query("meta") != "")
		return nil
	})

	handler := pdfrouter.NewHandler(a.apiConfig())
	handler.RegisterRoutes(r)
}

// serveStoredDocument streams a saved document inline, or its metadata as
// JSON when metaOnly is set.
func (a *App) serveStoredDocument(ctx context.Context, res pdfapi.Response, key string, metaOnly bool) {
	if a.Store == nil {
		pdfapi.WriteError(res, pdf.NewError(pdf.KindNotImpl, "document store not configured", nil))
		return
	}
	doc, err := query.NewStoredDocumentHandler(a.Store).Query(ctx, query.StoredDocument{Key: key})
	if err != nil {
		pdfapi.WriteError(res, err)
		return
	}
	if metaOnly {
		_ = res.WriteJSON(http.StatusOK, doc.Meta)
		return
	}
	filename := doc.Meta.Filename
	if filename == "" {
		filename = key
	}
	if err := pdf.WriteResponse(res, pdf.DestinationInline, filename, doc.Meta.DocumentID, doc.Data); err != nil {
		pdfapi.WriteError(res, err)
	}
}

func (a *App) apiConfig() pdfapi.Config {
	return pdfapi.Config{
		Factory:      a.Factory,
		BasePath:     a.BasePath(),
		Logger:       a.Logger,
		MaxBodyBytes: a.Config.Server.MaxBodyBytes,
	}
}

func fiberAppInitializer(app *App) func(*fiber.App) *fiber.App {
	return func(*fiber.App) *fiber.App {
		return baseFiberApp(app)
	}
}

func baseFiberApp(app *App) *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if limit := app.Config.Server.MaxBodyBytes; limit > 0 && limit < int64(^uint(0)>>1) {
		bodyLimit = int(limit)
	}
	fiberApp := fiber.New(fiber.Config{
		AppName:               "go-pdf",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:  app.Config.Server.AllowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Content-Type,Authorization",
		ExposeHeaders: "Content-Disposition," + pdf.HeaderDocumentID,
	}))
	return fiberApp
}

// newFiberApp serves the API on fiber without go-router.
func newFiberApp(app *App) *fiber.App {
	fiberApp := baseFiberApp(app)
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(app.health())
	})
	fiberApp.Get("/documents/:key", func(c *fiber.Ctx) error {
		app.serveStoredDocument(c.UserContext(), pdffiber.Response(c), c.Params("key"), c.Query("meta") != "")
		return nil
	})
	pdffiber.NewHandler(app.apiConfig()).RegisterRoutes(fiberApp)
	return fiberApp
}

type fiberServer struct {
	app *fiber.App
}

func (s fiberServer) Serve(addr string) error {
	return s.app.Listen(addr)
}

func (s fiberServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
