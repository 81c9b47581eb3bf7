package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-sync/internal/application/catalog"
	"github.com/jhoicas/inventario-sync/internal/application/export"
	"github.com/jhoicas/inventario-sync/internal/application/inventory"
	"github.com/jhoicas/inventario-sync/internal/application/session"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName      string
	Session      *session.Store
	Inventory    *inventory.Repository
	Composite    *inventory.CompositeCreateUseCase
	Catalog      *catalog.UseCase
	Export       *export.Pipeline
	ExportFormat string
	Metrics      nethttp.Handler // nil desactiva /metrics
	Log          zerolog.Logger
}

// Router registra las rutas de la API local del operador.
func Router(app *fiber.App, deps RouterDeps) {
	resp := &responder{store: deps.Session, repo: deps.Inventory, log: deps.Log.With().Str("component", "http").Logger()}

	app.Get("/health", func(c *fiber.Ctx) error {
		sess := deps.Session.Current()
		return c.JSON(fiber.Map{
			"status":        "ok",
			"service":       deps.AppName,
			"authenticated": sess.Authenticated(),
			"cached":        len(deps.Inventory.Snapshot()),
		})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Sesión (login y estado son públicos)
	sessionHandler := NewSessionHandler(deps.Session, deps.Inventory, resp)
	api.Post("/session/login", sessionHandler.Login)
	api.Get("/session", sessionHandler.Current)

	protected := api.Group("/", RequireSession(deps.Session))
	protected.Post("/session/logout", sessionHandler.Logout)
	protected.Put("/session/warehouse", sessionHandler.SwitchWarehouse)

	// Inventario de la bodega activa
	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.Composite, resp)
	exportHandler := NewExportHandler(deps.Inventory, deps.Export, deps.ExportFormat, resp)
	inv := protected.Group("/inventory")
	inv.Get("/", inventoryHandler.List)
	inv.Post("/refresh", inventoryHandler.Refresh)
	inv.Get("/export", RequireWarehouse(), exportHandler.Download)
	inv.Post("/export", RequireWarehouse(), exportHandler.Save)
	inv.Post("/", inventoryHandler.Create)
	inv.Post("/with-product", inventoryHandler.CreateWithProduct)
	inv.Post("/:id/edit", inventoryHandler.BeginEdit)
	inv.Patch("/:id/edit", inventoryHandler.UpdateDraft)
	inv.Delete("/:id/edit", inventoryHandler.CancelEdit)
	inv.Post("/:id/commit", inventoryHandler.Commit)
	inv.Delete("/:id", inventoryHandler.Delete)

	// Datos de referencia
	catalogHandler := NewCatalogHandler(deps.Catalog, resp)
	protected.Get("/products", catalogHandler.ListProducts)
	protected.Get("/categories", catalogHandler.ListCategories)
	protected.Post("/categories", catalogHandler.CreateCategory)
	protected.Delete("/categories/:id", catalogHandler.DeleteCategory)
	protected.Get("/stock-logs", catalogHandler.ListStockLogs)
}
