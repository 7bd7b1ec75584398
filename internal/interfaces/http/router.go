package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/usecase"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC  *usecase.CategoryUseCase
	FieldUC     *usecase.FieldUseCase
	ProductUC   *usecase.ProductUseCase
	StockUC     *usecase.StockUseCase
	VendorUC    *usecase.VendorUseCase
	WarehouseUC *usecase.WarehouseUseCase
	Metrics     *metrics.Metrics
	// Health verifica dependencias externas (base de datos, Redis); nil = siempre sano.
	Health func(c *fiber.Ctx) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", deps.Metrics.Handler())

	api := app.Group("/api")

	// Categories
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, deps.Metrics)
	categories.Get("/", categoryHandler.Get)
	categories.Put("/", categoryHandler.Replace)
	categories.Get("/flat", categoryHandler.Flat)
	categories.Post("/nodes", categoryHandler.Insert)
	categories.Get("/nodes/:id", categoryHandler.GetNode)
	categories.Patch("/nodes/:id", categoryHandler.Update)
	categories.Delete("/nodes/:id", categoryHandler.Delete)
	categories.Post("/nodes/:id/move", categoryHandler.Move)
	categories.Get("/nodes/:id/path", categoryHandler.Path)

	// Field masters
	fields := api.Group("/fieldMasters")
	fieldHandler := NewFieldHandler(deps.FieldUC, deps.Metrics)
	fields.Get("/", fieldHandler.List)
	fields.Post("/", fieldHandler.Create)
	fields.Get("/:id", fieldHandler.GetByID)
	fields.Put("/:id", fieldHandler.Update)
	fields.Patch("/:id/status", fieldHandler.SetStatus)
	fields.Delete("/:id", fieldHandler.Delete)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Metrics)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/fields", productHandler.Fields)
	products.Get("/:id/entry-row", productHandler.EntryRow)

	// Stocks
	stocks := api.Group("/stocks")
	stockHandler := NewStockHandler(deps.StockUC, deps.Metrics)
	stocks.Post("/", stockHandler.Create)
	stocks.Get("/", stockHandler.List)
	stocks.Get("/:id", stockHandler.GetByID)
	stocks.Put("/:id", stockHandler.Update)
	stocks.Get("/:id/labels.pdf", stockHandler.Labels)

	// Vendors
	vendors := api.Group("/vendors")
	vendorHandler := NewVendorHandler(deps.VendorUC, deps.Metrics)
	vendors.Post("/", vendorHandler.Create)
	vendors.Get("/", vendorHandler.List)
	vendors.Get("/:id", vendorHandler.GetByID)
	vendors.Put("/:id", vendorHandler.Update)
	vendors.Delete("/:id", vendorHandler.Delete)

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, deps.Metrics)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseHandler.Update)
	warehouses.Delete("/:id", warehouseHandler.Delete)
}
