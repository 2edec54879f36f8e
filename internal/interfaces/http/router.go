package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Creator   SaleCreator
	Canceller SaleCanceller
	Reader    SaleReader
	Receipts  ReceiptRenderer
	Restocker Restocker
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/", AuthMiddleware(deps.JWTSecret))

	saleHandler := NewSaleHandler(deps.Creator, deps.Canceller, deps.Reader, deps.Receipts)
	sales := protected.Group("/sales")
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	// Las rutas estáticas van antes que /:id para que no las capture el parámetro.
	sales.Get("/stats/summary", saleHandler.Stats)
	sales.Get("/today/summary", saleHandler.Today)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/cancel", saleHandler.Cancel)
	sales.Get("/:id/receipt.pdf", saleHandler.Receipt)

	stockHandler := NewStockHandler(deps.Restocker)
	stock := protected.Group("/stock")
	stock.Post("/entries", stockHandler.CreateEntry)
}
