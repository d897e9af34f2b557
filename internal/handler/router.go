package handler

import (
	"go-warehouse/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Inventory *InventoryHandler
	Dashboard *DashboardHandler
	Tasks     *TaskHandler
	Hub       *ws.Hub
}

// SetupRoutes mounts the API under /api/v1 and the event stream at /ws.
func SetupRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api/v1")

	// Dashboard
	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	api.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	// Products; low-stock must come before :id
	api.Get("/products", h.Inventory.GetProducts)
	api.Post("/products", h.Inventory.CreateProduct)
	api.Get("/products/low-stock", h.Inventory.GetLowStockProducts)
	api.Get("/products/:id", h.Inventory.GetProduct)
	api.Put("/products/:id", h.Inventory.UpdateProduct)
	api.Delete("/products/:id", h.Inventory.DeleteProduct)

	// Stock
	api.Post("/stock/adjust", h.Inventory.AdjustStock)
	api.Get("/records", h.Inventory.GetRecords)

	// Background tasks
	api.Post("/tasks", h.Tasks.SubmitTask)
	api.Get("/tasks/current", h.Tasks.GetCurrentTask)

	if h.Hub == nil {
		return
	}
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(h.Hub.Serve))
}
