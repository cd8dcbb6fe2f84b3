package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/jretamal/comanda-pos/internal/handler"    // import the handlers that implement business logic
	"github.com/jretamal/comanda-pos/internal/middleware" // import middleware for JWT staff authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the protected operations of the POS core under /v1.
// Every route requires a valid staff access token; token issuance lives in
// the external auth service, this server only verifies.
func RegisterAPI(e *echo.Echo, orders *handler.OrderHandler, rooms *handler.RoomHandler, tables *handler.TableHandler, prints *handler.PrintHandler, jwtSecret string) {
	v1 := e.Group("/v1")
	v1.Use(middleware.StaffAuth(jwtSecret))

	// Orders: creation, item mutations, lifecycle transitions.
	v1.POST("/orders", orders.Create)
	v1.GET("/orders/:id", orders.Get)
	v1.POST("/orders/:id/items", orders.AddItem)
	v1.PATCH("/orders/:id/items/:itemId", orders.ChangeQuantity)
	v1.PUT("/orders/:id/items", orders.ReplaceItems)
	v1.PATCH("/orders/:id/status", orders.AdvanceStatus)
	v1.POST("/orders/:id/cancel", orders.Cancel)
	v1.POST("/orders/:id/close", orders.Close)

	// Floor plan: rooms and the tables they own.
	v1.GET("/rooms", rooms.List)
	v1.POST("/rooms", rooms.Create)
	v1.POST("/rooms/:id/archive", rooms.Archive)
	v1.DELETE("/rooms/:id", rooms.Delete)
	v1.POST("/rooms/:id/tables", rooms.CreateTable)
	v1.GET("/rooms/:id/tables", rooms.ListTables)

	// Table occupancy, including the manual repair path.
	v1.GET("/tables/:id", tables.Get)
	v1.POST("/tables/:id/occupy", tables.Occupy)
	v1.POST("/tables/:id/release", tables.Release)
	v1.POST("/tables/:id/force-release", tables.ForceRelease)

	// Printing: kitchen comanda, customer receipt, device discovery.
	v1.POST("/orders/:id/print/kitchen", prints.Kitchen)
	v1.POST("/orders/:id/print/receipt", prints.Receipt)
	v1.GET("/printers", prints.Printers)
}
