package http

import (
	"github.com/gofiber/fiber/v2"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/pkg/jwt"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Applicator   *appinv.MovementApplicator
	Query        *appinv.StockQueryUseCase
	Reports      *appinv.ReportUseCase
	Reservations *appinv.ReservationUseCase
	JWTSecret    string
	Logger       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	approvers := RequireRole(jwt.RoleAdmin)

	// Inventory
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Applicator, deps.Query, deps.Reports, deps.Logger)
	inv.Post("/movements", writers, inventoryHandler.RegisterMovement)
	inv.Post("/movements/pending", writers, inventoryHandler.SubmitPending)
	inv.Post("/movements/:id/process", approvers, inventoryHandler.ProcessPending)
	inv.Get("/movements", readers, inventoryHandler.History)
	inv.Get("/movements/by-reference", readers, inventoryHandler.MovementsByReference)
	inv.Post("/transfers", writers, inventoryHandler.Transfer)
	inv.Get("/stock", readers, inventoryHandler.GetStock)
	inv.Get("/items/:itemID/stock", readers, inventoryHandler.ListItemStock)
	inv.Get("/locations/:id/rollup", readers, inventoryHandler.Rollup)
	inv.Get("/locations/:id/report.pdf", readers, inventoryHandler.StockReportPDF)

	// Catalog (solo lectura)
	protected.Get("/catalog/items", readers, inventoryHandler.SearchCatalog)

	// Reservations
	res := protected.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservations, deps.Logger)
	res.Post("/validate", readers, reservationHandler.Validate)
	res.Post("/release", writers, reservationHandler.Release)
	res.Post("/", writers, reservationHandler.Create)
	res.Get("/", readers, reservationHandler.ListByReference)
	res.Get("/:id", readers, reservationHandler.GetByID)
	res.Post("/:id/approve", approvers, reservationHandler.Approve)
	res.Post("/:id/reject", approvers, reservationHandler.Reject)
}
