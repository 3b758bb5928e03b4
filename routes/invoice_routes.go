package routes

import (
	"github.com/wanjiru2468/fitness_trainer/handlers"
	"github.com/wanjiru2468/fitness_trainer/middleware"
	"github.com/gofiber/fiber/v2"
)

func InvoiceRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	invoices := api.Group("/invoices", middleware.Protected(), middleware.TrainerRequired())
	invoices.Get("/me", handlers.GetMyInvoices)
	invoices.Post("/:invoiceId/resend", handlers.ResendInvoice)
	invoices.Put("/:invoiceId/paid", handlers.MarkInvoicePaid)

	admin := api.Group("/admin/invoices", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/run-monthly", handlers.RunMonthlyInvoices)
}
