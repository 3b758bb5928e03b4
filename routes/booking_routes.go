package routes

import (
	"github.com/wanjiru2468/fitness_trainer/handlers"
	"github.com/wanjiru2468/fitness_trainer/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	bookings := api.Group("/bookings", middleware.Protected())
	bookings.Get("/me", handlers.GetMyBookings)
	bookings.Post("", handlers.CreateBooking)
	bookings.Get("/invoices", handlers.GetClientInvoices)
}
