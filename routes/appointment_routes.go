package routes

import (
	"github.com/wanjiru2468/fitness_trainer/handlers"
	"github.com/wanjiru2468/fitness_trainer/middleware"
	"github.com/gofiber/fiber/v2"
)

func AppointmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	appointments := api.Group("/appointments", middleware.Protected(), middleware.TrainerRequired())
	appointments.Get("/me", handlers.GetMyAppointments)
	appointments.Post("", handlers.CreateAppointment)
	appointments.Put("/:appointmentId/status", handlers.UpdateAppointmentStatus)
	appointments.Put("/:appointmentId/reschedule", handlers.RescheduleAppointment)
	appointments.Delete("/:appointmentId", handlers.DeleteAppointment)
	appointments.Post("/:appointmentId/invoice", handlers.GenerateInvoiceForAppointment)
}
