package routes

import (
	"github.com/wanjiru2468/fitness_trainer/handlers"
	"github.com/wanjiru2468/fitness_trainer/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func SyncRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	calendar := api.Group("/calendar", middleware.Protected(), middleware.TrainerRequired())
	calendar.Post("/connect", handlers.ConnectGoogleCalendar)
	calendar.Post("/disconnect", handlers.DisconnectGoogleCalendar)
	calendar.Post("/sync", handlers.TriggerCalendarSync)
	calendar.Post("/sync/background", handlers.TriggerBackgroundSync)

	pending := api.Group("/pending-appointments", middleware.Protected(), middleware.TrainerRequired())
	pending.Get("", handlers.ListPendingAppointments)
	pending.Post("/:pendingId/approve", handlers.ApprovePendingAppointment)
	pending.Post("/:pendingId/reject", handlers.RejectPendingAppointment)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeNotifications))
}
