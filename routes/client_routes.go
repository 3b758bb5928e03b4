package routes

import (
	"github.com/wanjiru2468/fitness_trainer/handlers"
	"github.com/wanjiru2468/fitness_trainer/middleware"
	"github.com/gofiber/fiber/v2"
)

func ClientRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	clients := api.Group("/clients", middleware.Protected(), middleware.TrainerRequired())
	clients.Post("/profile", handlers.UpsertClientProfile)
	clients.Put("/:clientId/allowed-group-clients", handlers.SetAllowedGroupClients)

	pending := api.Group("/pending-clients", middleware.Protected(), middleware.TrainerRequired())
	pending.Get("", handlers.ListPendingClients)
	pending.Post("/:pendingId/approve", handlers.ApprovePendingClient)
	pending.Post("/:pendingId/reject", handlers.RejectPendingClient)

	settings := api.Group("/settings", middleware.Protected(), middleware.TrainerRequired())
	settings.Put("", handlers.UpdateTrainerSettings)
}
