package routes

import (
	"github.com/wanjiru2468/fitness_trainer/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterTrainer)
	auth.Post("/login", handlers.LoginUser)
}
