package v1

import (
	"github.com/gofiber/fiber/v2"

	"task-management/internal/api/v1/handlers"
	"task-management/internal/middleware"
	"task-management/internal/policy"
)

func RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Auth
	api.Post("/token", handlers.Token)
	api.Post("/token/refresh", handlers.RefreshToken)
	api.Post("/logout", middleware.UseToken, handlers.Logout)
	api.Get("/info", handlers.Info)

	// Task. Role dicek sebelum id atau body dibaca.
	userOnly := middleware.RequirePolicy(policy.CanAccessUserAPI)
	taskRoutes := api.Group("/tasks", middleware.UseToken)
	taskRoutes.Get("/", userOnly, handlers.ListTasks)
	taskRoutes.Put("/:id", userOnly, handlers.UpdateTask)
	taskRoutes.Get("/:id/report", middleware.RequirePolicy(policy.CanAccessPanel), handlers.TaskReport)
}
