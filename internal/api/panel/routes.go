package panel

import (
	"github.com/gofiber/fiber/v2"

	"task-management/internal/api/v1/handlers"
	"task-management/internal/middleware"
	"task-management/internal/policy"
)

func RegisterRoutes(app *fiber.App) {
	panel := app.Group("/panel")

	// Auth. Login harus didaftarkan sebelum group yang memakai UseToken.
	panel.Post("/login", handlers.PanelLogin)
	panel.Post("/user/login", handlers.PanelUserLogin)
	panel.Post("/logout", middleware.UseToken, handlers.PanelLogout)

	// SuperAdmin
	sa := panel.Group("/superadmin", middleware.UseToken, middleware.RequirePolicy(policy.CanManageAdmins))
	sa.Get("/dashboard", handlers.SuperAdminDashboard)
	sa.Get("/admins", handlers.SuperAdminListAdmins)
	sa.Post("/admins/create", handlers.SuperAdminCreateAdmin)
	sa.Post("/admins/:id/delete", handlers.SuperAdminDeleteAdmin)
	sa.Get("/users", handlers.SuperAdminListUsers)
	sa.Get("/users/create", handlers.SuperAdminUserForm)
	sa.Post("/users/create", handlers.SuperAdminCreateUser)
	sa.Get("/users/:id/edit", handlers.SuperAdminGetUser)
	sa.Post("/users/:id/edit", handlers.SuperAdminEditUser)
	sa.Post("/users/:id/delete", handlers.SuperAdminDeleteUser)
	sa.Get("/tasks", middleware.RequirePolicy(policy.CanViewAllTasks), handlers.PanelListTasks)
	sa.Get("/tasks/:id/report", handlers.TaskReport)

	// Admin
	admin := panel.Group("/admin", middleware.UseToken, middleware.RequirePolicy(policy.CanManageOwnUsers))
	admin.Get("/dashboard", handlers.AdminDashboard)
	admin.Get("/users", handlers.AdminListUsers)
	admin.Get("/tasks", handlers.PanelListTasks)
	admin.Get("/tasks/create", handlers.AdminTaskForm)
	admin.Post("/tasks/create", handlers.AdminCreateTask)
	admin.Get("/tasks/:id/edit", handlers.AdminGetTask)
	admin.Post("/tasks/:id/edit", handlers.AdminEditTask)
	admin.Post("/tasks/:id/delete", handlers.AdminDeleteTask)
	admin.Get("/tasks/:id/report", handlers.TaskReport)

	// User
	user := panel.Group("/user", middleware.UseToken, middleware.RequirePolicy(policy.CanAccessUserAPI))
	user.Post("/logout", handlers.PanelUserLogout)
	user.Get("/dashboard", handlers.UserDashboard)
	user.Get("/tasks/:id", handlers.UserViewTask)
	user.Post("/tasks/:id/update", handlers.UserUpdateTask)
}
