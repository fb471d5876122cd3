package handlers

import (
	"github.com/gofiber/fiber/v2"

	"task-management/internal/config"
	"task-management/internal/lifecycle"
	"task-management/internal/middleware"
	"task-management/internal/models"
	"task-management/internal/repository"
)

// API untuk user biasa: lihat task sendiri, update status, dan laporan task
// untuk admin/superadmin.

func taskViews(tasks []models.Task) []models.TaskView {
	out := make([]models.TaskView, 0, len(tasks))
	for i := range tasks {
		out = append(out, tasks[i].View())
	}
	return out
}

// ListTasks mengembalikan task milik user yang login, bisa difilter ?status=.
func ListTasks(c *fiber.Ctx) error {
	opts := repository.TaskListOptions{Status: models.Status(c.Query("status"))}
	tasks, err := config.Tasks.ListOwn(c.UserContext(), middleware.Actor(c), opts)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Tasks fetched successfully", taskViews(tasks))
}

// userTaskRequest is what a user may send for their own task.
type userTaskRequest struct {
	Status           *string    `json:"status" form:"status"`
	CompletionReport *string    `json:"completion_report" form:"completion_report"`
	WorkedHours      hoursInput `json:"worked_hours" form:"worked_hours"`
}

func (r userTaskRequest) update(fromForm bool) (lifecycle.UserUpdate, error) {
	hours, err := r.WorkedHours.parse(fromForm)
	if err != nil {
		return lifecycle.UserUpdate{}, err
	}
	return lifecycle.UserUpdate{
		Status:           parseStatus(r.Status),
		CompletionReport: r.CompletionReport,
		WorkedHours:      hours,
	}, nil
}

// UpdateTask mengubah status task milik user. Menandai completed wajib
// menyertakan completion_report dan worked_hours.
func UpdateTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	var req userTaskRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err, nil)
	}
	in, err := req.update(false)
	if err != nil {
		return respondError(c, err, req)
	}
	task, err := config.Tasks.UpdateOwn(c.UserContext(), middleware.Actor(c), id, in)
	if err != nil {
		return respondError(c, err, req)
	}
	return respond(c, fiber.StatusOK, "Task updated successfully.", task.View())
}

// TaskReport mengembalikan laporan task yang sudah completed.
func TaskReport(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	report, err := config.Tasks.Report(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Task report fetched successfully", report)
}

// Info lists the public endpoints.
func Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Task Management API",
		"version": "1.0",
		"endpoints": fiber.Map{
			"authentication": fiber.Map{
				"POST /api/v1/token":         "Get JWT access and refresh tokens",
				"POST /api/v1/token/refresh": "Refresh JWT access token",
				"POST /api/v1/logout":        "Revoke the current token",
			},
			"tasks": fiber.Map{
				"GET /api/v1/tasks":             "Get user's assigned tasks",
				"PUT /api/v1/tasks/{id}":        "Update task status",
				"GET /api/v1/tasks/{id}/report": "View task completion report (Admin/SuperAdmin only)",
			},
		},
		"admin_panel": "/panel/login",
		"user_panel":  "/panel/user/login",
	})
}
