package handlers

import (
	"github.com/gofiber/fiber/v2"

	"task-management/internal/config"
	"task-management/internal/middleware"
	"task-management/internal/repository"
)

// Panel User: dashboard, detail task, dan update status task sendiri.

func UserDashboard(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	d, err := config.Tasks.Dashboard(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err, nil)
	}
	tasks, err := config.Tasks.ListOwn(c.UserContext(), actor, repository.TaskListOptions{})
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Dashboard", fiber.Map{"stats": d.Tasks, "tasks": tasks})
}

func UserViewTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	task, err := config.Tasks.Get(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Task found", task)
}

// UserUpdateTask is the form variant of UpdateTask: blank worked hours count
// as not sent.
func UserUpdateTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	var req userTaskRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err, req)
	}
	in, err := req.update(true)
	if err != nil {
		return respondError(c, err, req)
	}
	task, err := config.Tasks.UpdateOwn(c.UserContext(), middleware.Actor(c), id, in)
	if err != nil {
		return respondError(c, err, req)
	}
	return respond(c, fiber.StatusOK, "Task '"+task.Title+"' updated successfully!", task)
}
