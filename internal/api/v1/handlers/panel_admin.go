package handlers

import (
	"github.com/gofiber/fiber/v2"

	"task-management/internal/config"
	"task-management/internal/lifecycle"
	"task-management/internal/middleware"
)

// Panel Admin: user milik sendiri dan task mereka.

type adminTaskRequest struct {
	Title            *string    `json:"title" form:"title" validate:"omitempty,max=255"`
	Description      *string    `json:"description" form:"description"`
	AssignedTo       idInput    `json:"assigned_to" form:"assigned_to"`
	DueDate          *string    `json:"due_date" form:"due_date"`
	Status           *string    `json:"status" form:"status"`
	CompletionReport *string    `json:"completion_report" form:"completion_report"`
	WorkedHours      hoursInput `json:"worked_hours" form:"worked_hours"`
}

// update converts the request; every conversion error is reported together.
func (r adminTaskRequest) update() (lifecycle.AdminUpdate, error) {
	in := lifecycle.AdminUpdate{
		Title:            r.Title,
		Description:      r.Description,
		Status:           parseStatus(r.Status),
		CompletionReport: r.CompletionReport,
	}
	var errs []error
	var err error
	if in.AssignedTo, err = r.AssignedTo.parse(lifecycle.FieldAssignedTo); err != nil {
		errs = append(errs, err)
	}
	if in.DueDate, err = parseDate(r.DueDate); err != nil {
		errs = append(errs, err)
	}
	if in.WorkedHours, err = r.WorkedHours.parse(true); err != nil {
		errs = append(errs, err)
	}
	return in, mergeFieldErrors(errs...)
}

func bindAdminTask(c *fiber.Ctx) (lifecycle.AdminUpdate, adminTaskRequest, error) {
	var req adminTaskRequest
	if err := bindRequest(c, &req); err != nil {
		return lifecycle.AdminUpdate{}, req, err
	}
	in, err := req.update()
	return in, req, err
}

func AdminDashboard(c *fiber.Ctx) error {
	d, err := config.Tasks.Dashboard(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Dashboard", d)
}

// AdminListUsers returns the admin's users with their task counts.
func AdminListUsers(c *fiber.Ctx) error {
	users, err := config.Accounts.ListUsers(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Users fetched successfully", users)
}

// AdminTaskForm returns the users a task can be assigned to.
func AdminTaskForm(c *fiber.Ctx) error {
	users, err := config.Accounts.AssignableUsers(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Task form", fiber.Map{"users": users})
}

func AdminCreateTask(c *fiber.Ctx) error {
	in, req, err := bindAdminTask(c)
	if err != nil {
		return respondError(c, err, req)
	}
	task, err := config.Tasks.Create(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return respondError(c, err, req)
	}
	return respond(c, fiber.StatusCreated, "Task '"+task.Title+"' created successfully!", task)
}

// AdminGetTask returns the task being edited and the assignee choices.
func AdminGetTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	actor := middleware.Actor(c)
	task, err := config.Tasks.Get(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err, nil)
	}
	users, err := config.Accounts.AssignableUsers(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Task found", fiber.Map{"task": task, "users": users})
}

func AdminEditTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	in, req, err := bindAdminTask(c)
	if err != nil {
		return respondError(c, err, req)
	}
	task, err := config.Tasks.Edit(c.UserContext(), middleware.Actor(c), id, in)
	if err != nil {
		return respondError(c, err, req)
	}
	return respond(c, fiber.StatusOK, "Task '"+task.Title+"' updated successfully!", task)
}

func AdminDeleteTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	if err := config.Tasks.Delete(c.UserContext(), middleware.Actor(c), id); err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Task deleted successfully!", nil)
}
