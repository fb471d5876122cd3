package handlers

import (
	"github.com/gofiber/fiber/v2"

	"task-management/internal/config"
	"task-management/internal/middleware"
	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/internal/service"
)

// Panel SuperAdmin: kelola admin, kelola semua user, lihat semua task.

type accountRequest struct {
	Username        string  `json:"username" form:"username" validate:"required,max=150,excludesall=@?"`
	Email           string  `json:"email" form:"email" validate:"omitempty,email"`
	Password        string  `json:"password,omitempty" form:"password" validate:"required,min=6"`
	FirstName       string  `json:"first_name" form:"first_name" validate:"max=150"`
	LastName        string  `json:"last_name" form:"last_name" validate:"max=150"`
	AssignedToAdmin idInput `json:"assigned_to_admin" form:"assigned_to_admin"`
}

// echo strips the password before the form is sent back.
func (r accountRequest) echo() accountRequest {
	r.Password = ""
	return r
}

func (r accountRequest) newAccount() (service.NewAccount, error) {
	admin, err := r.AssignedToAdmin.parse("assigned_to_admin")
	if err != nil {
		return service.NewAccount{}, err
	}
	return service.NewAccount{
		Username:        r.Username,
		Email:           r.Email,
		Password:        r.Password,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		AssignedToAdmin: admin,
	}, nil
}

// bindAccount parses the account form; on failure it has already written the
// response and returns ok=false.
func bindAccount(c *fiber.Ctx) (service.NewAccount, bool, error) {
	var req accountRequest
	if err := bindRequest(c, &req); err != nil {
		return service.NewAccount{}, false, respondError(c, err, req.echo())
	}
	in, err := req.newAccount()
	if err != nil {
		return service.NewAccount{}, false, respondError(c, err, req.echo())
	}
	return in, true, nil
}

func SuperAdminDashboard(c *fiber.Ctx) error {
	d, err := config.Tasks.Dashboard(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Dashboard", d)
}

func SuperAdminListAdmins(c *fiber.Ctx) error {
	admins, err := config.Accounts.ListAdmins(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Admins fetched successfully", admins)
}

func SuperAdminCreateAdmin(c *fiber.Ctx) error {
	in, ok, err := bindAccount(c)
	if !ok {
		return err
	}
	admin, err := config.Accounts.CreateAdmin(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusCreated, "Admin '"+admin.Username+"' created successfully!", admin)
}

func SuperAdminDeleteAdmin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	if err := config.Accounts.DeleteAdmin(c.UserContext(), middleware.Actor(c), id); err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Admin deleted successfully!", nil)
}

func SuperAdminListUsers(c *fiber.Ctx) error {
	users, err := config.Accounts.ListUsers(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Users fetched successfully", users)
}

// SuperAdminUserForm returns the admins a user can be assigned to.
func SuperAdminUserForm(c *fiber.Ctx) error {
	admins, err := config.Accounts.ListAdmins(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "User form", fiber.Map{"admins": admins})
}

func SuperAdminCreateUser(c *fiber.Ctx) error {
	in, ok, err := bindAccount(c)
	if !ok {
		return err
	}
	user, err := config.Accounts.CreateUser(c.UserContext(), middleware.Actor(c), in)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusCreated, "User '"+user.Username+"' created successfully!", user)
}

// SuperAdminGetUser returns the user being edited and the admin choices.
func SuperAdminGetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	actor := middleware.Actor(c)
	user, err := config.Accounts.GetUser(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err, nil)
	}
	admins, err := config.Accounts.ListAdmins(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "User found", fiber.Map{"user": user, "admins": admins})
}

type editUserRequest struct {
	Email           string  `json:"email" form:"email" validate:"omitempty,email"`
	FirstName       string  `json:"first_name" form:"first_name" validate:"max=150"`
	LastName        string  `json:"last_name" form:"last_name" validate:"max=150"`
	AssignedToAdmin idInput `json:"assigned_to_admin" form:"assigned_to_admin"`
}

func SuperAdminEditUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	var req editUserRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err, req)
	}
	admin, err := req.AssignedToAdmin.parse("assigned_to_admin")
	if err != nil {
		return respondError(c, err, req)
	}
	user, err := config.Accounts.EditUser(c.UserContext(), middleware.Actor(c), id, service.AccountEdit{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		AssignedToAdmin: admin,
	})
	if err != nil {
		return respondError(c, err, req)
	}
	return respond(c, fiber.StatusOK, "User '"+user.Username+"' updated successfully!", user)
}

func SuperAdminDeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, nil)
	}
	if err := config.Accounts.DeleteUser(c.UserContext(), middleware.Actor(c), id); err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "User deleted successfully!", nil)
}

// PanelListTasks lists the tasks in the actor's scope: all tasks for a
// superadmin, the tasks of their own users for an admin.
func PanelListTasks(c *fiber.Ctx) error {
	opts := repository.TaskListOptions{Status: models.Status(c.Query("status"))}
	tasks, err := config.Tasks.List(c.UserContext(), middleware.Actor(c), opts)
	if err != nil {
		return respondError(c, err, nil)
	}
	return respond(c, fiber.StatusOK, "Tasks fetched successfully", tasks)
}
