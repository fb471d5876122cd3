package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role menandakan tingkat akses sebuah akun.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Status adalah status pengerjaan task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid returns true if the status is one of the following:
// - pending
// - in_progress
// - completed
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Account is a SuperAdmin, Admin or User. AssignedToAdmin is only set for
// users and always points at an admin.
type Account struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Role            Role      `json:"role"`
	AssignedToAdmin *int64    `json:"assigned_to_admin"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (a *Account) IsSuperAdmin() bool { return a != nil && a.Role == RoleSuperAdmin }
func (a *Account) IsAdmin() bool      { return a != nil && a.Role == RoleAdmin }
func (a *Account) IsUser() bool       { return a != nil && a.Role == RoleUser }

// Task is a unit of work assigned to a user.
//
// AssignedToUsername and AssigneeAdminID are read through the assignee and
// are never written back.
type Task struct {
	ID                 int64            `json:"id"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	AssignedTo         int64            `json:"assigned_to"`
	AssignedToUsername string           `json:"assigned_to_username"`
	AssigneeAdminID    *int64           `json:"-"`
	CreatedBy          *int64           `json:"created_by,omitempty"`
	DueDate            Date             `json:"due_date"`
	Status             Status           `json:"status"`
	CompletionReport   *string          `json:"completion_report,omitempty"`
	WorkedHours        *decimal.Decimal `json:"worked_hours,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TaskView is the shape returned by the task listing endpoints.
type TaskView struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	AssignedTo         int64     `json:"assigned_to"`
	AssignedToUsername string    `json:"assigned_to_username"`
	DueDate            Date      `json:"due_date"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// View strips the completion artifacts from t.
func (t *Task) View() TaskView {
	return TaskView{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		AssignedTo:         t.AssignedTo,
		AssignedToUsername: t.AssignedToUsername,
		DueDate:            t.DueDate,
		Status:             t.Status,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// TaskReport is the completion report of a finished task.
type TaskReport struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	AssignedToUsername string          `json:"assigned_to_username"`
	AssignedToEmail    string          `json:"assigned_to_email"`
	DueDate            Date            `json:"due_date"`
	Status             Status          `json:"status"`
	CompletionReport   string          `json:"completion_report"`
	WorkedHours        decimal.Decimal `json:"worked_hours"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TaskCounts holds per-status task totals.
type TaskCounts struct {
	Total      int `json:"total_tasks"`
	Pending    int `json:"pending_tasks"`
	InProgress int `json:"in_progress_tasks"`
	Completed  int `json:"completed_tasks"`
}

// Add counts n tasks with the given status.
func (c *TaskCounts) Add(s Status, n int) {
	c.Total += n
	switch s {
	case StatusPending:
		c.Pending += n
	case StatusInProgress:
		c.InProgress += n
	case StatusCompleted:
		c.Completed += n
	}
}

// Dashboard is the overview shown on each role's landing page. Fields that do
// not apply to the viewer's role stay zero and are omitted.
type Dashboard struct {
	Role        Role       `json:"role"`
	TotalAdmins int        `json:"total_admins,omitempty"`
	TotalUsers  int        `json:"total_users,omitempty"`
	Tasks       TaskCounts `json:"tasks"`
}

// UserSummary is a user together with its task counts.
type UserSummary struct {
	User           Account `json:"user"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
}
