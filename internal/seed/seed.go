// Package seed loads sample accounts and tasks from a YAML file. Seeding is
// idempotent: existing usernames and (title, assignee) pairs are skipped.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"task-management/internal/auth"
	"task-management/internal/lifecycle"
	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/internal/scope"
	"task-management/internal/service"
	"task-management/pkg/logger"
)

type Account struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	// Admin is the username of the admin a user is assigned to.
	Admin string `yaml:"admin,omitempty"`
}

type Task struct {
	Title            string        `yaml:"title"`
	Description      string        `yaml:"description"`
	Assignee         string        `yaml:"assignee"`
	Status           models.Status `yaml:"status"`
	CompletionReport string        `yaml:"completion_report,omitempty"`
	WorkedHours      string        `yaml:"worked_hours,omitempty"`
	DueInDays        int           `yaml:"due_in_days"`
}

type File struct {
	SuperAdmins []Account `yaml:"superadmins"`
	Admins      []Account `yaml:"admins"`
	Users       []Account `yaml:"users"`
	Tasks       []Task    `yaml:"tasks"`
}

// Result counts what Apply created.
type Result struct {
	Accounts int
	Tasks    int
}

func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply creates every account and task in f that does not exist yet. Due
// dates are relative to today.
func Apply(ctx context.Context, accounts service.AccountStore, tasks service.TaskStore, f *File, today time.Time) (Result, error) {
	var res Result
	byName := map[string]*models.Account{}

	ensure := func(role models.Role, entry Account) error {
		existing, _, err := accounts.GetCredentials(ctx, entry.Username)
		if err == nil {
			byName[existing.Username] = existing
			logger.SystemLogger.Info("Seed account exists", zap.String("username", entry.Username))
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		in := service.NewAccount{
			Username:  entry.Username,
			Email:     entry.Email,
			Password:  entry.Password,
			FirstName: entry.FirstName,
			LastName:  entry.LastName,
		}
		if entry.Admin != "" {
			admin, ok := byName[entry.Admin]
			if !ok || !admin.IsAdmin() {
				return fmt.Errorf("user %s: unknown admin %q", entry.Username, entry.Admin)
			}
			in.AssignedToAdmin = &admin.ID
		}
		a, err := service.BuildAccount(role, in)
		if err != nil {
			return fmt.Errorf("account %s: %w", entry.Username, err)
		}
		hash, err := auth.HashPassword(entry.Password)
		if err != nil {
			return err
		}
		if err := accounts.Create(ctx, a, hash); err != nil {
			return fmt.Errorf("create account %s: %w", entry.Username, err)
		}
		byName[a.Username] = a
		res.Accounts++
		logger.SystemLogger.Info("Seed account created", zap.String("username", a.Username), zap.String("role", string(role)))
		return nil
	}

	for _, group := range []struct {
		role  models.Role
		entries []Account
	}{
		{models.RoleSuperAdmin, f.SuperAdmins},
		{models.RoleAdmin, f.Admins},
		{models.RoleUser, f.Users},
	} {
		for _, entry := range group.entries {
			if err := ensure(group.role, entry); err != nil {
				return res, err
			}
		}
	}

	for _, entry := range f.Tasks {
		created, err := ensureTask(ctx, tasks, byName, entry, today)
		if err != nil {
			return res, fmt.Errorf("task %q: %w", entry.Title, err)
		}
		if created {
			res.Tasks++
		}
	}
	return res, nil
}

func ensureTask(ctx context.Context, tasks service.TaskStore, byName map[string]*models.Account, entry Task, today time.Time) (bool, error) {
	assignee, ok := byName[entry.Assignee]
	if !ok || !assignee.IsUser() {
		return false, fmt.Errorf("unknown user %q", entry.Assignee)
	}
	existing, err := tasks.List(ctx, scope.Tasks(assignee), repository.TaskListOptions{})
	if err != nil {
		return false, err
	}
	for _, t := range existing {
		if t.Title == entry.Title {
			return false, nil
		}
	}

	due := today.AddDate(0, 0, entry.DueInDays)
	date := models.NewDate(due.Year(), due.Month(), due.Day())
	in := lifecycle.AdminUpdate{
		Title:       &entry.Title,
		Description: &entry.Description,
		AssignedTo:  &assignee.ID,
		DueDate:     &date,
	}
	if entry.Status != "" {
		in.Status = &entry.Status
	}
	if entry.CompletionReport != "" {
		in.CompletionReport = &entry.CompletionReport
	}
	if h := strings.TrimSpace(entry.WorkedHours); h != "" {
		d, err := decimal.NewFromString(h)
		if err != nil {
			return false, fmt.Errorf("worked_hours: %w", err)
		}
		in.WorkedHours = &d
	}

	// created_by is the assignee's admin, as if the admin had created it
	var creator *models.Account
	if assignee.AssignedToAdmin != nil {
		creator = &models.Account{ID: *assignee.AssignedToAdmin, Role: models.RoleAdmin}
	}
	task, err := lifecycle.NewTask(creator, in)
	if err != nil {
		return false, err
	}
	if err := tasks.Create(ctx, task); err != nil {
		return false, err
	}
	logger.SystemLogger.Info("Seed task created", zap.String("title", task.Title), zap.String("assignee", assignee.Username))
	return true, nil
}
