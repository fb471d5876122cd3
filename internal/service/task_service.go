package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"task-management/internal/apperror"
	"task-management/internal/lifecycle"
	"task-management/internal/models"
	"task-management/internal/policy"
	"task-management/internal/repository"
	"task-management/internal/scope"
	"task-management/pkg/logger"
)

type TaskService struct {
	tasks    TaskStore
	accounts AccountStore
}

func NewTaskService(tasks TaskStore, accounts AccountStore) *TaskService {
	return &TaskService{tasks: tasks, accounts: accounts}
}

func checkStatusFilter(s models.Status) error {
	if s != "" && !s.Valid() {
		return apperror.FieldError(lifecycle.FieldStatus, fmt.Sprintf("%q is not a valid choice.", string(s)))
	}
	return nil
}

// List returns the tasks in the actor's scope, newest first.
func (s *TaskService) List(ctx context.Context, actor *models.Account, opts repository.TaskListOptions) ([]models.Task, error) {
	if actor == nil {
		return nil, apperror.New(apperror.Unauthenticated, "Authentication required")
	}
	if err := checkStatusFilter(opts.Status); err != nil {
		return nil, err
	}
	return s.tasks.List(ctx, scope.Tasks(actor), opts)
}

// ListOwn is List restricted to the user API.
func (s *TaskService) ListOwn(ctx context.Context, actor *models.Account, opts repository.TaskListOptions) ([]models.Task, error) {
	if err := denied(actor, policy.CanAccessUserAPI(actor), "list_own_tasks"); err != nil {
		return nil, err
	}
	return s.List(ctx, actor, opts)
}

// Get returns a task in the actor's scope.
func (s *TaskService) Get(ctx context.Context, actor *models.Account, id int64) (*models.Task, error) {
	if actor == nil {
		return nil, apperror.New(apperror.Unauthenticated, "Authentication required")
	}
	t, err := s.tasks.Get(ctx, scope.Tasks(actor), id)
	if err != nil {
		return nil, notFound(err, "Task")
	}
	return t, nil
}

// UpdateOwn applies a user's status/completion update to their own task.
func (s *TaskService) UpdateOwn(ctx context.Context, actor *models.Account, id int64, in lifecycle.UserUpdate) (*models.Task, error) {
	if err := denied(actor, policy.CanAccessUserAPI(actor), "update_own_task"); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := denied(actor, policy.CanUpdateOwnTask(actor, t), "update_own_task"); err != nil {
		return nil, err
	}
	if err := lifecycle.ApplyUserUpdate(t, in); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, notFound(err, "Task")
	}
	logger.AuditLogger.Info("Task updated by assignee",
		zap.Int64("task_id", t.ID), zap.Int64("user_id", actor.ID), zap.String("status", string(t.Status)))
	return t, nil
}

// Create builds a task for one of the admin's users.
func (s *TaskService) Create(ctx context.Context, actor *models.Account, in lifecycle.AdminUpdate) (*models.Task, error) {
	if err := denied(actor, policy.CanManageOwnUsers(actor), "create_task"); err != nil {
		return nil, err
	}
	t, buildErr := lifecycle.NewTask(actor, in)
	var assigneeErr error
	if in.AssignedTo != nil {
		assigneeErr = s.checkAssignee(ctx, actor, *in.AssignedTo)
	}
	if err := mergeValidation(buildErr, assigneeErr); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	logger.AuditLogger.Info("Task created", zap.Int64("task_id", t.ID), zap.Int64("admin_id", actor.ID))
	return s.reload(ctx, actor, t)
}

// Edit applies an admin's changes to a task in their scope.
func (s *TaskService) Edit(ctx context.Context, actor *models.Account, id int64, in lifecycle.AdminUpdate) (*models.Task, error) {
	if err := denied(actor, policy.CanManageOwnUsers(actor), "edit_task"); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := denied(actor, policy.CanManageTask(actor, t), "edit_task"); err != nil {
		return nil, err
	}
	var assigneeErr error
	if in.AssignedTo != nil && *in.AssignedTo != t.AssignedTo {
		assigneeErr = s.checkAssignee(ctx, actor, *in.AssignedTo)
	}
	applyErr := lifecycle.ApplyAdminUpdate(t, in)
	if err := mergeValidation(applyErr, assigneeErr); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, notFound(err, "Task")
	}
	logger.AuditLogger.Info("Task edited", zap.Int64("task_id", t.ID), zap.Int64("admin_id", actor.ID))
	return s.reload(ctx, actor, t)
}

// Delete removes a task in the admin's scope.
func (s *TaskService) Delete(ctx context.Context, actor *models.Account, id int64) error {
	if err := denied(actor, policy.CanManageOwnUsers(actor), "delete_task"); err != nil {
		return err
	}
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := denied(actor, policy.CanManageTask(actor, t), "delete_task"); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, t.ID); err != nil {
		return notFound(err, "Task")
	}
	logger.AuditLogger.Info("Task deleted", zap.Int64("task_id", t.ID), zap.Int64("admin_id", actor.ID))
	return nil
}

// Report returns the completion report of a task. The role is checked
// first, then existence, then ownership, then the task state.
func (s *TaskService) Report(ctx context.Context, actor *models.Account, id int64) (*models.TaskReport, error) {
	if err := denied(actor, policy.CanAccessPanel(actor), "view_task_report"); err != nil {
		return nil, err
	}
	t, err := s.tasks.Get(ctx, scope.AllTasks(), id)
	if err != nil {
		return nil, notFound(err, "Task")
	}
	if err := denied(actor, policy.CanViewTaskReport(actor, t), "view_task_report"); err != nil {
		return nil, err
	}
	assignee, err := s.accounts.Get(ctx, scope.AllAccounts(models.RoleUser), t.AssignedTo)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return lifecycle.Report(t, assignee)
}

// Dashboard returns the overview counts for the actor's role.
func (s *TaskService) Dashboard(ctx context.Context, actor *models.Account) (*models.Dashboard, error) {
	if actor == nil {
		return nil, apperror.New(apperror.Unauthenticated, "Authentication required")
	}
	counts, err := s.tasks.Counts(ctx, scope.Tasks(actor))
	if err != nil {
		return nil, err
	}
	d := &models.Dashboard{Role: actor.Role, Tasks: counts}
	switch actor.Role {
	case models.RoleSuperAdmin:
		if d.TotalAdmins, err = s.accounts.Count(ctx, scope.Accounts(actor, models.RoleAdmin)); err != nil {
			return nil, err
		}
		fallthrough
	case models.RoleAdmin:
		if d.TotalUsers, err = s.accounts.Count(ctx, scope.Accounts(actor, models.RoleUser)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// checkAssignee loads the candidate within the admin's own users and checks
// it with the lifecycle rules.
func (s *TaskService) checkAssignee(ctx context.Context, actor *models.Account, id int64) error {
	candidate, err := s.accounts.Get(ctx, scope.Accounts(actor, models.RoleUser), id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return lifecycle.CheckAssignee(actor, candidate)
}

func (s *TaskService) reload(ctx context.Context, actor *models.Account, t *models.Task) (*models.Task, error) {
	fresh, err := s.tasks.Get(ctx, scope.Tasks(actor), t.ID)
	if err != nil {
		return nil, notFound(err, "Task")
	}
	return fresh, nil
}
