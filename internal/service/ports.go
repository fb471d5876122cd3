// Package service runs every request through the same pipeline: the scope
// layer restricts what the actor can see, the policy gates the action, the
// lifecycle validates the change and only then is it persisted. Both the API
// and the panel call into this package.
package service

import (
	"context"
	"errors"

	"task-management/internal/apperror"
	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/internal/scope"
)

// AccountStore is implemented by repository.AccountStore.
type AccountStore interface {
	List(ctx context.Context, f scope.Filter) ([]models.Account, error)
	Get(ctx context.Context, f scope.Filter, id int64) (*models.Account, error)
	Count(ctx context.Context, f scope.Filter) (int, error)
	GetCredentials(ctx context.Context, username string) (*models.Account, string, error)
	Create(ctx context.Context, a *models.Account, passwordHash string) error
	Update(ctx context.Context, a *models.Account) error
	Delete(ctx context.Context, id int64) error
}

// TaskStore is implemented by repository.TaskStore.
type TaskStore interface {
	List(ctx context.Context, f scope.Filter, opts repository.TaskListOptions) ([]models.Task, error)
	Get(ctx context.Context, f scope.Filter, id int64) (*models.Task, error)
	Counts(ctx context.Context, f scope.Filter) (models.TaskCounts, error)
	CountsByAssignee(ctx context.Context, f scope.Filter) (map[int64]models.TaskCounts, error)
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id int64) error
}

// AccountCache is implemented by cache.AccountCache. Get returns nil, nil on
// a miss.
type AccountCache interface {
	Get(ctx context.Context, id int64) (*models.Account, error)
	Set(ctx context.Context, a *models.Account) error
	Delete(ctx context.Context, ids ...int64) error
}

// notFound turns a repository miss into the client-facing NotFound error.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NewNotFound("%s not found.", what)
	}
	return err
}

// mergeValidation combines validation errors into one. A non-validation
// error wins over all of them.
func mergeValidation(errs ...error) error {
	fields := map[string]string{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !apperror.Is(err, apperror.Validation) {
			return err
		}
		for k, v := range apperror.Fields(err) {
			if _, ok := fields[k]; !ok {
				fields[k] = v
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return apperror.NewValidation(fields)
}
