package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-management/internal/lifecycle"
	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/internal/scope"
	"task-management/internal/testutil"
)

var today = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestApplySampleData(t *testing.T) {
	f, err := Load(filepath.Join("..", "..", "configs", "sample_data.yaml"))
	require.NoError(t, err)

	mem := testutil.NewMemory()
	ctx := context.Background()
	res, err := Apply(ctx, mem.Accounts(), mem.Tasks(), f, today)
	require.NoError(t, err)
	assert.Equal(t, Result{Accounts: 8, Tasks: 5}, res)

	admin1, _, err := mem.Accounts().GetCredentials(ctx, "admin1")
	require.NoError(t, err)
	users, err := mem.Accounts().List(ctx, scope.Accounts(admin1, models.RoleUser))
	require.NoError(t, err)
	assert.Len(t, users, 3)

	all, err := mem.Tasks().List(ctx, scope.AllTasks(), repository.TaskListOptions{})
	require.NoError(t, err)
	for i := range all {
		assert.True(t, lifecycle.Consistent(&all[i]), all[i].Title)
		require.NotNil(t, all[i].CreatedBy, all[i].Title)
	}

	completed, err := mem.Tasks().List(ctx, scope.AllTasks(), repository.TaskListOptions{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "6.5", completed[0].WorkedHours.String())
	assert.Equal(t, "2025-04-07", completed[0].DueDate.String())

	again, err := Apply(ctx, mem.Accounts(), mem.Tasks(), f, today)
	require.NoError(t, err)
	assert.Equal(t, Result{}, again, "second run creates nothing")
}

func TestApplyRejectsInconsistentTask(t *testing.T) {
	f, err := Parse([]byte(`
admins:
  - {username: a, password: pw}
users:
  - {username: u, password: pw, admin: a}
tasks:
  - {title: Broken, description: x, assignee: u, status: completed}
`))
	require.NoError(t, err)
	mem := testutil.NewMemory()
	_, err = Apply(context.Background(), mem.Accounts(), mem.Tasks(), f, today)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}

func TestApplyUnknownAdmin(t *testing.T) {
	f, err := Parse([]byte(`
users:
  - {username: u, password: pw, admin: ghost}
`))
	require.NoError(t, err)
	mem := testutil.NewMemory()
	_, err = Apply(context.Background(), mem.Accounts(), mem.Tasks(), f, today)
	assert.ErrorContains(t, err, "ghost")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
