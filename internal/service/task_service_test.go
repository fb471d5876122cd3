package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-management/internal/apperror"
	"task-management/internal/lifecycle"
	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/internal/scope"
	"task-management/internal/testutil"
)

func strp(s string) *string { return &s }

func statusp(s models.Status) *models.Status { return &s }

func hoursp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTaskService(w *testutil.World) *TaskService {
	return NewTaskService(w.Mem.Tasks(), w.Mem.Accounts())
}

// assertConsistent checks the completion invariant over every stored task.
func assertConsistent(t *testing.T, w *testutil.World) {
	t.Helper()
	all, err := w.Mem.Tasks().List(context.Background(), scope.AllTasks(), repository.TaskListOptions{})
	require.NoError(t, err)
	for i := range all {
		assert.True(t, lifecycle.Consistent(&all[i]), "task %d status %s", all[i].ID, all[i].Status)
	}
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestListOwnTasks(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()

	got, err := svc.ListOwn(ctx, w.Ursula, repository.TaskListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{w.T2.ID, w.T1.ID}, ids(got), "newest first")
	assert.Equal(t, "ursula", got[0].AssignedToUsername)

	got, err = svc.ListOwn(ctx, w.Ursula, repository.TaskListOptions{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, []int64{w.T1.ID}, ids(got))

	_, err = svc.ListOwn(ctx, w.Ursula, repository.TaskListOptions{Status: "archived"})
	assert.True(t, apperror.Is(err, apperror.Validation))

	_, err = svc.ListOwn(ctx, w.Alice, repository.TaskListOptions{})
	assert.True(t, apperror.Is(err, apperror.Forbidden))
	_, err = svc.ListOwn(ctx, w.Root, repository.TaskListOptions{})
	assert.True(t, apperror.Is(err, apperror.Forbidden))
}

func TestListIsScopedPerRole(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()

	all, err := svc.List(ctx, w.Root, repository.TaskListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	own, err := svc.List(ctx, w.Alice, repository.TaskListOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{w.T1.ID, w.T2.ID}, ids(own))

	// more tasks elsewhere do not change alice's scope
	w.Mem.AddTask("Extra", w.Victor, w.Bob, models.StatusPending)
	w.Mem.AddTask("Extra 2", w.Walter, nil, models.StatusPending)
	again, err := svc.List(ctx, w.Alice, repository.TaskListOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(own), ids(again))
}

func TestUpdateTaskOutsideScopeIsNotFound(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	idle := w.Mem.AddAccount(models.RoleUser, "idle", w.Alice)

	_, err := svc.UpdateOwn(context.Background(), idle, w.T1.ID, lifecycle.UserUpdate{
		Status: statusp(models.StatusInProgress),
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, err = svc.UpdateOwn(context.Background(), idle, 9999, lifecycle.UserUpdate{})
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestUpdateOwnTaskRequiresUserRole(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	_, err := svc.UpdateOwn(context.Background(), w.Alice, w.T1.ID, lifecycle.UserUpdate{})
	assert.True(t, apperror.Is(err, apperror.Forbidden))
}

func TestUserCompletesThenAdminsReadReport(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()

	updated, err := svc.UpdateOwn(ctx, w.Ursula, w.T1.ID, lifecycle.UserUpdate{
		Status:           statusp(models.StatusCompleted),
		CompletionReport: strp("Done"),
		WorkedHours:      hoursp("5.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "Done", *updated.CompletionReport)
	assert.True(t, updated.WorkedHours.Equal(decimal.RequireFromString("5.5")))
	assertConsistent(t, w)

	report, err := svc.Report(ctx, w.Alice, w.T1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Done", report.CompletionReport)
	assert.Equal(t, "5.5", report.WorkedHours.String())
	assert.Equal(t, "ursula", report.AssignedToUsername)
	assert.Equal(t, "ursula@example.com", report.AssignedToEmail)

	_, err = svc.Report(ctx, w.Bob, w.T1.ID)
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	_, err = svc.Report(ctx, w.Root, w.T1.ID)
	assert.NoError(t, err)
}

func TestReportErrors(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()

	_, err := svc.Report(ctx, w.Root, w.T1.ID)
	assert.True(t, apperror.Is(err, apperror.InvalidState), "pending task")

	_, err = svc.Report(ctx, w.Root, 9999)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, err = svc.Report(ctx, w.Ursula, w.T2.ID)
	assert.True(t, apperror.Is(err, apperror.Forbidden))

	_, err = svc.Report(ctx, w.Alice, w.T4.ID)
	assert.True(t, apperror.Is(err, apperror.Forbidden), "unassigned user's task")
}

func TestLeavingCompletedClearsArtifacts(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)

	updated, err := svc.UpdateOwn(context.Background(), w.Ursula, w.T2.ID, lifecycle.UserUpdate{
		Status:           statusp(models.StatusPending),
		CompletionReport: strp("still here?"),
		WorkedHours:      hoursp("3"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletionReport)
	assert.Nil(t, updated.WorkedHours)

	stored, err := w.Mem.Tasks().Get(context.Background(), scope.AllTasks(), w.T2.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompletionReport)
	assert.Nil(t, stored.WorkedHours)
	assertConsistent(t, w)
}

func TestAdminCompletingWithEmptyReportLeavesTaskUnchanged(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()
	before, err := w.Mem.Tasks().Get(ctx, scope.AllTasks(), w.T1.ID)
	require.NoError(t, err)

	_, err = svc.Edit(ctx, w.Alice, w.T1.ID, lifecycle.AdminUpdate{
		Title:            strp("Renamed"),
		Status:           statusp(models.StatusCompleted),
		CompletionReport: strp(""),
		WorkedHours:      hoursp("1"),
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.Validation))
	assert.Contains(t, apperror.Fields(err), lifecycle.FieldCompletionReport)

	after, err := w.Mem.Tasks().Get(ctx, scope.AllTasks(), w.T1.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAdminCreateTask(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()
	due := models.NewDate(2025, 9, 1)

	created, err := svc.Create(ctx, w.Alice, lifecycle.AdminUpdate{
		Title:       strp("Onboarding"),
		Description: strp("Set up laptop"),
		AssignedTo:  &w.Ursula.ID,
		DueDate:     &due,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "ursula", created.AssignedToUsername)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, w.Alice.ID, *created.CreatedBy)
}

func TestAdminCreateTaskForForeignUser(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()
	due := models.NewDate(2025, 9, 1)

	for _, target := range []*models.Account{w.Victor, w.Walter, w.Bob} {
		_, err := svc.Create(ctx, w.Alice, lifecycle.AdminUpdate{
			Title:       strp("Sneaky"),
			Description: strp("x"),
			AssignedTo:  &target.ID,
			DueDate:     &due,
		})
		require.Error(t, err, target.Username)
		assert.True(t, apperror.Is(err, apperror.Validation))
		assert.Contains(t, apperror.Fields(err), lifecycle.FieldAssignedTo)
	}

	all, err := w.Mem.Tasks().List(ctx, scope.AllTasks(), repository.TaskListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 4, "no task created")
}

func TestCreateTaskMergesFieldErrors(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	_, err := svc.Create(context.Background(), w.Alice, lifecycle.AdminUpdate{AssignedTo: &w.Victor.ID})
	require.Error(t, err)
	fields := apperror.Fields(err)
	assert.Contains(t, fields, lifecycle.FieldTitle)
	assert.Contains(t, fields, lifecycle.FieldDueDate)
	assert.Contains(t, fields, lifecycle.FieldAssignedTo)
}

func TestCreateTaskRequiresAdmin(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	for _, actor := range []*models.Account{w.Root, w.Ursula, nil} {
		_, err := svc.Create(context.Background(), actor, lifecycle.AdminUpdate{})
		assert.True(t, apperror.Is(err, apperror.Forbidden))
	}
}

func TestAdminEditAndDelete(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()
	second := w.Mem.AddAccount(models.RoleUser, "sam", w.Alice)

	edited, err := svc.Edit(ctx, w.Alice, w.T1.ID, lifecycle.AdminUpdate{
		Title:      strp("Write better docs"),
		AssignedTo: &second.ID,
		Status:     statusp(models.StatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, "Write better docs", edited.Title)
	assert.Equal(t, "sam", edited.AssignedToUsername)
	assert.Equal(t, models.StatusInProgress, edited.Status)

	_, err = svc.Edit(ctx, w.Alice, w.T1.ID, lifecycle.AdminUpdate{AssignedTo: &w.Victor.ID})
	assert.True(t, apperror.Is(err, apperror.Validation))

	_, err = svc.Edit(ctx, w.Bob, w.T1.ID, lifecycle.AdminUpdate{Title: strp("mine now")})
	assert.True(t, apperror.Is(err, apperror.NotFound))

	assert.True(t, apperror.Is(svc.Delete(ctx, w.Bob, w.T1.ID), apperror.NotFound))
	require.NoError(t, svc.Delete(ctx, w.Alice, w.T1.ID))
	_, err = svc.Get(ctx, w.Root, w.T1.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestDashboard(t *testing.T) {
	w := testutil.NewWorld()
	svc := newTaskService(w)
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, w.Root)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalAdmins)
	assert.Equal(t, 3, d.TotalUsers)
	assert.Equal(t, models.TaskCounts{Total: 4, Pending: 1, InProgress: 1, Completed: 2}, d.Tasks)

	d, err = svc.Dashboard(ctx, w.Alice)
	require.NoError(t, err)
	assert.Zero(t, d.TotalAdmins)
	assert.Equal(t, 1, d.TotalUsers)
	assert.Equal(t, 2, d.Tasks.Total)

	d, err = svc.Dashboard(ctx, w.Walter)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCounts{Total: 1, InProgress: 1}, d.Tasks)
}
