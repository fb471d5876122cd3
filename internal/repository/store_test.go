package repository_test

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/internal/scope"
	"task-management/internal/seed"
	"task-management/internal/service"
	"task-management/internal/testutil"
	"task-management/pkg/crypto"
	"task-management/pkg/logger"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	flag.Parse()
	logger.InitNop()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	db, container, err := testutil.Postgres(ctx)
	if err != nil {
		// tanpa docker, test integrasi di-skip
		fmt.Fprintf(os.Stderr, "postgres unavailable, skipping store tests: %v\n", err)
		os.Exit(m.Run())
	}
	testDB = db
	code := m.Run()
	db.Close()
	container.Close()
	os.Exit(code)
}

type env struct {
	accounts *repository.AccountStore
	tasks    *repository.TaskStore
}

// setup recreates the schema so every test starts from empty tables.
func setup(t *testing.T) env {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres not available")
	}
	ctx := context.Background()
	require.NoError(t, repository.DeleteAllTable(ctx, testDB))
	require.NoError(t, repository.CreateTableIfNotExists(ctx, testDB))
	cipher, err := crypto.NewCipher("integration-test-key")
	require.NoError(t, err)
	return env{
		accounts: repository.NewAccountStore(testDB),
		tasks:    repository.NewTaskStore(testDB, cipher),
	}
}

func (e env) account(t *testing.T, role models.Role, username string, admin *models.Account) *models.Account {
	t.Helper()
	a := &models.Account{Username: username, Email: username + "@example.com", Role: role}
	if admin != nil {
		a.AssignedToAdmin = &admin.ID
	}
	require.NoError(t, e.accounts.Create(context.Background(), a, "hash"))
	return a
}

func (e env) task(t *testing.T, title string, assignee, creator *models.Account, completed bool) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       title,
		Description: "desc",
		AssignedTo:  assignee.ID,
		CreatedBy:   &creator.ID,
		DueDate:     models.NewDate(2025, time.June, 30),
		Status:      models.StatusPending,
	}
	if completed {
		report := "Done: " + title
		hours := decimal.RequireFromString("3.25")
		task.Status = models.StatusCompleted
		task.CompletionReport = &report
		task.WorkedHours = &hours
	}
	require.NoError(t, e.tasks.Create(context.Background(), task))
	return task
}

func TestAccountStore(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	alice := e.account(t, models.RoleAdmin, "alice", nil)
	bob := e.account(t, models.RoleAdmin, "bob", nil)
	ursula := e.account(t, models.RoleUser, "ursula", alice)
	e.account(t, models.RoleUser, "victor", bob)

	t.Run("duplicate username", func(t *testing.T) {
		err := e.accounts.Create(ctx, &models.Account{Username: "alice", Role: models.RoleAdmin}, "hash")
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("credentials", func(t *testing.T) {
		a, hash, err := e.accounts.GetCredentials(ctx, "ursula")
		require.NoError(t, err)
		assert.Equal(t, ursula.ID, a.ID)
		assert.Equal(t, "hash", hash)

		_, _, err = e.accounts.GetCredentials(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("scoped list", func(t *testing.T) {
		users, err := e.accounts.List(ctx, scope.Accounts(alice, models.RoleUser))
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "ursula", users[0].Username)

		n, err := e.accounts.Count(ctx, scope.AllAccounts(models.RoleAdmin))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		_, err = e.accounts.Get(ctx, scope.Accounts(bob, models.RoleUser), ursula.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		ursula.Email = "new@example.com"
		ursula.AssignedToAdmin = &bob.ID
		require.NoError(t, e.accounts.Update(ctx, ursula))
		got, err := e.accounts.Get(ctx, scope.Accounts(bob, models.RoleUser), ursula.ID)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)

		missing := &models.Account{ID: 99999}
		assert.ErrorIs(t, e.accounts.Update(ctx, missing), repository.ErrNotFound)
	})

	t.Run("admin link only for users", func(t *testing.T) {
		err := e.accounts.Create(ctx, &models.Account{Username: "carol", Role: models.RoleAdmin, AssignedToAdmin: &alice.ID}, "hash")
		assert.Error(t, err)
	})
}

func TestDeleteAccountForeignKeys(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	alice := e.account(t, models.RoleAdmin, "alice", nil)
	ursula := e.account(t, models.RoleUser, "ursula", alice)
	walter := e.account(t, models.RoleUser, "walter", alice)
	kept := e.task(t, "Kept", ursula, alice, false)
	gone := e.task(t, "Gone", walter, alice, false)

	// admin dihapus: user jadi orphan, task tetap ada
	require.NoError(t, e.accounts.Delete(ctx, alice.ID))
	got, err := e.accounts.Get(ctx, scope.AllAccounts(models.RoleUser), ursula.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedToAdmin)
	task, err := e.tasks.Get(ctx, scope.AllTasks(), kept.ID)
	require.NoError(t, err)
	assert.Nil(t, task.CreatedBy)
	assert.Nil(t, task.AssigneeAdminID)

	// user dihapus: task ikut terhapus
	require.NoError(t, e.accounts.Delete(ctx, walter.ID))
	_, err = e.tasks.Get(ctx, scope.AllTasks(), gone.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, e.accounts.Delete(ctx, walter.ID), repository.ErrNotFound)
}

func TestTaskStore(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	alice := e.account(t, models.RoleAdmin, "alice", nil)
	bob := e.account(t, models.RoleAdmin, "bob", nil)
	ursula := e.account(t, models.RoleUser, "ursula", alice)
	victor := e.account(t, models.RoleUser, "victor", bob)
	t1 := e.task(t, "T1", ursula, alice, false)
	t2 := e.task(t, "T2", ursula, alice, true)
	e.task(t, "T3", victor, bob, true)

	t.Run("report is encrypted at rest", func(t *testing.T) {
		var raw string
		require.NoError(t, testDB.QueryRowContext(ctx, `SELECT completion_report FROM tasks WHERE id = $1`, t2.ID).Scan(&raw))
		assert.NotEqual(t, "Done: T2", raw)

		got, err := e.tasks.Get(ctx, scope.Tasks(alice), t2.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CompletionReport)
		assert.Equal(t, "Done: T2", *got.CompletionReport)
		assert.True(t, decimal.RequireFromString("3.25").Equal(*got.WorkedHours))
		assert.Equal(t, "ursula", got.AssignedToUsername)
		assert.Equal(t, alice.ID, *got.AssigneeAdminID)
		assert.Equal(t, "2025-06-30", got.DueDate.String())
	})

	t.Run("scoped list", func(t *testing.T) {
		tasks, err := e.tasks.List(ctx, scope.Tasks(alice), repository.TaskListOptions{})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, t2.ID, tasks[0].ID, "newest first")

		tasks, err = e.tasks.List(ctx, scope.Tasks(ursula), repository.TaskListOptions{Status: models.StatusPending})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, t1.ID, tasks[0].ID)

		_, err = e.tasks.Get(ctx, scope.Tasks(victor), t1.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("counts", func(t *testing.T) {
		all, err := e.tasks.Counts(ctx, scope.AllTasks())
		require.NoError(t, err)
		assert.Equal(t, models.TaskCounts{Total: 3, Pending: 1, Completed: 2}, all)

		byUser, err := e.tasks.CountsByAssignee(ctx, scope.Tasks(alice))
		require.NoError(t, err)
		assert.Equal(t, 2, byUser[ursula.ID].Total)
		assert.NotContains(t, byUser, victor.ID)
	})

	t.Run("completion columns are checked by the database", func(t *testing.T) {
		broken := *t1
		broken.Status = models.StatusCompleted
		assert.Error(t, e.tasks.Update(ctx, &broken))
	})

	t.Run("update and delete", func(t *testing.T) {
		t1.Status = models.StatusInProgress
		t1.Title = "T1 renamed"
		require.NoError(t, e.tasks.Update(ctx, t1))
		got, err := e.tasks.Get(ctx, scope.AllTasks(), t1.ID)
		require.NoError(t, err)
		assert.Equal(t, "T1 renamed", got.Title)
		assert.Equal(t, models.StatusInProgress, got.Status)

		require.NoError(t, e.tasks.Delete(ctx, t1.ID))
		assert.ErrorIs(t, e.tasks.Delete(ctx, t1.ID), repository.ErrNotFound)
	})
}

func TestServicesAgainstPostgres(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	f, err := seed.Load(filepath.Join("..", "..", "configs", "sample_data.yaml"))
	require.NoError(t, err)
	res, err := seed.Apply(ctx, e.accounts, e.tasks, f, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Accounts: 8, Tasks: 5}, res)

	accounts := service.NewAccountService(e.accounts, e.tasks, testutil.NewCache())
	tasks := service.NewTaskService(e.tasks, e.accounts)

	user1, err := accounts.Authenticate(ctx, "user1", "user1123456")
	require.NoError(t, err)
	own, err := tasks.ListOwn(ctx, user1, repository.TaskListOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, own)

	admin2, _, err := e.accounts.GetCredentials(ctx, "admin2")
	require.NoError(t, err)
	_, err = tasks.Get(ctx, admin2, own[0].ID)
	assert.Error(t, err, "admin2 cannot see tasks of admin1's users")

	completed, err := e.tasks.List(ctx, scope.AllTasks(), repository.TaskListOptions{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	root, _, err := e.accounts.GetCredentials(ctx, "superadmin")
	require.NoError(t, err)
	report, err := tasks.Report(ctx, root, completed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "6.5", report.WorkedHours.String())
}
