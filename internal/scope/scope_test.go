package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"task-management/internal/models"
)

func id(v int64) *int64 { return &v }

var (
	root   = &models.Account{ID: 1, Role: models.RoleSuperAdmin}
	alice  = &models.Account{ID: 2, Role: models.RoleAdmin}
	bob    = &models.Account{ID: 3, Role: models.RoleAdmin}
	ursula = &models.Account{ID: 4, Role: models.RoleUser, AssignedToAdmin: id(2)}
	victor = &models.Account{ID: 5, Role: models.RoleUser, AssignedToAdmin: id(3)}
	walter = &models.Account{ID: 6, Role: models.RoleUser}

	accounts = []*models.Account{root, alice, bob, ursula, victor, walter}

	tUrsula = &models.Task{ID: 10, AssignedTo: 4, AssigneeAdminID: id(2)}
	tVictor = &models.Task{ID: 11, AssignedTo: 5, AssigneeAdminID: id(3)}
	tWalter = &models.Task{ID: 12, AssignedTo: 6}
	tasks   = []*models.Task{tUrsula, tVictor, tWalter}
)

func matchingTasks(f Filter) []int64 {
	var out []int64
	for _, t := range tasks {
		if f.MatchTask(t) {
			out = append(out, t.ID)
		}
	}
	return out
}

func matchingAccounts(f Filter) []int64 {
	var out []int64
	for _, a := range accounts {
		if f.MatchAccount(a) {
			out = append(out, a.ID)
		}
	}
	return out
}

func TestTaskScope(t *testing.T) {
	assert.Equal(t, []int64{10, 11, 12}, matchingTasks(Tasks(root)))
	assert.Equal(t, []int64{10}, matchingTasks(Tasks(alice)))
	assert.Equal(t, []int64{11}, matchingTasks(Tasks(bob)))
	assert.Equal(t, []int64{10}, matchingTasks(Tasks(ursula)))
	assert.Empty(t, matchingTasks(Tasks(nil)))
}

func TestAccountScope(t *testing.T) {
	assert.Equal(t, []int64{2, 3}, matchingAccounts(Accounts(root, models.RoleAdmin)))
	assert.Equal(t, []int64{4, 5, 6}, matchingAccounts(Accounts(root, models.RoleUser)))
	assert.Equal(t, []int64{4}, matchingAccounts(Accounts(alice, models.RoleUser)))
	assert.Empty(t, matchingAccounts(Accounts(alice, models.RoleAdmin)))
	assert.Empty(t, matchingAccounts(Accounts(ursula, models.RoleUser)))
	assert.True(t, Accounts(ursula, models.RoleUser).Empty())
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, matchingAccounts(AllAccounts("")))
}

func TestFilterDoesNotCrossEntities(t *testing.T) {
	assert.False(t, Tasks(root).MatchAccount(alice))
	assert.False(t, Accounts(root, models.RoleUser).MatchTask(tUrsula))
}

func TestWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		first    int
		wantSQL  string
		wantArgs []any
	}{
		{"superadmin tasks", Tasks(root), 1, "TRUE", nil},
		{"admin tasks", Tasks(alice), 1, "u.assigned_to_admin = $1", []any{int64(2)}},
		{"user tasks", Tasks(ursula), 3, "t.assigned_to = $3", []any{int64(4)}},
		{"admin users", Accounts(alice, models.RoleUser), 2, "a.role = $2 AND a.assigned_to_admin = $3", []any{"user", int64(2)}},
		{"user accounts", Accounts(ursula, models.RoleUser), 1, "FALSE", nil},
		{"all admins", AllAccounts(models.RoleAdmin), 1, "a.role = $1", []any{"admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.filter.Where(tt.first)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
