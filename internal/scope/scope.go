// Package scope derives the set of records an actor may see. The same Filter
// renders a SQL predicate for the repository and matches records in memory,
// and every single-record lookup must be conjoined with it.
package scope

import (
	"fmt"
	"strings"

	"task-management/internal/models"
)

// Table aliases the rendered predicates refer to. Task queries join the
// assignee account as AssigneeAlias.
const (
	TaskAlias     = "t"
	AssigneeAlias = "u"
	AccountAlias  = "a"
)

type entity int

const (
	taskEntity entity = iota
	accountEntity
)

// Filter is the base predicate for one (actor, entity) pair.
type Filter struct {
	entity     entity
	empty      bool
	role       models.Role
	adminID    *int64
	assigneeID *int64
}

// Tasks returns the task scope of actor:
//   - superadmin: every task
//   - admin: tasks whose assignee is assigned to the admin
//   - user: tasks assigned to the user
func Tasks(actor *models.Account) Filter {
	f := Filter{entity: taskEntity}
	switch {
	case actor.IsSuperAdmin():
	case actor.IsAdmin():
		f.adminID = ptr(actor.ID)
	case actor.IsUser():
		f.assigneeID = ptr(actor.ID)
	default:
		f.empty = true
	}
	return f
}

// Accounts returns the account scope of actor restricted to role:
//   - superadmin: every account of the role
//   - admin: users assigned to the admin (any other role is empty)
//   - user: nothing
func Accounts(actor *models.Account, role models.Role) Filter {
	f := Filter{entity: accountEntity, role: role}
	switch {
	case actor.IsSuperAdmin():
	case actor.IsAdmin() && role == models.RoleUser:
		f.adminID = ptr(actor.ID)
	default:
		f.empty = true
	}
	return f
}

// AllAccounts returns an unrestricted account filter for role (every role
// if empty). It is meant for the authentication collaborator, bootstrap code
// and reference checks, never for listing on behalf of an actor.
func AllAccounts(role models.Role) Filter {
	return Filter{entity: accountEntity, role: role}
}

// AllTasks returns an unrestricted task filter. Only the report lookup uses
// it, because its policy is decided on the loaded record.
func AllTasks() Filter {
	return Filter{entity: taskEntity}
}

// Empty reports whether the filter can never match.
func (f Filter) Empty() bool { return f.empty }

// Where renders the predicate with placeholders starting at $firstArg. The
// returned clause is never empty.
func (f Filter) Where(firstArg int) (string, []any) {
	if f.empty {
		return "FALSE", nil
	}
	var (
		clauses []string
		args    []any
	)
	add := func(column string, v any) {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, firstArg+len(args)))
		args = append(args, v)
	}
	switch f.entity {
	case taskEntity:
		if f.assigneeID != nil {
			add(TaskAlias+".assigned_to", *f.assigneeID)
		}
		if f.adminID != nil {
			add(AssigneeAlias+".assigned_to_admin", *f.adminID)
		}
	case accountEntity:
		if f.role != "" {
			add(AccountAlias+".role", string(f.role))
		}
		if f.adminID != nil {
			add(AccountAlias+".assigned_to_admin", *f.adminID)
		}
	}
	if len(clauses) == 0 {
		return "TRUE", nil
	}
	return strings.Join(clauses, " AND "), args
}

// MatchTask reports whether t is inside a task scope.
func (f Filter) MatchTask(t *models.Task) bool {
	if f.empty || f.entity != taskEntity || t == nil {
		return false
	}
	if f.assigneeID != nil && t.AssignedTo != *f.assigneeID {
		return false
	}
	if f.adminID != nil && (t.AssigneeAdminID == nil || *t.AssigneeAdminID != *f.adminID) {
		return false
	}
	return true
}

// MatchAccount reports whether a is inside an account scope.
func (f Filter) MatchAccount(a *models.Account) bool {
	if f.empty || f.entity != accountEntity || a == nil {
		return false
	}
	if f.role != "" && a.Role != f.role {
		return false
	}
	if f.adminID != nil && (a.AssignedToAdmin == nil || *a.AssignedToAdmin != *f.adminID) {
		return false
	}
	return true
}

func ptr(v int64) *int64 { return &v }
