// Package policy holds the pure authorization decisions. Every function takes
// the actor (and, where relevant, the target record) and never touches
// storage; the caller is responsible for loading the record within the
// actor's scope first.
package policy

import (
	"task-management/internal/apperror"
	"task-management/internal/models"
)

// Reason describes why a decision was made.
type Reason int

const (
	ReasonAllowed Reason = iota
	ReasonNoActor
	ReasonWrongRole
	ReasonNotOwner
)

func (r Reason) String() string {
	switch r {
	case ReasonAllowed:
		return "allowed"
	case ReasonNoActor:
		return "no authenticated actor"
	case ReasonWrongRole:
		return "role not permitted"
	case ReasonNotOwner:
		return "record not owned by actor"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true, Reason: ReasonAllowed}

func deny(r Reason) Decision { return Decision{Reason: r} }

func (d Decision) String() string {
	if d.Allowed {
		return "allow"
	}
	return "deny: " + d.Reason.String()
}

// Err returns nil for an allow and a Forbidden error otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperror.NewForbidden("You do not have permission to perform this action.")
}

func hasRole(actor *models.Account, roles ...models.Role) Decision {
	if actor == nil {
		return deny(ReasonNoActor)
	}
	for _, r := range roles {
		if actor.Role == r {
			return allow
		}
	}
	return deny(ReasonWrongRole)
}

// CanAccessPanel allows admins and superadmins.
func CanAccessPanel(actor *models.Account) Decision {
	return hasRole(actor, models.RoleAdmin, models.RoleSuperAdmin)
}

// CanAccessUserAPI allows regular users only.
func CanAccessUserAPI(actor *models.Account) Decision {
	return hasRole(actor, models.RoleUser)
}

func CanManageAdmins(actor *models.Account) Decision {
	return hasRole(actor, models.RoleSuperAdmin)
}

func CanManageAllUsers(actor *models.Account) Decision {
	return hasRole(actor, models.RoleSuperAdmin)
}

func CanViewAllTasks(actor *models.Account) Decision {
	return hasRole(actor, models.RoleSuperAdmin)
}

// CanManageOwnUsers allows admins; which users they see is decided by the
// scope layer (accounts assigned to the admin).
func CanManageOwnUsers(actor *models.Account) Decision {
	return hasRole(actor, models.RoleAdmin)
}

// ownsAssignee reports whether the task's assignee belongs to admin.
func ownsAssignee(admin *models.Account, task *models.Task) bool {
	return task != nil && task.AssigneeAdminID != nil && *task.AssigneeAdminID == admin.ID
}

// CanManageTask allows an admin whose user the task is assigned to.
func CanManageTask(actor *models.Account, task *models.Task) Decision {
	if d := hasRole(actor, models.RoleAdmin); !d.Allowed {
		return d
	}
	if !ownsAssignee(actor, task) {
		return deny(ReasonNotOwner)
	}
	return allow
}

// CanViewTaskReport allows any superadmin and the admin owning the task's
// assignee. The task status is not considered here.
func CanViewTaskReport(actor *models.Account, task *models.Task) Decision {
	if d := hasRole(actor, models.RoleAdmin, models.RoleSuperAdmin); !d.Allowed {
		return d
	}
	if actor.Role == models.RoleSuperAdmin {
		return allow
	}
	if !ownsAssignee(actor, task) {
		return deny(ReasonNotOwner)
	}
	return allow
}

// CanUpdateOwnTask allows the user the task is assigned to.
func CanUpdateOwnTask(actor *models.Account, task *models.Task) Decision {
	if d := hasRole(actor, models.RoleUser); !d.Allowed {
		return d
	}
	if task == nil || task.AssignedTo != actor.ID {
		return deny(ReasonNotOwner)
	}
	return allow
}
