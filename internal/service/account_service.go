package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"task-management/internal/apperror"
	"task-management/internal/auth"
	"task-management/internal/models"
	"task-management/internal/policy"
	"task-management/internal/repository"
	"task-management/internal/scope"
	"task-management/pkg/logger"
)

const fieldAssignedToAdmin = "assigned_to_admin"

// NewAccount is the input for creating an admin or a user. AssignedToAdmin
// is ignored for admins.
type NewAccount struct {
	Username        string
	Email           string
	Password        string
	FirstName       string
	LastName        string
	AssignedToAdmin *int64
}

// AccountEdit replaces the editable fields of a user. A nil AssignedToAdmin
// unassigns the user.
type AccountEdit struct {
	Email           string
	FirstName       string
	LastName        string
	AssignedToAdmin *int64
}

type AccountService struct {
	accounts AccountStore
	tasks    TaskStore
	cache    AccountCache
}

// NewAccountService creates an AccountService. cache may be nil.
func NewAccountService(accounts AccountStore, tasks TaskStore, cache AccountCache) *AccountService {
	return &AccountService{accounts: accounts, tasks: tasks, cache: cache}
}

var errInvalidCredentials = apperror.New(apperror.Unauthenticated, "Invalid credentials")

// Authenticate checks username and password.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	acct, hash, err := s.accounts.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.SecurityLogger.Warn("Login for unknown user", zap.String("username", username))
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(hash, password) {
		logger.SecurityLogger.Warn("Invalid password", zap.String("username", username))
		return nil, errInvalidCredentials
	}
	return acct, nil
}

// Resolve returns the current state of the account a token refers to.
func (s *AccountService) Resolve(ctx context.Context, id int64) (*models.Account, error) {
	if s.cache != nil {
		if a, err := s.cache.Get(ctx, id); err != nil {
			logger.ErrorLogger.Error("Account cache read failed", zap.Int64("account_id", id), zap.Error(err))
		} else if a != nil {
			return a, nil
		}
	}
	a, err := s.accounts.Get(ctx, scope.AllAccounts(""), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.Unauthenticated, "Account no longer exists")
		}
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, a); err != nil {
			logger.ErrorLogger.Error("Account cache write failed", zap.Int64("account_id", id), zap.Error(err))
		}
	}
	return a, nil
}

func (s *AccountService) forget(ctx context.Context, ids ...int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, ids...); err != nil {
		logger.ErrorLogger.Error("Account cache invalidation failed", zap.Int64s("account_ids", ids), zap.Error(err))
	}
}

func denied(actor *models.Account, d policy.Decision, action string) error {
	if err := d.Err(); err != nil {
		fields := []zap.Field{zap.String("action", action), zap.String("reason", d.Reason.String())}
		if actor != nil {
			fields = append(fields, zap.Int64("actor_id", actor.ID), zap.String("role", string(actor.Role)))
		}
		logger.SecurityLogger.Warn("Forbidden", fields...)
		return err
	}
	return nil
}

// ListAdmins returns every admin, newest first.
func (s *AccountService) ListAdmins(ctx context.Context, actor *models.Account) ([]models.Account, error) {
	if err := denied(actor, policy.CanManageAdmins(actor), "list_admins"); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx, scope.Accounts(actor, models.RoleAdmin))
}

func (s *AccountService) CreateAdmin(ctx context.Context, actor *models.Account, in NewAccount) (*models.Account, error) {
	if err := denied(actor, policy.CanManageAdmins(actor), "create_admin"); err != nil {
		return nil, err
	}
	in.AssignedToAdmin = nil
	return s.create(ctx, actor, models.RoleAdmin, in)
}

// DeleteAdmin removes an admin. Their users stay and become unassigned;
// their users' tasks are left untouched.
func (s *AccountService) DeleteAdmin(ctx context.Context, actor *models.Account, id int64) error {
	if err := denied(actor, policy.CanManageAdmins(actor), "delete_admin"); err != nil {
		return err
	}
	admin, err := s.accounts.Get(ctx, scope.Accounts(actor, models.RoleAdmin), id)
	if err != nil {
		return notFound(err, "Admin")
	}
	users, err := s.accounts.List(ctx, scope.Accounts(admin, models.RoleUser))
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, admin.ID); err != nil {
		return notFound(err, "Admin")
	}
	ids := []int64{admin.ID}
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	s.forget(ctx, ids...)
	logger.AuditLogger.Info("Admin deleted", zap.Int64("admin_id", admin.ID), zap.Int("orphaned_users", len(users)))
	return nil
}

// ListUsers returns the users in the actor's scope with their task counts:
// every user for a superadmin, the admin's own users for an admin.
func (s *AccountService) ListUsers(ctx context.Context, actor *models.Account) ([]models.UserSummary, error) {
	d := policy.CanManageAllUsers(actor)
	if !d.Allowed {
		d = policy.CanManageOwnUsers(actor)
	}
	if err := denied(actor, d, "list_users"); err != nil {
		return nil, err
	}
	users, err := s.accounts.List(ctx, scope.Accounts(actor, models.RoleUser))
	if err != nil {
		return nil, err
	}
	counts, err := s.tasks.CountsByAssignee(ctx, scope.Tasks(actor))
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		c := counts[u.ID]
		out = append(out, models.UserSummary{User: u, TotalTasks: c.Total, CompletedTasks: c.Completed})
	}
	return out, nil
}

// AssignableUsers returns the users an admin can assign tasks to.
func (s *AccountService) AssignableUsers(ctx context.Context, actor *models.Account) ([]models.Account, error) {
	if err := denied(actor, policy.CanManageOwnUsers(actor), "list_assignable_users"); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx, scope.Accounts(actor, models.RoleUser))
}

// GetUser returns a user in the actor's scope.
func (s *AccountService) GetUser(ctx context.Context, actor *models.Account, id int64) (*models.Account, error) {
	d := policy.CanManageAllUsers(actor)
	if !d.Allowed {
		d = policy.CanManageOwnUsers(actor)
	}
	if err := denied(actor, d, "get_user"); err != nil {
		return nil, err
	}
	u, err := s.accounts.Get(ctx, scope.Accounts(actor, models.RoleUser), id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *AccountService) CreateUser(ctx context.Context, actor *models.Account, in NewAccount) (*models.Account, error) {
	if err := denied(actor, policy.CanManageAllUsers(actor), "create_user"); err != nil {
		return nil, err
	}
	if err := s.checkAdmin(ctx, in.AssignedToAdmin); err != nil {
		return nil, err
	}
	return s.create(ctx, actor, models.RoleUser, in)
}

func (s *AccountService) EditUser(ctx context.Context, actor *models.Account, id int64, in AccountEdit) (*models.Account, error) {
	if err := denied(actor, policy.CanManageAllUsers(actor), "edit_user"); err != nil {
		return nil, err
	}
	u, err := s.accounts.Get(ctx, scope.Accounts(actor, models.RoleUser), id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	if err := s.checkAdmin(ctx, in.AssignedToAdmin); err != nil {
		return nil, err
	}
	u.Email = strings.TrimSpace(in.Email)
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.AssignedToAdmin = in.AssignedToAdmin
	if err := s.accounts.Update(ctx, u); err != nil {
		return nil, notFound(err, "User")
	}
	s.forget(ctx, u.ID)
	logger.AuditLogger.Info("User updated", zap.Int64("user_id", u.ID), zap.Int64("actor_id", actor.ID))
	return u, nil
}

// DeleteUser removes a user together with all of their tasks.
func (s *AccountService) DeleteUser(ctx context.Context, actor *models.Account, id int64) error {
	if err := denied(actor, policy.CanManageAllUsers(actor), "delete_user"); err != nil {
		return err
	}
	u, err := s.accounts.Get(ctx, scope.Accounts(actor, models.RoleUser), id)
	if err != nil {
		return notFound(err, "User")
	}
	if err := s.accounts.Delete(ctx, u.ID); err != nil {
		return notFound(err, "User")
	}
	s.forget(ctx, u.ID)
	logger.AuditLogger.Info("User deleted", zap.Int64("user_id", u.ID), zap.Int64("actor_id", actor.ID))
	return nil
}

// CreateSuperAdmin is the bootstrap path for the first account. It is only
// reachable from taskctl, never over HTTP.
func (s *AccountService) CreateSuperAdmin(ctx context.Context, in NewAccount) (*models.Account, error) {
	in.AssignedToAdmin = nil
	return s.create(ctx, nil, models.RoleSuperAdmin, in)
}

// checkAdmin verifies that id, if set, refers to an admin.
func (s *AccountService) checkAdmin(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.accounts.Get(ctx, scope.AllAccounts(models.RoleAdmin), *id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.FieldError(fieldAssignedToAdmin, "Select a valid admin.")
		}
		return err
	}
	return nil
}

func (s *AccountService) create(ctx context.Context, actor *models.Account, role models.Role, in NewAccount) (*models.Account, error) {
	a, err := BuildAccount(role, in)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, a, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.SecurityLogger.Warn("Duplicate username", zap.String("username", a.Username))
			return nil, apperror.NewConflict("Username already exists.")
		}
		return nil, err
	}
	fields := []zap.Field{zap.Int64("account_id", a.ID), zap.String("role", string(role))}
	if actor != nil {
		fields = append(fields, zap.Int64("actor_id", actor.ID))
	}
	logger.AuditLogger.Info("Account created", fields...)
	return a, nil
}

// BuildAccount turns the input into an account of role, enforcing that only
// users carry an admin link.
func BuildAccount(role models.Role, in NewAccount) (*models.Account, error) {
	username := strings.TrimSpace(in.Username)
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "This field is required."
	}
	if in.Password == "" {
		fields["password"] = "This field is required."
	}
	if !role.Valid() {
		fields["role"] = "Unknown role."
	}
	if len(fields) > 0 {
		return nil, apperror.NewValidation(fields)
	}
	a := &models.Account{
		Username:  username,
		Email:     strings.TrimSpace(in.Email),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
	}
	if role == models.RoleUser {
		a.AssignedToAdmin = in.AssignedToAdmin
	}
	return a, nil
}
