package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"task-management/internal/models"
	"task-management/internal/scope"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// uniqueViolation is the Postgres error code for a unique constraint.
const uniqueViolation = "23505"

const accountColumns = `a.id, a.username, a.email, a.first_name, a.last_name, a.role,
	a.assigned_to_admin, a.created_at, a.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(row rowScanner, extra ...any) (*models.Account, error) {
	a := &models.Account{}
	var admin sql.NullInt64
	dest := append([]any{&a.ID, &a.Username, &a.Email, &a.FirstName, &a.LastName, &a.Role,
		&admin, &a.CreatedAt, &a.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if admin.Valid {
		a.AssignedToAdmin = &admin.Int64
	}
	return a, nil
}

// List returns the accounts inside f, newest first.
func (s *AccountStore) List(ctx context.Context, f scope.Filter) ([]models.Account, error) {
	where, args := f.Where(1)
	q := `SELECT ` + accountColumns + ` FROM accounts a WHERE ` + where +
		` ORDER BY a.created_at DESC, a.id DESC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// Get returns the account with id if it is inside f.
func (s *AccountStore) Get(ctx context.Context, f scope.Filter, id int64) (*models.Account, error) {
	where, args := f.Where(2)
	q := `SELECT ` + accountColumns + ` FROM accounts a WHERE a.id = $1 AND ` + where
	a, err := scanAccount(s.db.QueryRowContext(ctx, q, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

func (s *AccountStore) Count(ctx context.Context, f scope.Filter) (int, error) {
	where, args := f.Where(1)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts a WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// GetCredentials returns the account and its password hash by username.
func (s *AccountStore) GetCredentials(ctx context.Context, username string) (*models.Account, string, error) {
	var hash string
	q := `SELECT ` + accountColumns + `, a.password FROM accounts a WHERE a.username = $1`
	a, err := scanAccount(s.db.QueryRowContext(ctx, q, username), &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("get credentials: %w", err)
	}
	return a, hash, nil
}

// Create inserts a and fills in its id and timestamps.
func (s *AccountStore) Create(ctx context.Context, a *models.Account, passwordHash string) error {
	const q = `
		INSERT INTO accounts (username, email, first_name, last_name, password, role, assigned_to_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, q, a.Username, a.Email, a.FirstName, a.LastName,
		passwordHash, string(a.Role), nullInt(a.AssignedToAdmin),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		// unique violation -> username sudah ada
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Update writes the editable profile fields and the admin link of a.
func (s *AccountStore) Update(ctx context.Context, a *models.Account) error {
	const q = `
		UPDATE accounts
		SET email = $1, first_name = $2, last_name = $3, assigned_to_admin = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING updated_at
	`
	err := s.db.QueryRowContext(ctx, q, a.Email, a.FirstName, a.LastName, nullInt(a.AssignedToAdmin), a.ID).
		Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update account %d: %w", a.ID, err)
	}
	return nil
}

// Delete removes the account. Users linked to a deleted admin are unlinked
// and a deleted user's tasks go with it (foreign key actions).
func (s *AccountStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
