package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"task-management/internal/models"
	"task-management/internal/scope"
	"task-management/pkg/crypto"
)

// TaskListOptions narrows a task listing beyond the actor's scope.
type TaskListOptions struct {
	Status models.Status
}

const taskSelect = `
	SELECT t.id, t.title, t.description, t.assigned_to, u.username, u.assigned_to_admin,
	       t.created_by, t.due_date, t.status, t.completion_report, t.worked_hours,
	       t.created_at, t.updated_at
	FROM tasks t
	JOIN accounts u ON u.id = t.assigned_to
`

// TaskStore persists tasks. Completion reports are encrypted at rest when a
// cipher is configured.
type TaskStore struct {
	db     *sql.DB
	cipher *crypto.Cipher
}

func NewTaskStore(db *sql.DB, cipher *crypto.Cipher) *TaskStore {
	return &TaskStore{db: db, cipher: cipher}
}

func (s *TaskStore) scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var (
		admin, createdBy sql.NullInt64
		report           sql.NullString
		hours            decimal.NullDecimal
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.AssignedToUsername, &admin,
		&createdBy, &t.DueDate, &t.Status, &report, &hours, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if admin.Valid {
		t.AssigneeAdminID = &admin.Int64
	}
	if createdBy.Valid {
		t.CreatedBy = &createdBy.Int64
	}
	if report.Valid {
		plain, err := s.decrypt(report.String)
		if err != nil {
			return nil, fmt.Errorf("decrypt completion report of task %d: %w", t.ID, err)
		}
		t.CompletionReport = &plain
	}
	if hours.Valid {
		t.WorkedHours = &hours.Decimal
	}
	return t, nil
}

// List returns the tasks inside f, newest first.
func (s *TaskStore) List(ctx context.Context, f scope.Filter, opts TaskListOptions) ([]models.Task, error) {
	where, args := f.Where(1)
	q := taskSelect + ` WHERE ` + where
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		q += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	q += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := s.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Get returns the task with id if it is inside f.
func (s *TaskStore) Get(ctx context.Context, f scope.Filter, id int64) (*models.Task, error) {
	where, args := f.Where(2)
	q := taskSelect + ` WHERE t.id = $1 AND ` + where
	t, err := s.scanTask(s.db.QueryRowContext(ctx, q, append([]any{id}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Counts returns per-status totals of the tasks inside f.
func (s *TaskStore) Counts(ctx context.Context, f scope.Filter) (models.TaskCounts, error) {
	byAssignee, err := s.CountsByAssignee(ctx, f)
	if err != nil {
		return models.TaskCounts{}, err
	}
	var total models.TaskCounts
	for _, c := range byAssignee {
		total.Add(models.StatusPending, c.Pending)
		total.Add(models.StatusInProgress, c.InProgress)
		total.Add(models.StatusCompleted, c.Completed)
	}
	return total, nil
}

// CountsByAssignee returns per-status totals of the tasks inside f keyed by
// assignee id.
func (s *TaskStore) CountsByAssignee(ctx context.Context, f scope.Filter) (map[int64]models.TaskCounts, error) {
	where, args := f.Where(1)
	q := `SELECT t.assigned_to, t.status, COUNT(*)
		FROM tasks t JOIN accounts u ON u.id = t.assigned_to
		WHERE ` + where + `
		GROUP BY t.assigned_to, t.status`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	defer rows.Close()

	counts := map[int64]models.TaskCounts{}
	for rows.Next() {
		var (
			assignee int64
			status   models.Status
			n        int
		)
		if err := rows.Scan(&assignee, &status, &n); err != nil {
			return nil, fmt.Errorf("scan task count: %w", err)
		}
		c := counts[assignee]
		c.Add(status, n)
		counts[assignee] = c
	}
	return counts, rows.Err()
}

// Create inserts t and fills in its id and timestamps.
func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	report, err := s.encryptReport(t.CompletionReport)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO tasks (title, description, assigned_to, created_by, due_date, status, completion_report, worked_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, q, t.Title, t.Description, t.AssignedTo, nullInt(t.CreatedBy),
		t.DueDate, string(t.Status), report, nullDecimal(t.WorkedHours),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of t. Concurrent writers resolve
// last-write-wins.
func (s *TaskStore) Update(ctx context.Context, t *models.Task) error {
	report, err := s.encryptReport(t.CompletionReport)
	if err != nil {
		return err
	}
	const q = `
		UPDATE tasks
		SET title = $1, description = $2, assigned_to = $3, due_date = $4, status = $5,
		    completion_report = $6, worked_hours = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $8
		RETURNING updated_at
	`
	err = s.db.QueryRowContext(ctx, q, t.Title, t.Description, t.AssignedTo, t.DueDate,
		string(t.Status), report, nullDecimal(t.WorkedHours), t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TaskStore) encryptReport(report *string) (sql.NullString, error) {
	if report == nil {
		return sql.NullString{}, nil
	}
	if s.cipher == nil {
		return sql.NullString{String: *report, Valid: true}, nil
	}
	enc, err := s.cipher.Encrypt(*report)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encrypt completion report: %w", err)
	}
	return sql.NullString{String: enc, Valid: true}, nil
}

func (s *TaskStore) decrypt(v string) (string, error) {
	if s.cipher == nil {
		return v, nil
	}
	return s.cipher.Decrypt(v)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
