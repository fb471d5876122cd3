// Package testutil provides in-memory stand-ins for the Postgres stores and the
// Redis cache. The stores answer queries through the same scope filters as the
// repository and emulate its foreign key behaviour.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"task-management/internal/models"
	"task-management/internal/repository"
	"task-management/internal/scope"
)

type Memory struct {
	mu       sync.Mutex
	accounts map[int64]*models.Account
	hashes   map[int64]string
	tasks    map[int64]*models.Task
	lastID   int64
	clock    time.Time
}

func NewMemory() *Memory {
	return &Memory{
		accounts: map[int64]*models.Account{},
		hashes:   map[int64]string{},
		tasks:    map[int64]*models.Task{},
		clock:    time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *Memory) Accounts() *AccountStore { return &AccountStore{m: m} }
func (m *Memory) Tasks() *TaskStore       { return &TaskStore{m: m} }

// AccountStore mirrors repository.AccountStore.
type AccountStore struct{ m *Memory }

func (s *AccountStore) List(_ context.Context, f scope.Filter) ([]models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Account{}
	for _, a := range s.m.accounts {
		if f.MatchAccount(a) {
			out = append(out, copyAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *AccountStore) Get(_ context.Context, f scope.Filter, id int64) (*models.Account, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.accounts[id]
	if !ok || !f.MatchAccount(a) {
		return nil, repository.ErrNotFound
	}
	c := copyAccount(a)
	return &c, nil
}

func (s *AccountStore) Count(ctx context.Context, f scope.Filter) (int, error) {
	list, err := s.List(ctx, f)
	return len(list), err
}

func (s *AccountStore) GetCredentials(_ context.Context, username string) (*models.Account, string, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, a := range s.m.accounts {
		if a.Username == username {
			c := copyAccount(a)
			return &c, s.m.hashes[id], nil
		}
	}
	return nil, "", repository.ErrNotFound
}

func (s *AccountStore) Create(_ context.Context, a *models.Account, passwordHash string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, other := range s.m.accounts {
		if other.Username == a.Username {
			return repository.ErrDuplicate
		}
	}
	s.m.lastID++
	now := s.m.tick()
	a.ID = s.m.lastID
	a.CreatedAt, a.UpdatedAt = now, now
	c := copyAccount(a)
	s.m.accounts[a.ID] = &c
	s.m.hashes[a.ID] = passwordHash
	return nil
}

func (s *AccountStore) Update(_ context.Context, a *models.Account) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cur, ok := s.m.accounts[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Email = a.Email
	cur.FirstName = a.FirstName
	cur.LastName = a.LastName
	cur.AssignedToAdmin = copyID(a.AssignedToAdmin)
	cur.UpdatedAt = s.m.tick()
	a.UpdatedAt = cur.UpdatedAt
	return nil
}

// Delete emulates ON DELETE SET NULL for assigned_to_admin and created_by and
// ON DELETE CASCADE for assigned_to.
func (s *AccountStore) Delete(_ context.Context, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.m.accounts, id)
	delete(s.m.hashes, id)
	for _, a := range s.m.accounts {
		if a.AssignedToAdmin != nil && *a.AssignedToAdmin == id {
			a.AssignedToAdmin = nil
		}
	}
	for tid, t := range s.m.tasks {
		if t.AssignedTo == id {
			delete(s.m.tasks, tid)
			continue
		}
		if t.CreatedBy != nil && *t.CreatedBy == id {
			t.CreatedBy = nil
		}
	}
	return nil
}

// TaskStore mirrors repository.TaskStore.
type TaskStore struct{ m *Memory }

// joined fills the read-through assignee columns. Caller holds the lock.
func (s *TaskStore) joined(t *models.Task) *models.Task {
	c := copyTask(t)
	c.AssignedToUsername = ""
	c.AssigneeAdminID = nil
	if a, ok := s.m.accounts[t.AssignedTo]; ok {
		c.AssignedToUsername = a.Username
		c.AssigneeAdminID = copyID(a.AssignedToAdmin)
	}
	return &c
}

func (s *TaskStore) List(_ context.Context, f scope.Filter, opts repository.TaskListOptions) ([]models.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.Task{}
	for _, t := range s.m.tasks {
		j := s.joined(t)
		if !f.MatchTask(j) {
			continue
		}
		if opts.Status != "" && j.Status != opts.Status {
			continue
		}
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID > out[k].ID
	})
	return out, nil
}

func (s *TaskStore) Get(_ context.Context, f scope.Filter, id int64) (*models.Task, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t, ok := s.m.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	j := s.joined(t)
	if !f.MatchTask(j) {
		return nil, repository.ErrNotFound
	}
	return j, nil
}

func (s *TaskStore) Counts(ctx context.Context, f scope.Filter) (models.TaskCounts, error) {
	var c models.TaskCounts
	list, err := s.List(ctx, f, repository.TaskListOptions{})
	if err != nil {
		return c, err
	}
	for _, t := range list {
		c.Add(t.Status, 1)
	}
	return c, nil
}

func (s *TaskStore) CountsByAssignee(ctx context.Context, f scope.Filter) (map[int64]models.TaskCounts, error) {
	list, err := s.List(ctx, f, repository.TaskListOptions{})
	if err != nil {
		return nil, err
	}
	out := map[int64]models.TaskCounts{}
	for _, t := range list {
		c := out[t.AssignedTo]
		c.Add(t.Status, 1)
		out[t.AssignedTo] = c
	}
	return out, nil
}

func (s *TaskStore) Create(_ context.Context, t *models.Task) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if a, ok := s.m.accounts[t.AssignedTo]; !ok || !a.IsUser() {
		return repository.ErrNotFound
	}
	s.m.lastID++
	now := s.m.tick()
	t.ID = s.m.lastID
	t.CreatedAt, t.UpdatedAt = now, now
	c := copyTask(t)
	s.m.tasks[t.ID] = &c
	return nil
}

func (s *TaskStore) Update(_ context.Context, t *models.Task) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cur, ok := s.m.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c := copyTask(t)
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = s.m.tick()
	s.m.tasks[t.ID] = &c
	t.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *TaskStore) Delete(_ context.Context, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.m.tasks, id)
	return nil
}

// Cache is a map-backed account cache and token denylist.
type Cache struct {
	mu       sync.Mutex
	accounts map[int64]models.Account
	revoked  map[string]time.Time
	Hits     int
}

func NewCache() *Cache {
	return &Cache{accounts: map[int64]models.Account{}, revoked: map[string]time.Time{}}
}

func (c *Cache) Get(_ context.Context, id int64) (*models.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.accounts[id]
	if !ok {
		return nil, nil
	}
	c.Hits++
	return &a, nil
}

func (c *Cache) Set(_ context.Context, a *models.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[a.ID] = copyAccount(a)
	return nil
}

func (c *Cache) Delete(_ context.Context, ids ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.accounts, id)
	}
	return nil
}

func (c *Cache) Cached(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.accounts[id]
	return ok
}

func (c *Cache) Revoke(_ context.Context, tokenID string, until time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[tokenID] = until
	return nil
}

func (c *Cache) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.revoked[tokenID]
	return ok && time.Now().Before(until), nil
}

func copyID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyAccount(a *models.Account) models.Account {
	c := *a
	c.AssignedToAdmin = copyID(a.AssignedToAdmin)
	return c
}

func copyTask(t *models.Task) models.Task {
	c := *t
	c.CreatedBy = copyID(t.CreatedBy)
	c.AssigneeAdminID = copyID(t.AssigneeAdminID)
	if t.CompletionReport != nil {
		r := *t.CompletionReport
		c.CompletionReport = &r
	}
	if t.WorkedHours != nil {
		h := *t.WorkedHours
		c.WorkedHours = &h
	}
	return c
}
