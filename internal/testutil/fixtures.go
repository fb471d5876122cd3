package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"task-management/internal/models"
)

// Password is the plain password of every fixture account.
const Password = "password123"

var (
	hashOnce    sync.Once
	fixtureHash string
)

// passwordHash hashes Password once with the minimum bcrypt cost.
func passwordHash() string {
	hashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		fixtureHash = string(h)
	})
	return fixtureHash
}

// AddAccount stores an account directly, bypassing the services.
func (m *Memory) AddAccount(role models.Role, username string, admin *models.Account) *models.Account {
	a := &models.Account{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	if admin != nil {
		a.AssignedToAdmin = &admin.ID
	}
	if err := m.Accounts().Create(context.Background(), a, passwordHash()); err != nil {
		panic(fmt.Sprintf("add account %s: %v", username, err))
	}
	return a
}

// AddTask stores a task for assignee, bypassing the services. Completed tasks
// get a report and two worked hours.
func (m *Memory) AddTask(title string, assignee, creator *models.Account, status models.Status) *models.Task {
	t := &models.Task{
		Title:       title,
		Description: title + " description",
		AssignedTo:  assignee.ID,
		DueDate:     models.NewDate(2025, 6, 30),
		Status:      status,
	}
	if creator != nil {
		t.CreatedBy = &creator.ID
	}
	if status == models.StatusCompleted {
		report := "Done: " + title
		hours := decimal.RequireFromString("2.00")
		t.CompletionReport = &report
		t.WorkedHours = &hours
	}
	if err := m.Tasks().Create(context.Background(), t); err != nil {
		panic(fmt.Sprintf("add task %s: %v", title, err))
	}
	return t
}

// World is the fixture used across packages:
//
//	root            superadmin
//	alice, bob      admins
//	ursula          user of alice
//	victor          user of bob
//	walter          unassigned user
//
// Tasks: t1 (ursula, pending), t2 (ursula, completed), t3 (victor,
// completed), t4 (walter, in_progress).
type World struct {
	Mem                    *Memory
	Root                   *models.Account
	Alice, Bob             *models.Account
	Ursula, Victor, Walter *models.Account
	T1, T2, T3, T4         *models.Task
}

func NewWorld() *World {
	m := NewMemory()
	w := &World{Mem: m}
	w.Root = m.AddAccount(models.RoleSuperAdmin, "root", nil)
	w.Alice = m.AddAccount(models.RoleAdmin, "alice", nil)
	w.Bob = m.AddAccount(models.RoleAdmin, "bob", nil)
	w.Ursula = m.AddAccount(models.RoleUser, "ursula", w.Alice)
	w.Victor = m.AddAccount(models.RoleUser, "victor", w.Bob)
	w.Walter = m.AddAccount(models.RoleUser, "walter", nil)
	w.T1 = m.AddTask("Write docs", w.Ursula, w.Alice, models.StatusPending)
	w.T2 = m.AddTask("Fix login", w.Ursula, w.Alice, models.StatusCompleted)
	w.T3 = m.AddTask("Deploy", w.Victor, w.Bob, models.StatusCompleted)
	w.T4 = m.AddTask("Review", w.Walter, nil, models.StatusInProgress)
	return w
}
