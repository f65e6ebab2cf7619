package identity

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process directory. Emails are unique ignoring case.
type Memory struct {
	mu    sync.RWMutex
	users []User
	now   func() time.Time
}

var _ Users = (*Memory)(nil)

// NewMemory returns an empty directory.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Create(ctx context.Context, id, email, phone, name string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		id = NewID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			return nil, Conflict("a user with the same id already exists")
		}
		if email != "" && strings.EqualFold(u.Email, email) {
			return nil, Conflict("a user with the same email already exists")
		}
	}
	user := User{ID: id, Name: name, Email: email, Phone: phone, CreatedAt: m.now().UTC()}
	m.users = append(m.users, user)
	return &user, nil
}

func (m *Memory) Get(ctx context.Context, id string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := slices.IndexFunc(m.users, func(u User) bool { return u.ID == id })
	if idx < 0 {
		return nil, ErrNotFound
	}
	user := m.users[idx]
	return &user, nil
}

func (m *Memory) List(ctx context.Context, queries ...Query) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Filter(m.users, queries...), nil
}
