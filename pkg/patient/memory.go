package patient

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	byUser map[string]Patient
	now    func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{byUser: make(map[string]Patient), now: time.Now}
}

// Create stores p, replacing any earlier record for the same user.
func (m *Memory) Create(ctx context.Context, p Patient) (*Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.UserID) == "" {
		return nil, ErrUserRequired
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = m.now().UTC()

	m.mu.Lock()
	m.byUser[p.UserID] = p
	m.mu.Unlock()
	return &p, nil
}

func (m *Memory) GetByUser(ctx context.Context, userID string) (*Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	p, ok := m.byUser[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return &p, nil
}
