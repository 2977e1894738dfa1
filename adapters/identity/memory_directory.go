package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/layer-3/hashgate/ports"
)

// MemoryDirectory is an in-memory Directory implementation for tests and
// single-node development.
type MemoryDirectory struct {
	users map[string]string
	mu    sync.Mutex
}

// NewMemoryDirectory creates a new in-memory user directory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		users: make(map[string]string),
	}
}

// UpsertUser returns the existing id for a known account, or assigns one.
func (d *MemoryDirectory) UpsertUser(ctx context.Context, accountID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, exists := d.users[accountID]; exists {
		return id, nil
	}

	id := uuid.New().String()
	d.users[accountID] = id

	return id, nil
}

var _ ports.Directory = (*MemoryDirectory)(nil)
var _ ports.Directory = (*GraphQLDirectory)(nil)
