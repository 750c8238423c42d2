package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/need"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu           sync.RWMutex
	npcs         map[uuid.UUID]*npc.NPC
	needsConfig  *need.Config
	interactions []interaction.Definition
	pingError    error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		npcs: make(map[uuid.UUID]*npc.NPC),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetNeedsConfig seeds the needs configuration the mock returns
func (m *MockStorage) SetNeedsConfig(cfg *need.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.needsConfig = cfg
}

// SetInteractions seeds the interaction definitions the mock returns
func (m *MockStorage) SetInteractions(defs []interaction.Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = defs
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveNPC mocks saving an NPC
func (m *MockStorage) SaveNPC(ctx context.Context, n *npc.NPC) error {
	if n == nil {
		return errors.New("npc cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.npcs[n.ID] = n
	return nil
}

// LoadNPC mocks loading an NPC
func (m *MockStorage) LoadNPC(ctx context.Context, id uuid.UUID) (*npc.NPC, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, exists := m.npcs[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return n, nil
}

// DeleteNPC mocks deleting an NPC
func (m *MockStorage) DeleteNPC(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.npcs, id)
	return nil
}

// ListNPCs mocks listing NPC ids
func (m *MockStorage) ListNPCs(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.npcs))
	for id := range m.npcs {
		ids = append(ids, id)
	}
	return ids, nil
}

// GetNeedsConfig mocks loading the needs configuration
func (m *MockStorage) GetNeedsConfig(ctx context.Context) (*need.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.needsConfig == nil {
		return nil, errors.New("needs config not set")
	}
	return m.needsConfig, nil
}

// GetInteractions mocks loading interaction definitions
func (m *MockStorage) GetInteractions(ctx context.Context) ([]interaction.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.interactions, nil
}
