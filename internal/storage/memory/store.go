package memory

import (
	"context"
	"sync"

	interfaces "github.com/sheikh-saqib/captable-simulator/internal/interfaces"
	"github.com/sheikh-saqib/captable-simulator/internal/models"
	"github.com/sheikh-saqib/captable-simulator/internal/storage"
)

// MemorySimulationStore is an in-memory implementation of
// interfaces.SimulationStore. It is safe for concurrent use.
type MemorySimulationStore struct {
	mu          sync.Mutex          // protects every field below
	simulations []models.Simulation // insertion order
	byID        map[string]int      // simulation id -> index into simulations
	byKey       map[string]int      // idempotency key -> index into simulations
}

// NewMemorySimulationStore creates an empty store.
func NewMemorySimulationStore() *MemorySimulationStore {
	return &MemorySimulationStore{
		simulations: make([]models.Simulation, 0),
		byID:        make(map[string]int),
		byKey:       make(map[string]int),
	}
}

// SaveSimulation appends sim. A reused id or idempotency key is rejected
// with storage.ErrDuplicate.
func (m *MemorySimulationStore) SaveSimulation(ctx context.Context, sim models.Simulation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[sim.ID]; exists {
		return storage.ErrDuplicate
	}
	if sim.IdempotencyKey != "" {
		if _, exists := m.byKey[sim.IdempotencyKey]; exists {
			return storage.ErrDuplicate
		}
	}

	m.simulations = append(m.simulations, sim)
	idx := len(m.simulations) - 1
	m.byID[sim.ID] = idx
	if sim.IdempotencyKey != "" {
		m.byKey[sim.IdempotencyKey] = idx
	}
	return nil
}

func (m *MemorySimulationStore) GetSimulation(ctx context.Context, id string) (models.Simulation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, exists := m.byID[id]
	if !exists {
		return models.Simulation{}, storage.ErrNotFound
	}
	return m.simulations[idx], nil
}

func (m *MemorySimulationStore) GetByIdempotencyKey(ctx context.Context, key string) (models.Simulation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, exists := m.byKey[key]
	if !exists {
		return models.Simulation{}, false, nil
	}
	return m.simulations[idx], true, nil
}

// ListSimulations returns up to limit simulations, newest first. The slice
// is a copy so callers can't modify internal state.
func (m *MemorySimulationStore) ListSimulations(ctx context.Context, limit int) ([]models.Simulation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit = storage.NormalizeLimit(limit)
	result := make([]models.Simulation, 0, min(limit, len(m.simulations)))
	for i := len(m.simulations) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.simulations[i])
	}
	return result, nil
}

// Compile-time check: ensure MemorySimulationStore implements SimulationStore
var _ interfaces.SimulationStore = (*MemorySimulationStore)(nil)
