// Package memory keeps the ledger state in process memory. It backs tests
// and STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// Store holds a deep copy of the last saved state.
type Store struct {
	mu    sync.Mutex
	state models.State
	saves int
}

// NewStore returns a store that loads seed, or an empty state when seed is nil.
func NewStore(seed *models.State) *Store {
	st := models.NewState()
	if seed != nil {
		st = seed.Clone().Normalize()
	}
	return &Store{state: st}
}

// Load returns a copy of the stored state.
func (s *Store) Load(ctx context.Context) (models.State, error) {
	if err := ctx.Err(); err != nil {
		return models.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

// Save replaces the stored state with a copy of state.
func (s *Store) Save(ctx context.Context, state models.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone().Normalize()
	s.saves++
	return nil
}

// Saves counts successful saves.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
