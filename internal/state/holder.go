// Package state holds the system state aggregate in memory and persists it after every
// mutation.
package state

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ferux/pushcenter/internal/model"
	"github.com/ferux/pushcenter/internal/storage"
)

// Holder owns model.SystemState. Components mutate it only through Mutate.
type Holder struct {
	state  model.SystemState
	store  storage.Store
	logger zerolog.Logger

	mu sync.RWMutex
}

// New loads state from store.
func New(ctx context.Context, store storage.Store, logger zerolog.Logger) *Holder {
	h := &Holder{
		store:  store,
		logger: logger.With().Str("pkg", "state").Logger(),
	}

	h.state = store.Load(ctx)
	h.state.Normalize()

	h.logger.Debug().
		Int("devices", len(h.state.Devices)).
		Int("messages", len(h.state.Messages)).
		Msg("state loaded")

	return h
}

// Snapshot returns a copy of the current state.
func (h *Holder) Snapshot() model.SystemState {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.state.Clone()
}

// View calls fn with the current state under read lock. fn must not retain it.
func (h *Holder) View(fn func(s *model.SystemState)) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	fn(&h.state)
}

// Mutate applies fn and persists the whole state. When fn returns an error the state is left
// untouched and nothing is written. A failed write is logged; the in-memory state remains
// authoritative.
func (h *Holder) Mutate(ctx context.Context, fn func(s *model.SystemState) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}

	h.state = next

	if err := h.store.Save(ctx, h.state.Clone()); err != nil {
		h.logger.Error().Err(err).Msg("persisting state")
	}

	return nil
}

// Store returns the underlying persistence adapter.
func (h *Holder) Store() storage.Store {
	return h.store
}
