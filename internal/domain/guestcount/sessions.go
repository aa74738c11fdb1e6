package guestcount

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Sessions hands out one Store per booking session, hydrating each store
// exactly once on first access. Stores are never destroyed within a session;
// they are the durable cross-flow anchor.
type Sessions struct {
	mu        sync.Mutex
	stores    map[string]*Store
	maxGuests int
	snapshots SnapshotRepository
	logger    zerolog.Logger
	onCreate  func(*Store)
}

// NewSessions creates a session manager.
func NewSessions(maxGuests int, snapshots SnapshotRepository, logger zerolog.Logger) *Sessions {
	return &Sessions{
		stores:    make(map[string]*Store),
		maxGuests: maxGuests,
		snapshots: snapshots,
		logger:    logger,
	}
}

// OnStoreCreated registers a hook run once per new store, before it is handed
// out. Wiring uses it to subscribe cross-process listeners.
func (m *Sessions) OnStoreCreated(fn func(*Store)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCreate = fn
}

// Get returns the store for sessionID, creating and hydrating it on first
// access.
func (m *Sessions) Get(ctx context.Context, sessionID string) (*Store, error) {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	if !ok {
		store = NewStore(sessionID, m.maxGuests, m.snapshots, m.logger)
		m.stores[sessionID] = store
		if m.onCreate != nil {
			m.onCreate(store)
		}
	}
	m.mu.Unlock()

	if err := store.Hydrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
