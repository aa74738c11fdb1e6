// Package guestcount holds the single source of truth for "how many guests"
// shared by the venue, catering, and dessert booking flows. Each flow reads
// and writes the same per-session store; the first flow that commits to a
// final headcount locks it for everyone.
package guestcount

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LockReason identifies which booking flow asserted a guest-count lock.
// Closed set: every caller shares these tags, never ad-hoc strings.
type LockReason string

const (
	LockReasonVenue    LockReason = "venue"
	LockReasonCatering LockReason = "catering"
	LockReasonDessert  LockReason = "dessert"
)

// ValidLockReason reports whether r is one of the known flow tags.
func ValidLockReason(r LockReason) bool {
	switch r {
	case LockReasonVenue, LockReasonCatering, LockReasonDessert:
		return true
	}
	return false
}

// State is a snapshot of the shared guest count.
type State struct {
	Value         int
	Locked        bool
	LockedReasons []LockReason
}

// HasReason reports whether the given reason has asserted a lock.
func (s State) HasReason(r LockReason) bool {
	for _, have := range s.LockedReasons {
		if have == r {
			return true
		}
	}
	return false
}

// Event types broadcast on guest-count mutations.
const (
	EventChanged = "guestcount.changed"
	EventLocked  = "guestcount.locked"
)

// Listener receives guest-count change broadcasts. Fire-and-forget: no
// acknowledgment, delivery only to listeners subscribed at mutation time.
type Listener func(event string, state State)

// SnapshotRepository persists guest-count state across sessions. The
// in-memory store is authoritative within a session; the snapshot is only
// read once, at hydration.
type SnapshotRepository interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state State) error
}

// Store is the mutable guest count for one booking session.
//
// Every mutator checks the lock and applies clamping under one mutex hold,
// so no two unlocked writes can interleave around a concurrent lock and
// leave the store inconsistent. Once locked, the value is read-only for the
// remainder of the session; later lock calls only union their reason in.
type Store struct {
	mu        sync.Mutex
	sessionID string
	maxGuests int

	value         int
	locked        bool
	lockedReasons []LockReason
	hydrated      bool

	listeners []Listener
	snapshots SnapshotRepository
	logger    zerolog.Logger
}

// NewStore creates an unhydrated store for one booking session.
func NewStore(sessionID string, maxGuests int, snapshots SnapshotRepository, logger zerolog.Logger) *Store {
	if maxGuests < 1 {
		maxGuests = 1
	}
	return &Store{
		sessionID: sessionID,
		maxGuests: maxGuests,
		snapshots: snapshots,
		logger:    logger.With().Str("session_id", sessionID).Logger(),
	}
}

// Hydrate loads the persisted snapshot at most once per session lifetime.
// Precedence: persisted snapshot, then zero. Subsequent calls are no-ops.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}
	if s.snapshots != nil {
		snap, err := s.snapshots.Load(ctx, s.sessionID)
		if err != nil {
			return err
		}
		if snap != nil {
			s.value = snap.Value
			s.locked = snap.Locked
			s.lockedReasons = append([]LockReason(nil), snap.LockedReasons...)
		}
	}
	s.hydrated = true
	return nil
}

// SessionID returns the booking session this store belongs to.
func (s *Store) SessionID() string { return s.sessionID }

// Get returns the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe registers a listener for change broadcasts.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Set updates the guest count while unlocked. Against a locked store it is a
// reported no-op, never an error: flows routinely attempt writes without
// checking lock state first. Values are clamped into [1, maxGuests]; the
// clamp is documented policy, not a validation failure.
func (s *Store) Set(ctx context.Context, n int) (changed bool, state State) {
	s.mu.Lock()
	if s.locked {
		state = s.stateLocked()
		s.mu.Unlock()
		return false, state
	}

	s.value = s.clamp(n)
	state = s.stateLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.persist(ctx, state)
	broadcast(listeners, EventChanged, state)
	return true, state
}

// SetAndLock freezes the guest count on behalf of a flow. If the store is
// already locked, the call's only effect is adding reason to the reason set;
// the value never changes even when the caller's n differs. The lock, once
// set, is authoritative and wins any race.
func (s *Store) SetAndLock(ctx context.Context, n int, reason LockReason) (locked bool, state State) {
	s.mu.Lock()
	if s.locked {
		added := s.addReasonLocked(reason)
		state = s.stateLocked()
		listeners := append([]Listener(nil), s.listeners...)
		s.mu.Unlock()

		if added {
			s.persist(ctx, state)
			broadcast(listeners, EventChanged, state)
		}
		return false, state
	}

	s.value = s.clamp(n)
	s.locked = true
	s.lockedReasons = []LockReason{reason}
	state = s.stateLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.persist(ctx, state)
	broadcast(listeners, EventLocked, state)
	return true, state
}

func (s *Store) clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > s.maxGuests {
		return s.maxGuests
	}
	return n
}

func (s *Store) addReasonLocked(reason LockReason) bool {
	for _, have := range s.lockedReasons {
		if have == reason {
			return false
		}
	}
	s.lockedReasons = append(s.lockedReasons, reason)
	return true
}

// stateLocked copies current state; callers must hold mu.
func (s *Store) stateLocked() State {
	return State{
		Value:         s.value,
		Locked:        s.locked,
		LockedReasons: append([]LockReason(nil), s.lockedReasons...),
	}
}

func (s *Store) persist(ctx context.Context, state State) {
	if s.snapshots == nil {
		return
	}
	// Snapshot writes are best-effort; the in-memory store stays
	// authoritative within the session.
	if err := s.snapshots.Save(ctx, s.sessionID, state); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist guest count snapshot")
	}
}

func broadcast(listeners []Listener, event string, state State) {
	for _, l := range listeners {
		l(event, state)
	}
}
