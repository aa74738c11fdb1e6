package guestcount

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshots struct {
	mu      sync.Mutex
	states  map[string]State
	loads   int
	saveErr error
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{states: make(map[string]State)}
}

func (f *fakeSnapshots) Load(_ context.Context, sessionID string) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if s, ok := f.states[sessionID]; ok {
		copied := s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeSnapshots) Save(_ context.Context, sessionID string, state State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.states[sessionID] = state
	return nil
}

func newTestStore(snapshots SnapshotRepository) *Store {
	return NewStore("session-1", 500, snapshots, zerolog.Nop())
}

func TestStore_SetWhileUnlocked(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(nil)

	changed, state := store.Set(ctx, 120)
	assert.True(t, changed)
	assert.Equal(t, 120, state.Value)
	assert.False(t, state.Locked)
}

func TestStore_SetClampsToBounds(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(nil)

	// Invalid or nonsensical input clamps to the minimum, never to zero or
	// negative.
	_, state := store.Set(ctx, 0)
	assert.Equal(t, 1, state.Value)

	_, state = store.Set(ctx, -40)
	assert.Equal(t, 1, state.Value)

	_, state = store.Set(ctx, 100000)
	assert.Equal(t, 500, state.Value)
}

func TestStore_LockFreezesValue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(nil)

	locked, state := store.SetAndLock(ctx, 150, LockReasonVenue)
	require.True(t, locked)
	assert.True(t, state.Locked)
	assert.Equal(t, 150, state.Value)
	assert.Equal(t, []LockReason{LockReasonVenue}, state.LockedReasons)

	// Any later unlocked write is a reported no-op.
	changed, state := store.Set(ctx, 200)
	assert.False(t, changed)
	assert.Equal(t, 150, state.Value)
}

func TestStore_SecondLockUnionsReasonsOnly(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(nil)

	store.SetAndLock(ctx, 150, LockReasonVenue)

	// A second lock with a different count must not throw and must not
	// change the value; the lock wins any race.
	locked, state := store.SetAndLock(ctx, 175, LockReasonCatering)
	assert.False(t, locked)
	assert.Equal(t, 150, state.Value)
	assert.ElementsMatch(t, []LockReason{LockReasonVenue, LockReasonCatering}, state.LockedReasons)

	// Repeating an existing reason neither duplicates nor drops anything.
	_, state = store.SetAndLock(ctx, 300, LockReasonCatering)
	assert.Equal(t, 150, state.Value)
	assert.Len(t, state.LockedReasons, 2)
}

func TestStore_ReasonsOnlyGrow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(nil)

	store.SetAndLock(ctx, 80, LockReasonCatering)
	store.SetAndLock(ctx, 80, LockReasonDessert)
	store.SetAndLock(ctx, 80, LockReasonVenue)

	state := store.Get()
	assert.ElementsMatch(t,
		[]LockReason{LockReasonCatering, LockReasonDessert, LockReasonVenue},
		state.LockedReasons)
	assert.True(t, state.HasReason(LockReasonDessert))
}

func TestStore_Notifications(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(nil)

	var events []string
	store.Subscribe(func(event string, _ State) {
		events = append(events, event)
	})

	store.Set(ctx, 90)
	store.SetAndLock(ctx, 95, LockReasonVenue)
	store.Set(ctx, 200) // rejected, no broadcast

	assert.Equal(t, []string{EventChanged, EventLocked}, events)
}

func TestStore_LockedRejectionDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(nil)
	store.SetAndLock(ctx, 60, LockReasonDessert)

	var notified int
	store.Subscribe(func(string, State) { notified++ })

	store.SetAndLock(ctx, 999, LockReasonDessert) // same reason, pure no-op
	assert.Equal(t, 0, notified)

	store.SetAndLock(ctx, 999, LockReasonVenue) // new reason changes state
	assert.Equal(t, 1, notified)
}

func TestStore_HydrateOnce(t *testing.T) {
	ctx := context.Background()
	snapshots := newFakeSnapshots()
	snapshots.states["session-1"] = State{
		Value:         140,
		Locked:        true,
		LockedReasons: []LockReason{LockReasonVenue},
	}

	store := newTestStore(snapshots)
	require.NoError(t, store.Hydrate(ctx))
	require.NoError(t, store.Hydrate(ctx))
	assert.Equal(t, 1, snapshots.loads, "hydration must happen at most once")

	state := store.Get()
	assert.Equal(t, 140, state.Value)
	assert.True(t, state.Locked)
}

func TestStore_HydrateDefaultsToZero(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeSnapshots())
	require.NoError(t, store.Hydrate(ctx))

	state := store.Get()
	assert.Equal(t, 0, state.Value)
	assert.False(t, state.Locked)
}

func TestStore_PersistsOnMutation(t *testing.T) {
	ctx := context.Background()
	snapshots := newFakeSnapshots()
	store := newTestStore(snapshots)
	require.NoError(t, store.Hydrate(ctx))

	store.Set(ctx, 75)
	saved := snapshots.states["session-1"]
	assert.Equal(t, 75, saved.Value)

	store.SetAndLock(ctx, 80, LockReasonCatering)
	saved = snapshots.states["session-1"]
	assert.True(t, saved.Locked)
	assert.Equal(t, 80, saved.Value)
}

func TestStore_SnapshotFailureDoesNotBlockMutation(t *testing.T) {
	ctx := context.Background()
	snapshots := newFakeSnapshots()
	snapshots.saveErr = errors.New("store unreachable")

	store := newTestStore(snapshots)
	require.NoError(t, store.Hydrate(ctx))

	changed, state := store.Set(ctx, 42)
	assert.True(t, changed, "in-memory store is authoritative within the session")
	assert.Equal(t, 42, state.Value)
}

func TestStore_InterleavedWritersConvergeOnLock(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(nil)

	// Independently-mounted flows race unlocked writes against a lock. The
	// lock must win and the value must never change afterwards.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.Set(ctx, 10+n)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.SetAndLock(ctx, 111, LockReasonVenue)
	}()
	wg.Wait()

	state := store.Get()
	assert.True(t, state.Locked)
	assert.Equal(t, 111, state.Value)

	changed, state := store.Set(ctx, 7)
	assert.False(t, changed)
	assert.Equal(t, 111, state.Value)
}

func TestValidLockReason(t *testing.T) {
	assert.True(t, ValidLockReason(LockReasonVenue))
	assert.True(t, ValidLockReason(LockReasonCatering))
	assert.True(t, ValidLockReason(LockReasonDessert))
	assert.False(t, ValidLockReason("florist"))
}

func TestSessions_SameStorePerSession(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(500, newFakeSnapshots(), zerolog.Nop())

	a, err := sessions.Get(ctx, "s-1")
	require.NoError(t, err)
	b, err := sessions.Get(ctx, "s-1")
	require.NoError(t, err)
	other, err := sessions.Get(ctx, "s-2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)

	a.Set(ctx, 77)
	assert.Equal(t, 77, b.Get().Value)
	assert.Equal(t, 0, other.Get().Value)
}
