package syncx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
	"github.com/ariefcatur/go-resto-floor.git/internal/remote"
	"github.com/ariefcatur/go-resto-floor.git/internal/state"
)

type fakePatcher struct {
	patched map[string]floor.TableStatus
	err     error
}

func (f *fakePatcher) PatchTable(ctx context.Context, tableID string, patch remote.TablePatch) error {
	if f.err != nil {
		return f.err
	}
	if f.patched == nil {
		f.patched = map[string]floor.TableStatus{}
	}
	if patch.Status != nil {
		f.patched[tableID] = *patch.Status
	}
	return nil
}

func watcherStore(t *testing.T, now time.Time) *state.Store {
	t.Helper()
	store := state.NewStore()
	require.True(t, store.Replace(state.Snapshot{
		Seq: 1,
		Tables: map[string]floor.Table{
			"lapsed":   {ID: "lapsed", Number: 1, Status: floor.TableReserved},
			"upcoming": {ID: "upcoming", Number: 2, Status: floor.TableReserved},
			"busy":     {ID: "busy", Number: 3, Status: floor.TableOccupied},
		},
		TableIDByNum: map[int]string{1: "lapsed", 2: "upcoming", 3: "busy"},
		Orders:       map[string]orders.Order{},
		Reservations: []floor.Reservation{
			{ID: "r1", TableID: "lapsed", At: now.Add(-10 * time.Minute)},
			{ID: "r2", TableID: "upcoming", At: now.Add(30 * time.Minute)},
		},
	}))
	return store
}

func TestSweepCorrectsLapsedReservations(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := watcherStore(t, now)
	patcher := &fakePatcher{}
	w := &StatusWatcher{Store: store, Remote: patcher, Now: func() time.Time { return now }}

	w.Sweep(context.Background())

	assert.Equal(t, floor.TableAvailable, patcher.patched["lapsed"], "canonical status corrected remotely")
	assert.Equal(t, floor.TableAvailable, store.Snapshot().Tables["lapsed"].Status)

	assert.NotContains(t, patcher.patched, "upcoming", "a live reservation is left alone")
	assert.NotContains(t, patcher.patched, "busy")

	// idempotent: a second sweep finds nothing left to fix
	patcher.patched = nil
	w.Sweep(context.Background())
	assert.Empty(t, patcher.patched)
}

func TestSweepKeepsLocalStatusWhenPatchFails(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := watcherStore(t, now)
	w := &StatusWatcher{Store: store, Remote: &fakePatcher{err: assert.AnError}, Now: func() time.Time { return now }}

	w.Sweep(context.Background())

	// the correction failed remotely, so the canonical echo stays put and
	// the next sweep retries
	assert.Equal(t, floor.TableReserved, store.Snapshot().Tables["lapsed"].Status)
}
