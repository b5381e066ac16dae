package state

import (
	"sync"
	"time"

	"github.com/ariefcatur/go-resto-floor.git/internal/catalog"
	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
)

// Snapshot is one consistent view of the normalized remote collections.
// Collections are replaced wholesale, never mutated in place, so readers
// holding a snapshot never observe a half-applied update.
type Snapshot struct {
	Seq          uint64
	TakenAt      time.Time
	Products     map[string]catalog.Product // annotated with projected stock
	Ingredients  map[string]catalog.Ingredient
	Tables       map[string]floor.Table
	TableIDByNum map[int]string // staff-facing number -> backend id
	Salons       map[string]floor.Salon
	Orders       map[string]orders.Order // keyed by table id, open orders only
	Reservations []floor.Reservation
	Degraded     []string // endpoints that yielded an empty collection this pass
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Products:     map[string]catalog.Product{},
		Ingredients:  map[string]catalog.Ingredient{},
		Tables:       map[string]floor.Table{},
		TableIDByNum: map[int]string{},
		Salons:       map[string]floor.Salon{},
		Orders:       map[string]orders.Order{},
	}
}

// Store is the single write path for the shared cache. SyncCoordinator
// replaces whole snapshots; the order lifecycle applies point writes that
// clone the affected collection before swapping. Everything else only reads.
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	lastErr error
}

func NewStore() *Store {
	return &Store{snap: emptySnapshot()}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Replace installs a full refresh result. Snapshots carry a monotonically
// increasing sequence token; a stale result (slow fetch finishing after a
// newer one) is discarded and Replace reports false.
func (s *Store) Replace(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Seq <= s.snap.Seq {
		return false
	}
	s.snap = snap
	s.lastErr = nil
	return true
}

// ReplaceTables installs a partial (tables + salons only) refresh, keeping
// every other collection from the current snapshot. Same staleness rule.
func (s *Store) ReplaceTables(seq uint64, tables map[string]floor.Table, byNum map[int]string, salons map[string]floor.Salon) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.snap.Seq {
		return false
	}
	next := s.snap
	next.Seq = seq
	next.TakenAt = time.Now().UTC()
	next.Tables = tables
	next.TableIDByNum = byNum
	next.Salons = salons
	s.snap = next
	return true
}

// PutOrder writes an optimistic order mutation through the shared cache.
// The next authoritative refresh always wins over anything written here.
func (s *Store) PutOrder(o orders.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]orders.Order, len(s.snap.Orders)+1)
	for k, v := range s.snap.Orders {
		next[k] = v
	}
	next[o.TableID] = o
	s.snap.Orders = next
}

func (s *Store) DropOrder(tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]orders.Order, len(s.snap.Orders))
	for k, v := range s.snap.Orders {
		if k != tableID {
			next[k] = v
		}
	}
	s.snap.Orders = next
}

// SetTableStatus applies a local canonical-status echo after a confirmed
// remote mutation (occupy on commit, release on pay/cancel, correction).
func (s *Store) SetTableStatus(tableID string, st floor.TableStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.snap.Tables[tableID]
	if !ok {
		return
	}
	t.Status = st
	next := make(map[string]floor.Table, len(s.snap.Tables))
	for k, v := range s.snap.Tables {
		next[k] = v
	}
	next[tableID] = t
	s.snap.Tables = next
}

// PutReservation echoes a locally created reservation until the next
// refresh replaces the whole collection.
func (s *Store) PutReservation(r floor.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]floor.Reservation, 0, len(s.snap.Reservations)+1)
	for _, x := range s.snap.Reservations {
		if x.ID != r.ID {
			next = append(next, x)
		}
	}
	next = append(next, r)
	s.snap.Reservations = next
}

func (s *Store) DropReservation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]floor.Reservation, 0, len(s.snap.Reservations))
	for _, x := range s.snap.Reservations {
		if x.ID != id {
			next = append(next, x)
		}
	}
	s.snap.Reservations = next
}

// SetLastError flags a failed refresh for the UI; the last-known-good
// snapshot stays in place.
func (s *Store) SetLastError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
