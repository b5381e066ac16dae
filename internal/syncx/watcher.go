package syncx

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	kafkax "github.com/ariefcatur/go-resto-floor.git/internal/kafka"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
	"github.com/ariefcatur/go-resto-floor.git/internal/remote"
	"github.com/ariefcatur/go-resto-floor.git/internal/state"
)

type TablePatcher interface {
	PatchTable(ctx context.Context, tableID string, patch remote.TablePatch) error
}

// StatusWatcher re-evaluates effective table statuses on a fixed tick. The
// resolver output is time-dependent, so this runs even when no data changed;
// its only side effect is the self-healing correction for tables whose
// canonical status says reserved but whose reservation is gone or lapsed.
type StatusWatcher struct {
	Store   *state.Store
	Remote  TablePatcher
	Events  kafkax.Publisher // optional
	Service string
	Now     func() time.Time // defaults to time.Now
}

func (w *StatusWatcher) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Sweep walks the current snapshot once and issues corrections.
func (w *StatusWatcher) Sweep(ctx context.Context) {
	now := w.now()
	snap := w.Store.Snapshot()
	for _, t := range snap.Tables {
		_, fix := floor.Resolve(t, snap.Reservations, now)
		if !fix {
			continue
		}
		st := floor.TableAvailable
		if err := w.Remote.PatchTable(ctx, t.ID, remote.TablePatch{Status: &st}); err != nil {
			log.Printf("table %d status correction: %v", t.Number, err)
			continue
		}
		w.Store.SetTableStatus(t.ID, floor.TableAvailable)
		w.publishCorrected(t)
		log.Printf("table %d corrected: reserved -> available", t.Number)
	}
}

func (w *StatusWatcher) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.Sweep(ctx)
		}
	}
}

func (w *StatusWatcher) publishCorrected(t floor.Table) {
	if w.Events == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventTableCorrected,
		EventVersion:  1,
		OccurredAt:    w.now().UTC(),
		Producer:      w.Service,
		CorrelationID: t.ID,
		Payload: kafkax.MustMarshal(orders.TableCorrectedPayload{
			TableID: t.ID,
			Number:  t.Number,
			From:    string(floor.TableReserved),
			To:      string(floor.TableAvailable),
		}),
	}
	w.Events.Publish(orders.PartitionKey(t.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventTableCorrected)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
