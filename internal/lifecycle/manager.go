package lifecycle

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-resto-floor.git/internal/catalog"
	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	kafkax "github.com/ariefcatur/go-resto-floor.git/internal/kafka"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
	"github.com/ariefcatur/go-resto-floor.git/internal/redisx"
	"github.com/ariefcatur/go-resto-floor.git/internal/remote"
	"github.com/ariefcatur/go-resto-floor.git/internal/state"
)

var (
	ErrNoOrder         = errors.New("no order for table")
	ErrUnknownProduct  = errors.New("unknown product")
	ErrInactiveProduct = errors.New("product is archived")
	ErrNotPayable      = errors.New("order cannot be paid in its current state")
	ErrClosedOrder     = errors.New("order already closed")
)

// RemoteAPI is the mutation surface of the system of record the lifecycle
// depends on. The backend decrements ingredient stock on order creation
// only; updates resend the full item map without decrementing again.
type RemoteAPI interface {
	CreateOrder(ctx context.Context, o orders.Order) (string, error)
	UpdateOrder(ctx context.Context, o orders.Order) error
	DeleteOrder(ctx context.Context, orderID string) error
	PatchTable(ctx context.Context, tableID string, patch remote.TablePatch) error
	CreateStockMovement(ctx context.Context, m catalog.StockMovement) (string, error)
	CreatePayment(ctx context.Context, orderID string, amountCents int) error
	CreateReservation(ctx context.Context, r floor.Reservation) (string, error)
	DeleteReservation(ctx context.Context, id string) error
}

// Manager owns the draft -> confirmed -> paid state machine for each
// table's order. Drafts are local only; everything confirmed goes through
// the remote API and is echoed into the shared store, which the next
// authoritative refresh always overrides.
type Manager struct {
	Remote  RemoteAPI
	Store   *state.Store
	Cache   *redisx.Fallback // optional
	Events  kafkax.Publisher // optional
	Service string

	// role facts consumed from the session; authorization itself is external
	CanAdjustStock bool

	mu     sync.Mutex
	drafts map[string]orders.Order // keyed by table id
}

func NewManager(api RemoteAPI, store *state.Store) *Manager {
	return &Manager{
		Remote: api,
		Store:  store,
		drafts: map[string]orders.Order{},
	}
}

// OrderFor returns the working order for a table: the confirmed order from
// the current snapshot when one exists, otherwise the local draft, otherwise
// a fresh empty draft.
func (m *Manager) OrderFor(tableID string) orders.Order {
	snap := m.Store.Snapshot()
	if o, ok := snap.Orders[tableID]; ok {
		return o.Clone()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.drafts[tableID]; ok {
		return d.Clone()
	}
	return orders.NewDraft(tableID)
}

// SetItemCount applies a local count change. The resulting count is clamped
// to [0, projected stock + what the order already holds], so a cart can
// never ask for more than is currently producible. No network call.
func (m *Manager) SetItemCount(tableID, productID string, delta int) (orders.Order, error) {
	snap := m.Store.Snapshot()
	p, ok := snap.Products[productID]
	if !ok {
		return m.OrderFor(tableID), ErrUnknownProduct
	}
	if !p.IsActive {
		return m.OrderFor(tableID), ErrInactiveProduct
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	work, ok := m.drafts[tableID]
	if !ok {
		if o, has := snap.Orders[tableID]; has {
			work = o.Clone()
		} else {
			work = orders.NewDraft(tableID)
		}
	}

	current := work.Items[productID].Count
	max := p.Stock + current
	next := current + delta
	if next < 0 {
		next = 0
	}
	if next > max {
		next = max
	}
	if next == 0 {
		delete(work.Items, productID)
	} else {
		it := work.Items[productID]
		it.Name = p.Name
		it.PriceCents = p.PriceCents
		it.Count = next
		work.Items[productID] = it
	}
	m.drafts[tableID] = work
	return work.Clone(), nil
}

// SetNote attaches a kitchen note to an existing line.
func (m *Manager) SetNote(tableID, productID, note string) (orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	work, ok := m.drafts[tableID]
	if !ok {
		if o, has := m.Store.Snapshot().Orders[tableID]; has {
			work = o.Clone()
		} else {
			return orders.NewDraft(tableID), ErrNoOrder
		}
	}
	it, ok := work.Items[productID]
	if !ok {
		return work.Clone(), ErrUnknownProduct
	}
	it.Note = note
	work.Items[productID] = it
	m.drafts[tableID] = work
	return work.Clone(), nil
}

// Commit validates the order-wide ingredient draw and persists the order.
// First confirmation creates remotely (the backend decrements stock there,
// exactly once); later commits update with the full item map and never
// decrement again. On any remote failure local state is left untouched and
// the caller re-syncs via a refresh.
func (m *Manager) Commit(ctx context.Context, tableID string) (orders.Order, error) {
	snap := m.Store.Snapshot()

	m.mu.Lock()
	work, ok := m.drafts[tableID]
	if !ok {
		if o, has := snap.Orders[tableID]; has {
			work = o.Clone()
		} else {
			m.mu.Unlock()
			return orders.Order{}, ErrNoOrder
		}
	} else {
		work = work.Clone()
	}
	m.mu.Unlock()

	for pid, it := range work.Items {
		if it.Count <= 0 {
			delete(work.Items, pid)
		}
	}
	if work.Empty() {
		return work, orders.ErrEmptyOrder
	}

	if err := checkAggregateDraw(work, snap); err != nil {
		return work, err
	}

	created := work.ID == ""
	if created {
		if !orders.CanTransition(work.Status, orders.StatusConfirmed) {
			return work, ErrClosedOrder
		}
		id, err := m.Remote.CreateOrder(ctx, work)
		if err != nil {
			return work, err
		}
		work.ID = id
	} else {
		if err := m.Remote.UpdateOrder(ctx, work); err != nil {
			return work, err
		}
	}
	work.Status = orders.StatusConfirmed

	m.occupyTable(ctx, work.TableID)
	m.Store.PutOrder(work)
	m.forgetDraft(tableID)
	if m.Cache != nil {
		m.Cache.SaveOrder(ctx, work)
	}

	if created {
		m.publish(orders.EventOrderConfirmed, work.ID, orders.OrderConfirmedPayload{
			OrderID:    work.ID,
			TableID:    work.TableID,
			Items:      work.Items,
			TotalCents: work.TotalCents(),
		})
	} else {
		m.publish(orders.EventOrderUpdated, work.ID, orders.OrderUpdatedPayload{
			OrderID:    work.ID,
			TableID:    work.TableID,
			Items:      work.Items,
			TotalCents: work.TotalCents(),
		})
	}
	return work, nil
}

// IncreaseItem bumps a confirmed line by one and resubmits the full map.
func (m *Manager) IncreaseItem(ctx context.Context, tableID, productID string) (orders.Order, error) {
	return m.adjust(ctx, tableID, productID, +1)
}

// DecreaseItem lowers a confirmed line by one; the last unit of the last
// line deletes the whole order and releases the table.
func (m *Manager) DecreaseItem(ctx context.Context, tableID, productID string) (orders.Order, error) {
	return m.adjust(ctx, tableID, productID, -1)
}

// RemoveItem drops a confirmed line entirely.
func (m *Manager) RemoveItem(ctx context.Context, tableID, productID string) (orders.Order, error) {
	snap := m.Store.Snapshot()
	o, ok := snap.Orders[tableID]
	if !ok {
		return orders.Order{}, ErrNoOrder
	}
	it, ok := o.Items[productID]
	if !ok {
		return o.Clone(), ErrUnknownProduct
	}
	return m.adjust(ctx, tableID, productID, -it.Count)
}

func (m *Manager) adjust(ctx context.Context, tableID, productID string, delta int) (orders.Order, error) {
	snap := m.Store.Snapshot()
	o, ok := snap.Orders[tableID]
	if !ok {
		return orders.Order{}, ErrNoOrder
	}
	work := o.Clone()

	it, ok := work.Items[productID]
	if !ok {
		return work, ErrUnknownProduct
	}
	next := it.Count + delta
	if delta > 0 {
		if p, has := snap.Products[productID]; has {
			if max := p.Stock + it.Count; next > max {
				next = max
			}
		} else {
			// line references a product gone from the catalog
			log.Printf("order %s: product %s missing from catalog, increase skipped", work.ID, productID)
			return work, ErrUnknownProduct
		}
	}
	if next <= 0 {
		delete(work.Items, productID)
	} else {
		it.Count = next
		work.Items[productID] = it
	}

	if work.Empty() {
		// decreasing the last line deletes the whole order
		return orders.Order{}, m.Cancel(ctx, tableID)
	}

	if err := m.Remote.UpdateOrder(ctx, work); err != nil {
		return o.Clone(), err
	}
	m.Store.PutOrder(work)
	if m.Cache != nil {
		m.Cache.SaveOrder(ctx, work)
	}
	m.publish(orders.EventOrderUpdated, work.ID, orders.OrderUpdatedPayload{
		OrderID:    work.ID,
		TableID:    work.TableID,
		Items:      work.Items,
		TotalCents: work.TotalCents(),
	})
	return work, nil
}

// Cancel deletes the order remotely, compensates ingredient stock with
// RETURN movements when the session holds the adjustment privilege, and
// releases the table. A draft that never reached the backend is just
// forgotten locally.
func (m *Manager) Cancel(ctx context.Context, tableID string) error {
	snap := m.Store.Snapshot()
	o, confirmed := snap.Orders[tableID]
	if !confirmed {
		m.forgetDraft(tableID)
		return nil
	}
	if !orders.CanTransition(o.Status, orders.StatusCancelled) {
		return ErrClosedOrder
	}

	if err := m.Remote.DeleteOrder(ctx, o.ID); err != nil {
		return err
	}

	var returned []orders.ReturnedQty
	if m.CanAdjustStock {
		returned = m.returnStock(ctx, o, snap)
	}

	m.releaseTable(ctx, tableID)
	m.Store.DropOrder(tableID)
	m.forgetDraft(tableID)
	if m.Cache != nil {
		m.Cache.DropOrder(ctx, tableID)
	}
	m.publish(orders.EventOrderCancelled, o.ID, orders.OrderCancelledPayload{
		OrderID:  o.ID,
		TableID:  tableID,
		Returned: returned,
	})
	return nil
}

// Pay records the payment (best-effort: a session without the payment
// privilege still closes the table, the record is audit-only), marks the
// order completed and releases the table.
func (m *Manager) Pay(ctx context.Context, tableID string, amountCents int) (orders.Order, error) {
	snap := m.Store.Snapshot()
	o, ok := snap.Orders[tableID]
	if !ok {
		return orders.Order{}, ErrNoOrder
	}
	if !orders.CanTransition(o.Status, orders.StatusPaid) {
		return o.Clone(), ErrNotPayable
	}
	if amountCents <= 0 {
		amountCents = o.TotalCents()
	}

	recorded := true
	if err := m.Remote.CreatePayment(ctx, o.ID, amountCents); err != nil {
		recorded = false
		if !errors.Is(err, remote.ErrNoSession) && !errors.Is(err, remote.ErrUnauthorized) {
			log.Printf("payment record for order %s: %v", o.ID, err)
		}
	}

	work := o.Clone()
	work.Completed = true
	work.Status = orders.StatusPaid
	if err := m.Remote.UpdateOrder(ctx, work); err != nil {
		return o.Clone(), err
	}

	m.releaseTable(ctx, tableID)
	m.Store.DropOrder(tableID)
	m.forgetDraft(tableID)
	if m.Cache != nil {
		m.Cache.DropOrder(ctx, tableID)
		m.Cache.AppendCompleted(ctx, work)
	}
	m.publish(orders.EventOrderPaid, work.ID, orders.OrderPaidPayload{
		OrderID:     work.ID,
		TableID:     tableID,
		AmountCents: amountCents,
		Recorded:    recorded,
	})
	return work, nil
}

// CreateReservation books a table remotely and echoes the record locally.
func (m *Manager) CreateReservation(ctx context.Context, r floor.Reservation) (floor.Reservation, error) {
	id, err := m.Remote.CreateReservation(ctx, r)
	if err != nil {
		return r, err
	}
	r.ID = id
	st := floor.TableReserved
	if err := m.Remote.PatchTable(ctx, r.TableID, remote.TablePatch{Status: &st}); err != nil {
		log.Printf("table %s reserve status: %v", r.TableID, err)
	}
	m.Store.PutReservation(r)
	m.Store.SetTableStatus(r.TableID, floor.TableReserved)
	if m.Cache != nil {
		m.Cache.SaveReservations(ctx, []floor.Reservation{r})
	}
	return r, nil
}

// CancelReservation removes the booking and frees the canonical status.
func (m *Manager) CancelReservation(ctx context.Context, id, tableID string) error {
	if err := m.Remote.DeleteReservation(ctx, id); err != nil {
		return err
	}
	st := floor.TableAvailable
	if err := m.Remote.PatchTable(ctx, tableID, remote.TablePatch{Status: &st}); err != nil {
		log.Printf("table %s release status: %v", tableID, err)
	}
	m.Store.DropReservation(id)
	m.Store.SetTableStatus(tableID, floor.TableAvailable)
	if m.Cache != nil {
		m.Cache.DropReservation(ctx, id)
	}
	return nil
}

// ---- internals ----

// checkAggregateDraw verifies that the draw of all lines together fits in
// current ingredient stock. The per-item clamp cannot catch two lines
// sharing an ingredient, so this order-wide pass runs before any network
// call. Lines referencing unknown products are logged and skipped.
func checkAggregateDraw(o orders.Order, snap state.Snapshot) error {
	draw := map[string]float64{}
	for pid, it := range o.Items {
		p, ok := snap.Products[pid]
		if !ok {
			log.Printf("order line references unknown product %s, skipped in draw check", pid)
			continue
		}
		catalog.Draw(p, it.Count, draw)
	}

	var shortfalls []orders.ShortfallDetail
	for ingID, required := range draw {
		ing, ok := snap.Ingredients[ingID]
		if !ok {
			shortfalls = append(shortfalls, orders.ShortfallDetail{
				IngredientID: ingID, Name: ingID, Required: required, Available: 0,
			})
			continue
		}
		if required > ing.StockQuantity {
			shortfalls = append(shortfalls, orders.ShortfallDetail{
				IngredientID: ingID,
				Name:         ing.Name,
				Required:     required,
				Available:    ing.StockQuantity,
			})
		}
	}
	if len(shortfalls) == 0 {
		return nil
	}
	sort.Slice(shortfalls, func(i, j int) bool {
		return shortfalls[i].IngredientID < shortfalls[j].IngredientID
	})
	return &orders.InsufficientStockError{Details: shortfalls}
}

// returnStock issues compensating RETURN movements for every recipe line of
// every order line. Best-effort: a failing movement is logged, the rest are
// still attempted; a missing privilege stops the whole pass quietly.
func (m *Manager) returnStock(ctx context.Context, o orders.Order, snap state.Snapshot) []orders.ReturnedQty {
	var returned []orders.ReturnedQty
	for pid, it := range o.Items {
		p, ok := snap.Products[pid]
		if !ok {
			log.Printf("cancel %s: product %s missing from catalog, no return issued", o.ID, pid)
			continue
		}
		for _, ri := range p.Recipe {
			if ri.QuantityPerUnit <= 0 {
				continue
			}
			qty := ri.QuantityPerUnit * float64(it.Count)
			_, err := m.Remote.CreateStockMovement(ctx, catalog.StockMovement{
				IngredientID: ri.IngredientID,
				Delta:        qty,
				Reason:       catalog.ReasonReturn,
			})
			if err != nil {
				if errors.Is(err, remote.ErrNoSession) || errors.Is(err, remote.ErrUnauthorized) {
					return returned
				}
				log.Printf("return movement for %s: %v", ri.IngredientID, err)
				continue
			}
			returned = append(returned, orders.ReturnedQty{IngredientID: ri.IngredientID, Qty: qty})
		}
	}
	return returned
}

func (m *Manager) occupyTable(ctx context.Context, tableID string) {
	st := floor.TableOccupied
	if err := m.Remote.PatchTable(ctx, tableID, remote.TablePatch{Status: &st}); err != nil {
		// the next refresh reconciles; canonical status stays remote-owned
		log.Printf("table %s occupy: %v", tableID, err)
	}
	m.Store.SetTableStatus(tableID, floor.TableOccupied)
}

func (m *Manager) releaseTable(ctx context.Context, tableID string) {
	st := floor.TableAvailable
	if err := m.Remote.PatchTable(ctx, tableID, remote.TablePatch{Status: &st}); err != nil {
		log.Printf("table %s release: %v", tableID, err)
	}
	m.Store.SetTableStatus(tableID, floor.TableAvailable)
}

func (m *Manager) forgetDraft(tableID string) {
	m.mu.Lock()
	delete(m.drafts, tableID)
	m.mu.Unlock()
}

func (m *Manager) publish(evType, correlationID string, payload any) {
	if m.Events == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     evType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      m.Service,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	m.Events.Publish(orders.PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(evType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
