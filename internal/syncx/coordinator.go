package syncx

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-resto-floor.git/internal/catalog"
	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/redisx"
	"github.com/ariefcatur/go-resto-floor.git/internal/remote"
	"github.com/ariefcatur/go-resto-floor.git/internal/state"
)

// ErrRemoteUnavailable: every bulk read failed; the last-known-good snapshot
// stays in place and the UI gets a retry affordance.
var ErrRemoteUnavailable = errors.New("remote unavailable")

// Reader is the bulk-read surface of the system of record.
type Reader interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Ingredients(ctx context.Context) ([]catalog.Ingredient, error)
	RecipeItems(ctx context.Context) ([]catalog.RecipeItem, error)
	Tables(ctx context.Context) ([]floor.Table, error)
	Salons(ctx context.Context) ([]floor.Salon, error)
	Reservations(ctx context.Context) ([]floor.Reservation, error)
	Orders(ctx context.Context) ([]remote.OrderRecord, error)
}

// Coordinator is the only component that performs bulk reads. It fans the
// calls out concurrently, tolerates per-endpoint failures, normalizes the
// results into indexed maps, runs the stock projection and installs the
// snapshot atomically.
type Coordinator struct {
	Remote Reader
	Store  *state.Store
	Cache  *redisx.Fallback // optional

	seq atomic.Uint64
}

func (c *Coordinator) nextSeq() uint64 { return c.seq.Add(1) }

// Refresh fetches and normalizes everything. Idempotent: with no intervening
// mutation two calls produce identical collections. A refresh superseded by
// a newer one is discarded by the store's sequence guard.
func (c *Coordinator) Refresh(ctx context.Context) (state.Snapshot, error) {
	seq := c.nextSeq()

	var (
		mu       sync.Mutex
		degraded []string

		products     []catalog.Product
		ingredients  []catalog.Ingredient
		recipeItems  []catalog.RecipeItem
		tables       []floor.Table
		salons       []floor.Salon
		reservations []floor.Reservation
		orderRecs    []remote.OrderRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name string, f func(context.Context) error) {
		g.Go(func() error {
			if err := f(gctx); err != nil {
				if errors.Is(err, remote.ErrUnauthorized) || errors.Is(err, remote.ErrNoSession) {
					// expected for non-privileged roles: no data, not an error
					return nil
				}
				log.Printf("refresh %s: %v", name, err)
				mu.Lock()
				degraded = append(degraded, name)
				mu.Unlock()
			}
			return nil
		})
	}

	fetch("products", func(ctx context.Context) (err error) { products, err = c.Remote.Products(ctx); return })
	fetch("stocks", func(ctx context.Context) (err error) { ingredients, err = c.Remote.Ingredients(ctx); return })
	fetch("product-ingredients", func(ctx context.Context) (err error) { recipeItems, err = c.Remote.RecipeItems(ctx); return })
	fetch("dining-tables", func(ctx context.Context) (err error) { tables, err = c.Remote.Tables(ctx); return })
	fetch("salons", func(ctx context.Context) (err error) { salons, err = c.Remote.Salons(ctx); return })
	fetch("reservations", func(ctx context.Context) (err error) { reservations, err = c.Remote.Reservations(ctx); return })
	fetch("orders", func(ctx context.Context) (err error) { orderRecs, err = c.Remote.Orders(ctx); return })
	_ = g.Wait()

	if len(degraded) == 7 {
		c.Store.SetLastError(ErrRemoteUnavailable)
		return c.Store.Snapshot(), ErrRemoteUnavailable
	}

	snap := normalize(seq, products, ingredients, recipeItems, tables, salons, reservations, orderRecs)
	snap.Degraded = degraded

	if !c.Store.Replace(snap) {
		// a newer refresh already landed; drop this one
		return c.Store.Snapshot(), nil
	}
	c.writeFallback(ctx, snap)
	return snap, nil
}

// RefreshTablesAndSalons is the cheap partial refresh for the table-grid
// view. Everything else keeps the previous snapshot's collections.
func (c *Coordinator) RefreshTablesAndSalons(ctx context.Context) (state.Snapshot, error) {
	seq := c.nextSeq()

	var (
		tables []floor.Table
		salons []floor.Salon
		tErr   error
		sErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { tables, tErr = c.Remote.Tables(gctx); return nil })
	g.Go(func() error { salons, sErr = c.Remote.Salons(gctx); return nil })
	_ = g.Wait()

	if bad(tErr) && bad(sErr) {
		c.Store.SetLastError(ErrRemoteUnavailable)
		return c.Store.Snapshot(), ErrRemoteUnavailable
	}
	if bad(tErr) || bad(sErr) {
		// half a partial refresh is worse than none: keep the old grid
		return c.Store.Snapshot(), nil
	}

	tableMap, byNum := indexTables(tables)
	salonMap := make(map[string]floor.Salon, len(salons))
	for _, s := range salons {
		salonMap[s.ID] = s
	}
	c.Store.ReplaceTables(seq, tableMap, byNum, salonMap)
	return c.Store.Snapshot(), nil
}

func bad(err error) bool {
	return err != nil && !errors.Is(err, remote.ErrUnauthorized) && !errors.Is(err, remote.ErrNoSession)
}

// Run drives the periodic full refresh until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := c.Refresh(ctx); err != nil {
				log.Printf("refresh: %v", err)
			}
		}
	}
}

func (c *Coordinator) writeFallback(ctx context.Context, snap state.Snapshot) {
	if c.Cache == nil {
		return
	}
	c.Cache.SaveTableStatuses(ctx, snap.Tables)
	c.Cache.SaveReservations(ctx, snap.Reservations)
	for _, o := range snap.Orders {
		c.Cache.SaveOrder(ctx, o)
	}
}

// RestoreFallback seeds open orders from the persisted cache. Only called
// when the very first refresh fails and there is nothing else to serve.
func (c *Coordinator) RestoreFallback(ctx context.Context) {
	if c.Cache == nil {
		return
	}
	cached := c.Cache.LoadOrders(ctx)
	for _, o := range cached {
		c.Store.PutOrder(o)
	}
	if len(cached) > 0 {
		log.Printf("restored %d cached orders from fallback", len(cached))
	}
}
