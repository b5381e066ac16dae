package syncx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-resto-floor.git/internal/catalog"
	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
	"github.com/ariefcatur/go-resto-floor.git/internal/remote"
	"github.com/ariefcatur/go-resto-floor.git/internal/state"
)

// fakeReader serves canned collections, with per-endpoint error injection
// and an optional gate to stage slow fetches.
type fakeReader struct {
	products     []catalog.Product
	ingredients  []catalog.Ingredient
	recipeItems  []catalog.RecipeItem
	tables       []floor.Table
	salons       []floor.Salon
	reservations []floor.Reservation
	orderRecs    []remote.OrderRecord

	productsErr error
	tablesErr   error
	ordersErr   error

	gate chan struct{} // when set, Products blocks until the gate closes
}

func (f *fakeReader) Products(ctx context.Context) ([]catalog.Product, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	out := make([]catalog.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeReader) Ingredients(ctx context.Context) ([]catalog.Ingredient, error) {
	return f.ingredients, nil
}

func (f *fakeReader) RecipeItems(ctx context.Context) ([]catalog.RecipeItem, error) {
	return f.recipeItems, nil
}

func (f *fakeReader) Tables(ctx context.Context) ([]floor.Table, error) {
	if f.tablesErr != nil {
		return nil, f.tablesErr
	}
	return f.tables, nil
}

func (f *fakeReader) Salons(ctx context.Context) ([]floor.Salon, error) { return f.salons, nil }

func (f *fakeReader) Reservations(ctx context.Context) ([]floor.Reservation, error) {
	return f.reservations, nil
}

func (f *fakeReader) Orders(ctx context.Context) ([]remote.OrderRecord, error) {
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	return f.orderRecs, nil
}

func testReader() *fakeReader {
	return &fakeReader{
		products: []catalog.Product{
			{ID: "pizza", Name: "Pizza", PriceCents: 1200, IsActive: true},
		},
		ingredients: []catalog.Ingredient{
			{ID: "flour", Name: "Flour", StockQuantity: 23},
			{ID: "tomato", Name: "Tomato", StockQuantity: 9},
		},
		recipeItems: []catalog.RecipeItem{
			{ProductID: "pizza", IngredientID: "flour", QuantityPerUnit: 5},
			{ProductID: "pizza", IngredientID: "tomato", QuantityPerUnit: 3},
		},
		tables: []floor.Table{
			{ID: "t1", Number: 1, Status: floor.TableAvailable},
			{ID: "t2", Number: 7, Status: floor.TableOccupied},
		},
		salons: []floor.Salon{{ID: "s1", Name: "Terrace"}},
		orderRecs: []remote.OrderRecord{
			{Order: orders.Order{ID: "o1", TableID: "t2",
				Items:  map[string]orders.Item{"pizza": {Name: "Pizza", PriceCents: 1200, Count: 2}},
				Status: orders.StatusConfirmed}},
		},
	}
}

func TestRefreshNormalizesAndProjects(t *testing.T) {
	reader := testReader()
	coord := &Coordinator{Remote: reader, Store: state.NewStore()}

	snap, err := coord.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Products["pizza"].Stock, "projection annotates products")
	assert.Len(t, snap.Products["pizza"].Recipe, 2)
	assert.Equal(t, "t2", snap.TableIDByNum[7], "secondary index by staff-facing number")
	assert.Equal(t, "o1", snap.Orders["t2"].ID)
	assert.Empty(t, snap.Degraded)
	assert.NoError(t, coord.Store.LastError())
}

func TestRefreshResolvesTableNumberReferences(t *testing.T) {
	reader := testReader()
	reader.orderRecs = []remote.OrderRecord{
		// the backend addressed this order's table by number only
		{Order: orders.Order{ID: "o2", Items: map[string]orders.Item{}, Status: orders.StatusConfirmed}, TableNo: 7},
		// unknown number: logged and skipped, never aborts the refresh
		{Order: orders.Order{ID: "o3", Items: map[string]orders.Item{}, Status: orders.StatusConfirmed}, TableNo: 99},
	}
	coord := &Coordinator{Remote: reader, Store: state.NewStore()}

	snap, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	require.Contains(t, snap.Orders, "t2")
	assert.Equal(t, "o2", snap.Orders["t2"].ID)
	assert.Equal(t, "t2", snap.Orders["t2"].TableID, "normalized to the canonical id")
	assert.Len(t, snap.Orders, 1)
}

func TestRefreshIsIdempotent(t *testing.T) {
	reader := testReader()
	coord := &Coordinator{Remote: reader, Store: state.NewStore()}

	first, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	second, err := coord.Refresh(context.Background())
	require.NoError(t, err)

	// sequence and timestamp advance; the normalized collections must not
	assert.Greater(t, second.Seq, first.Seq)
	assert.Equal(t, first.Products, second.Products)
	assert.Equal(t, first.Ingredients, second.Ingredients)
	assert.Equal(t, first.Tables, second.Tables)
	assert.Equal(t, first.TableIDByNum, second.TableIDByNum)
	assert.Equal(t, first.Salons, second.Salons)
	assert.Equal(t, first.Orders, second.Orders)
}

func TestRefreshDegradesFailingEndpointToEmpty(t *testing.T) {
	reader := testReader()
	reader.ordersErr = assert.AnError
	coord := &Coordinator{Remote: reader, Store: state.NewStore()}

	snap, err := coord.Refresh(context.Background())
	require.NoError(t, err, "one failing endpoint does not abort the refresh")
	assert.Empty(t, snap.Orders)
	assert.Equal(t, []string{"orders"}, snap.Degraded)
	assert.Equal(t, 3, snap.Products["pizza"].Stock, "the rest of the snapshot is intact")
}

func TestRefreshTreatsUnauthorizedAsNoData(t *testing.T) {
	reader := testReader()
	reader.ordersErr = remote.ErrUnauthorized
	coord := &Coordinator{Remote: reader, Store: state.NewStore()}

	snap, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Orders)
	assert.Empty(t, snap.Degraded, "expected for the role: no data, not an error")
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	reader := testReader()
	reader.gate = make(chan struct{})
	store := state.NewStore()
	coord := &Coordinator{Remote: reader, Store: store}

	// first refresh stalls on products
	done := make(chan state.Snapshot, 1)
	go func() {
		snap, _ := coord.Refresh(context.Background())
		done <- snap
	}()
	time.Sleep(20 * time.Millisecond)

	// second refresh wins the race with fresher data
	reader2 := testReader()
	reader2.products[0].Name = "Pizza v2"
	fast := &Coordinator{Remote: reader2, Store: store}
	fast.seq.Store(1) // sequence tokens are shared per store in production
	_, err := fast.Refresh(context.Background())
	require.NoError(t, err)

	// now the slow one lands and must be dropped
	close(reader.gate)
	got := <-done
	assert.Equal(t, "Pizza v2", got.Products["pizza"].Name,
		"the superseded refresh observes the newer snapshot, not its own")
	assert.Equal(t, "Pizza v2", store.Snapshot().Products["pizza"].Name)
}

func TestRefreshTotalFailureKeepsLastKnownGood(t *testing.T) {
	reader := testReader()
	coord := &Coordinator{Remote: reader, Store: state.NewStore()}
	first, err := coord.Refresh(context.Background())
	require.NoError(t, err)

	coord.Remote = &allFailReader{}

	snap, err := coord.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Equal(t, first.Seq, snap.Seq, "last-known-good snapshot stays in place")
	assert.Error(t, coord.Store.LastError())

	// a later successful refresh clears the flag
	coord.Remote = reader
	_, err = coord.Refresh(context.Background())
	require.NoError(t, err)
	assert.NoError(t, coord.Store.LastError())
}

type allFailReader struct{}

func (a *allFailReader) Products(ctx context.Context) ([]catalog.Product, error) {
	return nil, assert.AnError
}
func (a *allFailReader) Ingredients(ctx context.Context) ([]catalog.Ingredient, error) {
	return nil, assert.AnError
}
func (a *allFailReader) RecipeItems(ctx context.Context) ([]catalog.RecipeItem, error) {
	return nil, assert.AnError
}
func (a *allFailReader) Tables(ctx context.Context) ([]floor.Table, error) {
	return nil, assert.AnError
}
func (a *allFailReader) Salons(ctx context.Context) ([]floor.Salon, error) {
	return nil, assert.AnError
}
func (a *allFailReader) Reservations(ctx context.Context) ([]floor.Reservation, error) {
	return nil, assert.AnError
}
func (a *allFailReader) Orders(ctx context.Context) ([]remote.OrderRecord, error) {
	return nil, assert.AnError
}

func TestRefreshTablesAndSalonsIsPartial(t *testing.T) {
	reader := testReader()
	coord := &Coordinator{Remote: reader, Store: state.NewStore()}
	_, err := coord.Refresh(context.Background())
	require.NoError(t, err)

	reader.tables = append(reader.tables, floor.Table{ID: "t3", Number: 9, Status: floor.TableAvailable})
	snap, err := coord.RefreshTablesAndSalons(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Tables, 3)
	assert.Equal(t, "t3", snap.TableIDByNum[9])
	assert.Contains(t, snap.Orders, "t2", "orders survive a partial refresh")
	assert.Equal(t, 3, snap.Products["pizza"].Stock, "products survive a partial refresh")
}
