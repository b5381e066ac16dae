package syncx

import (
	"log"
	"time"

	"github.com/ariefcatur/go-resto-floor.git/internal/catalog"
	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
	"github.com/ariefcatur/go-resto-floor.git/internal/remote"
	"github.com/ariefcatur/go-resto-floor.git/internal/state"
)

// normalize turns the raw collections into one indexed snapshot: ingredient
// map first, then recipes grouped onto their products, then the stock
// projection, then tables with the staff-facing number index, then orders
// with their table references resolved to canonical backend ids.
func normalize(
	seq uint64,
	products []catalog.Product,
	ingredients []catalog.Ingredient,
	recipeItems []catalog.RecipeItem,
	tables []floor.Table,
	salons []floor.Salon,
	reservations []floor.Reservation,
	orderRecs []remote.OrderRecord,
) state.Snapshot {
	ingMap := make(map[string]catalog.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		ingMap[ing.ID] = ing
	}

	byProduct := make(map[string][]catalog.RecipeItem, len(products))
	for _, ri := range recipeItems {
		byProduct[ri.ProductID] = append(byProduct[ri.ProductID], ri)
	}
	for i := range products {
		products[i].Recipe = byProduct[products[i].ID]
	}

	projected := catalog.Project(products, ingMap)
	prodMap := make(map[string]catalog.Product, len(projected))
	for _, p := range projected {
		prodMap[p.ID] = p
	}

	tableMap, byNum := indexTables(tables)

	salonMap := make(map[string]floor.Salon, len(salons))
	for _, s := range salons {
		salonMap[s.ID] = s
	}

	orderMap := make(map[string]orders.Order, len(orderRecs))
	for _, rec := range orderRecs {
		o := rec.Order
		if o.Completed {
			continue // closed orders are history, not floor state
		}
		if o.TableID == "" {
			// the backend addressed the table by number; resolve it here so
			// nothing downstream has to guess which id shape it got
			id, ok := byNum[rec.TableNo]
			if !ok {
				log.Printf("order %s references unknown table number %d, skipped", o.ID, rec.TableNo)
				continue
			}
			o.TableID = id
		}
		orderMap[o.TableID] = o
	}

	return state.Snapshot{
		Seq:          seq,
		TakenAt:      time.Now().UTC(),
		Products:     prodMap,
		Ingredients:  ingMap,
		Tables:       tableMap,
		TableIDByNum: byNum,
		Salons:       salonMap,
		Orders:       orderMap,
		Reservations: reservations,
	}
}

func indexTables(tables []floor.Table) (map[string]floor.Table, map[int]string) {
	tableMap := make(map[string]floor.Table, len(tables))
	byNum := make(map[int]string, len(tables))
	for _, t := range tables {
		tableMap[t.ID] = t
		byNum[t.Number] = t.ID
	}
	return tableMap, byNum
}
