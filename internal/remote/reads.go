package remote

import (
	"context"
	"time"

	"github.com/ariefcatur/go-resto-floor.git/internal/catalog"
	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
)

// Wire shapes. The backend is loose about identifier shapes (an order may
// carry a table id or only the staff-facing number); everything is mapped to
// canonical domain structs here, at the boundary, so downstream code never
// has to guess which shape it received.

type productDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price_cents"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
}

type ingredientDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	MinQuantity float64 `json:"min_quantity"`
}

type recipeItemDTO struct {
	ProductID    string  `json:"product_id"`
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity_per_unit"`
}

type tableDTO struct {
	ID       string `json:"id"`
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	SalonID  string `json:"salon_id"`
	Status   string `json:"status"`
}

type salonDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type reservationDTO struct {
	ID        string    `json:"id"`
	TableID   string    `json:"table_id"`
	PartySize int       `json:"party_size"`
	At        time.Time `json:"date_time"`
	Special   bool      `json:"special"`
}

type orderDTO struct {
	ID        string                 `json:"id,omitempty"`
	TableID   string                 `json:"table_id,omitempty"`
	TableNo   int                    `json:"table_number,omitempty"`
	Items     map[string]orders.Item `json:"items"`
	Completed bool                   `json:"completed"`
}

// OrderRecord is an order as fetched, before table-id normalization. When
// the backend addressed the table by number, TableID is empty and TableNo
// is set; the SyncCoordinator resolves it through the number index.
type OrderRecord struct {
	Order   orders.Order
	TableNo int
}

func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, "GET", "/products", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.Product{
			ID:         d.ID,
			Name:       d.Name,
			PriceCents: d.Price,
			Category:   d.Category,
			IsActive:   d.IsActive,
		})
	}
	return out, nil
}

func (c *Client) Ingredients(ctx context.Context) ([]catalog.Ingredient, error) {
	var dtos []ingredientDTO
	if err := c.do(ctx, "GET", "/stocks", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]catalog.Ingredient, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.Ingredient{
			ID:            d.ID,
			Name:          d.Name,
			Unit:          catalog.Unit(d.Unit),
			StockQuantity: d.Quantity,
			MinQuantity:   d.MinQuantity,
		})
	}
	return out, nil
}

func (c *Client) RecipeItems(ctx context.Context) ([]catalog.RecipeItem, error) {
	var dtos []recipeItemDTO
	if err := c.do(ctx, "GET", "/product-ingredients", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]catalog.RecipeItem, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.RecipeItem{
			ProductID:       d.ProductID,
			IngredientID:    d.IngredientID,
			QuantityPerUnit: d.Quantity,
		})
	}
	return out, nil
}

func (c *Client) Tables(ctx context.Context) ([]floor.Table, error) {
	var dtos []tableDTO
	if err := c.do(ctx, "GET", "/dining-tables", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]floor.Table, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, floor.Table{
			ID:       d.ID,
			Number:   d.Number,
			Capacity: d.Capacity,
			SalonID:  d.SalonID,
			Status:   floor.TableStatus(d.Status),
		})
	}
	return out, nil
}

func (c *Client) Salons(ctx context.Context) ([]floor.Salon, error) {
	var dtos []salonDTO
	if err := c.do(ctx, "GET", "/salons", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]floor.Salon, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, floor.Salon{ID: d.ID, Name: d.Name, Capacity: d.Capacity})
	}
	return out, nil
}

func (c *Client) Reservations(ctx context.Context) ([]floor.Reservation, error) {
	var dtos []reservationDTO
	if err := c.do(ctx, "GET", "/reservations", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]floor.Reservation, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, floor.Reservation{
			ID:        d.ID,
			TableID:   d.TableID,
			PartySize: d.PartySize,
			At:        d.At,
			Special:   d.Special,
		})
	}
	return out, nil
}

func (c *Client) Orders(ctx context.Context) ([]OrderRecord, error) {
	var dtos []orderDTO
	if err := c.do(ctx, "GET", "/orders", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]OrderRecord, 0, len(dtos))
	for _, d := range dtos {
		items := d.Items
		if items == nil {
			items = map[string]orders.Item{}
		}
		st := orders.StatusConfirmed
		if d.Completed {
			st = orders.StatusPaid
		}
		out = append(out, OrderRecord{
			Order: orders.Order{
				ID:        d.ID,
				TableID:   d.TableID,
				Items:     items,
				Completed: d.Completed,
				Status:    st,
			},
			TableNo: d.TableNo,
		})
	}
	return out, nil
}
