package remote

import (
	"context"
	"time"

	"github.com/ariefcatur/go-resto-floor.git/internal/catalog"
	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
)

// TablePatch: nil fields are left untouched by the backend.
type TablePatch struct {
	Status   *floor.TableStatus `json:"status,omitempty"`
	Capacity *int               `json:"capacity,omitempty"`
	Number   *int               `json:"number,omitempty"`
}

// CreateOrder persists a draft. The backend decrements ingredient stock as
// part of creation; updates never decrement again (see UpdateOrder).
func (c *Client) CreateOrder(ctx context.Context, o orders.Order) (string, error) {
	body := orderDTO{TableID: o.TableID, Items: o.Items, Completed: o.Completed}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "POST", "/orders", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UpdateOrder replaces the full item map of an existing order. No stock
// decrement happens here: decrement is exactly once, at first confirmation.
func (c *Client) UpdateOrder(ctx context.Context, o orders.Order) error {
	body := orderDTO{ID: o.ID, TableID: o.TableID, Items: o.Items, Completed: o.Completed}
	return c.do(ctx, "PUT", "/orders/"+o.ID, body, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, "DELETE", "/orders/"+orderID, nil, nil)
}

func (c *Client) CreateReservation(ctx context.Context, r floor.Reservation) (string, error) {
	body := reservationDTO{TableID: r.TableID, PartySize: r.PartySize, At: r.At, Special: r.Special}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "POST", "/reservations", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) DeleteReservation(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/reservations/"+id, nil, nil)
}

func (c *Client) PatchTable(ctx context.Context, tableID string, patch TablePatch) error {
	return c.do(ctx, "PATCH", "/dining-tables/"+tableID, patch, nil)
}

type movementDTO struct {
	ID           string  `json:"id,omitempty"`
	IngredientID string  `json:"ingredient_id"`
	Delta        float64 `json:"delta"`
	Reason       string  `json:"reason"`
	At           string  `json:"at,omitempty"`
}

// CreateStockMovement is privileged: without a session it is skipped with
// ErrNoSession so callers can treat it as best-effort.
func (c *Client) CreateStockMovement(ctx context.Context, m catalog.StockMovement) (string, error) {
	if c.token == "" {
		return "", ErrNoSession
	}
	body := movementDTO{
		IngredientID: m.IngredientID,
		Delta:        m.Delta,
		Reason:       string(m.Reason),
		At:           time.Now().UTC().Format(time.RFC3339),
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "POST", "/stock-movements", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) DeleteStockMovement(ctx context.Context, id string) error {
	if c.token == "" {
		return ErrNoSession
	}
	return c.do(ctx, "DELETE", "/stock-movements/"+id, nil, nil)
}

func (c *Client) PatchStockMovement(ctx context.Context, id string, delta float64, reason catalog.MovementReason) error {
	if c.token == "" {
		return ErrNoSession
	}
	body := movementDTO{Delta: delta, Reason: string(reason)}
	return c.do(ctx, "PATCH", "/stock-movements/"+id, body, nil)
}

// CreatePayment records a payment for audit. Privileged and best-effort:
// closing a table never gates on this call succeeding.
func (c *Client) CreatePayment(ctx context.Context, orderID string, amountCents int) error {
	if c.token == "" {
		return ErrNoSession
	}
	body := struct {
		OrderID     string `json:"order_id"`
		AmountCents int    `json:"amount_cents"`
	}{OrderID: orderID, AmountCents: amountCents}
	return c.do(ctx, "POST", "/payments", body, nil)
}
