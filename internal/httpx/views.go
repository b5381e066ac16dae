package httpx

import (
	"time"

	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
)

type productView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Category   string `json:"category"`
	Stock      int    `json:"stock"`
}

type tableView struct {
	ID         string `json:"id"`
	Number     int    `json:"number"`
	Capacity   int    `json:"capacity"`
	SalonID    string `json:"salon_id"`
	Salon      string `json:"salon,omitempty"`
	Status     string `json:"status"`
	OrderTotal int    `json:"order_total_cents,omitempty"`
}

type gridResponse struct {
	Tables   []tableView `json:"tables"`
	TakenAt  time.Time   `json:"taken_at"`
	Degraded []string    `json:"degraded,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type orderResp struct {
	ID         string                 `json:"id,omitempty"`
	TableID    string                 `json:"table_id"`
	Status     string                 `json:"status"`
	Items      map[string]orders.Item `json:"items"`
	TotalCents int                    `json:"total_cents"`
}

// orderView recomputes the total from the lines; no stored total exists
// anywhere that could diverge from item data.
func orderView(o orders.Order) orderResp {
	return orderResp{
		ID:         o.ID,
		TableID:    o.TableID,
		Status:     string(o.Status),
		Items:      o.Items,
		TotalCents: o.TotalCents(),
	}
}
