package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderConfirmed = "OrderConfirmed"
	EventOrderUpdated   = "OrderUpdated"
	EventOrderCancelled = "OrderCancelled"
	EventOrderPaid      = "OrderPaid"
	EventTableCorrected = "TableCorrected"
)

// Envelope wraps every audit event. CorrelationID is usually an order id;
// table corrections carry the table id instead.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- payload types per event ----

type OrderConfirmedPayload struct {
	OrderID    string          `json:"order_id"`
	TableID    string          `json:"table_id"`
	Items      map[string]Item `json:"items"`
	TotalCents int             `json:"total_cents"`
}

type OrderUpdatedPayload struct {
	OrderID    string          `json:"order_id"`
	TableID    string          `json:"table_id"`
	Items      map[string]Item `json:"items"`
	TotalCents int             `json:"total_cents"`
}

type ReturnedQty struct {
	IngredientID string  `json:"ingredient_id"`
	Qty          float64 `json:"qty"`
}

type OrderCancelledPayload struct {
	OrderID  string        `json:"order_id"`
	TableID  string        `json:"table_id"`
	Returned []ReturnedQty `json:"returned,omitempty"`
}

type OrderPaidPayload struct {
	OrderID     string `json:"order_id"`
	TableID     string `json:"table_id"`
	AmountCents int    `json:"amount_cents"`
	Recorded    bool   `json:"recorded"` // false when the caller lacked payment privilege
}

type TableCorrectedPayload struct {
	TableID string `json:"table_id"`
	Number  int    `json:"number"`
	From    string `json:"from"`
	To      string `json:"to"`
}
