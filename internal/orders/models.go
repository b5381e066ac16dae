package orders

// Item is one order line. Lines are keyed by product id in Order.Items, the
// full map is what travels on every mutating call (last write observed wins).
type Item struct {
	Name       string `json:"name"`
	PriceCents int    `json:"price"`
	Count      int    `json:"count"`
	Note       string `json:"note,omitempty"`
}

type Order struct {
	ID        string // empty while still a local draft
	TableID   string
	Items     map[string]Item // product id -> line
	Completed bool
	Status    Status
}

func NewDraft(tableID string) Order {
	return Order{TableID: tableID, Items: map[string]Item{}, Status: StatusDraft}
}

// TotalCents is always recomputed from the lines; no total is ever stored.
func (o Order) TotalCents() int {
	total := 0
	for _, it := range o.Items {
		total += it.PriceCents * it.Count
	}
	return total
}

// Empty: an order with zero items is logically absent, not a zero-item record.
func (o Order) Empty() bool { return len(o.Items) == 0 }

// Clone deep-copies the item map so optimistic mutations can be rolled back.
func (o Order) Clone() Order {
	items := make(map[string]Item, len(o.Items))
	for k, v := range o.Items {
		items[k] = v
	}
	o.Items = items
	return o
}
