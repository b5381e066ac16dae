package catalog

type Unit string

const (
	UnitWeight Unit = "WEIGHT"
	UnitCount  Unit = "COUNT"
	UnitVolume Unit = "VOLUME"
)

type Ingredient struct {
	ID            string
	Name          string
	Unit          Unit
	StockQuantity float64 // raw quantity on hand, >= 0
	MinQuantity   float64 // reorder threshold
}

// LowStock reports whether the ingredient is at or below its reorder threshold.
func (i Ingredient) LowStock() bool { return i.StockQuantity <= i.MinQuantity }

// RecipeItem: how much of one ingredient a single unit of a product consumes.
type RecipeItem struct {
	ProductID       string
	IngredientID    string
	QuantityPerUnit float64
}

type Product struct {
	ID         string
	Name       string
	PriceCents int
	Category   string
	Recipe     []RecipeItem
	IsActive   bool
	Stock      int // derived, recomputed every projection pass; never persisted
}

// Stock movement reasons. Ingredient quantities change only through
// movements, never by direct assignment.
type MovementReason string

const (
	ReasonPurchase MovementReason = "PURCHASE"
	ReasonSale     MovementReason = "SALE"
	ReasonWaste    MovementReason = "WASTE"
	ReasonReturn   MovementReason = "RETURN"
)

type StockMovement struct {
	ID           string
	IngredientID string
	Delta        float64
	Reason       MovementReason
}
