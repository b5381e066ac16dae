package orders

import (
	"errors"
	"fmt"
)

var ErrEmptyOrder = errors.New("order has no items")

// ShortfallDetail names one ingredient the aggregate draw would overrun.
type ShortfallDetail struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Required     float64 `json:"required"`
	Available    float64 `json:"available"`
}

// InsufficientStockError blocks a commit before any network call is made.
type InsufficientStockError struct {
	Details []ShortfallDetail
}

func (e *InsufficientStockError) Error() string {
	if len(e.Details) == 0 {
		return "insufficient stock"
	}
	d := e.Details[0]
	if len(e.Details) == 1 {
		return fmt.Sprintf("insufficient stock: %s requires %.2f, available %.2f", d.Name, d.Required, d.Available)
	}
	return fmt.Sprintf("insufficient stock: %s and %d more ingredients", d.Name, len(e.Details)-1)
}
