package catalog

import "math"

// Project derives producible stock for every product from raw ingredient
// quantities: stock = floor(min over recipe items of available/required).
//
// Fail-closed: a product with no recipe, a recipe line pointing at a missing
// ingredient, or a non-positive required quantity projects to 0. A product
// must never look purchasable when its ingredient cost cannot be verified.
//
// Pure: inputs are not mutated, annotated copies are returned.
func Project(products []Product, ingredients map[string]Ingredient) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		p.Stock = projectOne(p, ingredients)
		out[i] = p
	}
	return out
}

func projectOne(p Product, ingredients map[string]Ingredient) int {
	if len(p.Recipe) == 0 {
		return 0
	}
	stock := math.MaxInt
	for _, ri := range p.Recipe {
		if ri.QuantityPerUnit <= 0 {
			return 0
		}
		ing, ok := ingredients[ri.IngredientID]
		if !ok {
			return 0
		}
		if ing.StockQuantity < 0 || math.IsNaN(ing.StockQuantity) {
			return 0
		}
		units := int(math.Floor(ing.StockQuantity / ri.QuantityPerUnit))
		if units < stock {
			stock = units
		}
	}
	if stock < 0 || stock == math.MaxInt {
		return 0
	}
	return stock
}

// Draw accumulates the total ingredient quantities a given number of product
// units would consume, keyed by ingredient id. Lines with invalid quantities
// are skipped; Project already forces such products to stock 0.
func Draw(p Product, count int, into map[string]float64) {
	for _, ri := range p.Recipe {
		if ri.QuantityPerUnit <= 0 {
			continue
		}
		into[ri.IngredientID] += ri.QuantityPerUnit * float64(count)
	}
}
