package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	ingredients := map[string]Ingredient{
		"flour":  {ID: "flour", Name: "Flour", Unit: UnitWeight, StockQuantity: 23},
		"tomato": {ID: "tomato", Name: "Tomato", Unit: UnitCount, StockQuantity: 9},
	}

	tests := []struct {
		name    string
		product Product
		want    int
	}{
		{
			name: "min over recipe items with floor",
			product: Product{ID: "pizza", Recipe: []RecipeItem{
				{ProductID: "pizza", IngredientID: "flour", QuantityPerUnit: 5},
				{ProductID: "pizza", IngredientID: "tomato", QuantityPerUnit: 3},
			}},
			want: 3, // min(floor(23/5), floor(9/3)) = min(4, 3)
		},
		{
			name: "single ingredient",
			product: Product{ID: "bread", Recipe: []RecipeItem{
				{ProductID: "bread", IngredientID: "flour", QuantityPerUnit: 2},
			}},
			want: 11,
		},
		{
			name:    "no recipe projects to zero",
			product: Product{ID: "water"},
			want:    0,
		},
		{
			name: "missing ingredient projects to zero",
			product: Product{ID: "salad", Recipe: []RecipeItem{
				{ProductID: "salad", IngredientID: "lettuce", QuantityPerUnit: 1},
			}},
			want: 0,
		},
		{
			name: "non-positive required quantity projects to zero",
			product: Product{ID: "soup", Recipe: []RecipeItem{
				{ProductID: "soup", IngredientID: "tomato", QuantityPerUnit: 0},
			}},
			want: 0,
		},
		{
			name: "one bad line poisons the whole product",
			product: Product{ID: "pasta", Recipe: []RecipeItem{
				{ProductID: "pasta", IngredientID: "flour", QuantityPerUnit: 1},
				{ProductID: "pasta", IngredientID: "tomato", QuantityPerUnit: -2},
			}},
			want: 0,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got := Project([]Product{testCase.product}, ingredients)
			assert.Len(t, got, 1)
			assert.Equal(t, testCase.want, got[0].Stock)
			assert.GreaterOrEqual(t, got[0].Stock, 0)
		})
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	products := []Product{{ID: "p", Recipe: []RecipeItem{
		{ProductID: "p", IngredientID: "i", QuantityPerUnit: 1},
	}}}
	ingredients := map[string]Ingredient{"i": {ID: "i", StockQuantity: 7}}

	got := Project(products, ingredients)

	assert.Equal(t, 7, got[0].Stock)
	assert.Equal(t, 0, products[0].Stock, "input slice must stay untouched")
}

func TestDrawAccumulatesSharedIngredients(t *testing.T) {
	pizza := Product{ID: "pizza", Recipe: []RecipeItem{
		{IngredientID: "flour", QuantityPerUnit: 5},
		{IngredientID: "tomato", QuantityPerUnit: 3},
	}}
	bread := Product{ID: "bread", Recipe: []RecipeItem{
		{IngredientID: "flour", QuantityPerUnit: 2},
	}}

	draw := map[string]float64{}
	Draw(pizza, 2, draw)
	Draw(bread, 3, draw)

	assert.Equal(t, 16.0, draw["flour"]) // 2*5 + 3*2
	assert.Equal(t, 6.0, draw["tomato"])
}

func TestLowStock(t *testing.T) {
	assert.True(t, Ingredient{StockQuantity: 2, MinQuantity: 5}.LowStock())
	assert.True(t, Ingredient{StockQuantity: 5, MinQuantity: 5}.LowStock())
	assert.False(t, Ingredient{StockQuantity: 6, MinQuantity: 5}.LowStock())
}
