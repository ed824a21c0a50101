package barboard

// Ingredient is an entry of the ingredient catalog. UnitCost is the cost of
// one Unit.
type Ingredient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit,omitempty"`
	UnitCost float64 `json:"unitCost"`
}

// RecipeLine is one ingredient of a recipe, in the ingredient's unit.
type RecipeLine struct {
	IngredientID string  `json:"ingredientId"`
	Quantity     float64 `json:"quantity"`
}

// Recipe is an entry of the recipe catalog. Yield is the number of servings
// the lines produce; zero means one. RealCost, when positive, is the measured
// cost per serving used for variance checks.
type Recipe struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Category  string       `json:"category,omitempty"`
	SalePrice float64      `json:"salePrice"`
	Yield     float64      `json:"yield,omitempty"`
	Lines     []RecipeLine `json:"lines"`
	RealCost  float64      `json:"realCost,omitempty"`
}

// CostLine is the costed form of a RecipeLine.
type CostLine struct {
	IngredientID string
	Name         string
	Quantity     float64
	Cost         float64
	Missing      bool
}

// CostSignals carries data-quality facts about a costing.
type CostSignals struct {
	MissingIngredients int
	// RealCost is the measured cost per serving, zero when unknown.
	RealCost float64
}

// EscandalloResult is the cost sheet of one recipe at a given sale price.
// Cost and Margin are per serving; MarginPercent is Margin over SalePrice.
type EscandalloResult struct {
	Cost          float64
	SalePrice     float64
	Margin        float64
	MarginPercent float64
	Lines         []CostLine
	Signals       CostSignals
}

// CostingFunc computes the cost sheet of recipe at salePrice against the
// ingredient catalog. It must be pure. A nil result means the recipe cannot
// be costed.
type CostingFunc func(recipe Recipe, salePrice float64, ingredients []Ingredient) *EscandalloResult

// StandardCosting sums quantity times unit cost over the recipe lines and
// divides by the yield. Lines whose ingredient is not in the catalog cost
// nothing and are counted as missing.
func StandardCosting(recipe Recipe, salePrice float64, ingredients []Ingredient) *EscandalloResult {
	byID := make(map[string]Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}
	res := &EscandalloResult{
		SalePrice: salePrice,
		Lines:     make([]CostLine, 0, len(recipe.Lines)),
		Signals:   CostSignals{RealCost: max(recipe.RealCost, 0)},
	}
	total := 0.0
	for _, l := range recipe.Lines {
		ing, ok := byID[l.IngredientID]
		line := CostLine{IngredientID: l.IngredientID, Quantity: l.Quantity, Missing: !ok}
		if ok {
			line.Name = ing.Name
			line.Cost = l.Quantity * ing.UnitCost
			total += line.Cost
		} else {
			res.Signals.MissingIngredients++
		}
		res.Lines = append(res.Lines, line)
	}
	yield := recipe.Yield
	if yield <= 0 {
		yield = 1
	}
	res.Cost = total / yield
	res.Margin = salePrice - res.Cost
	if salePrice > 0 {
		res.MarginPercent = res.Margin / salePrice * 100
	}
	return res
}
