package barboard

import (
	"fmt"
	"math"
)

// Profitability thresholds, in margin percent.
const (
	CriticalMarginPercent = 20
	WarningMarginPercent  = 30
	// VarianceThreshold is the relative real-vs-estimated cost difference
	// above which a variance alert is raised.
	VarianceThreshold = 0.10
)

// AlertLevel grades a costing alert.
type AlertLevel uint8

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

func (l AlertLevel) String() string {
	switch l {
	case AlertInfo:
		return "info"
	case AlertWarning:
		return "warning"
	case AlertCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Alert kinds.
const (
	AlertProfitability = "profitability"
	AlertMissing       = "missing-ingredients"
	AlertVariance      = "variance"
)

// Alert is one finding attached to a costing.
type Alert struct {
	Level   AlertLevel
	Kind    string
	Message string
}

// CostingData is the display form of one recipe's costing.
type CostingData struct {
	RecipeID           string
	RecipeName         string
	Cost               float64
	SalePrice          float64
	Margin             float64
	MarginPercent      float64
	MissingIngredients int
	Alerts             []Alert
	Result             *EscandalloResult
}

// ScenarioData aggregates the costing of several recipes.
type ScenarioData struct {
	Name               string
	Recipes            []CostingData
	TotalCost          float64
	TotalRevenue       float64
	AverageMargin      float64 // mean of the recipes' margin percents
	LowMarginCount     int     // recipes below WarningMarginPercent
	MissingIngredients int
	Warnings           []string
}

// Resolver turns domain references into display data. It holds no state;
// results depend only on the arguments.
type Resolver struct {
	// Costing computes cost sheets. Nil means StandardCosting.
	Costing CostingFunc
}

func (r Resolver) costing() CostingFunc {
	if r.Costing != nil {
		return r.Costing
	}
	return StandardCosting
}

func findRecipe(recipes []Recipe, id string) (Recipe, bool) {
	for _, rec := range recipes {
		if rec.ID == id {
			return rec, true
		}
	}
	return Recipe{}, false
}

func findIngredient(ingredients []Ingredient, id string) (Ingredient, bool) {
	for _, ing := range ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return Ingredient{}, false
}

// ResolveCostingData costs recipe recipeID. The sale price is
// salePriceOverride when positive, else the recipe's own price. It returns
// nil when the recipe is not in the catalog or cannot be costed.
func (r Resolver) ResolveCostingData(recipeID string, salePriceOverride float64, recipes []Recipe, ingredients []Ingredient) *CostingData {
	rec, ok := findRecipe(recipes, recipeID)
	if !ok {
		return nil
	}
	price := rec.SalePrice
	if salePriceOverride > 0 {
		price = salePriceOverride
	}
	res := r.costing()(rec, price, ingredients)
	if res == nil {
		return nil
	}
	d := &CostingData{
		RecipeID:           rec.ID,
		RecipeName:         rec.Name,
		Cost:               res.Cost,
		SalePrice:          res.SalePrice,
		Margin:             res.Margin,
		MarginPercent:      res.MarginPercent,
		MissingIngredients: res.Signals.MissingIngredients,
		Result:             res,
	}
	d.Alerts = costingAlerts(res)
	return d
}

// costingAlerts derives the alert list of a cost sheet.
func costingAlerts(res *EscandalloResult) []Alert {
	var alerts []Alert
	switch {
	case res.MarginPercent < CriticalMarginPercent:
		alerts = append(alerts, Alert{
			Level:   AlertCritical,
			Kind:    AlertProfitability,
			Message: fmt.Sprintf("margin %.1f%% is below %d%%", res.MarginPercent, CriticalMarginPercent),
		})
	case res.MarginPercent < WarningMarginPercent:
		alerts = append(alerts, Alert{
			Level:   AlertWarning,
			Kind:    AlertProfitability,
			Message: fmt.Sprintf("margin %.1f%% is below %d%%", res.MarginPercent, WarningMarginPercent),
		})
	}
	if n := res.Signals.MissingIngredients; n > 0 {
		alerts = append(alerts, Alert{
			Level:   AlertWarning,
			Kind:    AlertMissing,
			Message: fmt.Sprintf("%d missing ingredient(s)", n),
		})
	}
	if measured := res.Signals.RealCost; measured > 0 && res.Cost > 0 {
		if v := math.Abs(measured-res.Cost) / res.Cost; v > VarianceThreshold {
			alerts = append(alerts, Alert{
				Level:   AlertWarning,
				Kind:    AlertVariance,
				Message: fmt.Sprintf("real cost differs from estimate by %.0f%%", v*100),
			})
		}
	}
	return alerts
}

// ResolveScenarioData costs every recipe in recipeIDs and aggregates the
// results. Unknown ids are skipped; it returns nil when none resolve.
func (r Resolver) ResolveScenarioData(recipeIDs []string, recipes []Recipe, ingredients []Ingredient, name string) *ScenarioData {
	sd := &ScenarioData{Name: name}
	marginSum := 0.0
	for _, id := range recipeIDs {
		d := r.ResolveCostingData(id, 0, recipes, ingredients)
		if d == nil {
			continue
		}
		sd.Recipes = append(sd.Recipes, *d)
		sd.TotalCost += d.Cost
		sd.TotalRevenue += d.SalePrice
		marginSum += d.MarginPercent
		if d.MarginPercent < WarningMarginPercent {
			sd.LowMarginCount++
		}
		sd.MissingIngredients += d.MissingIngredients
	}
	if len(sd.Recipes) == 0 {
		return nil
	}
	sd.AverageMargin = marginSum / float64(len(sd.Recipes))
	if sd.LowMarginCount > 0 {
		sd.Warnings = append(sd.Warnings, fmt.Sprintf("%d recipe(s) below %d%% margin", sd.LowMarginCount, WarningMarginPercent))
	}
	if sd.MissingIngredients > 0 {
		sd.Warnings = append(sd.Warnings, fmt.Sprintf("%d missing ingredient(s)", sd.MissingIngredients))
	}
	return sd
}
