package barboard

import (
	"fmt"
	"maps"
	"strings"
)

// ExternalEntry is the derived business data shown by a domain node. Only
// the fields relevant to the node's kind are set.
type ExternalEntry struct {
	Ingredient  *Ingredient
	Recipe      *Recipe
	Costing     *CostingData
	Scenario    *ScenarioData
	MenuRecipes []Recipe
}

// ExternalLookup is the read side of the external data table, as seen by the
// renderer.
type ExternalLookup interface {
	Lookup(id NodeID) (ExternalEntry, bool)
}

// ExternalTable is a plain ExternalLookup.
type ExternalTable map[NodeID]ExternalEntry

// Lookup implements ExternalLookup.
func (t ExternalTable) Lookup(id NodeID) (ExternalEntry, bool) {
	e, ok := t[id]
	return e, ok
}

// DataBridge keeps an ExternalTable in step with a Store and the domain
// catalogs. It recomputes every entry when the catalogs change, and on store
// changes only the entries whose domain reference changed. It never runs from
// the frame loop.
type DataBridge struct {
	resolver    Resolver
	recipes     []Recipe
	ingredients []Ingredient

	scene        *Scene
	table        ExternalTable
	fingerprints map[NodeID]string
	unsubscribe  func()

	recomputes int
}

// NewDataBridge returns a bridge using r to resolve entries.
func NewDataBridge(r Resolver) *DataBridge {
	return &DataBridge{
		resolver:     r,
		table:        ExternalTable{},
		fingerprints: map[NodeID]string{},
	}
}

// Attach starts following s. The table is brought up to date immediately.
func (b *DataBridge) Attach(s *Store) {
	b.Detach()
	b.sync(s.Snapshot())
	b.unsubscribe = s.Subscribe(func(sc *Scene, c Change) {
		switch c.Op {
		case OpAddNodes, OpUpdateNodes, OpDeleteNodes, OpLoad:
			b.sync(sc)
		}
	})
}

// Detach stops following the store. The table keeps its last contents.
func (b *DataBridge) Detach() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// SetCatalogs replaces the domain catalogs and recomputes every entry. The
// slices are retained and must not be modified by the caller afterwards.
func (b *DataBridge) SetCatalogs(recipes []Recipe, ingredients []Ingredient) {
	b.recipes = recipes
	b.ingredients = ingredients
	clear(b.fingerprints)
	clear(b.table)
	if b.scene != nil {
		b.sync(b.scene)
	}
}

// Lookup implements ExternalLookup.
func (b *DataBridge) Lookup(id NodeID) (ExternalEntry, bool) {
	return b.table.Lookup(id)
}

// Table returns a copy of the current table.
func (b *DataBridge) Table() ExternalTable {
	return maps.Clone(b.table)
}

// Recomputes returns how many entries have been resolved so far.
func (b *DataBridge) Recomputes() int { return b.recomputes }

// sync resolves the nodes of sc whose domain reference changed since the
// last sync and drops entries of nodes that are gone or no longer domain
// nodes.
func (b *DataBridge) sync(sc *Scene) {
	b.scene = sc
	for id := range b.fingerprints {
		n := sc.Nodes[id]
		if n == nil || domainRef(n) == "" {
			delete(b.fingerprints, id)
			delete(b.table, id)
		}
	}
	for id, n := range sc.Nodes {
		ref := domainRef(n)
		if ref == "" || b.fingerprints[id] == ref {
			continue
		}
		b.fingerprints[id] = ref
		b.recomputes++
		if e, ok := b.resolve(n); ok {
			b.table[id] = e
		} else {
			delete(b.table, id)
		}
	}
}

// domainRef fingerprints the domain reference fields of n. It is empty for
// nodes that show no external data.
func domainRef(n *Node) string {
	switch c := n.Content.(type) {
	case *IngredientRefContent:
		return "ingredient:" + c.IngredientID
	case *RecipeRefContent:
		return "recipe:" + c.RecipeID
	case *CostingSingleContent:
		return fmt.Sprintf("costing:%s:%g", c.RecipeID, c.SalePriceOverride)
	case *CostingScenarioContent:
		return "scenario:" + c.Name + ":" + strings.Join(c.RecipeIDs, ",")
	case *MenuItemContent:
		return fmt.Sprintf("menu-item:%s:%g", c.RecipeID, c.Price)
	case *MenuDesignContent:
		return "menu:" + c.Title + ":" + strings.Join(c.RecipeIDs, ",")
	}
	return ""
}

// resolve computes the entry for n. ok is false when nothing resolved.
func (b *DataBridge) resolve(n *Node) (ExternalEntry, bool) {
	var e ExternalEntry
	switch c := n.Content.(type) {
	case *IngredientRefContent:
		if ing, ok := findIngredient(b.ingredients, c.IngredientID); ok {
			e.Ingredient = &ing
		}
	case *RecipeRefContent:
		if rec, ok := findRecipe(b.recipes, c.RecipeID); ok {
			e.Recipe = &rec
			e.Costing = b.resolver.ResolveCostingData(c.RecipeID, 0, b.recipes, b.ingredients)
		}
	case *CostingSingleContent:
		e.Costing = b.resolver.ResolveCostingData(c.RecipeID, c.SalePriceOverride, b.recipes, b.ingredients)
	case *CostingScenarioContent:
		e.Scenario = b.resolver.ResolveScenarioData(c.RecipeIDs, b.recipes, b.ingredients, c.Name)
	case *MenuItemContent:
		if rec, ok := findRecipe(b.recipes, c.RecipeID); ok {
			e.Recipe = &rec
			e.Costing = b.resolver.ResolveCostingData(c.RecipeID, c.Price, b.recipes, b.ingredients)
		}
	case *MenuDesignContent:
		for _, id := range c.RecipeIDs {
			if rec, ok := findRecipe(b.recipes, id); ok {
				e.MenuRecipes = append(e.MenuRecipes, rec)
			}
		}
		e.Scenario = b.resolver.ResolveScenarioData(c.RecipeIDs, b.recipes, b.ingredients, c.Title)
	}
	ok := e.Ingredient != nil || e.Recipe != nil || e.Costing != nil || e.Scenario != nil || len(e.MenuRecipes) > 0
	return e, ok
}
