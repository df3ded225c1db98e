package nutrition

// DishSnapshot is the result of authoring a dish: the macros of the whole
// recipe plus the cached per-100g and per-serving figures stored on the dish.
type DishSnapshot struct {
	TotalGrams float64     `json:"total_grams"`
	Totals     MacroVector `json:"totals"`
	Per100g    MacroVector `json:"per_100g"`
	PerServing MacroVector `json:"per_serving"`
	Skipped    []int64     `json:"skipped,omitempty"`
}

// ComposeDish resolves each component against the catalog's ingredients and
// pools them. Unknown ingredient ids are reported in Skipped instead of
// failing the dish. A recipe with no resolvable grams yields zero vectors.
func ComposeDish(components []DishComponent, defaultServingGrams float64, catalog Catalog) DishSnapshot {
	var (
		grams   float64
		totals  MacroVector
		skipped []int64
	)
	for _, comp := range components {
		item, ok := catalog.Lookup(ItemIngredient, comp.IngredientID)
		if !ok {
			skipped = append(skipped, comp.IngredientID)
			continue
		}
		r, ok := item.Resolve(comp.Amount, comp.Unit)
		if !ok {
			skipped = append(skipped, comp.IngredientID)
			continue
		}
		grams += r.Grams
		totals = totals.Add(r.Macros)
	}

	snap := DishSnapshot{
		TotalGrams: round1(grams),
		Totals:     totals.Rounded(),
		Skipped:    skipped,
	}
	if !isPositive(grams) {
		return snap
	}
	per100 := totals.Scale(100 / grams)
	snap.Per100g = per100.Rounded()
	if isPositive(defaultServingGrams) {
		snap.PerServing = per100.Scale(defaultServingGrams / 100).Rounded()
	}
	return snap
}

// ComponentRole is the part a component plays in a meal.
type ComponentRole string

const (
	RoleBase    ComponentRole = "base"
	RoleTopping ComponentRole = "topping"
	RoleSide    ComponentRole = "side"
)

// Valid reports whether r is a known role.
func (r ComponentRole) Valid() bool {
	switch r {
	case RoleBase, RoleTopping, RoleSide:
		return true
	}
	return false
}

// MealComponent is one line of a meal as the user logged it.
type MealComponent struct {
	Role     ComponentRole `json:"type"`
	ItemID   int64         `json:"item_id"`
	ItemType ItemType      `json:"item_type"`
	Amount   float64       `json:"amount"`
	Unit     FuelUnit      `json:"unit"`
}

// NormalizedComponent is the write-time resolution of a MealComponent.
type NormalizedComponent struct {
	Role     ComponentRole `json:"type"`
	ItemID   int64         `json:"item_id"`
	ItemType ItemType      `json:"item_type"`
	Name     string        `json:"name"`
	Grams    float64       `json:"grams"`
	Macros   MacroVector   `json:"macros"`
}

// MealSnapshot holds what a meal log stores so reads never re-resolve food
// references. It reflects the catalog at write time only.
type MealSnapshot struct {
	Components []NormalizedComponent `json:"normalized_components"`
	Totals     MacroVector           `json:"totals"`
	Skipped    int                   `json:"skipped"`
}

// BuildMealLog resolves every component of a meal. Components whose item
// cannot be found are skipped and counted; they never abort the meal.
func BuildMealLog(components []MealComponent, catalog Catalog) MealSnapshot {
	snap := MealSnapshot{Components: make([]NormalizedComponent, 0, len(components))}
	var totals MacroVector
	for _, comp := range components {
		item, ok := catalog.Lookup(comp.ItemType, comp.ItemID)
		if !ok {
			snap.Skipped++
			continue
		}
		r, ok := item.Resolve(comp.Amount, comp.Unit)
		if !ok {
			snap.Skipped++
			continue
		}
		totals = totals.Add(r.Macros)
		snap.Components = append(snap.Components, NormalizedComponent{
			Role:     comp.Role,
			ItemID:   comp.ItemID,
			ItemType: comp.ItemType,
			Name:     item.Name(),
			Grams:    round1(r.Grams),
			Macros:   r.Macros.Rounded(),
		})
	}
	snap.Totals = totals.Rounded()
	return snap
}
