package nutrition

// NutritionBasis says what amount an ingredient's stored macros describe.
type NutritionBasis string

const (
	BasisPer100g    NutritionBasis = "per_100g"
	BasisPerServing NutritionBasis = "per_serving"
)

const defaultBasisSize = 100.0

// ItemType tags which variant a FoodItem holds.
type ItemType string

const (
	ItemIngredient ItemType = "ingredient"
	ItemDish       ItemType = "dish"
)

// Ingredient is an atomic food carrying its macros directly.
type Ingredient struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	Calories         float64        `json:"calories"`
	Protein          float64        `json:"protein"`
	Carbs            float64        `json:"carbs"`
	Fats             float64        `json:"fats"`
	Fiber            float64        `json:"fiber"`
	Basis            NutritionBasis `json:"basis"`
	ServingSizeGrams float64        `json:"serving_size_grams,omitempty"`
	Density          float64        `json:"density,omitempty"`
	Measures         []MeasureDef   `json:"measures,omitempty"`
	Category         string         `json:"category"`
	IsLocal          bool           `json:"is_local"`
}

// stored returns the ingredient's macros exactly as recorded on its basis.
func (i Ingredient) stored() MacroVector {
	return MacroVector{
		Calories: i.Calories,
		Protein:  i.Protein,
		Carbs:    i.Carbs,
		Fats:     i.Fats,
		Fiber:    i.Fiber,
	}
}

// divisor is the gram amount the stored macros describe.
func (i Ingredient) divisor() float64 {
	if i.Basis == BasisPerServing && isPositive(i.ServingSizeGrams) {
		return i.ServingSizeGrams
	}
	return defaultBasisSize
}

// DishComponent is one ingredient line of a composite dish.
type DishComponent struct {
	IngredientID int64    `json:"ingredient_id"`
	Amount       float64  `json:"amount"`
	Unit         FuelUnit `json:"unit"`
}

// Dish is a composite food. Per100g is a snapshot taken when the dish was
// authored; later edits to its ingredients do not change it, so meals logged
// against the dish keep their historical values.
type Dish struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Components          []DishComponent `json:"components"`
	DefaultServingGrams float64         `json:"default_serving_grams"`
	Per100g             MacroVector     `json:"per_100g"`
	Measures            []MeasureDef    `json:"measures,omitempty"`
}

// FoodItem is a tagged union over Ingredient and Dish. Exactly the pointer
// matching Type is expected to be set.
type FoodItem struct {
	Type       ItemType
	Ingredient *Ingredient
	Dish       *Dish
}

// IngredientItem wraps an ingredient as a FoodItem.
func IngredientItem(i Ingredient) FoodItem {
	return FoodItem{Type: ItemIngredient, Ingredient: &i}
}

// DishItem wraps a dish as a FoodItem.
func DishItem(d Dish) FoodItem {
	return FoodItem{Type: ItemDish, Dish: &d}
}

// Name returns the display name of whichever variant is set.
func (f FoodItem) Name() string {
	switch f.Type {
	case ItemIngredient:
		if f.Ingredient != nil {
			return f.Ingredient.Name
		}
	case ItemDish:
		if f.Dish != nil {
			return f.Dish.Name
		}
	}
	return ""
}

// Resolved is the gram weight and absolute macros of an amount of food.
type Resolved struct {
	Grams  float64     `json:"grams"`
	Macros MacroVector `json:"macros"`
}

// Rounded rounds grams and every macro to one decimal for display.
func (r Resolved) Rounded() Resolved {
	return Resolved{Grams: round1(r.Grams), Macros: r.Macros.Rounded()}
}

// Resolve converts amount+unit of the item to grams and absolute macros.
// ok is false when the item is malformed (tag without a matching variant),
// which callers treat like an unknown reference and skip. Macros are
// unrounded so callers can accumulate without compounding error.
func (f FoodItem) Resolve(amount float64, unit FuelUnit) (Resolved, bool) {
	switch f.Type {
	case ItemIngredient:
		if f.Ingredient == nil {
			return Resolved{}, false
		}
		return ResolveIngredient(*f.Ingredient, amount, unit), true
	case ItemDish:
		if f.Dish == nil {
			return Resolved{}, false
		}
		return ResolveDish(*f.Dish, amount, unit), true
	default:
		return Resolved{}, false
	}
}

// ResolveIngredient scales the ingredient's stored macros by grams/divisor,
// where the divisor is the serving size for per-serving data and 100 otherwise.
func ResolveIngredient(i Ingredient, amount float64, unit FuelUnit) Resolved {
	grams := ToGrams(amount, unit, GramOptions{
		Density:          i.Density,
		ServingSizeGrams: i.ServingSizeGrams,
		Measures:         i.Measures,
	})
	return Resolved{
		Grams:  grams,
		Macros: i.stored().Scale(grams / i.divisor()),
	}
}

// ResolveDish scales the dish's cached per-100g snapshot, using the dish's
// default serving as the anchor for the servings unit.
func ResolveDish(d Dish, amount float64, unit FuelUnit) Resolved {
	grams := ToGrams(amount, unit, GramOptions{
		ServingSizeGrams: d.DefaultServingGrams,
		Measures:         d.Measures,
	})
	return Resolved{
		Grams:  grams,
		Macros: d.Per100g.Scale(grams / defaultBasisSize),
	}
}

// Catalog looks up food items by type and id. ok is false for unknown or
// deleted items.
type Catalog interface {
	Lookup(itemType ItemType, id int64) (FoodItem, bool)
}

// MapCatalog is an in-memory Catalog keyed by type and id.
type MapCatalog struct {
	Ingredients map[int64]Ingredient
	Dishes      map[int64]Dish
}

func (c MapCatalog) Lookup(itemType ItemType, id int64) (FoodItem, bool) {
	switch itemType {
	case ItemIngredient:
		if i, ok := c.Ingredients[id]; ok {
			return IngredientItem(i), true
		}
	case ItemDish:
		if d, ok := c.Dishes[id]; ok {
			return DishItem(d), true
		}
	}
	return FoodItem{}, false
}
