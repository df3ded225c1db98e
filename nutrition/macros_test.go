package nutrition

import (
	"math"
	"testing"
)

/* ─── Aggregator tests ───────────────────────────────────────────────── */

// TestSum_OrderIndependent verifies the documented example sums exactly in
// both orders.
func TestSum_OrderIndependent(t *testing.T) {
	a := MacroVector{Calories: 100, Protein: 10, Carbs: 0, Fats: 1, Fiber: 0}
	b := MacroVector{Calories: 250, Protein: 20, Carbs: 30, Fats: 8, Fiber: 4}
	want := MacroVector{Calories: 350, Protein: 30, Carbs: 30, Fats: 9, Fiber: 4}

	if got := Sum(a, b); got != want {
		t.Errorf("Sum(a, b) = %+v, want %+v", got, want)
	}
	if got := Sum(b, a); got != want {
		t.Errorf("Sum(b, a) = %+v, want %+v", got, want)
	}
}

func TestSum_Empty(t *testing.T) {
	if got := Sum(); !got.IsZero() {
		t.Errorf("Sum() = %+v, want zero vector", got)
	}
}

// TestSum_RoundsOnlyTheResult verifies that many small components are
// accumulated unrounded: ten 0.04 g values would round to 0 each.
func TestSum_RoundsOnlyTheResult(t *testing.T) {
	parts := make([]MacroVector, 10)
	for i := range parts {
		parts[i] = MacroVector{Protein: 0.04}
	}
	if got := Sum(parts...); got.Protein != 0.4 {
		t.Errorf("protein = %v, want 0.4", got.Protein)
	}
}

// TestPer100g_ZeroTotal verifies no division by zero for empty composites.
func TestPer100g_ZeroTotal(t *testing.T) {
	v := MacroVector{Calories: 500, Protein: 20, Carbs: 60, Fats: 15, Fiber: 5}
	for _, grams := range []float64{0, -10, math.NaN()} {
		got := Per100g(v, grams)
		if !got.IsZero() {
			t.Errorf("Per100g(v, %v) = %+v, want zero vector", grams, got)
		}
	}
}

func TestPer100g_Scales(t *testing.T) {
	v := MacroVector{Calories: 500, Protein: 20, Carbs: 60, Fats: 15, Fiber: 5}
	want := MacroVector{Calories: 200, Protein: 8, Carbs: 24, Fats: 6, Fiber: 2}
	if got := Per100g(v, 250); got != want {
		t.Errorf("Per100g = %+v, want %+v", got, want)
	}
}

/* ─── Resolver tests ─────────────────────────────────────────────────── */

// egg is stored per serving of 50 g with a piece measure of 50 g.
func egg() Ingredient {
	return Ingredient{
		ID: 1, Name: "Egg",
		Calories: 72, Protein: 6.3, Carbs: 0.4, Fats: 4.8, Fiber: 0,
		Basis:            BasisPerServing,
		ServingSizeGrams: 50,
		Measures:         []MeasureDef{{Unit: UnitPieces, Grams: 50}},
	}
}

// TestResolveIngredient_PerServing covers the two-eggs example.
func TestResolveIngredient_PerServing(t *testing.T) {
	r := ResolveIngredient(egg(), 2, UnitPieces)
	if r.Grams != 100 {
		t.Fatalf("grams = %v, want 100", r.Grams)
	}
	if math.Abs(r.Macros.Calories-144) > 1e-9 {
		t.Errorf("calories = %v, want 144", r.Macros.Calories)
	}
	if math.Abs(r.Macros.Protein-12.6) > 1e-9 {
		t.Errorf("protein = %v, want 12.6", r.Macros.Protein)
	}
}

func TestResolveIngredient_Per100g(t *testing.T) {
	rice := Ingredient{Name: "Rice", Calories: 130, Protein: 2.8, Carbs: 28, Fats: 0.4, Fiber: 0.4, Basis: BasisPer100g}
	r := ResolveIngredient(rice, 250, UnitGrams)
	want := MacroVector{Calories: 325, Protein: 7, Carbs: 70, Fats: 1, Fiber: 1}
	if got := r.Macros.Rounded(); got != want {
		t.Errorf("macros = %+v, want %+v", got, want)
	}
}

// TestResolveIngredient_PerServingWithoutSize verifies the divisor falls back
// to 100 when a per-serving ingredient has no usable serving size.
func TestResolveIngredient_PerServingWithoutSize(t *testing.T) {
	ing := Ingredient{Calories: 200, Basis: BasisPerServing}
	r := ResolveIngredient(ing, 50, UnitGrams)
	if r.Macros.Calories != 100 {
		t.Errorf("calories = %v, want 100", r.Macros.Calories)
	}
}

// TestResolveDish_UsesCachedSnapshot verifies a dish scales its stored
// per-100g vector and anchors servings on its default serving.
func TestResolveDish_UsesCachedSnapshot(t *testing.T) {
	d := Dish{
		Name:                "Shiro",
		DefaultServingGrams: 250,
		Per100g:             MacroVector{Calories: 120, Protein: 6, Carbs: 15, Fats: 4, Fiber: 3},
	}
	r := ResolveDish(d, 2, UnitServings)
	if r.Grams != 500 {
		t.Fatalf("grams = %v, want 500", r.Grams)
	}
	want := MacroVector{Calories: 600, Protein: 30, Carbs: 75, Fats: 20, Fiber: 15}
	if got := r.Macros.Rounded(); got != want {
		t.Errorf("macros = %+v, want %+v", got, want)
	}
}

func TestFoodItem_ResolveMalformed(t *testing.T) {
	cases := []FoodItem{
		{Type: ItemIngredient},
		{Type: ItemDish},
		{Type: "drink", Ingredient: &Ingredient{}},
	}
	for _, f := range cases {
		if _, ok := f.Resolve(1, UnitGrams); ok {
			t.Errorf("Resolve on %+v should not be ok", f)
		}
	}
}

/* ─── Composition tests ──────────────────────────────────────────────── */

func testCatalog() MapCatalog {
	return MapCatalog{
		Ingredients: map[int64]Ingredient{
			1: egg(),
			2: {ID: 2, Name: "Injera", Calories: 170, Protein: 5, Carbs: 35, Fats: 1, Fiber: 4, Basis: BasisPer100g,
				Measures: []MeasureDef{{Unit: UnitRolls, Grams: 150, Label: "1 roll"}}},
		},
		Dishes: map[int64]Dish{
			10: {ID: 10, Name: "Shiro", DefaultServingGrams: 250,
				Per100g: MacroVector{Calories: 120, Protein: 6, Carbs: 15, Fats: 4, Fiber: 3}},
		},
	}
}

// TestComposeDish_SkipsUnknown verifies unknown ingredients are reported
// rather than aborting and that the per-100g figure uses pooled grams.
func TestComposeDish_SkipsUnknown(t *testing.T) {
	snap := ComposeDish([]DishComponent{
		{IngredientID: 1, Amount: 2, Unit: UnitPieces},
		{IngredientID: 2, Amount: 100, Unit: UnitGrams},
		{IngredientID: 99, Amount: 1, Unit: UnitCups},
	}, 100, testCatalog())

	if snap.TotalGrams != 200 {
		t.Fatalf("total grams = %v, want 200", snap.TotalGrams)
	}
	if len(snap.Skipped) != 1 || snap.Skipped[0] != 99 {
		t.Errorf("skipped = %v, want [99]", snap.Skipped)
	}
	// 144 + 170 kcal over 200 g
	if snap.Per100g.Calories != 157 {
		t.Errorf("per100g calories = %v, want 157", snap.Per100g.Calories)
	}
	if snap.PerServing != snap.Per100g {
		t.Errorf("per serving of 100 g should equal per100g, got %+v vs %+v", snap.PerServing, snap.Per100g)
	}
}

func TestComposeDish_Empty(t *testing.T) {
	snap := ComposeDish(nil, 250, testCatalog())
	if !snap.Per100g.IsZero() || !snap.PerServing.IsZero() || snap.TotalGrams != 0 {
		t.Errorf("empty dish snapshot = %+v, want zeros", snap)
	}
}

// TestBuildMealLog_SkipsUnknownReference verifies a bad reference does not
// abort the meal and totals cover only resolved components.
func TestBuildMealLog_SkipsUnknownReference(t *testing.T) {
	snap := BuildMealLog([]MealComponent{
		{Role: RoleBase, ItemID: 2, ItemType: ItemIngredient, Amount: 1, Unit: UnitRolls},
		{Role: RoleTopping, ItemID: 10, ItemType: ItemDish, Amount: 1, Unit: UnitServings},
		{Role: RoleSide, ItemID: 404, ItemType: ItemDish, Amount: 1, Unit: UnitServings},
	}, testCatalog())

	if snap.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", snap.Skipped)
	}
	if len(snap.Components) != 2 {
		t.Fatalf("components = %d, want 2", len(snap.Components))
	}
	if snap.Components[0].Name != "Injera" || snap.Components[0].Grams != 150 {
		t.Errorf("first component = %+v", snap.Components[0])
	}
	// injera 150 g = 255 kcal, shiro 250 g = 300 kcal
	if snap.Totals.Calories != 555 {
		t.Errorf("total calories = %v, want 555", snap.Totals.Calories)
	}
}
