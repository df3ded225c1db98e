package main

import (
	"testing"
	"time"

	"lg/hayl-fuel-api/nutrition"
)

/* ─── normalizeMealRequest ───────────────────────────────────────────── */

func TestNormalizeMealRequest_FillsDefaults(t *testing.T) {
	body := createMealLogRequest{
		Components: []nutrition.MealComponent{
			{ItemID: 3, ItemType: "Dish", Amount: 1, Unit: "Rolls"},
			{Role: nutrition.RoleSide, ItemID: 9, ItemType: "ingredient", Amount: 120, Unit: "grams"},
		},
	}
	if msg := normalizeMealRequest(&body, fixedNow); msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if body.LoggedAt == nil || !body.LoggedAt.Equal(fixedNow) {
		t.Errorf("logged_at = %v, want %v", body.LoggedAt, fixedNow)
	}
	first := body.Components[0]
	if first.Role != nutrition.RoleBase || first.ItemType != nutrition.ItemDish || first.Unit != nutrition.UnitRolls {
		t.Errorf("first component not canonicalized: %+v", first)
	}
	if body.Components[1].Unit != nutrition.UnitGrams {
		t.Errorf("unit alias not resolved: %q", body.Components[1].Unit)
	}
}

func TestNormalizeMealRequest_Rejects(t *testing.T) {
	farFuture := fixedNow.Add(48 * time.Hour)
	valid := nutrition.MealComponent{ItemID: 1, ItemType: "ingredient", Amount: 100, Unit: "g"}

	cases := []struct {
		name string
		body createMealLogRequest
		want string
	}{
		{"no components", createMealLogRequest{}, "at least one component is required"},
		{"unknown meal type", createMealLogRequest{MealType: ptr("brunch"), Components: []nutrition.MealComponent{valid}},
			"meal_type must be one of: breakfast, lunch, dinner, snack"},
		{"too far ahead", createMealLogRequest{LoggedAt: &farFuture, Components: []nutrition.MealComponent{valid}},
			"logged_at is too far in the future"},
		{"unknown role", createMealLogRequest{Components: []nutrition.MealComponent{
			{Role: "garnish", ItemID: 1, ItemType: "ingredient", Amount: 1, Unit: "g"}}},
			"component 0: type must be one of: base, topping, side"},
		{"unknown item type", createMealLogRequest{Components: []nutrition.MealComponent{
			valid, {ItemID: 1, ItemType: "recipe", Amount: 1, Unit: "g"}}},
			"component 1: item_type must be one of: ingredient, dish"},
		{"unknown unit", createMealLogRequest{Components: []nutrition.MealComponent{
			{ItemID: 1, ItemType: "ingredient", Amount: 1, Unit: "pinch"}}},
			"component 0: unknown unit"},
		{"negative amount", createMealLogRequest{Components: []nutrition.MealComponent{
			{ItemID: 1, ItemType: "ingredient", Amount: -5, Unit: "g"}}},
			"component 0: item_id and amount must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeMealRequest(&tc.body, fixedNow); got != tc.want {
				t.Errorf("normalizeMealRequest = %q, want %q", got, tc.want)
			}
		})
	}
}

/* ─── buildWeekSummary ───────────────────────────────────────────────── */

func TestBuildWeekSummary(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := []weekDayDBRow{
		{Date: DateOnly{monday}, Calories: 2100.04, Protein: 120, Carbs: 250, Fats: 70, Fiber: 28},
		{Date: DateOnly{monday.AddDate(0, 0, 3)}, Calories: 1800, Protein: 95},
	}

	days := buildWeekSummary(monday, rows, 2500)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}

	if !days[0].HasData || days[0].Totals.Calories != 2100 || days[0].CaloriesLeft != 400 {
		t.Errorf("monday = %+v", days[0])
	}
	if days[1].HasData || days[1].CaloriesLeft != 2500 {
		t.Errorf("empty tuesday = %+v, want no data and the full target left", days[1])
	}
	if !days[3].HasData || days[3].Totals.Protein != 95 {
		t.Errorf("thursday = %+v", days[3])
	}
	if got := days[6].Date.Time; !got.Equal(monday.AddDate(0, 0, 6)) {
		t.Errorf("last day = %v, want sunday", got)
	}
}

func TestBuildWeekSummary_NoTarget(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := []weekDayDBRow{{Date: DateOnly{monday}, Calories: 900}}

	for _, d := range buildWeekSummary(monday, rows, 0) {
		if d.CaloriesLeft != 0 || d.CalorieTarget != 0 {
			t.Errorf("%s: expected no target fields, got %+v", d.Date.Format("2006-01-02"), d)
		}
	}
}
