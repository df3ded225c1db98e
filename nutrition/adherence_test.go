package nutrition

import (
	"testing"
	"time"
)

// mealAt builds a logged meal n days before now at the given hour (UTC).
func mealAt(now time.Time, daysAgo, hour int, kcal, protein float64) LoggedMeal {
	d := now.AddDate(0, 0, -daysAgo)
	return LoggedMeal{
		LoggedAt: time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC),
		Totals:   MacroVector{Calories: kcal, Protein: protein},
	}
}

/* ─── Windowing tests ────────────────────────────────────────────────── */

// TestComputeAdherence_Windows: 3 distinct days in the last 7 (one of them
// logged twice) gives round(3/7*100) = 43; a 10-day-old log only counts in
// the 28-day window and a 30-day-old log in neither.
func TestComputeAdherence_Windows(t *testing.T) {
	now := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)
	logs := []LoggedMeal{
		mealAt(now, 0, 8, 700, 35),
		mealAt(now, 0, 12, 700, 35),
		mealAt(now, 2, 12, 700, 35),
		mealAt(now, 5, 12, 700, 35),
		mealAt(now, 10, 12, 700, 35),
		mealAt(now, 30, 12, 700, 35),
	}
	a := ComputeAdherence(logs, now)

	if a.Consistency7d != 43 {
		t.Errorf("consistency7d = %d, want 43", a.Consistency7d)
	}
	if a.LoggedDays7d != 3 {
		t.Errorf("logged days 7d = %d, want 3", a.LoggedDays7d)
	}
	if a.Consistency28d != 14 {
		t.Errorf("consistency28d = %d, want 14 (4/28)", a.Consistency28d)
	}
	// Four logs totalling 2800 kcal over a fixed 7-day window
	if a.AvgCalories7d != 400 {
		t.Errorf("avg calories 7d = %v, want 400", a.AvgCalories7d)
	}
	if a.AvgProtein7d != 20 {
		t.Errorf("avg protein 7d = %v, want 20", a.AvgProtein7d)
	}
}

// TestComputeAdherence_SevenDaySubsetOfTwentyEight verifies every day that
// counts toward the short window also counts toward the long one.
func TestComputeAdherence_SevenDaySubsetOfTwentyEight(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	var logs []LoggedMeal
	for d := 0; d < 7; d++ {
		logs = append(logs, mealAt(now, d, 7, 2000, 100))
	}
	a := ComputeAdherence(logs, now)
	if a.Consistency7d != 100 || a.Consistency28d != 25 {
		t.Errorf("got %d/%d, want 100/25", a.Consistency7d, a.Consistency28d)
	}
	if a.LoggedDays28d < a.LoggedDays7d {
		t.Errorf("28d days %d < 7d days %d", a.LoggedDays28d, a.LoggedDays7d)
	}
}

func TestComputeAdherence_IgnoresFutureLogs(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	logs := []LoggedMeal{
		mealAt(now, -1, 9, 500, 10),
		{LoggedAt: now.Add(time.Hour), Totals: MacroVector{Calories: 500}},
	}
	if a := ComputeAdherence(logs, now); a.LoggedDays28d != 0 || a.AvgCalories7d != 0 {
		t.Errorf("future logs counted: %+v", a)
	}
}

func TestComputeAdherence_Empty(t *testing.T) {
	a := ComputeAdherence(nil, time.Now())
	if a != (Adherence{}) {
		t.Errorf("empty history = %+v, want zero value", a)
	}
}

// TestComputeAdherence_UsesNowLocation verifies calendar days are taken in
// now's location: 03:00 and 14:00 UTC are the same UTC day but fall on two
// different local days at UTC-5.
func TestComputeAdherence_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, loc)
	logs := []LoggedMeal{
		{LoggedAt: time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)},
		{LoggedAt: time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)},
	}
	if a := ComputeAdherence(logs, now); a.LoggedDays7d != 2 {
		t.Errorf("logged days = %d, want 2", a.LoggedDays7d)
	}
}
