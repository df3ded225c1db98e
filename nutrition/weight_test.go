package nutrition

import (
	"math"
	"testing"
	"time"
)

/* ─── Dedup guard tests ──────────────────────────────────────────────── */

func TestShouldRecordWeight(t *testing.T) {
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	prev := &WeightLog{WeightKg: 80.0, LoggedAt: base}

	cases := []struct {
		name   string
		prev   *WeightLog
		weight float64
		at     time.Time
		want   bool
	}{
		{"first entry", nil, 80.0, base, true},
		{"same value re-saved soon after", prev, 80.0, base.Add(10 * time.Hour), false},
		{"tiny change re-saved soon after", prev, 80.04, base.Add(time.Hour), false},
		{"real change soon after", prev, 80.3, base.Add(time.Hour), true},
		{"same value next morning", prev, 80.0, base.Add(24 * time.Hour), true},
		{"same value after window", prev, 80.0, base.Add(DedupWindow), true},
		{"backdated duplicate", prev, 80.0, base.Add(-2 * time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldRecordWeight(tc.prev, tc.weight, tc.at); got != tc.want {
				t.Errorf("ShouldRecordWeight = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestNearestWeight_BackdatedSave verifies a backdated save is compared with
// the sample beside it rather than the latest one.
func TestNearestWeight_BackdatedSave(t *testing.T) {
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	logs := []WeightLog{
		{ID: 2, WeightKg: 78.6, LoggedAt: base.Add(72 * time.Hour)},
		{ID: 1, WeightKg: 80.0, LoggedAt: base},
	}

	at := base.Add(3 * time.Hour)
	prev := NearestWeight(logs, at)
	if prev == nil || prev.ID != 1 {
		t.Fatalf("NearestWeight = %+v, want sample 1", prev)
	}
	if ShouldRecordWeight(prev, 80.0, at) {
		t.Error("backdated re-save of an unchanged weight should be suppressed")
	}
	if !ShouldRecordWeight(&logs[0], 80.0, at) {
		t.Error("the latest sample is days away and should not suppress the save")
	}

	if got := NearestWeight(nil, at); got != nil {
		t.Errorf("NearestWeight(nil) = %+v, want nil", got)
	}
}

/* ─── Weight change tests ────────────────────────────────────────────── */

// TestLatestWeightChange_UsesTwoMostRecent verifies order-independence and
// that older samples are ignored.
func TestLatestWeightChange_UsesTwoMostRecent(t *testing.T) {
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	logs := []WeightLog{
		{WeightKg: 79.0, LoggedAt: base},
		{WeightKg: 80.5, LoggedAt: base.AddDate(0, 0, 10)},
		{WeightKg: 80.0, LoggedAt: base.AddDate(0, 0, 3)},
	}
	c := LatestWeightChange(logs)
	if math.Abs(c.DeltaKg-0.5) > 1e-9 {
		t.Errorf("delta = %v, want 0.5", c.DeltaKg)
	}
	if c.Days != 7 {
		t.Errorf("days = %v, want 7", c.Days)
	}
	if c.Samples != 3 {
		t.Errorf("samples = %d, want 3", c.Samples)
	}
	if logs[0].WeightKg != 79.0 {
		t.Error("input slice was reordered")
	}
}

func TestLatestWeightChange_TooFewSamples(t *testing.T) {
	for _, logs := range [][]WeightLog{nil, {{WeightKg: 80}}} {
		if c := LatestWeightChange(logs); c.Days != 0 || c.DeltaKg != 0 {
			t.Errorf("LatestWeightChange(%d logs) = %+v, want zero change", len(logs), c)
		}
	}
}
