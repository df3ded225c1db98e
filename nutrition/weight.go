package nutrition

import (
	"math"
	"sort"
	"time"
)

// WeightLog is one append-only bodyweight sample.
type WeightLog struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	WeightKg float64   `json:"weight_kg"`
	LoggedAt time.Time `json:"logged_at"`
	Source   string    `json:"source"`
}

const (
	// DedupWindow and DedupDeltaKg define a repeated save of an unchanged weight.
	DedupWindow  = 18 * time.Hour
	DedupDeltaKg = 0.05
)

// ShouldRecordWeight reports whether a new sample should be written given
// the stored sample nearest to it in time (nil when there is none). A sample
// close in time to its neighbour and within DedupDeltaKg of it is noise from
// re-saving an unchanged value and is suppressed. For a save at the current
// time the nearest sample is the most recent one; a backdated save is checked
// against the samples around its own timestamp.
//
// Callers must serialize writes per user; two concurrent writers could both
// see the same prev and both pass.
func ShouldRecordWeight(prev *WeightLog, weightKg float64, at time.Time) bool {
	if prev == nil {
		return true
	}
	gap := at.Sub(prev.LoggedAt)
	if gap < 0 {
		gap = -gap
	}
	return gap >= DedupWindow || math.Abs(weightKg-prev.WeightKg) >= DedupDeltaKg
}

// NearestWeight returns the sample closest in time to at, or nil when logs is
// empty. Ties go to the earlier sample.
func NearestWeight(logs []WeightLog, at time.Time) *WeightLog {
	var best *WeightLog
	var bestGap time.Duration
	for i := range logs {
		gap := at.Sub(logs[i].LoggedAt)
		if gap < 0 {
			gap = -gap
		}
		if best == nil || gap < bestGap || (gap == bestGap && logs[i].LoggedAt.Before(best.LoggedAt)) {
			best, bestGap = &logs[i], gap
		}
	}
	return best
}

// WeightChange is the difference between the two most recent samples.
// Days is zero when fewer than two samples exist.
type WeightChange struct {
	DeltaKg float64 `json:"delta_kg"`
	Days    float64 `json:"days"`
	Samples int     `json:"samples"`
}

// LatestWeightChange diffs the two most recent samples by LoggedAt. The
// input slice is not modified.
func LatestWeightChange(logs []WeightLog) WeightChange {
	if len(logs) < 2 {
		return WeightChange{Samples: len(logs)}
	}
	sorted := make([]WeightLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LoggedAt.After(sorted[j].LoggedAt)
	})
	latest, prior := sorted[0], sorted[1]
	return WeightChange{
		DeltaKg: latest.WeightKg - prior.WeightKg,
		Days:    latest.LoggedAt.Sub(prior.LoggedAt).Hours() / 24,
		Samples: len(logs),
	}
}
