package nutrition

import "time"

// SignalInput is everything needed to recompute a user's adaptive signal.
type SignalInput struct {
	Goal          Goal
	TDEE          int
	ProteinTarget float64
	Meals         []LoggedMeal // at least the last LongWindowDays of logs
	Weights       []WeightLog  // at least the two most recent samples
	Now           time.Time
}

// AdaptiveSignal is the per-user dashboard record. It is a cache of this
// package's pure functions over recent logs and can always be rebuilt.
type AdaptiveSignal struct {
	Consistency7d        int            `json:"consistency_7d"`
	Consistency28d       int            `json:"consistency_28d"`
	AvgCalories7d        float64        `json:"avg_calories_7d"`
	AvgProtein7d         float64        `json:"avg_protein_7d"`
	WeeklyRateKg         float64        `json:"weekly_rate_kg"`
	CalorieDeltaFromTDEE float64        `json:"calorie_delta_from_tdee"`
	ProteinAdequacyRatio float64        `json:"protein_adequacy_ratio"`
	Classification       Classification `json:"classification"`
	Confidence           int            `json:"confidence"`
	Summary              string         `json:"summary"`
	ComputedAt           time.Time      `json:"computed_at"`
}

// ComputeAdaptiveSignal runs the adherence aggregator and the progress
// classifier. Without any logged day in the short window the intake signals
// are unknown: the calorie delta and protein ratio are left at zero rather
// than reporting a deficit equal to the whole TDEE, and the classifier is
// told not to read them.
func ComputeAdaptiveSignal(in SignalInput) AdaptiveSignal {
	adh := ComputeAdherence(in.Meals, in.Now)
	change := LatestWeightChange(in.Weights)

	intakeKnown := adh.LoggedDays7d > 0
	var calorieDelta, proteinRatio float64
	if intakeKnown {
		calorieDelta = round1(adh.AvgCalories7d - float64(in.TDEE))
		proteinRatio = ProteinAdequacy(adh.AvgProtein7d, in.ProteinTarget)
	}

	p := ClassifyProgress(ProgressInput{
		Goal:                 in.Goal,
		WeightDeltaKg:        change.DeltaKg,
		DaysBetweenLogs:      change.Days,
		CalorieDeltaFromTDEE: calorieDelta,
		ProteinAdequacyRatio: proteinRatio,
		Consistency7d:        adh.Consistency7d,
		IntakeKnown:          intakeKnown,
	})

	return AdaptiveSignal{
		Consistency7d:        adh.Consistency7d,
		Consistency28d:       adh.Consistency28d,
		AvgCalories7d:        adh.AvgCalories7d,
		AvgProtein7d:         adh.AvgProtein7d,
		WeeklyRateKg:         p.WeeklyRateKg,
		CalorieDeltaFromTDEE: calorieDelta,
		ProteinAdequacyRatio: proteinRatio,
		Classification:       p.Classification,
		Confidence:           p.Confidence,
		Summary:              p.Summary,
		ComputedAt:           in.Now,
	}
}
