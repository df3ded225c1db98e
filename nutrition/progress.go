package nutrition

import (
	"fmt"
	"math"
)

// Classification is the inferred body-composition trend.
type Classification string

const (
	InsufficientData Classification = "insufficient_data"
	MuscleGainLikely Classification = "muscle_gain_likely"
	FatGainLikely    Classification = "fat_gain_likely"
	MixedGain        Classification = "mixed_gain"
	FatLossLikely    Classification = "fat_loss_likely"
	MuscleLossRisk   Classification = "muscle_loss_risk"
	Stable           Classification = "stable"
)

// Thresholds of the decision policy. These are heuristics, tuned to err
// toward insufficient data or low confidence.
const (
	minSamplingDays        = 3.0   // fewer days between weigh-ins cannot yield a rate
	stableBandKg           = 0.1   // |kg/week| at or below this is stable for any goal
	fastLossKgPerWeek      = 0.75  // loss at or beyond this pace is "fast"
	proteinAdequateRatio   = 1.0   // at or above target
	proteinLowRatio        = 0.8   // materially below target
	calorieNeutralBand     = 150.0 // kcal/day around TDEE read as maintenance
	insufficientConfidence = 10
	confidenceBase         = 35.0
	confidenceDaysCap      = 14.0
	confidenceDaysWeight   = 25.0
	confidenceAdherenceW   = 25.0
	agreementBonus         = 20.0
	disagreementPenalty    = 25.0
)

// ProgressInput carries the signals the classifier blends.
type ProgressInput struct {
	Goal                 Goal    `json:"goal"`
	WeightDeltaKg        float64 `json:"weight_delta_kg"`
	DaysBetweenLogs      float64 `json:"days_between_logs"`
	CalorieDeltaFromTDEE float64 `json:"calorie_delta_from_tdee"`
	ProteinAdequacyRatio float64 `json:"protein_adequacy_ratio"`
	Consistency7d        int     `json:"consistency_7d"`
	// IntakeKnown is false when no meal was logged in the short window. The
	// calorie delta and protein ratio are then placeholders and are ignored.
	IntakeKnown          bool    `json:"intake_known"`
}

// Progress is the classifier's verdict.
type Progress struct {
	Classification Classification `json:"classification"`
	WeeklyRateKg   float64        `json:"weekly_rate_kg"`
	Confidence     int            `json:"confidence"`
	Summary        string         `json:"summary"`
}

// ClassifyProgress classifies the weight trend, corroborates it with the
// calorie and protein signals, then blends a confidence score from sampling
// span, logging adherence and signal agreement.
func ClassifyProgress(in ProgressInput) Progress {
	if !isPositive(in.DaysBetweenLogs) || in.DaysBetweenLogs < minSamplingDays {
		return Progress{
			Classification: InsufficientData,
			Confidence:     insufficientConfidence,
			Summary:        "Not enough weigh-ins yet. Log your weight a few days apart to see a trend.",
		}
	}

	rate := in.WeightDeltaKg / in.DaysBetweenLogs * 7
	weightDir := direction(rate, stableBandKg)
	calorieDir := direction(in.CalorieDeltaFromTDEE, calorieNeutralBand)

	var class Classification
	switch weightDir {
	case 0:
		class = Stable
	case 1:
		switch {
		case !in.IntakeKnown:
			// Nothing to corroborate the gain with.
			class = MixedGain
		case in.ProteinAdequacyRatio >= proteinAdequateRatio:
			class = MuscleGainLikely
		case in.ProteinAdequacyRatio >= proteinLowRatio:
			class = MixedGain
		case calorieDir > 0:
			class = FatGainLikely
		default:
			// Low protein but no surplus to explain the gain: not enough to call fat gain.
			class = MixedGain
		}
	default:
		if in.IntakeKnown && in.Goal == GoalCut && rate <= -fastLossKgPerWeek && in.ProteinAdequacyRatio < proteinLowRatio {
			class = MuscleLossRisk
		} else {
			class = FatLossLikely
		}
	}

	days := math.Min(in.DaysBetweenLogs, confidenceDaysCap)
	adherence := math.Max(0, math.Min(float64(in.Consistency7d), 100))
	score := confidenceBase +
		confidenceDaysWeight*days/confidenceDaysCap +
		confidenceAdherenceW*adherence/100

	agree := in.IntakeKnown && weightDir == calorieDir
	disagree := in.IntakeKnown && weightDir != 0 && calorieDir != 0 && weightDir != calorieDir
	switch {
	case agree:
		score += agreementBonus
	case disagree:
		score -= disagreementPenalty
	}

	return Progress{
		Classification: class,
		WeeklyRateKg:   round2(rate),
		Confidence:     int(math.Round(math.Max(0, math.Min(score, 100)))),
		Summary:        summarize(class, rate, disagree, in.IntakeKnown),
	}
}

// ProteinAdequacy is average protein intake over target protein. A missing
// target yields 0.
func ProteinAdequacy(avgProtein, targetProtein float64) float64 {
	if !isPositive(targetProtein) || !isPositive(avgProtein) {
		return 0
	}
	return round2(avgProtein / targetProtein)
}

func direction(v, band float64) int {
	switch {
	case v > band:
		return 1
	case v < -band:
		return -1
	default:
		return 0
	}
}

var classificationSummaries = map[Classification]string{
	MuscleGainLikely: "Gaining %.2f kg/week with protein on target: muscle gain likely.",
	FatGainLikely:    "Gaining %.2f kg/week in a calorie surplus with low protein: fat gain likely.",
	MixedGain:        "Gaining %.2f kg/week: likely a mix of muscle and fat.",
	FatLossLikely:    "Losing %.2f kg/week: fat loss likely.",
	MuscleLossRisk:   "Losing %.2f kg/week with protein below target: risk of muscle loss. Raise protein or slow the cut.",
	Stable:           "Weight steady (%.2f kg/week).",
}

func summarize(class Classification, rate float64, disagree, intakeKnown bool) string {
	s := fmt.Sprintf(classificationSummaries[class], math.Abs(rate))
	if !intakeKnown {
		s += " No meals logged this week, so intake was not taken into account."
	}
	if disagree {
		s += " Weight trend and logged calories disagree, so check your logging."
	}
	return s
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
