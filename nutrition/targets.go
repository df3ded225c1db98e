package nutrition

import "math"

// Goal is the user's body-composition goal.
type Goal string

const (
	GoalCut      Goal = "cut"
	GoalMaintain Goal = "maintain"
	GoalBulk     Goal = "bulk"
)

// Valid reports whether g is a known goal.
func (g Goal) Valid() bool {
	switch g {
	case GoalCut, GoalMaintain, GoalBulk:
		return true
	}
	return false
}

// ExperienceLevel is the user's training experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceElite        ExperienceLevel = "elite"
)

// Valid reports whether e is a known experience level.
func (e ExperienceLevel) Valid() bool {
	_, ok := proteinPerKg[e]
	return ok
}

// proteinPerKg grows with training experience.
var proteinPerKg = map[ExperienceLevel]float64{
	ExperienceBeginner:     1.6,
	ExperienceIntermediate: 1.9,
	ExperienceElite:        2.2,
}

// fatFloorPerKg is lowest while cutting.
var fatFloorPerKg = map[Goal]float64{
	GoalCut:      0.7,
	GoalMaintain: 0.8,
	GoalBulk:     0.9,
}

const (
	baseFiberTarget = 30
	cutFiberTarget  = 32
)

// Daily calorie adjustments away from maintenance. 500 kcal/day is roughly
// 0.45 kg of fat a week.
const (
	cutDeficitKcal  = 500
	bulkSurplusKcal = 300
)

// GoalCalories turns maintenance energy into the day's calorie target for a
// goal. A cut never drops the target below BMR.
func GoalCalories(e Energy, goal Goal) float64 {
	tdee := float64(e.TDEE)
	switch goal {
	case GoalCut:
		return math.Max(tdee-cutDeficitKcal, float64(e.BMR))
	case GoalBulk:
		return tdee + bulkSurplusKcal
	}
	return tdee
}

// TargetInput is what DeriveTargets needs. Unknown goals are treated as
// maintain and unknown experience levels as beginner.
type TargetInput struct {
	Calories        float64         `json:"calories"`
	WeightKg        float64         `json:"weight_kg"`
	Goal            Goal            `json:"goal"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
}

// DeriveTargets turns a calorie target into gram targets. Protein and fat are
// set per kg of bodyweight and carbohydrate takes whatever calories remain,
// floored at zero when protein and fat already use the whole budget.
func DeriveTargets(in TargetInput) MacroVector {
	ppk, ok := proteinPerKg[in.ExperienceLevel]
	if !ok {
		ppk = proteinPerKg[ExperienceBeginner]
	}
	fpk, ok := fatFloorPerKg[in.Goal]
	if !ok {
		fpk = fatFloorPerKg[GoalMaintain]
	}

	protein := math.Round(in.WeightKg * ppk)
	fats := math.Round(in.WeightKg * fpk)
	carbs := math.Max(0, math.Round((in.Calories-protein*4-fats*9)/4))

	fiber := float64(baseFiberTarget)
	if in.Goal == GoalCut {
		fiber = cutFiberTarget
	}

	return MacroVector{
		Calories: math.Round(in.Calories),
		Protein:  protein,
		Carbs:    carbs,
		Fats:     fats,
		Fiber:    fiber,
	}
}

// SplitPerMeal divides a daily target across mealsPerDay meals, each field
// rounded to one decimal. mealsPerDay below 1 is treated as 1.
func SplitPerMeal(daily MacroVector, mealsPerDay int) MacroVector {
	if mealsPerDay < 1 {
		mealsPerDay = 1
	}
	return daily.Scale(1 / float64(mealsPerDay)).Rounded()
}
