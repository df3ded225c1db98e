package nutrition

import (
	"math"
	"time"
)

const (
	ShortWindowDays = 7
	LongWindowDays  = 28
)

// LoggedMeal is the slice of a meal log the adherence aggregator reads.
type LoggedMeal struct {
	LoggedAt time.Time   `json:"logged_at"`
	Totals   MacroVector `json:"totals"`
}

// Adherence summarizes logging behaviour over the rolling windows.
type Adherence struct {
	Consistency7d  int     `json:"consistency_7d"`
	Consistency28d int     `json:"consistency_28d"`
	LoggedDays7d   int     `json:"logged_days_7d"`
	LoggedDays28d  int     `json:"logged_days_28d"`
	AvgCalories7d  float64 `json:"avg_calories_7d"`
	AvgProtein7d   float64 `json:"avg_protein_7d"`
	AvgCalories28d float64 `json:"avg_calories_28d"`
	AvgProtein28d  float64 `json:"avg_protein_28d"`
}

// ComputeAdherence partitions logs into the 7- and 28-day windows ending on
// now's calendar day (in now's location). Consistency counts distinct
// logging days, not logs. Averages divide by the full window length so days
// without logs pull the average down. Logs after now are ignored.
func ComputeAdherence(logs []LoggedMeal, now time.Time) Adherence {
	days7 := map[int]bool{}
	days28 := map[int]bool{}
	var sum7, sum28 MacroVector

	today := civilDay(now, now.Location())
	for _, l := range logs {
		if l.LoggedAt.After(now) {
			continue
		}
		age := today - civilDay(l.LoggedAt, now.Location())
		if age < 0 || age >= LongWindowDays {
			continue
		}
		days28[age] = true
		sum28 = sum28.Add(l.Totals)
		if age < ShortWindowDays {
			days7[age] = true
			sum7 = sum7.Add(l.Totals)
		}
	}

	return Adherence{
		Consistency7d:  consistencyPercent(len(days7), ShortWindowDays),
		Consistency28d: consistencyPercent(len(days28), LongWindowDays),
		LoggedDays7d:   len(days7),
		LoggedDays28d:  len(days28),
		AvgCalories7d:  round1(sum7.Calories / ShortWindowDays),
		AvgProtein7d:   round1(sum7.Protein / ShortWindowDays),
		AvgCalories28d: round1(sum28.Calories / LongWindowDays),
		AvgProtein28d:  round1(sum28.Protein / LongWindowDays),
	}
}

func consistencyPercent(days, windowDays int) int {
	return int(math.Round(float64(days) / float64(windowDays) * 100))
}

// civilDay numbers calendar days in loc. Going through a UTC midnight keeps
// DST transitions from producing 23- or 25-hour days.
func civilDay(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
