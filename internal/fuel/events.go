package fuel

import (
	"math"

	"backend-raceplanner/internal/athlete"
	"backend-raceplanner/internal/segment"
	"backend-raceplanner/internal/shared/i18n"
	"backend-raceplanner/internal/shared/num"
)

type HydrationStop struct {
	AtKm        float64 `json:"atKm"`
	AtMinute    float64 `json:"atMinute"`
	HydrationMl float64 `json:"hydrationMl"`
	Action      string  `json:"action"`
}

type FuelEvent struct {
	AtKm     float64 `json:"atKm"`
	AtMinute float64 `json:"atMinute"`
	CarbsG   float64 `json:"carbsG"`
	Type     string  `json:"type"`
}

type HydrationPlan struct {
	TotalMl   float64         `json:"totalMl"`
	Guideline string          `json:"guideline"`
	Stops     []HydrationStop `json:"stops"`
}

type NutritionPlan struct {
	TotalCarbsG   float64     `json:"totalCarbsG"`
	TotalCalories float64     `json:"totalCalories"`
	Guideline     string      `json:"guideline"`
	Feeds         []FuelEvent `json:"feeds"`
}

var hydrationEveryMin = map[athlete.Level]float64{
	athlete.Advanced:     18,
	athlete.Intermediate: 20,
	athlete.Beginner:     22,
}

var feedEveryMin = map[athlete.Level]float64{
	athlete.Advanced:     24,
	athlete.Intermediate: 27,
	athlete.Beginner:     30,
}

func interval(table map[athlete.Level]float64, level athlete.Level) float64 {
	if v, ok := table[level]; ok {
		return v
	}
	return table[athlete.Beginner]
}

// ticks returns every multiple of everyMin up to and including totalMin.
func ticks(everyMin, totalMin float64) []float64 {
	var out []float64
	for k := 1; ; k++ {
		m := float64(k) * everyMin
		if m > totalMin+1e-9 {
			return out
		}
		out = append(out, m)
	}
}

// BuildHydration walks the timeline and drinks what is due since the previous
// stop.
func BuildHydration(segments []segment.Segment, level athlete.Level, locale i18n.Locale) HydrationPlan {
	tl := NewTimeline(segments)
	total := 0.0
	for _, s := range segments {
		total += s.HydrationTargetMl
	}

	plan := HydrationPlan{TotalMl: math.Round(total), Stops: []HydrationStop{}}
	plan.Guideline = i18n.Tf(locale, i18n.HydrationGuide, int(math.Round(perHour(total, tl.TotalMinutes()))))

	prev := 0.0
	for _, m := range ticks(interval(hydrationEveryMin, level), tl.TotalMinutes()) {
		_, ml := tl.Due(prev, m)
		ml = math.Round(ml)
		plan.Stops = append(plan.Stops, HydrationStop{
			AtKm:        num.Round2(tl.KmAtMinute(m)),
			AtMinute:    num.Round(m, 1),
			HydrationMl: ml,
			Action:      i18n.Tf(locale, i18n.HydrationStopText, int(ml)),
		})
		prev = m
	}
	return plan
}

// BuildNutrition walks the timeline and feeds the carbs due since the previous
// feed.
func BuildNutrition(segments []segment.Segment, level athlete.Level, locale i18n.Locale) NutritionPlan {
	tl := NewTimeline(segments)
	var carbs, calories float64
	for _, s := range segments {
		carbs += s.CarbTargetG
		calories += s.CaloriesKcal
	}

	plan := NutritionPlan{
		TotalCarbsG:   math.Round(carbs),
		TotalCalories: math.Round(calories),
		Feeds:         []FuelEvent{},
	}
	plan.Guideline = i18n.Tf(locale, i18n.NutritionGuide, int(math.Round(perHour(carbs, tl.TotalMinutes()))))

	prev := 0.0
	for _, m := range ticks(interval(feedEveryMin, level), tl.TotalMinutes()) {
		g, _ := tl.Due(prev, m)
		plan.Feeds = append(plan.Feeds, FuelEvent{
			AtKm:     num.Round2(tl.KmAtMinute(m)),
			AtMinute: num.Round(m, 1),
			CarbsG:   math.Round(g),
			Type:     i18n.T(locale, i18n.FeedType),
		})
		prev = m
	}
	return plan
}

func perHour(total, minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return total / (minutes / 60)
}
