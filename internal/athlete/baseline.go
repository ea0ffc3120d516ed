// Package athlete derives a per-athlete training baseline from activity
// history.
package athlete

import (
	"fmt"
	"math"

	"backend-raceplanner/internal/activity"
	"backend-raceplanner/internal/shared/num"
)

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

type RunnerType string

const (
	Endurance RunnerType = "endurance"
	Speed     RunnerType = "speed"
	Balanced  RunnerType = "balanced"
)

// Baseline is recomputed for every plan and never persisted.
type Baseline struct {
	Level                 Level      `json:"level"`
	BaselinePaceMinPerKm  float64    `json:"baselinePaceMinPerKm"`
	WeeklyDistanceKm      float64    `json:"weeklyDistanceKm"`
	WeeklyElevationGainM  float64    `json:"weeklyElevationGainM"`
	ShortPaceMinPerKm     float64    `json:"shortPaceMinPerKm"`
	LongPaceMinPerKm      float64    `json:"longPaceMinPerKm"`
	EnduranceScore        float64    `json:"enduranceScore"`
	SpeedScore            float64    `json:"speedScore"`
	EnduranceDecayRatio   float64    `json:"enduranceDecayRatio"`
	RunnerType            RunnerType `json:"runnerType"`
	EstimatedWeightKg     float64    `json:"estimatedWeightKg"`
	ActivitiesSampleCount int        `json:"activitiesSampleCount"`
}

const (
	shortRunMaxKm      = 12.0
	longRunMinKm       = 22.0
	enduranceRunMinKm  = 18.0
	defaultDecayRatio  = 1.07
	runnerTypeMargin   = 12.0
	minUserWeightKg    = 40.0
	maxUserWeightKg    = 130.0
	minEstimatedWeight = 52.0
	maxEstimatedWeight = 92.0
)

// Defaults is the baseline used when the athlete has no usable history.
func Defaults(weightKg *float64) Baseline {
	b := Baseline{
		Level:                Beginner,
		BaselinePaceMinPerKm: 6.5,
		WeeklyDistanceKm:     20,
		WeeklyElevationGainM: 250,
		ShortPaceMinPerKm:    6.5,
		LongPaceMinPerKm:     6.5 * defaultDecayRatio,
		EnduranceDecayRatio:  defaultDecayRatio,
		EnduranceScore:       30,
		SpeedScore:           30,
		RunnerType:           Balanced,
	}
	b.EstimatedWeightKg = resolveWeight(weightKg, b)
	return b
}

// Estimate builds a baseline from activities. Activities without positive
// distance and moving time are ignored; with none left it returns Defaults.
func Estimate(activities []activity.Activity, weightKg *float64) Baseline {
	valid := make([]activity.Activity, 0, len(activities))
	paces := make([]float64, 0, len(activities))
	for _, a := range activities {
		if !num.Finite(a.DistanceM) || !num.Finite(a.MovingTimeSec) || a.DistanceM <= 0 || a.MovingTimeSec <= 0 {
			continue
		}
		valid = append(valid, a)
		paces = append(paces, paceOf(a))
	}
	if len(valid) == 0 {
		return Defaults(weightKg)
	}

	weeklyDistance, weeklyElevation := weeklyMedians(valid)
	baselinePace := num.Median(paces)

	var shortPaces, longPaces []float64
	enduranceRuns := 0
	for _, a := range valid {
		km := a.DistanceM / 1000
		if km <= shortRunMaxKm {
			shortPaces = append(shortPaces, paceOf(a))
		}
		if km >= longRunMinKm {
			longPaces = append(longPaces, paceOf(a))
		}
		if km >= enduranceRunMinKm {
			enduranceRuns++
		}
	}
	shortPace := baselinePace
	if len(shortPaces) > 0 {
		shortPace = num.Median(shortPaces)
	}
	longPace := baselinePace * defaultDecayRatio
	if len(longPaces) > 0 {
		longPace = num.Median(longPaces)
	}
	decay := longPace / shortPace

	b := Baseline{
		Level:                 classify(weeklyDistance, baselinePace),
		BaselinePaceMinPerKm:  baselinePace,
		WeeklyDistanceKm:      weeklyDistance,
		WeeklyElevationGainM:  weeklyElevation,
		ShortPaceMinPerKm:     shortPace,
		LongPaceMinPerKm:      longPace,
		EnduranceDecayRatio:   decay,
		EnduranceScore:        enduranceScore(weeklyDistance, decay, enduranceRuns),
		SpeedScore:            speedScore(baselinePace, shortPace),
		ActivitiesSampleCount: len(valid),
	}
	b.RunnerType = runnerType(b.EnduranceScore, b.SpeedScore)
	b.EstimatedWeightKg = resolveWeight(weightKg, b)
	return b
}

func paceOf(a activity.Activity) float64 {
	return (a.MovingTimeSec / 60) / (a.DistanceM / 1000)
}

// weeklyMedians groups activities by ISO-8601 week and returns the median
// per-week distance (km) and elevation gain (m).
func weeklyMedians(activities []activity.Activity) (float64, float64) {
	distanceByWeek := map[string]float64{}
	elevationByWeek := map[string]float64{}
	var order []string
	for _, a := range activities {
		year, week := a.StartDate.UTC().ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		if _, ok := distanceByWeek[key]; !ok {
			order = append(order, key)
		}
		distanceByWeek[key] += a.DistanceM / 1000
		elevationByWeek[key] += math.Max(0, a.TotalElevationGainM)
	}

	distances := make([]float64, 0, len(order))
	elevations := make([]float64, 0, len(order))
	for _, key := range order {
		distances = append(distances, distanceByWeek[key])
		elevations = append(elevations, elevationByWeek[key])
	}
	return num.Median(distances), num.Median(elevations)
}

func classify(weeklyKm, paceMinPerKm float64) Level {
	switch {
	case weeklyKm >= 60 || paceMinPerKm <= 4.9:
		return Advanced
	case weeklyKm >= 30 || paceMinPerKm <= 5.8:
		return Intermediate
	default:
		return Beginner
	}
}

func enduranceScore(weeklyKm, decay float64, longRuns int) float64 {
	volume := num.Clamp(weeklyKm/80*100, 0, 100)
	decayQuality := num.Clamp((1.25-decay)/0.25*100, 0, 100)
	longRunScore := num.Clamp(float64(longRuns)/8*100, 0, 100)
	return num.Clamp(volume*0.5+decayQuality*0.35+longRunScore*0.15, 0, 100)
}

// speedScore grows with the reserve between everyday pace and short-effort pace.
func speedScore(baselinePace, shortPace float64) float64 {
	if shortPace <= 0 {
		return 50
	}
	return num.Clamp(50+(baselinePace/shortPace-1)*500, 0, 100)
}

func runnerType(endurance, speed float64) RunnerType {
	switch {
	case endurance-speed >= runnerTypeMargin:
		return Endurance
	case speed-endurance >= runnerTypeMargin:
		return Speed
	default:
		return Balanced
	}
}

var baseWeightKg = map[Level]float64{
	Advanced:     68,
	Intermediate: 72,
	Beginner:     76,
}

// resolveWeight prefers a plausible user value, otherwise estimates from level,
// volume and pace.
func resolveWeight(weightKg *float64, b Baseline) float64 {
	if weightKg != nil && num.Finite(*weightKg) && *weightKg >= minUserWeightKg && *weightKg <= maxUserWeightKg {
		return *weightKg
	}
	estimate := baseWeightKg[b.Level] - (b.WeeklyDistanceKm-30)*0.06 + (b.BaselinePaceMinPerKm-5.5)*1.8
	return num.Clamp(estimate, minEstimatedWeight, maxEstimatedWeight)
}

// Rounded returns the display copy of b.
func (b Baseline) Rounded() Baseline {
	b.BaselinePaceMinPerKm = num.Round2(b.BaselinePaceMinPerKm)
	b.WeeklyDistanceKm = num.Round2(b.WeeklyDistanceKm)
	b.WeeklyElevationGainM = math.Round(b.WeeklyElevationGainM)
	b.ShortPaceMinPerKm = num.Round2(b.ShortPaceMinPerKm)
	b.LongPaceMinPerKm = num.Round2(b.LongPaceMinPerKm)
	b.EnduranceScore = math.Round(b.EnduranceScore)
	b.SpeedScore = math.Round(b.SpeedScore)
	b.EnduranceDecayRatio = num.Round(b.EnduranceDecayRatio, 3)
	b.EstimatedWeightKg = num.Round(b.EstimatedWeightKg, 1)
	return b
}
