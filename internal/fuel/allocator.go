// Package fuel allocates energy, carbohydrate and fluid per segment and lays
// out hydration and feeding events on the race-minute timeline.
package fuel

import (
	"math"

	"backend-raceplanner/internal/athlete"
	"backend-raceplanner/internal/pacing"
	"backend-raceplanner/internal/segment"
	"backend-raceplanner/internal/shared/num"
)

var terrainMET = map[segment.Terrain]float64{
	segment.Downhill: 8.2,
	segment.Flat:     9.5,
	segment.Climb:    10.8,
}

var carbCapPerHour = map[athlete.Level]float64{
	athlete.Beginner:     60,
	athlete.Intermediate: 75,
	athlete.Advanced:     90,
}

const (
	kcalPerGramCarb  = 4.0
	carbTargetShare  = 0.82
	minHydrationRate = 450.0
	maxHydrationRate = 1250.0
)

// MET for a segment, clamped to [6.5,16].
func MET(terrain segment.Terrain, effort int) float64 {
	base, ok := terrainMET[terrain]
	if !ok {
		base = terrainMET[segment.Flat]
	}
	return num.Clamp(base+0.35*float64(effort-5), 6.5, 16)
}

// WeatherEnergyFactor adds 0.35% energy cost per degree above 16 C.
func WeatherEnergyFactor(rc pacing.RaceContext) float64 {
	return 1 + math.Max(0, rc.TemperatureC-16)*0.0035
}

// CarbOxidationRatio is the carbohydrate share of energy, 0.45 at effort 1 to
// 0.80 at effort 10.
func CarbOxidationRatio(effort int) float64 {
	e := num.Clamp(float64(effort), 1, 10)
	return 0.45 + (e-1)/9*0.35
}

// HydrationRate in ml/h, clamped to [450,1250].
func HydrationRate(effort int, gainPerKm float64, rc pacing.RaceContext) float64 {
	rate := 420 +
		float64(effort-5)*35 +
		math.Min(160, math.Max(0, gainPerKm)*2) +
		math.Max(0, rc.TemperatureC-14)*18 +
		math.Max(0, rc.HumidityPct-50)*2.5
	return num.Clamp(rate, minHydrationRate, maxHydrationRate)
}

// Allocate fills energy, carbs, hydration and the minute window of every
// paced segment. The minute cursor advances in segment order.
func Allocate(segments []segment.Segment, b athlete.Baseline, rc pacing.RaceContext) []segment.Segment {
	capPerHour, ok := carbCapPerHour[b.Level]
	if !ok {
		capPerHour = carbCapPerHour[athlete.Beginner]
	}
	weatherEnergy := WeatherEnergyFactor(rc)

	out := make([]segment.Segment, len(segments))
	cursor := 0.0
	for i, s := range segments {
		minutes := math.Max(0, s.EstimatedDurationMin)
		hours := minutes / 60
		gainPerKm := 0.0
		if s.DistanceKm > 0 {
			gainPerKm = s.ElevationGainM / s.DistanceKm
		}

		s.CaloriesKcal = MET(s.Terrain, s.EffortScore) * b.EstimatedWeightKg * hours * weatherEnergy
		carbBurn := s.CaloriesKcal * CarbOxidationRatio(s.EffortScore) / kcalPerGramCarb
		s.CarbTargetG = math.Min(carbBurn*carbTargetShare, capPerHour*hours)
		s.HydrationRateMlPerHour = HydrationRate(s.EffortScore, gainPerKm, rc)
		s.HydrationTargetMl = s.HydrationRateMlPerHour * hours

		s.StartMinute = cursor
		cursor += minutes
		s.EndMinute = cursor
		out[i] = s
	}
	return out
}
