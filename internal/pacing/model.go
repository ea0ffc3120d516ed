package pacing

import (
	"fmt"
	"math"

	"backend-raceplanner/internal/athlete"
	"backend-raceplanner/internal/segment"
	"backend-raceplanner/internal/shared/i18n"
	"backend-raceplanner/internal/shared/num"
)

const (
	minBaselinePace = 2.5
	maxBaselinePace = 15.0

	conservativeStartRatio = 0.12
	latePenaltyFromRatio   = 0.72
	lateBonusFromRatio     = 0.82
)

var levelFactor = map[athlete.Level]float64{
	athlete.Advanced:     0.96,
	athlete.Intermediate: 1.0,
	athlete.Beginner:     1.05,
}

var terrainFactor = map[segment.Terrain]map[athlete.Level]float64{
	segment.Climb:    {athlete.Advanced: 1.14, athlete.Intermediate: 1.18, athlete.Beginner: 1.24},
	segment.Downhill: {athlete.Advanced: 0.9, athlete.Intermediate: 0.93, athlete.Beginner: 0.96},
}

var effortLevelAdjust = map[athlete.Level]float64{
	athlete.Advanced:     0,
	athlete.Intermediate: 0.4,
	athlete.Beginner:     0.8,
}

func lookup(table map[athlete.Level]float64, level athlete.Level, fallback float64) float64 {
	if v, ok := table[level]; ok {
		return v
	}
	return fallback
}

// GradeFactor is piecewise on average grade. Every downhill bucket is faster
// than flat, including very steep descents.
func GradeFactor(gradePct float64) float64 {
	switch {
	case gradePct >= 8:
		return 1.45
	case gradePct >= 6:
		return 1.32
	case gradePct >= 4:
		return 1.22
	case gradePct >= 2:
		return 1.12
	case gradePct <= -6:
		return 0.86
	case gradePct <= -3:
		return 0.92
	case gradePct <= -1:
		return 0.96
	default:
		return 1.0
	}
}

// DistancePenaltyPct grows with ln(distance/10) and shrinks as the endurance
// score rises above 50.
func DistancePenaltyPct(raceDistanceKm, enduranceScore float64) float64 {
	if raceDistanceKm <= 10 {
		return 0
	}
	relief := num.Clamp((enduranceScore-50)/100, 0, 0.45)
	return num.Clamp(4.5*math.Log(raceDistanceKm/10)*(1-relief), 0, 18)
}

// DriftPct is the fatigue accrued at progress on races longer than 18 km.
func DriftPct(raceDistanceKm, progress, enduranceScore float64) float64 {
	if raceDistanceKm <= 18 {
		return 0
	}
	return num.Clamp(progress*3.2*math.Log(raceDistanceKm/18)*(1.3-enduranceScore/100), 0, 10)
}

// TargetPace multiplies the baseline pace by grade, level, terrain, distance,
// drift, phase and weather factors, in that order.
func TargetPace(seg segment.Segment, b athlete.Baseline, raceDistanceKm, progress float64, rc RaceContext) float64 {
	progress = num.Clamp01(progress)
	pace := num.Clamp(b.BaselinePaceMinPerKm, minBaselinePace, maxBaselinePace)

	pace *= GradeFactor(seg.AverageGradePercent)
	pace *= lookup(levelFactor, b.Level, 1)
	pace *= lookup(terrainFactor[seg.Terrain], b.Level, 1)
	pace *= 1 + DistancePenaltyPct(raceDistanceKm, b.EnduranceScore)/100
	pace *= 1 + DriftPct(raceDistanceKm, progress, b.EnduranceScore)/100

	if progress < conservativeStartRatio {
		pace *= 1.03
	}
	if progress > latePenaltyFromRatio {
		decay := num.Clamp(b.EnduranceDecayRatio-1, 0, 0.3)
		pace *= 1 + (progress-latePenaltyFromRatio)/(1-latePenaltyFromRatio)*decay*0.5
	}
	if progress > lateBonusFromRatio && b.SpeedScore-b.EnduranceScore >= 10 {
		pace *= 0.985
	}

	if rc.TemperatureC > 14 {
		pace *= 1 + (rc.TemperatureC-14)*0.004
	}
	if rc.HumidityPct > 55 {
		pace *= 1 + (rc.HumidityPct-55)*0.0012
	}
	return pace
}

// Effort is a 1-10 exertion proxy from the grade bucket, raised for lower
// levels.
func Effort(gradePct float64, level athlete.Level) int {
	base := 6.0
	switch {
	case gradePct >= 6:
		base = 8
	case gradePct >= 3:
		base = 7
	case gradePct <= -3:
		base = 5
	}
	return int(num.Clamp(math.Round(base+lookup(effortLevelAdjust, level, 0.8)), 1, 10))
}

// StrategyNote picks the localized note for the i-th (0-based) of n segments.
func StrategyNote(i, n int, gradePct float64, locale i18n.Locale) string {
	switch {
	case i+1 <= max(1, int(float64(n)*0.15)):
		return i18n.T(locale, i18n.StrategyStart)
	case gradePct >= 5:
		return i18n.T(locale, i18n.StrategyClimb)
	case i >= int(float64(n)*0.75) && gradePct <= 1.5:
		return i18n.T(locale, i18n.StrategyPush)
	default:
		return i18n.T(locale, i18n.StrategySteady)
	}
}

// Apply fills pace, duration, effort and strategy on every segment. Progress
// of a segment is its midpoint over the race distance.
func Apply(segments []segment.Segment, b athlete.Baseline, raceDistanceKm float64, rc RaceContext, locale i18n.Locale) []segment.Segment {
	out := make([]segment.Segment, len(segments))
	for i, s := range segments {
		progress := 0.0
		if raceDistanceKm > 0 {
			progress = (s.StartKm + s.EndKm) / 2 / raceDistanceKm
		}
		s.TargetPaceMinPerKm = TargetPace(s, b, raceDistanceKm, progress, rc)
		s.TargetPaceLabel = FormatPace(s.TargetPaceMinPerKm)
		s.EstimatedDurationMin = s.TargetPaceMinPerKm * s.DistanceKm
		s.EffortScore = Effort(s.AverageGradePercent, b.Level)
		s.StrategyNote = StrategyNote(i, len(segments), s.AverageGradePercent, locale)
		out[i] = s
	}
	return out
}

// FormatPace renders minutes per km as "m:ss/km".
func FormatPace(paceMinPerKm float64) string {
	if !num.Finite(paceMinPerKm) || paceMinPerKm <= 0 {
		return "0:00/km"
	}
	totalSec := int(math.Round(paceMinPerKm * 60))
	return fmt.Sprintf("%d:%02d/km", totalSec/60, totalSec%60)
}
