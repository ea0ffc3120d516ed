// Package segment splits a course profile into contiguous, terrain-homogeneous
// segments.
package segment

import (
	"math"

	"backend-raceplanner/internal/course"
	"backend-raceplanner/internal/shared/num"
)

type Terrain string

const (
	Climb    Terrain = "climb"
	Flat     Terrain = "flat"
	Downhill Terrain = "downhill"
)

const (
	climbGradePct    = 2.8
	downhillGradePct = -2.0
	maxGradePct      = 60.0
)

// Classify maps an average grade (percent) to a terrain class.
func Classify(gradePct float64) Terrain {
	switch {
	case gradePct >= climbGradePct:
		return Climb
	case gradePct <= downhillGradePct:
		return Downhill
	default:
		return Flat
	}
}

// Grade returns the net grade in percent over distanceKm, clamped to
// +-maxGradePct. Empty windows are flat.
func Grade(gainM, lossM, distanceKm float64) float64 {
	if !(distanceKm > 0) {
		return 0
	}
	grade := (gainM - lossM) / (distanceKm * 1000) * 100
	if !num.Finite(grade) {
		return 0
	}
	return num.Clamp(grade, -maxGradePct, maxGradePct)
}

// Segment is one leg of the plan. Builder fills the geometry; pacing and fuel
// allocation fill the rest in order.
type Segment struct {
	Index               int     `json:"index"`
	StartKm             float64 `json:"startKm"`
	EndKm               float64 `json:"endKm"`
	DistanceKm          float64 `json:"distanceKm"`
	ElevationGainM      float64 `json:"elevationGainM"`
	ElevationLossM      float64 `json:"elevationLossM"`
	AverageGradePercent float64 `json:"averageGradePercent"`
	Terrain             Terrain `json:"terrain"`

	TargetPaceMinPerKm   float64 `json:"targetPaceMinPerKm"`
	TargetPaceLabel      string  `json:"targetPaceLabel"`
	EstimatedDurationMin float64 `json:"estimatedDurationMin"`
	EffortScore          int     `json:"effortScore"`
	StrategyNote         string  `json:"strategyNote"`

	CaloriesKcal           float64 `json:"caloriesKcal"`
	CarbTargetG            float64 `json:"carbTargetG"`
	HydrationTargetMl      float64 `json:"hydrationTargetMl"`
	HydrationRateMlPerHour float64 `json:"hydrationRateMlPerHour"`
	StartMinute            float64 `json:"startMinute"`
	EndMinute              float64 `json:"endMinute"`
}

// Rounded returns the display copy of s. Calculations keep full precision.
func (s Segment) Rounded() Segment {
	s.StartKm = num.Round2(s.StartKm)
	s.EndKm = num.Round2(s.EndKm)
	s.DistanceKm = num.Round2(s.DistanceKm)
	s.ElevationGainM = math.Round(s.ElevationGainM)
	s.ElevationLossM = math.Round(s.ElevationLossM)
	s.AverageGradePercent = num.Round2(s.AverageGradePercent)
	s.TargetPaceMinPerKm = num.Round2(s.TargetPaceMinPerKm)
	s.EstimatedDurationMin = num.Round(s.EstimatedDurationMin, 1)
	s.CaloriesKcal = math.Round(s.CaloriesKcal)
	s.CarbTargetG = math.Round(s.CarbTargetG)
	s.HydrationTargetMl = math.Round(s.HydrationTargetMl)
	s.HydrationRateMlPerHour = math.Round(s.HydrationRateMlPerHour)
	s.StartMinute = num.Round(s.StartMinute, 1)
	s.EndMinute = num.Round(s.EndMinute, 1)
	return s
}

// Builder lays out segments. Terrain is only consulted for profiles without a
// track.
type Builder struct {
	Terrain TerrainSynthesizer
}

func NewBuilder() Builder {
	return Builder{Terrain: PlaceholderTerrain{}}
}

// Build runs a single ordered pass: each segment starts where the previous one
// ended, and the last one ends at the profile distance.
func (b Builder) Build(profile course.Profile) []Segment {
	var bounds []Bounds
	var synthGain, synthLoss []float64
	if profile.HasTrack() {
		bounds = TrackBounds(profile)
	} else {
		bounds = DistanceBounds(profile.DistanceKm, profile.ElevationGainM)
		synth := b.Terrain
		if synth == nil {
			synth = PlaceholderTerrain{}
		}
		synthGain, synthLoss = synth.Allocate(bounds, profile.ElevationGainM)
	}

	segments := make([]Segment, 0, len(bounds))
	for i, bound := range bounds {
		distanceKm := math.Max(0, bound.EndKm-bound.StartKm)
		var gainM, lossM float64
		if profile.HasTrack() {
			gainM, lossM = profile.ElevationStats(bound.StartKm, bound.EndKm)
		} else {
			gainM, lossM = valueAt(synthGain, i), valueAt(synthLoss, i)
		}
		grade := Grade(gainM, lossM, distanceKm)
		segments = append(segments, Segment{
			Index:               i + 1,
			StartKm:             bound.StartKm,
			EndKm:               bound.EndKm,
			DistanceKm:          distanceKm,
			ElevationGainM:      gainM,
			ElevationLossM:      lossM,
			AverageGradePercent: grade,
			Terrain:             Classify(grade),
		})
	}
	return segments
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) && num.Finite(values[i]) {
		return math.Max(0, values[i])
	}
	return 0
}
