package segment

import (
	"math"

	"backend-raceplanner/internal/course"
	"backend-raceplanner/internal/shared/num"
)

// Bounds is a [StartKm, EndKm] window on the course.
type Bounds struct {
	StartKm float64
	EndKm   float64
}

const (
	minSegmentKm    = 0.9
	probeKm         = 0.7
	stepKm          = 0.35
	minProbeKm      = 0.2
	tailToleranceKm = 0.05
	minBoundKm      = 0.05
	ruggedGainPerKm = 55.0
)

var wave = []float64{0.78, 1.22, 0.92, 1.35, 0.86, 1.12}

func maxTrackSegmentKm(totalKm float64) float64 {
	switch {
	case totalKm <= 20:
		return 2.1
	case totalKm <= 45:
		return 2.8
	default:
		return 3.6
	}
}

func averageSegmentKm(totalKm float64) float64 {
	switch {
	case totalKm <= 20:
		return 1.8
	case totalKm <= 45:
		return 2.5
	default:
		return 3.2
	}
}

// probeTerrain classifies the window of probeKm starting at fromKm.
func probeTerrain(profile course.Profile, fromKm float64) Terrain {
	totalKm := profile.DistanceKm
	gain, loss := profile.ElevationStats(fromKm, math.Min(totalKm, fromKm+probeKm))
	windowKm := math.Max(minProbeKm, math.Min(totalKm-fromKm, probeKm))
	return Classify(Grade(gain, loss, windowKm))
}

// TrackBounds grows each segment in steps while the forward probe keeps the
// terrain class of the segment's start, up to a distance-dependent maximum.
func TrackBounds(profile course.Profile) []Bounds {
	totalKm := profile.DistanceKm
	maxKm := maxTrackSegmentKm(totalKm)

	var bounds []Bounds
	startKm := 0.0
	for startKm < totalKm-tailToleranceKm {
		base := probeTerrain(profile, startKm)
		endKm := math.Min(totalKm, startKm+minSegmentKm)
		for endKm < totalKm {
			lengthKm := endKm - startKm
			if lengthKm >= minSegmentKm && probeTerrain(profile, endKm) != base {
				break
			}
			if lengthKm >= maxKm {
				break
			}
			endKm = math.Min(totalKm, endKm+stepKm)
		}
		// a remainder shorter than one step joins the current segment
		if totalKm-endKm < stepKm {
			endKm = totalKm
		}
		bounds = append(bounds, Bounds{StartKm: num.Round2(startKm), EndKm: num.Round2(endKm)})
		startKm = endKm
	}
	return normalize(bounds, totalKm)
}

// DistanceBounds lays out segments without a track: an average length scaled
// by a fixed wave and by ruggedness (gain per km against a 55 m/km reference).
func DistanceBounds(totalKm, elevationGainM float64) []Bounds {
	avgKm := averageSegmentKm(totalKm)
	ruggedness := 0.0
	if totalKm > 0 {
		ruggedness = num.Clamp01(elevationGainM / totalKm / ruggedGainPerKm)
	}
	amplitude := 1 + ruggedness*0.35

	var bounds []Bounds
	cursor := 0.0
	for i := 0; cursor < totalKm-tailToleranceKm; i++ {
		next := math.Min(totalKm, cursor+avgKm*wave[i%len(wave)]*amplitude)
		if totalKm-next < stepKm {
			next = totalKm
		}
		bounds = append(bounds, Bounds{StartKm: num.Round2(cursor), EndKm: num.Round2(next)})
		cursor = next
	}
	return normalize(bounds, totalKm)
}

// normalize makes bounds contiguous on a 2-decimal grid and pins the last end
// to the total distance.
func normalize(bounds []Bounds, totalKm float64) []Bounds {
	end := num.Round2(totalKm)
	if end <= 0 {
		return []Bounds{{StartKm: 0, EndKm: totalKm}}
	}
	if len(bounds) == 0 {
		return []Bounds{{StartKm: 0, EndKm: end}}
	}

	out := make([]Bounds, 0, len(bounds))
	cursor := 0.0
	for _, b := range bounds {
		start := num.Round2(math.Max(cursor, b.StartKm))
		stop := num.Round2(math.Max(start+minBoundKm, b.EndKm))
		out = append(out, Bounds{StartKm: start, EndKm: math.Min(stop, end)})
		cursor = out[len(out)-1].EndKm
	}
	out[len(out)-1].EndKm = end

	kept := out[:0]
	for _, b := range out {
		if b.EndKm > b.StartKm {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return []Bounds{{StartKm: 0, EndKm: end}}
	}
	return kept
}
