// Package course turns raw race input into a normalized profile.
package course

import (
	"math"
	"strings"

	"backend-raceplanner/internal/shared/apperr"
	"backend-raceplanner/internal/shared/geo"
	"backend-raceplanner/internal/shared/num"
)

type Source string

const (
	SourceTrack    Source = "gpx"
	SourceDistance Source = "distance"
)

// Point is a track point annotated with its cumulative course distance.
type Point struct {
	Lat                  float64  `json:"lat"`
	Lon                  float64  `json:"lon"`
	ElevationM           *float64 `json:"elevationM,omitempty"`
	CumulativeDistanceKm float64  `json:"cumulativeDistanceKm"`
}

// Profile is built once per request and never mutated afterwards.
type Profile struct {
	Source         Source  `json:"source"`
	DistanceKm     float64 `json:"distanceKm"`
	ElevationGainM float64 `json:"elevationGainM"`
	Points         []Point `json:"points,omitempty"`
}

// HasTrack reports whether elevation can be read from real points.
func (p Profile) HasTrack() bool {
	return len(p.Points) > 1
}

// FromDistance builds a track-less profile.
func FromDistance(distanceKm, elevationGainM float64) (Profile, error) {
	if !num.Finite(distanceKm) || num.Round2(distanceKm) <= 0 {
		return Profile{}, apperr.InvalidInput("distanceKm must be > 0")
	}
	if math.IsNaN(elevationGainM) || math.IsInf(elevationGainM, 0) {
		elevationGainM = 0
	}
	return Profile{
		Source:         SourceDistance,
		DistanceKm:     distanceKm,
		ElevationGainM: math.Max(0, elevationGainM),
		Points:         []Point{},
	}, nil
}

// FromTrack parses a GPX payload and accumulates distance and positive gain.
func FromTrack(payload string) (Profile, error) {
	if strings.TrimSpace(payload) == "" {
		return Profile{}, apperr.InvalidInput(`gpx payload is required when mode="gpx"`)
	}
	raw, err := ParseTrack([]byte(payload))
	if err != nil {
		return Profile{}, err
	}
	if len(raw) < 2 {
		return Profile{}, apperr.InvalidInput("Invalid GPX: no usable track points")
	}
	profile := FromPoints(raw)
	if num.Round2(profile.DistanceKm) <= 0 {
		return Profile{}, apperr.InvalidInput("Invalid GPX: no usable track points")
	}
	return profile, nil
}

// FromPoints annotates raw points; callers guarantee len(raw) >= 2.
func FromPoints(raw []RawPoint) Profile {
	points := make([]Point, 0, len(raw))
	points = append(points, Point{Lat: raw[0].Lat, Lon: raw[0].Lon, ElevationM: raw[0].ElevationM})

	cumulativeKm := 0.0
	gainM := 0.0
	for i := 1; i < len(raw); i++ {
		prev, next := raw[i-1], raw[i]
		cumulativeKm += geo.HaversineMeters(prev.Lat, prev.Lon, next.Lat, next.Lon) / 1000
		if prev.ElevationM != nil && next.ElevationM != nil && *next.ElevationM > *prev.ElevationM {
			gainM += *next.ElevationM - *prev.ElevationM
		}
		points = append(points, Point{
			Lat:                  next.Lat,
			Lon:                  next.Lon,
			ElevationM:           next.ElevationM,
			CumulativeDistanceKm: cumulativeKm,
		})
	}

	return Profile{
		Source:         SourceTrack,
		DistanceKm:     cumulativeKm,
		ElevationGainM: gainM,
		Points:         points,
	}
}

// ElevationStats returns gain and loss inside [startKm, endKm]. Each edge's
// elevation delta is pro-rated by its overlap with the window, so windows need
// not align with track points.
func (p Profile) ElevationStats(startKm, endKm float64) (gainM, lossM float64) {
	if !p.HasTrack() || endKm <= startKm {
		return 0, 0
	}
	for i := 1; i < len(p.Points); i++ {
		prev, curr := p.Points[i-1], p.Points[i]
		overlapKm := math.Min(endKm, curr.CumulativeDistanceKm) - math.Max(startKm, prev.CumulativeDistanceKm)
		if overlapKm <= 0 {
			continue
		}
		if prev.ElevationM == nil || curr.ElevationM == nil {
			continue
		}
		edgeKm := math.Max(0.00001, curr.CumulativeDistanceKm-prev.CumulativeDistanceKm)
		delta := (*curr.ElevationM - *prev.ElevationM) * (overlapKm / edgeKm)
		if delta > 0 {
			gainM += delta
		} else {
			lossM -= delta
		}
	}
	return gainM, lossM
}

// Peak is a local elevation maximum along the track.
type Peak struct {
	AtKm float64
}

// LocalPeaks returns points rising more than prominenceM above both
// neighbours, restricted to (marginKm, distance-marginKm), at most limit.
func (p Profile) LocalPeaks(prominenceM, marginKm float64, limit int) []Peak {
	var peaks []Peak
	if len(p.Points) < 3 {
		return peaks
	}
	for i := 1; i < len(p.Points)-1 && len(peaks) < limit; i++ {
		prev, curr, next := p.Points[i-1], p.Points[i], p.Points[i+1]
		if prev.ElevationM == nil || curr.ElevationM == nil || next.ElevationM == nil {
			continue
		}
		if *curr.ElevationM <= *prev.ElevationM+prominenceM || *curr.ElevationM <= *next.ElevationM+prominenceM {
			continue
		}
		if curr.CumulativeDistanceKm <= marginKm || curr.CumulativeDistanceKm >= p.DistanceKm-marginKm {
			continue
		}
		peaks = append(peaks, Peak{AtKm: curr.CumulativeDistanceKm})
	}
	return peaks
}
