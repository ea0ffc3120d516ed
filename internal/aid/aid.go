// Package aid proposes aid-station positions along the course.
package aid

import (
	"math"
	"sort"

	"backend-raceplanner/internal/course"
	"backend-raceplanner/internal/fuel"
	"backend-raceplanner/internal/segment"
	"backend-raceplanner/internal/shared/i18n"
	"backend-raceplanner/internal/shared/num"
)

const (
	topOfClimbGradePct = 4.5
	peakProminenceM    = 8.0
	peakMarginKm       = 1.5
	maxPeaks           = 8
	firstStationKm     = 2.0
	lastStationGapKm   = 1.0
	minStationGapKm    = 1.4
	maxStations        = 14
	minHydrationMl     = 120.0
	minCarbsG          = 15.0
)

type Station struct {
	AtKm        float64 `json:"atKm"`
	AtMinute    float64 `json:"atMinute"`
	Reason      string  `json:"reason"`
	HydrationMl float64 `json:"hydrationMl"`
	CarbsG      float64 `json:"carbsG"`
}

type candidate struct {
	atKm   float64
	reason string
}

func spacingKm(totalKm float64) float64 {
	switch {
	case totalKm <= 30:
		return 7
	case totalKm <= 55:
		return 8
	default:
		return 10
	}
}

// candidates gathers periodic, top-of-climb and terrain-peak positions,
// unfiltered and in source order.
func candidates(profile course.Profile, segments []segment.Segment, locale i18n.Locale) []candidate {
	totalKm := profile.DistanceKm
	var out []candidate

	every := spacingKm(totalKm)
	for km := every; km < totalKm; km += every {
		out = append(out, candidate{atKm: km, reason: i18n.T(locale, i18n.AidPeriodic)})
	}
	for _, s := range segments {
		if s.AverageGradePercent >= topOfClimbGradePct {
			out = append(out, candidate{atKm: s.EndKm, reason: i18n.T(locale, i18n.AidTopClimb)})
		}
	}
	for _, peak := range profile.LocalPeaks(peakProminenceM, peakMarginKm, maxPeaks) {
		out = append(out, candidate{atKm: peak.AtKm, reason: i18n.T(locale, i18n.AidTerrainHigh)})
	}
	return out
}

// Place keeps candidates inside [2, total-1] km, sorted, at least 1.4 km apart
// (first of a cluster wins), at most 14. Each station carries what the
// timeline says is due since the previous one, floored at 120 ml and 15 g.
func Place(profile course.Profile, segments []segment.Segment, locale i18n.Locale) []Station {
	stations := []Station{}
	totalKm := profile.DistanceKm
	if !num.Finite(totalKm) || totalKm <= 0 {
		return stations
	}

	var kept []candidate
	for _, c := range candidates(profile, segments, locale) {
		c.atKm = num.Round2(c.atKm)
		if c.atKm >= firstStationKm && c.atKm <= totalKm-lastStationGapKm {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].atKm < kept[j].atKm })

	tl := fuel.NewTimeline(segments)
	prevMinute := 0.0
	for _, c := range kept {
		if len(stations) == maxStations {
			break
		}
		if len(stations) > 0 && c.atKm-stations[len(stations)-1].AtKm < minStationGapKm {
			continue
		}
		minute := tl.MinuteAtKm(c.atKm)
		carbs, ml := tl.Due(prevMinute, minute)
		stations = append(stations, Station{
			AtKm:        c.atKm,
			AtMinute:    num.Round(minute, 1),
			Reason:      c.reason,
			HydrationMl: math.Round(math.Max(minHydrationMl, ml)),
			CarbsG:      math.Round(math.Max(minCarbsG, carbs)),
		})
		prevMinute = minute
	}
	return stations
}
