package fuel

import (
	"math"

	"backend-raceplanner/internal/segment"
)

// Timeline indexes allocated segments by race minute.
type Timeline struct {
	segments []segment.Segment
}

func NewTimeline(segments []segment.Segment) Timeline {
	return Timeline{segments: segments}
}

// TotalMinutes is the end of the last segment's window.
func (t Timeline) TotalMinutes() float64 {
	if len(t.segments) == 0 {
		return 0
	}
	return t.segments[len(t.segments)-1].EndMinute
}

// KmAtMinute interpolates the course position reached at minute.
func (t Timeline) KmAtMinute(minute float64) float64 {
	if len(t.segments) == 0 {
		return 0
	}
	for _, s := range t.segments {
		if minute > s.EndMinute {
			continue
		}
		span := s.EndMinute - s.StartMinute
		if span <= 0 {
			return s.EndKm
		}
		ratio := math.Max(0, math.Min(1, (minute-s.StartMinute)/span))
		return s.StartKm + (s.EndKm-s.StartKm)*ratio
	}
	return t.segments[len(t.segments)-1].EndKm
}

// MinuteAtKm is the inverse of KmAtMinute.
func (t Timeline) MinuteAtKm(km float64) float64 {
	if len(t.segments) == 0 {
		return 0
	}
	for _, s := range t.segments {
		if km > s.EndKm {
			continue
		}
		length := s.EndKm - s.StartKm
		if length <= 0 {
			return s.EndMinute
		}
		ratio := math.Max(0, math.Min(1, (km-s.StartKm)/length))
		return s.StartMinute + (s.EndMinute-s.StartMinute)*ratio
	}
	return t.TotalMinutes()
}

// Due sums the carbs and fluid scheduled between two minutes, pro-rating each
// segment's target by its overlap with the window.
func (t Timeline) Due(fromMinute, toMinute float64) (carbsG, hydrationMl float64) {
	if toMinute <= fromMinute {
		return 0, 0
	}
	for _, s := range t.segments {
		span := s.EndMinute - s.StartMinute
		if span <= 0 {
			continue
		}
		overlap := math.Min(toMinute, s.EndMinute) - math.Max(fromMinute, s.StartMinute)
		if overlap <= 0 {
			continue
		}
		share := overlap / span
		carbsG += s.CarbTargetG * share
		hydrationMl += s.HydrationTargetMl * share
	}
	return carbsG, hydrationMl
}
