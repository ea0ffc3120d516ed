package segment

import (
	"math"
	"testing"

	"backend-raceplanner/internal/course"
)

func floatPtr(v float64) *float64 { return &v }

// northOf returns the latitude reached by moving meters due north.
func northOf(lat, meters float64) float64 {
	return lat + meters/6371000*180/math.Pi
}

// trackProfile builds a north-bound track sampled every 100 m whose elevation
// follows elevationAt(km).
func trackProfile(totalKm float64, elevationAt func(km float64) float64) course.Profile {
	var raw []course.RawPoint
	steps := int(math.Round(totalKm * 10))
	for i := 0; i <= steps; i++ {
		km := float64(i) / 10
		raw = append(raw, course.RawPoint{
			Lat:        northOf(45, km*1000),
			Lon:        6,
			ElevationM: floatPtr(elevationAt(km)),
		})
	}
	return course.FromPoints(raw)
}

func assertContiguous(t *testing.T, segments []Segment, totalKm float64) {
	t.Helper()
	if len(segments) == 0 {
		t.Fatalf("expected segments")
	}
	if segments[0].StartKm != 0 {
		t.Fatalf("first segment must start at 0, got %v", segments[0].StartKm)
	}
	for i, s := range segments {
		if s.Index != i+1 {
			t.Fatalf("segment %d has index %d", i, s.Index)
		}
		if s.EndKm <= s.StartKm {
			t.Fatalf("segment %d is empty: %+v", i, s)
		}
		if i > 0 && s.StartKm != segments[i-1].EndKm {
			t.Fatalf("gap between segment %d and %d: %v != %v", i, i+1, segments[i-1].EndKm, s.StartKm)
		}
	}
	last := segments[len(segments)-1].EndKm
	if math.Abs(last-totalKm) > 0.005 {
		t.Fatalf("last segment must end at %v, got %v", totalKm, last)
	}
}

func TestClassify(t *testing.T) {
	cases := map[float64]Terrain{
		2.8: Climb, 12: Climb, 2.79: Flat, 0: Flat, -1.99: Flat, -2: Downhill, -9: Downhill,
	}
	for grade, want := range cases {
		if got := Classify(grade); got != want {
			t.Fatalf("Classify(%v) = %s, want %s", grade, got, want)
		}
	}
}

func TestGrade(t *testing.T) {
	cases := []struct {
		gain, loss, km float64
		want           float64
	}{
		{50, 0, 1, 5},
		{0, 50, 1, -5},
		{10, 0, 0, 0},
		{10, 0, -1, 0},
		{10, 0, math.NaN(), 0},
		{140, 0, 1e-9, 60},
		{0, 35, 0.0001, -60},
	}
	for _, c := range cases {
		if got := Grade(c.gain, c.loss, c.km); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("Grade(%v, %v, %v): expected %v, got %v", c.gain, c.loss, c.km, c.want, got)
		}
	}
}

func TestBuildDistanceHalfMarathon(t *testing.T) {
	profile, err := course.FromDistance(21.1, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	segments := NewBuilder().Build(profile)
	assertContiguous(t, segments, 21.1)
	if segments[len(segments)-1].EndKm != 21.1 {
		t.Fatalf("last end must be exactly 21.1, got %v", segments[len(segments)-1].EndKm)
	}

	var distance, gain, loss float64
	for _, s := range segments {
		distance += s.DistanceKm
		gain += s.ElevationGainM
		loss += s.ElevationLossM
		if s.Terrain != Classify(s.AverageGradePercent) {
			t.Fatalf("terrain does not match grade on segment %d", s.Index)
		}
	}
	if math.Abs(distance-21.1) > 1e-9 {
		t.Fatalf("segment distances must sum to 21.1, got %v", distance)
	}
	if math.Abs(gain-300) > 1e-6 {
		t.Fatalf("synthesized gain must sum to the budget, got %v", gain)
	}
	if math.Abs(loss-258) > 1e-6 {
		t.Fatalf("synthesized loss must be 0.86 x gain, got %v", loss)
	}
}

func TestBuildDistanceNoGainIsFlat(t *testing.T) {
	profile, _ := course.FromDistance(42.195, 0)
	segments := NewBuilder().Build(profile)
	assertContiguous(t, segments, 42.195)
	for _, s := range segments {
		if s.Terrain != Flat || s.AverageGradePercent != 0 {
			t.Fatalf("expected flat segments, got %+v", s)
		}
	}
}

func TestBuildDistanceAlwaysCovers(t *testing.T) {
	for _, d := range []float64{0.001, 0.03, 0.4, 1, 5.5, 10, 19.99, 33.3, 50, 100, 170.25} {
		profile, err := course.FromDistance(d, d*30)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", d, err)
		}
		segments := NewBuilder().Build(profile)
		assertContiguous(t, segments, d)
		for _, s := range segments {
			if math.IsNaN(s.AverageGradePercent) || math.IsInf(s.AverageGradePercent, 0) {
				t.Fatalf("non-finite grade for %v km: %+v", d, s)
			}
		}
	}
}

func TestDistanceBoundsScaleWithRuggedness(t *testing.T) {
	flat := DistanceBounds(42, 0)
	rugged := DistanceBounds(42, 42*55)
	if len(rugged) >= len(flat) {
		t.Fatalf("rugged courses should get longer segments: flat=%d rugged=%d", len(flat), len(rugged))
	}
}

type fixedTerrain struct{}

func (fixedTerrain) Allocate(bounds []Bounds, _ float64) ([]float64, []float64) {
	gain := make([]float64, len(bounds))
	loss := make([]float64, len(bounds))
	for i, b := range bounds {
		gain[i] = (b.EndKm - b.StartKm) * 100
	}
	return gain, loss
}

func TestBuilderUsesInjectedTerrain(t *testing.T) {
	profile, _ := course.FromDistance(10, 0)
	segments := Builder{Terrain: fixedTerrain{}}.Build(profile)
	for _, s := range segments {
		if math.Abs(s.AverageGradePercent-10) > 1e-9 || s.Terrain != Climb {
			t.Fatalf("expected a 10%% climb, got %+v", s)
		}
	}
}

func TestBuildTrackSplitsOnTerrainChange(t *testing.T) {
	profile := trackProfile(10, func(km float64) float64 {
		if km <= 6 {
			return 100
		}
		return 100 + (km-6)*60
	})
	segments := NewBuilder().Build(profile)
	assertContiguous(t, segments, profile.DistanceKm)

	if segments[0].Terrain != Flat {
		t.Fatalf("expected a flat opening segment, got %s", segments[0].Terrain)
	}
	last := segments[len(segments)-1]
	if last.Terrain != Climb {
		t.Fatalf("expected the closing segment to be a climb, got %+v", last)
	}
	for _, s := range segments[:len(segments)-1] {
		if s.DistanceKm < minSegmentKm-1e-9 {
			t.Fatalf("segment %d shorter than the minimum: %v", s.Index, s.DistanceKm)
		}
		if s.DistanceKm > maxTrackSegmentKm(10)+stepKm+1e-9 {
			t.Fatalf("segment %d longer than the maximum: %v", s.Index, s.DistanceKm)
		}
	}

	var gain float64
	for _, s := range segments {
		gain += s.ElevationGainM
	}
	if math.Abs(gain-profile.ElevationGainM) > 0.5 {
		t.Fatalf("segment gains must add up to the profile gain: %v vs %v", gain, profile.ElevationGainM)
	}
}

func TestRounded(t *testing.T) {
	s := Segment{StartKm: 1.23456, EndKm: 2.98765, ElevationGainM: 12.6, TargetPaceMinPerKm: 6.12345, EstimatedDurationMin: 10.06}
	r := s.Rounded()
	if r.StartKm != 1.23 || r.EndKm != 2.99 || r.ElevationGainM != 13 || r.TargetPaceMinPerKm != 6.12 || r.EstimatedDurationMin != 10.1 {
		t.Fatalf("unexpected rounding: %+v", r)
	}
	if s.StartKm != 1.23456 {
		t.Fatalf("Rounded must not modify the receiver")
	}
}
