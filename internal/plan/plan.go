// Package plan assembles a race plan: course profile, athlete baseline,
// segments, pacing, fueling and aid stations.
package plan

import (
	"fmt"
	"math"
	"time"

	"backend-raceplanner/internal/aid"
	"backend-raceplanner/internal/athlete"
	"backend-raceplanner/internal/course"
	"backend-raceplanner/internal/fuel"
	"backend-raceplanner/internal/pacing"
	"backend-raceplanner/internal/segment"
	"backend-raceplanner/internal/shared/num"
)

type Summary struct {
	DistanceKm                float64            `json:"distanceKm"`
	ElevationGainM            float64            `json:"elevationGainM"`
	ElevationLossM            float64            `json:"elevationLossM"`
	EstimatedDurationMin      float64            `json:"estimatedDurationMin"`
	EstimatedFinishLabel      string             `json:"estimatedFinishLabel"`
	AverageTargetPaceMinPerKm float64            `json:"averageTargetPaceMinPerKm"`
	TotalCaloriesKcal         float64            `json:"totalCaloriesKcal"`
	TotalCarbsG               float64            `json:"totalCarbsG"`
	TotalHydrationMl          float64            `json:"totalHydrationMl"`
	RunnerType                athlete.RunnerType `json:"runnerType"`
	DistancePenaltyPct        float64            `json:"distancePenaltyPct"`
	ConfidenceScore           int                `json:"confidenceScore"`
}

type Plan struct {
	Source      course.Source      `json:"source"`
	Athlete     athlete.Baseline   `json:"athlete"`
	Summary     Summary            `json:"summary"`
	Context     pacing.RaceContext `json:"context"`
	Pacing      pacing.Guidance    `json:"pacing"`
	Hydration   fuel.HydrationPlan `json:"hydration"`
	Nutrition   fuel.NutritionPlan `json:"nutrition"`
	AidStations []aid.Station      `json:"aidStations"`
	Segments    []segment.Segment  `json:"segments"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// Assemble runs the synchronous part of the pipeline. It has no I/O and no
// randomness; the same inputs always give the same plan.
func Assemble(profile course.Profile, baseline athlete.Baseline, opts Options, builder segment.Builder, generatedAt time.Time) Plan {
	segments := builder.Build(profile)
	segments = pacing.Apply(segments, baseline, profile.DistanceKm, opts.Context, opts.Locale)
	segments = fuel.Allocate(segments, baseline, opts.Context)

	hydration := fuel.BuildHydration(segments, baseline.Level, opts.Locale)
	nutrition := fuel.BuildNutrition(segments, baseline.Level, opts.Locale)

	rounded := make([]segment.Segment, len(segments))
	for i, s := range segments {
		rounded[i] = s.Rounded()
	}

	return Plan{
		Source:      profile.Source,
		Athlete:     baseline.Rounded(),
		Summary:     summarize(profile, baseline, segments, hydration, nutrition, opts),
		Context:     opts.Context,
		Pacing:      pacing.BuildGuidance(segments, baseline, profile.DistanceKm, opts.Locale),
		Hydration:   hydration,
		Nutrition:   nutrition,
		AidStations: aid.Place(profile, segments, opts.Locale),
		Segments:    rounded,
		GeneratedAt: generatedAt.UTC(),
	}
}

func summarize(profile course.Profile, b athlete.Baseline, segments []segment.Segment, h fuel.HydrationPlan, n fuel.NutritionPlan, opts Options) Summary {
	var duration, loss, paceWeighted, distance float64
	for _, s := range segments {
		duration += s.EstimatedDurationMin
		loss += s.ElevationLossM
		paceWeighted += s.TargetPaceMinPerKm * s.DistanceKm
		distance += s.DistanceKm
	}
	avgPace := 0.0
	if distance > 0 {
		avgPace = paceWeighted / distance
	}

	return Summary{
		DistanceKm:                num.Round2(profile.DistanceKm),
		ElevationGainM:            math.Round(profile.ElevationGainM),
		ElevationLossM:            math.Round(loss),
		EstimatedDurationMin:      math.Round(duration),
		EstimatedFinishLabel:      FormatFinish(duration),
		AverageTargetPaceMinPerKm: num.Round2(avgPace),
		TotalCaloriesKcal:         n.TotalCalories,
		TotalCarbsG:               n.TotalCarbsG,
		TotalHydrationMl:          h.TotalMl,
		RunnerType:                b.RunnerType,
		DistancePenaltyPct:        num.Round2(pacing.DistancePenaltyPct(profile.DistanceKm, b.EnduranceScore)),
		ConfidenceScore:           confidence(profile, b, opts),
	}
}

// confidence is a transparency signal in [20,96]: a real track, a longer
// history and explicit overrides all raise it.
func confidence(profile course.Profile, b athlete.Baseline, opts Options) int {
	score := 38.0
	if profile.HasTrack() {
		score += 18
	}
	score += math.Min(26, float64(b.ActivitiesSampleCount)*0.65)
	if opts.weightGiven {
		score += 6
	}
	if opts.temperatureGiven {
		score += 4
	}
	if opts.humidityGiven {
		score += 4
	}
	return int(math.Round(num.Clamp(score, 20, 96)))
}

// FormatFinish renders minutes as "h:mm".
func FormatFinish(minutes float64) string {
	if !num.Finite(minutes) || minutes < 0 {
		return "0:00"
	}
	total := int(math.Round(minutes))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
