package plan

import (
	"strings"

	"backend-raceplanner/internal/pacing"
	"backend-raceplanner/internal/shared/apperr"
	"backend-raceplanner/internal/shared/i18n"
	"backend-raceplanner/internal/shared/num"
)

type Mode string

const (
	ModeGPX      Mode = "gpx"
	ModeDistance Mode = "distance"
)

// Request is the raw body of POST /race/plan.
type Request struct {
	Mode           string   `json:"mode"`
	DistanceKm     *float64 `json:"distanceKm"`
	ElevationGainM *float64 `json:"elevationGainM"`
	GPX            string   `json:"gpx"`
	Locale         string   `json:"locale"`
	WeightKg       *float64 `json:"weightKg"`
	TemperatureC   *float64 `json:"temperatureC"`
	HumidityPct    *float64 `json:"humidityPct"`
}

// Options is a validated Request with defaults applied. Nothing downstream
// reads the raw request.
type Options struct {
	Mode           Mode
	DistanceKm     float64
	ElevationGainM float64
	GPX            string
	Locale         i18n.Locale
	WeightKg       *float64
	Context        pacing.RaceContext

	weightGiven      bool
	temperatureGiven bool
	humidityGiven    bool
}

func NewOptions(req Request) (Options, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if mode != ModeGPX && mode != ModeDistance {
		return Options{}, apperr.InvalidInput(`mode must be "gpx" or "distance"`)
	}

	opts := Options{
		Mode:             mode,
		GPX:              req.GPX,
		Locale:           i18n.Normalize(req.Locale),
		Context:          pacing.NewRaceContext(req.TemperatureC, req.HumidityPct),
		temperatureGiven: finitePtr(req.TemperatureC),
		humidityGiven:    finitePtr(req.HumidityPct),
	}
	if mode == ModeDistance {
		if req.DistanceKm == nil {
			return Options{}, apperr.InvalidInput("distanceKm must be > 0")
		}
		opts.DistanceKm = *req.DistanceKm
		if req.ElevationGainM != nil {
			opts.ElevationGainM = *req.ElevationGainM
		}
	}
	if finitePtr(req.WeightKg) {
		w := *req.WeightKg
		opts.WeightKg = &w
		opts.weightGiven = w >= 40 && w <= 130
	}
	return opts, nil
}

func finitePtr(v *float64) bool {
	return v != nil && num.Finite(*v)
}
