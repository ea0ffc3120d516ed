// Package pacing computes per-segment target paces, effort scores and the
// race-level pacing guidance.
package pacing

import "backend-raceplanner/internal/shared/num"

const (
	DefaultTemperatureC = 18.0
	DefaultHumidityPct  = 55.0
)

// RaceContext holds race-day weather, already clamped.
type RaceContext struct {
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
}

// NewRaceContext applies defaults for missing or non-finite values and clamps
// temperature to [-10,45] and humidity to [5,100].
func NewRaceContext(temperatureC, humidityPct *float64) RaceContext {
	rc := RaceContext{TemperatureC: DefaultTemperatureC, HumidityPct: DefaultHumidityPct}
	if temperatureC != nil && num.Finite(*temperatureC) {
		rc.TemperatureC = num.Clamp(*temperatureC, -10, 45)
	}
	if humidityPct != nil && num.Finite(*humidityPct) {
		rc.HumidityPct = num.Clamp(*humidityPct, 5, 100)
	}
	return rc
}
