package segment

import "math"

// TerrainSynthesizer invents per-segment elevation gain and loss when the
// course has no track.
type TerrainSynthesizer interface {
	Allocate(bounds []Bounds, totalGainM float64) (gainM, lossM []float64)
}

// PlaceholderTerrain is placeholder terrain synthesis: the gain budget (and an
// assumed loss of 0.86 x gain) is spread with two sinusoidal weight sequences.
// It has no physical basis and only exists until a real elevation model can
// replace it.
type PlaceholderTerrain struct{}

const assumedLossRatio = 0.86

func (PlaceholderTerrain) Allocate(bounds []Bounds, totalGainM float64) ([]float64, []float64) {
	n := len(bounds)
	gainWeights := make([]float64, n)
	lossWeights := make([]float64, n)
	var gainSum, lossSum float64
	for i := range bounds {
		k := float64(i + 1)
		gainWeights[i] = math.Max(0.2, 0.9+math.Sin(k*1.15))
		lossWeights[i] = math.Max(0.2, 0.9+math.Sin(k*0.95+1.8))
		gainSum += gainWeights[i]
		lossSum += lossWeights[i]
	}

	totalGainM = math.Max(0, totalGainM)
	gain := make([]float64, n)
	loss := make([]float64, n)
	for i := range bounds {
		gain[i] = gainWeights[i] / gainSum * totalGainM
		loss[i] = lossWeights[i] / lossSum * totalGainM * assumedLossRatio
	}
	return gain, loss
}
