package geo

import "math"

const earthRadiusM = 6371000.0

// HaversineMeters returns the great-circle distance between two coordinates.
// Invalid input propagates as NaN.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
