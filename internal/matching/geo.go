package matching

import "math"

// Coordinates is a region centroid used for proximity scoring.
type Coordinates struct {
	Lat float64 `mapstructure:"lat" json:"lat"`
	Lon float64 `mapstructure:"lon" json:"lon"`
}

const earthRadiusKM = 6371.0

// haversineKM returns the great-circle distance between two centroids.
func haversineKM(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}
