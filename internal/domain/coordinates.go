package domain

import "math"

const earthRadiusMiles = 3958.8

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// IsZero reports whether the coordinates were never resolved.
func (c Coordinates) IsZero() bool { return c.Lon == 0 && c.Lat == 0 }

// MilesTo returns the great-circle (haversine) distance in statute miles.
func (c Coordinates) MilesTo(other Coordinates) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(1, h)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}
