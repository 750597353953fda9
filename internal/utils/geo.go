package utils

import "math"

const earthRadiusMeters = 6371000.0

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Pow(math.Sin(dLon/2), 2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// InitialBearing returns the bearing in degrees [0, 360) for travelling from
// the first point toward the second.
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dLon := radians(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}

// CompassPoint maps a bearing to one of eight compass points.
func CompassPoint(bearing float64) string {
	return compassPoints[int(math.Mod(bearing+22.5, 360)/45)%8]
}

// CompassDirection is the compass point for travelling from the first point toward the second.
func CompassDirection(lat1, lon1, lat2, lon2 float64) string {
	return CompassPoint(InitialBearing(lat1, lon1, lat2, lon2))
}
