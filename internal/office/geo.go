// AngelaMos | 2026
// geo.go

package office

import "math"

const (
	earthRadiusKm      = 6371.0
	DefaultMaxDistance = 50.0
	MaxNearbyDistance  = 20000.0
)

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBoxAround returns a lat/lng box containing every point within
// radiusKm of the centre. The longitude half-width is taken at the circle's
// widest point, which lies poleward of the centre. ok is false when the
// circle reaches a pole or crosses the antimeridian, in which case callers
// must scan without the box.
func BoundingBoxAround(lat, lng, radiusKm float64) (box BoundingBox, ok bool) {
	angular := radiusKm / earthRadiusKm
	latRad := toRadians(lat)
	if angular >= math.Pi/2-math.Abs(latRad) {
		return BoundingBox{}, false
	}

	dLat := toDegrees(angular)
	dLng := toDegrees(math.Asin(math.Sin(angular) / math.Cos(latRad)))

	box = BoundingBox{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLng: lng - dLng,
		MaxLng: lng + dLng,
	}
	if box.MinLng < -180 || box.MaxLng > 180 {
		return BoundingBox{}, false
	}

	return box, true
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
