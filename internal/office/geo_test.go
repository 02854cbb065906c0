// AngelaMos | 2026
// geo_test.go

package office

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"same point", 10, 10, 10, 10, 0},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.5},
		{"dubai to sharjah", 25.2048, 55.2708, 25.3463, 55.4209, 21.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2), 1.0)
		})
	}
}

// destination walks distanceKm from the start along bearingDeg on a sphere.
func destination(lat, lng, bearingDeg, distanceKm float64) (float64, float64) {
	phi1 := toRadians(lat)
	theta := toRadians(bearingDeg)
	delta := distanceKm / earthRadiusKm

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := toRadians(lng) + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)
	return toDegrees(phi2), toDegrees(lambda2)
}

func TestBoundingBoxCoversRadius(t *testing.T) {
	tests := []struct {
		name          string
		lat, lng, rKm float64
	}{
		{"dubai 50km", 25, 55, 50},
		{"north sea 3000km", 60, 0, 3000},
		{"southern ocean 1500km", -45, 10, 1500},
		{"arctic 1000km", 70, 20, 1000},
		{"equator 5000km", 0, 0, 5000},
		{"antarctic 800km", -75, -30, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, ok := BoundingBoxAround(tt.lat, tt.lng, tt.rKm)
			require.True(t, ok)

			for bearing := 0.0; bearing < 360; bearing += 5 {
				for _, frac := range []float64{0.25, 0.5, 0.9, 0.999} {
					lat, lng := destination(tt.lat, tt.lng, bearing, tt.rKm*frac)
					require.LessOrEqual(t, Haversine(tt.lat, tt.lng, lat, lng), tt.rKm)
					assert.Truef(t, box.Contains(lat, lng),
						"bearing %.0f at %.3f of radius: (%.4f, %.4f) outside %+v",
						bearing, frac, lat, lng, box)
				}
			}
		})
	}
}

func TestBoundingBoxWidensPoleward(t *testing.T) {
	box, ok := BoundingBoxAround(60, 0, 3000)
	require.True(t, ok)

	assert.InDelta(t, 2840.9, Haversine(60, 0, 68, 58), 1.0)
	assert.True(t, box.Contains(68, 58))
	assert.Greater(t, box.MaxLng, 58.0)
}

func TestBoundingBoxUnusable(t *testing.T) {
	tests := []struct {
		name          string
		lat, lng, rKm float64
	}{
		{"reaches north pole", 80, 0, 1500},
		{"reaches south pole", -85, 0, 600},
		{"crosses antimeridian", 0, 175, 1000},
		{"half the globe", 0, 0, 10500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := BoundingBoxAround(tt.lat, tt.lng, tt.rKm)
			assert.False(t, ok)
		})
	}
}
