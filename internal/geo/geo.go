// Package geo parses "lat,lng" location strings and measures distances
// between points, either offline via the haversine formula or through the
// Google Distance Matrix API. Both calculators sit behind one interface so
// ride search stays provider-agnostic.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrBadLocation is returned for strings that are not "lat,lng" or
	// whose coordinates fall outside the valid ranges.
	ErrBadLocation = errors.New("invalid location format, expected \"lat,lng\"")

	// ErrProviderUnavailable is returned when the external distance
	// provider answers with a non-OK status.
	ErrProviderUnavailable = errors.New("distance provider unavailable")
)

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// String renders the point back into the stored "lat,lng" form.
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

var locationPattern = regexp.MustCompile(`^-?\d+(\.\d+)?,-?\d+(\.\d+)?$`)

// ParseLocation parses a "lat,lng" string into a Point. Latitude must lie
// in [-90,90] and longitude in [-180,180].
func ParseLocation(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if !locationPattern.MatchString(s) {
		return Point{}, ErrBadLocation
	}
	parts := strings.SplitN(s, ",", 2)
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Point{}, ErrBadLocation
	}
	lng, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Point{}, ErrBadLocation
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Point{}, fmt.Errorf("%w: coordinates out of range", ErrBadLocation)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// DistanceCalculator measures the distance in kilometres between two points.
// Implementations must return a typed error instead of hanging or panicking
// when the underlying provider fails.
type DistanceCalculator interface {
	DistanceKm(ctx context.Context, a, b Point) (float64, error)
}

// HaversineCalculator is the deterministic offline fallback. It never fails.
type HaversineCalculator struct{}

func (HaversineCalculator) DistanceKm(_ context.Context, a, b Point) (float64, error) {
	return haversineKm(a.Lat, a.Lng, b.Lat, b.Lng), nil
}

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
