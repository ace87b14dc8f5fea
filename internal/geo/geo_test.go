package geo

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestParseLocation_Valid(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLat float64
		wantLng float64
	}{
		{"integer pair", "32,34", 32, 34},
		{"decimal pair", "32.0853,34.7818", 32.0853, 34.7818},
		{"negative coords", "-33.8688,151.2093", -33.8688, 151.2093},
		{"both negative", "-12.5,-45.25", -12.5, -45.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseLocation(tt.in)
			if err != nil {
				t.Fatalf("ParseLocation(%q): %v", tt.in, err)
			}
			if p.Lat != tt.wantLat || p.Lng != tt.wantLng {
				t.Errorf("got (%f,%f), want (%f,%f)", p.Lat, p.Lng, tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing lng", "32.08"},
		{"trailing comma", "32.08,"},
		{"letters", "abc,def"},
		{"space separated", "32.08 34.78"},
		{"lat out of range", "100,34"},
		{"lat below range", "-91,0"},
		{"lng out of range", "32,181"},
		{"lng below range", "0,-180.5"},
		{"three parts", "1,2,3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLocation(tt.in); !errors.Is(err, ErrBadLocation) {
				t.Errorf("ParseLocation(%q) = %v, want ErrBadLocation", tt.in, err)
			}
		})
	}
}

func TestParseLocation_RoundTrip(t *testing.T) {
	in := "32.0853,34.7818"
	p, err := ParseLocation(in)
	if err != nil {
		t.Fatalf("ParseLocation: %v", err)
	}
	back, err := ParseLocation(p.String())
	if err != nil {
		t.Fatalf("ParseLocation(String()): %v", err)
	}
	if back != p {
		t.Errorf("round trip changed point: %v -> %v", p, back)
	}
}

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Point{Lat: 32.0853, Lng: 34.7818},
			b:         Point{Lat: 32.0853, Lng: 34.7818},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "Tel Aviv to Jerusalem (~54km)",
			a:         Point{Lat: 32.0853, Lng: 34.7818},
			b:         Point{Lat: 31.7683, Lng: 35.2137},
			wantKm:    54,
			tolerance: 3,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			a:         Point{Lat: 40.7128, Lng: -74.0060},
			b:         Point{Lat: 34.0522, Lng: -118.2437},
			wantKm:    3944,
			tolerance: 50,
		},
	}
	calc := HaversineCalculator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.DistanceKm(context.Background(), tt.a, tt.b)
			if err != nil {
				t.Fatalf("DistanceKm: %v", err)
			}
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("DistanceKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	calc := HaversineCalculator{}
	a := Point{Lat: 32.0, Lng: 34.0}
	b := Point{Lat: 33.0, Lng: 35.0}
	d1, _ := calc.DistanceKm(context.Background(), a, b)
	d2, _ := calc.DistanceKm(context.Background(), b, a)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("distance is not symmetric: %f vs %f", d1, d2)
	}
}

// countingCalculator counts calls so cache hits are observable.
type countingCalculator struct {
	calls int
	err   error
}

func (c *countingCalculator) DistanceKm(_ context.Context, a, b Point) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return haversineKm(a.Lat, a.Lng, b.Lat, b.Lng), nil
}

func TestCachedCalculator_Memoizes(t *testing.T) {
	inner := &countingCalculator{}
	cached := NewCachedCalculator(inner)
	ctx := context.Background()

	a := Point{Lat: 32.0853, Lng: 34.7818}
	b := Point{Lat: 31.7683, Lng: 35.2137}

	first, err := cached.DistanceKm(ctx, a, b)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := cached.DistanceKm(ctx, a, b)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	// Both orientations should come from the cache.
	reversed, err := cached.DistanceKm(ctx, b, a)
	if err != nil {
		t.Fatalf("reversed call: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if first != second || first != reversed {
		t.Errorf("cached values differ: %f, %f, %f", first, second, reversed)
	}
}

func TestCachedCalculator_ErrorsNotCached(t *testing.T) {
	inner := &countingCalculator{err: ErrProviderUnavailable}
	cached := NewCachedCalculator(inner)
	ctx := context.Background()

	a := Point{Lat: 1, Lng: 2}
	b := Point{Lat: 3, Lng: 4}
	if _, err := cached.DistanceKm(ctx, a, b); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("want provider error, got %v", err)
	}

	// Provider recovers; the next call must reach it.
	inner.err = nil
	if _, err := cached.DistanceKm(ctx, a, b); err != nil {
		t.Fatalf("after recovery: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
}
