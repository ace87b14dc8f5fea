package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roadshare/carpool-backend/internal/geo"
	"github.com/roadshare/carpool-backend/internal/model"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testRide(overrides func(*model.Ride)) *model.Ride {
	r := &model.Ride{
		ID:                1,
		DriverID:          7,
		Status:            model.RideStatusWaiting,
		DepartureLocation: "32.0853,34.7818",
		PickupRadius:      5,
		Destination:       "31.7683,35.2137",
		DropRadius:        5,
		DepartureAt:       testNow.Add(2 * time.Hour),
		AvailableSeats:    3,
	}
	if overrides != nil {
		overrides(r)
	}
	return r
}

func TestAvailableSeats(t *testing.T) {
	tests := []struct {
		name  string
		seats int
		want  bool
	}{
		{"fewer than offered", 2, true},
		{"exactly offered", 3, true},
		{"more than offered", 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AvailableSeats{Seats: tt.seats}.SatisfiedBy(context.Background(), testRide(nil))
			if err != nil {
				t.Fatalf("SatisfiedBy: %v", err)
			}
			if got != tt.want {
				t.Errorf("seats=%d: got %v, want %v", tt.seats, got, tt.want)
			}
		})
	}
}

func TestRideStatus(t *testing.T) {
	spec := RideStatus{Status: model.RideStatusWaiting}
	if ok, _ := spec.SatisfiedBy(context.Background(), testRide(nil)); !ok {
		t.Error("waiting ride should satisfy waiting filter")
	}
	started := testRide(func(r *model.Ride) { r.Status = model.RideStatusInProgress })
	if ok, _ := spec.SatisfiedBy(context.Background(), started); ok {
		t.Error("in_progress ride should not satisfy waiting filter")
	}
}

func TestNotOwnedBy(t *testing.T) {
	ride := testRide(nil)
	if ok, _ := (NotOwnedBy{UserID: 7}).SatisfiedBy(context.Background(), ride); ok {
		t.Error("driver's own ride should be excluded")
	}
	if ok, _ := (NotOwnedBy{UserID: 8}).SatisfiedBy(context.Background(), ride); !ok {
		t.Error("someone else's ride should be included")
	}
}

func TestDepartureWindow_InclusiveBounds(t *testing.T) {
	target := testNow.Add(10 * time.Hour)
	w := NewDepartureWindow(target, 2*time.Hour, testNow)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"exact lower bound", target.Add(-2 * time.Hour), true},
		{"exact upper bound", target.Add(2 * time.Hour), true},
		{"inside", target, true},
		{"just before lower", target.Add(-2*time.Hour - time.Second), false},
		{"just after upper", target.Add(2*time.Hour + time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := testRide(func(r *model.Ride) { r.DepartureAt = tt.at })
			got, err := w.SatisfiedBy(context.Background(), ride)
			if err != nil {
				t.Fatalf("SatisfiedBy: %v", err)
			}
			if got != tt.want {
				t.Errorf("at=%v: got %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestDepartureWindow_ClampsToNow(t *testing.T) {
	// Target one hour out with a five hour delta: the raw lower bound is in
	// the past and must be clamped to now.
	target := testNow.Add(time.Hour)
	w := NewDepartureWindow(target, 5*time.Hour, testNow)

	lo, hi := w.Bounds()
	if !lo.Equal(testNow) {
		t.Errorf("lower bound = %v, want clamped to %v", lo, testNow)
	}
	if !hi.Equal(target.Add(5 * time.Hour)) {
		t.Errorf("upper bound = %v, want %v", hi, target.Add(5*time.Hour))
	}

	past := testRide(func(r *model.Ride) { r.DepartureAt = testNow.Add(-time.Minute) })
	if ok, _ := w.SatisfiedBy(context.Background(), past); ok {
		t.Error("ride departing in the past must never match")
	}
}

func TestDepartureWindow_DefaultDelta(t *testing.T) {
	target := testNow.Add(24 * time.Hour)
	w := NewDepartureWindow(target, 0, testNow)
	lo, hi := w.Bounds()
	if !lo.Equal(target.Add(-DefaultWindow)) || !hi.Equal(target.Add(DefaultWindow)) {
		t.Errorf("default window = [%v, %v], want ±%v around target", lo, hi, DefaultWindow)
	}
}

func TestNearLocation_Radius(t *testing.T) {
	calc := geo.HaversineCalculator{}
	telAviv := geo.Point{Lat: 32.0853, Lng: 34.7818}

	tests := []struct {
		name     string
		radiusKm float64
		field    LocationField
		want     bool
	}{
		{"departure inside tight radius", 1, FieldDeparture, true},
		{"destination outside tight radius", 1, FieldDestination, false},
		{"destination inside wide radius", 100, FieldDestination, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := NearLocation{Center: telAviv, RadiusKm: tt.radiusKm, Field: tt.field, Calc: calc}
			got, err := spec.SatisfiedBy(context.Background(), testRide(nil))
			if err != nil {
				t.Fatalf("SatisfiedBy: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

type failingCalculator struct{ err error }

func (f failingCalculator) DistanceKm(context.Context, geo.Point, geo.Point) (float64, error) {
	return 0, f.err
}

func TestNearLocation_ProviderErrorSurfaces(t *testing.T) {
	spec := NearLocation{
		Center:   geo.Point{Lat: 32, Lng: 34},
		RadiusKm: 5,
		Calc:     failingCalculator{err: geo.ErrProviderUnavailable},
	}
	if _, err := spec.SatisfiedBy(context.Background(), testRide(nil)); !errors.Is(err, geo.ErrProviderUnavailable) {
		t.Errorf("want provider error, got %v", err)
	}
}

func TestAnd_OrderIndependent(t *testing.T) {
	specs := []Specification{
		RideStatus{Status: model.RideStatusWaiting},
		AvailableSeats{Seats: 2},
		NotOwnedBy{UserID: 99},
	}
	reversed := []Specification{specs[2], specs[1], specs[0]}

	ride := testRide(nil)
	a, err := NewAnd(specs...).SatisfiedBy(context.Background(), ride)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	b, err := NewAnd(reversed...).SatisfiedBy(context.Background(), ride)
	if err != nil {
		t.Fatalf("reversed: %v", err)
	}
	if a != b {
		t.Errorf("conjunction order changed the outcome: %v vs %v", a, b)
	}
}

func TestAnd_PropagatesError(t *testing.T) {
	spec := NewAnd(
		RideStatus{Status: model.RideStatusWaiting},
		NearLocation{Center: geo.Point{Lat: 1, Lng: 1}, RadiusKm: 1, Calc: failingCalculator{err: geo.ErrProviderUnavailable}},
	)
	if _, err := spec.SatisfiedBy(context.Background(), testRide(nil)); !errors.Is(err, geo.ErrProviderUnavailable) {
		t.Errorf("want provider error, got %v", err)
	}
}

func TestApply_BuildsWhereClause(t *testing.T) {
	target := testNow.Add(10 * time.Hour)
	spec := NewAnd(
		RideStatus{Status: model.RideStatusWaiting},
		AvailableSeats{Seats: 2},
		NotOwnedBy{UserID: 5},
		NewDepartureWindow(target, 2*time.Hour, testNow),
		NearLocation{Center: geo.Point{Lat: 1, Lng: 1}, RadiusKm: 1, Calc: geo.HaversineCalculator{}},
	)
	q := &Query{}
	spec.Apply(q)

	wantWhere := []string{
		"status = ?",
		"available_seats >= ?",
		"driver_id <> ?",
		"departure_at BETWEEN ? AND ?",
	}
	if len(q.Where) != len(wantWhere) {
		t.Fatalf("got %d conditions, want %d: %v", len(q.Where), len(wantWhere), q.Where)
	}
	for i, w := range wantWhere {
		if q.Where[i] != w {
			t.Errorf("condition %d = %q, want %q", i, q.Where[i], w)
		}
	}
	if len(q.Args) != 5 {
		t.Errorf("got %d args, want 5: %v", len(q.Args), q.Args)
	}
}
