package geo

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// providerTimeout bounds every Distance Matrix call so a slow provider
// cannot hang the caller.
const providerTimeout = 5 * time.Second

// GoogleCalculator measures driving distance through the Google Distance
// Matrix API.
type GoogleCalculator struct {
	client *maps.Client
}

// NewGoogleCalculator builds a calculator with the given API key.
func NewGoogleCalculator(apiKey string) (*GoogleCalculator, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleCalculator{client: client}, nil
}

// DistanceKm asks the Distance Matrix API for the driving distance between
// two points. A non-OK element status maps to ErrProviderUnavailable so
// callers can fall back or retry.
func (g *GoogleCalculator) DistanceKm(ctx context.Context, a, b Point) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{a.String()},
		Destinations: []string{b.String()},
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, ErrProviderUnavailable
	}
	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return 0, fmt.Errorf("%w: element status %s", ErrProviderUnavailable, elem.Status)
	}
	return float64(elem.Distance.Meters) / 1000.0, nil
}
