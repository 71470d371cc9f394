package domain

import "context"

// Geocoder resolves a refined location string to coordinates.
type Geocoder interface {
	// Geocode returns the first candidate's coordinates, or nil when the
	// provider has no match. Provider failures are returned as errors.
	Geocode(ctx context.Context, location string) (*Coordinates, error)
}
