package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding looks up the accident's refined location and sets its
// latitude and longitude. A nil geocoder leaves the coordinates unset, as
// does a lookup with no match. Provider failures are returned as a
// GeocodingError; the accident is not degraded silently.
func EnrichWithGeocoding(ctx context.Context, acc AccidentCurated, geocoder Geocoder, logger *slog.Logger) (AccidentCurated, error) {
	if geocoder == nil {
		return acc, nil
	}

	coords, err := geocoder.Geocode(ctx, acc.RefinedLocation)
	if err != nil {
		return acc, &GeocodingError{Location: acc.RefinedLocation, Err: err}
	}
	if coords == nil {
		logger.Debug("no geocoding match", "refined_location", acc.RefinedLocation)
		return acc, nil
	}

	lat, lng := coords.Lat, coords.Lng
	acc.Latitude = &lat
	acc.Longitude = &lng
	return acc, nil
}
