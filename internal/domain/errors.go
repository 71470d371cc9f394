package domain

import (
	"errors"
	"fmt"
)

// ErrSourceShrunk reports that the upstream page lists fewer accidents than
// the bronze table already holds.
var ErrSourceShrunk = errors.New("source record count below stored count")

// FetchError is returned when the accident page cannot be retrieved or parsed.
// StatusCode is zero for network and parse failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to scrape and parse %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DateTransformError identifies a raw row whose date or season cannot be
// resolved to an absolute date.
type DateTransformError struct {
	Date   string
	Season string
	Err    error
}

func (e *DateTransformError) Error() string {
	return fmt.Sprintf("transform date %q (season %q): %v", e.Date, e.Season, e.Err)
}

func (e *DateTransformError) Unwrap() error { return e.Err }

// LocationRefinementError carries the location text that could not be refined.
type LocationRefinementError struct {
	Location string
	State    string
}

func (e *LocationRefinementError) Error() string {
	return fmt.Sprintf("refine location: %q, %q", e.Location, e.State)
}

// FatalitiesError identifies a fatalities cell that is not a count.
type FatalitiesError struct {
	Value string
	Err   error
}

func (e *FatalitiesError) Error() string {
	return fmt.Sprintf("parse fatalities %q: %v", e.Value, e.Err)
}

func (e *FatalitiesError) Unwrap() error { return e.Err }

// GeocodingError wraps a provider failure for one refined location.
type GeocodingError struct {
	Location string
	Err      error
}

func (e *GeocodingError) Error() string {
	return fmt.Sprintf("geocode %q: %v", e.Location, e.Err)
}

func (e *GeocodingError) Unwrap() error { return e.Err }

// PersistenceError wraps any failure inside the bronze/silver write
// transaction. The transaction has been rolled back when it is returned.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("write transaction rolled back: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
