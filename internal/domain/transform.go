package domain

import (
	"strconv"
	"strings"
)

// CurateAccident derives the silver form of a bronze row: an absolute date,
// the full state name, a refined location, and an integer fatality count.
// Coordinates are left unset; see EnrichWithGeocoding.
func CurateAccident(raw AccidentRaw) (AccidentCurated, error) {
	date, err := ResolveDate(raw.Date, raw.Season)
	if err != nil {
		return AccidentCurated{}, err
	}

	fatalities, err := parseFatalities(raw.Fatalities)
	if err != nil {
		return AccidentCurated{}, err
	}

	state := StateName(raw.State)
	refined, err := RefineLocation(state, raw.Location)
	if err != nil {
		return AccidentCurated{}, err
	}

	return AccidentCurated{
		RawID:           raw.ID,
		Season:          raw.Season,
		Date:            date,
		State:           state,
		Location:        raw.Location,
		Description:     raw.Description,
		Fatalities:      fatalities,
		RefinedLocation: refined,
	}, nil
}

// parseFatalities reads a fatality count. Empty cells count as zero.
func parseFatalities(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &FatalitiesError{Value: s, Err: err}
	}
	return n, nil
}
