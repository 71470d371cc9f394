package domain

import "strings"

const ofSeparator = " of "

// RefineLocation shortens a free-text accident location into a
// geocoder-friendly "<place>, <state>" string:
//
//   - with a comma, the text after the last comma is used, narrowed to the
//     text after " of " when present ("Summit County, 1 mile N of Frisco" ->
//     "Frisco");
//   - without a comma, the text after the first " of " is used ("2 miles west
//     of Silverton" -> "Silverton");
//   - otherwise the location is used as-is.
//
// An empty result, from a blank location or a trailing comma or " of ", cannot
// be geocoded and returns a LocationRefinementError.
func RefineLocation(state, location string) (string, error) {
	refined := location
	if i := strings.LastIndex(location, ","); i >= 0 {
		refined = strings.TrimSpace(location[i+1:])
		if _, after, ok := strings.Cut(refined, ofSeparator); ok {
			refined = after
		}
	} else if _, after, ok := strings.Cut(location, ofSeparator); ok {
		refined = after
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return "", &LocationRefinementError{Location: location, State: state}
	}
	return refined + ", " + state, nil
}
