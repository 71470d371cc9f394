// Package domain models US avalanche accident records and the transforms
// that turn scraped listings into curated, geocoded rows.
//
// # Data Source
//
// Accident listings come from the Colorado Avalanche Information Center's
// US accident page. The page holds one HTML table per winter season, each
// preceded by an <h2> heading such as "2023-24 SEASON". Every table row is
// one accident: date, state, location, description, fatalities.
//
// # Listing Conventions
//
// Date format:
//
//	"M/D" with no year, e.g. "12/3" or "3/14".
//	Some dates carry a trailing dagger ("2/6†") marking a footnote on the
//	source page. Marker characters are stripped before parsing.
//
// Season format:
//
//	"YYYY-YY" or "YYYY-YYYY", e.g. "2023-24". A season runs July through
//	June, so months 7–12 fall in the first year and months 1–6 in the
//	second. See [ResolveDate].
//
// State format:
//
//	Two-letter USPS abbreviation ("CO") or a textual name. Curated rows carry
//	the full state name; unknown values pass through unchanged. See
//	[StateName].
//
// Location format:
//
//	Free text, e.g. "Summit County, Peak 1" or "2 miles west of Silverton".
//	[RefineLocation] shortens it to a geocoder-friendly "<place>, <state>".
//
// # Tables
//
// Raw listings are appended to the bronze table unchanged. Curated rows are
// derived once per raw row and appended to the silver table. Each pipeline
// execution writes one [RunLog] row.
package domain
