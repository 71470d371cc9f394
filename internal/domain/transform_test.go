package domain

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSeason   = "2023-24"
	testColorado = "Colorado"
)

func TestResolveDate(t *testing.T) {
	cases := []struct {
		name    string
		partial string
		season  string
		want    string
	}{
		{name: "december in first year", partial: "12/3", season: testSeason, want: "2023-12-03"},
		{name: "march in second year", partial: "3/14", season: testSeason, want: "2024-03-14"},
		{name: "july boundary resolves to first year", partial: "7/1", season: testSeason, want: "2023-07-01"},
		{name: "june boundary resolves to second year", partial: "6/30", season: testSeason, want: "2024-06-30"},
		{name: "four digit season", partial: "1/9", season: "2010-2011", want: "2011-01-09"},
		{name: "dagger marker stripped", partial: "2/6†", season: testSeason, want: "2024-02-06"},
		{name: "surrounding whitespace", partial: " 11/27 ", season: testSeason, want: "2023-11-27"},
		{name: "century rollover", partial: "1/15", season: "1999-00", want: "2000-01-15"},
		{name: "leap day", partial: "2/29", season: testSeason, want: "2024-02-29"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveDate(tc.partial, tc.season)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveDate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		partial string
		season  string
	}{
		{name: "month out of range", partial: "13/1", season: testSeason},
		{name: "day out of range", partial: "2/30", season: testSeason},
		{name: "non-leap february 29", partial: "2/29", season: "2022-23"},
		{name: "zero day", partial: "1/0", season: testSeason},
		{name: "non-numeric", partial: "Jan", season: testSeason},
		{name: "missing day", partial: "12", season: testSeason},
		{name: "unknown season", partial: "12/3", season: "Season Unknown"},
		{name: "three digit end year", partial: "12/3", season: "2023-245"},
		{name: "short start year", partial: "12/3", season: "23-24"},
		{name: "negative month", partial: "-1/5", season: testSeason},
		{name: "signed day", partial: "1/+5", season: testSeason},
		{name: "trailing letter", partial: "12/3a", season: testSeason},
		{name: "extra separator", partial: "1/2/3", season: testSeason},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveDate(tc.partial, tc.season)
			require.Error(t, err)

			var dateErr *DateTransformError
			require.ErrorAs(t, err, &dateErr)
			assert.Equal(t, tc.partial, dateErr.Date)
			assert.Equal(t, tc.season, dateErr.Season)
		})
	}
}

func TestParseSeason(t *testing.T) {
	first, second, err := ParseSeason("2023-24")
	require.NoError(t, err)
	assert.Equal(t, 2023, first)
	assert.Equal(t, 2024, second)

	first, second, err = ParseSeason(" 1950-1951 ")
	require.NoError(t, err)
	assert.Equal(t, 1950, first)
	assert.Equal(t, 1951, second)
}

func TestStripDateMarkers(t *testing.T) {
	assert.Equal(t, "2/6", StripDateMarkers("2/6†"))
	assert.Equal(t, "12/31", StripDateMarkers("*12/31 "))
	assert.Equal(t, "1/7", StripDateMarkers(" 1/7‡ "))
	assert.Empty(t, StripDateMarkers("†"))
	assert.Equal(t, "-1/5", StripDateMarkers("-1/5"), "only markers and whitespace are removed")
	assert.Equal(t, "12/3a", StripDateMarkers("12/3a"))
}

func TestRefineLocation(t *testing.T) {
	cases := []struct {
		name     string
		location string
		want     string
	}{
		{name: "of without comma", location: "2 miles west of Silverton", want: "Silverton, Colorado"},
		{name: "last comma segment", location: "Summit County, backcountry", want: "backcountry, Colorado"},
		{name: "plain", location: "Silverton", want: "Silverton, Colorado"},
		{name: "of inside last comma segment", location: "Summit County, 1 mile north of Frisco", want: "Frisco, Colorado"},
		{name: "multiple commas", location: "San Juan Mtns, Red Mountain Pass, Ophir", want: "Ophir, Colorado"},
		{name: "of before last comma ignored", location: "east of Vail, Shrine Pass", want: "Shrine Pass, Colorado"},
		{name: "first of wins", location: "south of Top of the World", want: "Top of the World, Colorado"},
		{name: "whitespace trimmed", location: "  Berthoud Pass  ", want: "Berthoud Pass, Colorado"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RefineLocation(testColorado, tc.location)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRefineLocation_EmptyResult(t *testing.T) {
	for _, location := range []string{"   ", "Loveland Pass,", "Loveland Pass, ", "2 miles west of "} {
		t.Run(location, func(t *testing.T) {
			got, err := RefineLocation(testColorado, location)
			require.Error(t, err)
			assert.Empty(t, got)

			var refineErr *LocationRefinementError
			require.ErrorAs(t, err, &refineErr)
			assert.Equal(t, testColorado, refineErr.State)
			assert.Equal(t, location, refineErr.Location)
		})
	}
}

func TestStateName(t *testing.T) {
	assert.Equal(t, testColorado, StateName("CO"))
	assert.Equal(t, testColorado, StateName("co"))
	assert.Equal(t, "Alaska", StateName(" AK "))
	assert.Equal(t, "Washington", StateName("washington"))
	assert.Equal(t, "District of Columbia", StateName("DC"))
	assert.Equal(t, "Ontario", StateName("Ontario"), "unknown values pass through")
}

func TestCurateAccident(t *testing.T) {
	raw := AccidentRaw{
		ID:          101,
		Season:      testSeason,
		Date:        "1/7†",
		State:       "CO",
		Location:    "Clear Creek County, 1 mile east of Loveland Pass",
		Description: "1 skier caught, buried, and killed",
		Fatalities:  "1",
	}

	got, err := CurateAccident(raw)
	require.NoError(t, err)

	assert.Equal(t, AccidentCurated{
		RawID:           101,
		Season:          testSeason,
		Date:            "2024-01-07",
		State:           testColorado,
		Location:        raw.Location,
		Description:     raw.Description,
		Fatalities:      1,
		RefinedLocation: "Loveland Pass, Colorado",
	}, got)
}

func TestCurateAccident_Errors(t *testing.T) {
	base := AccidentRaw{Season: testSeason, Date: "12/3", State: "UT", Location: "Alta", Fatalities: "2"}

	t.Run("bad date", func(t *testing.T) {
		raw := base
		raw.Date = "13/40"
		_, err := CurateAccident(raw)
		var target *DateTransformError
		assert.ErrorAs(t, err, &target)
	})

	t.Run("bad fatalities", func(t *testing.T) {
		raw := base
		raw.Fatalities = "two"
		_, err := CurateAccident(raw)
		var target *FatalitiesError
		require.ErrorAs(t, err, &target)
		assert.True(t, errors.Is(err, strconv.ErrSyntax))
	})

	t.Run("blank location", func(t *testing.T) {
		raw := base
		raw.Location = ""
		_, err := CurateAccident(raw)
		var target *LocationRefinementError
		assert.ErrorAs(t, err, &target)
	})

	t.Run("empty fatalities count as zero", func(t *testing.T) {
		raw := base
		raw.Fatalities = " "
		got, err := CurateAccident(raw)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Fatalities)
		assert.Equal(t, "Utah", got.State)
		assert.Equal(t, "Alta, Utah", got.RefinedLocation)
	})
}
