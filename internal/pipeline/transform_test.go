package pipeline_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/avalanche-accident-etl/internal/adapter/source"
	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
	"github.com/couchcryptid/avalanche-accident-etl/internal/pipeline"
)

// TestAccidentTransformer_SourceFixture runs the saved listing page through
// the parser and the transformer together.
func TestAccidentTransformer_SourceFixture(t *testing.T) {
	f, err := os.Open("../adapter/source/testdata/acc_us.html")
	require.NoError(t, err)
	defer f.Close()

	rows, err := source.Parse(f)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	geo := &mockGeocoder{}
	tfm := pipeline.NewTransformer(geo, discardLogger())

	type want struct {
		date, state, refined string
		fatalities           int
	}
	expected := []want{
		{"2022-12-01", "Colorado", "Frisco, Colorado", 1},
		{"2023-02-06", "Utah", "Cardiff Fork, Utah", 2},
		{"2024-01-07", "Colorado", "Silverton, Colorado", 1},
		{"2024-03-14", "Alaska", "Turnagain Pass, Alaska", 1},
	}

	for i, raw := range rows {
		raw.ID = int64(i + 1)
		out, err := tfm.Transform(context.Background(), raw)
		require.NoError(t, err, "row %d", i)

		assert.Equal(t, expected[i].date, out.Date, "row %d", i)
		assert.Equal(t, expected[i].state, out.State, "row %d", i)
		assert.Equal(t, expected[i].refined, out.RefinedLocation, "row %d", i)
		assert.Equal(t, expected[i].fatalities, out.Fatalities, "row %d", i)
		assert.Equal(t, raw.Location, out.Location, "original location kept")
		assert.Equal(t, raw.ID, out.RawID)
		require.NotNil(t, out.Latitude)
	}
	assert.Len(t, geo.queries, 4)
}

func TestAccidentTransformer_NilGeocoder(t *testing.T) {
	tfm := pipeline.NewTransformer(nil, discardLogger())

	out, err := tfm.Transform(context.Background(), domain.AccidentRaw{
		ID:         9,
		Season:     "1999-00",
		Date:       "1/15",
		State:      "MT",
		Location:   "Big Sky",
		Fatalities: "",
	})
	require.NoError(t, err)
	assert.Equal(t, "2000-01-15", out.Date)
	assert.Equal(t, "Montana", out.State)
	assert.Equal(t, "Big Sky, Montana", out.RefinedLocation)
	assert.Zero(t, out.Fatalities)
	assert.Nil(t, out.Latitude)
	assert.Nil(t, out.Longitude)
}

func TestAccidentTransformer_Errors(t *testing.T) {
	tfm := pipeline.NewTransformer(nil, discardLogger())
	base := domain.AccidentRaw{Season: "2023-24", Date: "2/1", State: "CO", Location: "Vail", Fatalities: "1"}

	bad := base
	bad.Fatalities = "unknown"
	_, err := tfm.Transform(context.Background(), bad)
	var fatErr *domain.FatalitiesError
	require.ErrorAs(t, err, &fatErr)

	bad = base
	bad.Location = "  "
	_, err = tfm.Transform(context.Background(), bad)
	var locErr *domain.LocationRefinementError
	require.ErrorAs(t, err, &locErr)

	bad = base
	bad.Season = "Season Unknown"
	_, err = tfm.Transform(context.Background(), bad)
	var dateErr *domain.DateTransformError
	require.ErrorAs(t, err, &dateErr)
}
