package postgres

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
)

func TestBronzeRoundTrip(t *testing.T) {
	raw := domain.AccidentRaw{
		Season:      "2023-24",
		Date:        "1/7†",
		State:       "CO",
		Location:    "2 miles west of Silverton",
		Description: "1 backcountry skier caught, buried, and killed",
		Fatalities:  "1",
	}

	m := toBronze(raw)
	assert.Zero(t, m.ID, "id is assigned by the database")

	m.ID = 42
	want := raw
	want.ID = 42
	if diff := cmp.Diff(want, m.toDomain()); diff != "" {
		t.Errorf("bronze mismatch (-want +got):\n%s", diff)
	}
}

func TestToSilver(t *testing.T) {
	lat, lng := 37.81, -107.66
	c := domain.AccidentCurated{
		RawID:           42,
		Season:          "2023-24",
		Date:            "2024-01-07",
		State:           "Colorado",
		Location:        "2 miles west of Silverton",
		Fatalities:      1,
		RefinedLocation: "Silverton, Colorado",
		Latitude:        &lat,
		Longitude:       &lng,
	}

	m := toSilver(c)
	assert.Equal(t, int64(42), m.BronzeID)
	assert.Equal(t, "2024-01-07", m.Date)
	assert.Equal(t, 1, m.Fatalities)
	assert.Equal(t, &lat, m.Latitude)
	assert.Equal(t, "accidents_silver", m.TableName())
}

func TestToRunLog(t *testing.T) {
	start := time.Date(2024, 1, 18, 10, 41, 0, 0, time.UTC)
	msg := "failed to fetch https://example.test: status code 503"

	m := toRunLog(domain.RunLog{
		JobID:        "1705574460",
		StartTime:    start,
		EndTime:      start.Add(1500 * time.Millisecond),
		Duration:     1500 * time.Millisecond,
		Status:       domain.RunStatusFailure,
		ErrorMessage: &msg,
	})

	assert.Equal(t, "1705574460", m.EltJobID)
	assert.InDelta(t, 1.5, m.Duration, 1e-9)
	assert.Equal(t, "Failure", m.Status)
	assert.Equal(t, &msg, m.ErrorMessage)
	assert.Equal(t, "log", m.TableName())
}
