package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeRaws(n int) []AccidentRaw {
	out := make([]AccidentRaw, n)
	for i := range out {
		out[i] = AccidentRaw{Season: testSeason, Date: "1/1", State: "CO", Location: fmt.Sprintf("loc-%d", i), Fatalities: "1"}
	}
	return out
}

func TestReconcile(t *testing.T) {
	cases := []struct {
		name    string
		scraped int
		stored  int64
		wantNew int
		shrunk  bool
	}{
		{name: "empty store takes everything", scraped: 5, stored: 0, wantNew: 5},
		{name: "tail appended", scraped: 103, stored: 100, wantNew: 3},
		{name: "counts match", scraped: 100, stored: 100, wantNew: 0},
		{name: "source shrank", scraped: 90, stored: 100, wantNew: 0, shrunk: true},
		{name: "nothing scraped", scraped: 0, stored: 0, wantNew: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scraped := makeRaws(tc.scraped)
			r := Reconcile(scraped, tc.stored)

			assert.Len(t, r.New, tc.wantNew)
			assert.Equal(t, tc.shrunk, r.Shrunk)
			assert.Equal(t, tc.scraped, r.Scraped)
			assert.Equal(t, tc.stored, r.Stored)
			if tc.wantNew > 0 {
				assert.Equal(t, scraped[tc.scraped-tc.wantNew:], r.New)
			}
		})
	}
}

func TestReconcile_LengthIsMaxOfDifferenceAndZero(t *testing.T) {
	for n := 0; n <= 6; n++ {
		for m := int64(0); m <= 6; m++ {
			r := Reconcile(makeRaws(n), m)
			assert.Len(t, r.New, max(n-int(m), 0), "N=%d M=%d", n, m)
		}
	}
}
