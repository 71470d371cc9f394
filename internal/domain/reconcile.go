package domain

// Reconciliation is the outcome of comparing a fresh scrape with the bronze
// table.
type Reconciliation struct {
	Scraped int
	Stored  int64
	New     []AccidentRaw
	// Shrunk is set when the source lists fewer records than are stored.
	Shrunk bool
}

// Reconcile returns the tail of scraped records that is not yet stored.
// The upstream page only ever appends, so the last (N - M) scraped records
// are the new ones. When N <= M nothing is new.
func Reconcile(scraped []AccidentRaw, stored int64) Reconciliation {
	r := Reconciliation{Scraped: len(scraped), Stored: stored}

	diff := int64(len(scraped)) - stored
	switch {
	case diff > 0:
		r.New = scraped[len(scraped)-int(diff):]
	case diff < 0:
		r.Shrunk = true
	}
	return r
}
