package pipeline

import (
	"time"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
)

// Result is the outcome of one run. It is built up as the run progresses
// and handed to the run logger, the metrics and the ops server.
type Result struct {
	JobID     string
	Status    domain.RunStatus
	StartTime time.Time
	EndTime   time.Time

	Scraped int   // rows found on the source page
	Stored  int64 // bronze rows before this run
	New     int   // rows selected by the reconciler
	Shrunk  bool

	// DataCount is the number of curated rows committed; 0 on failure.
	DataCount int
	Err       error
}

func (r Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// RunLog converts the result into its audit row.
func (r Result) RunLog() domain.RunLog {
	l := domain.RunLog{
		JobID:     r.JobID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Duration:  r.Duration(),
		Status:    r.Status,
		DataCount: r.DataCount,
	}
	if r.Err != nil {
		msg := r.Err.Error()
		l.ErrorMessage = &msg
	}
	return l
}
