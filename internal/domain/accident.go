package domain

import "time"

// AccidentRaw is one scraped listing row, stored verbatim in the bronze table.
type AccidentRaw struct {
	ID          int64  `json:"id,omitempty"` // assigned by the store on insert
	Season      string `json:"season"`
	Date        string `json:"date"` // partial "M/D", may carry marker characters
	State       string `json:"state"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Fatalities  string `json:"fatalities"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AccidentCurated is the transformed form of an AccidentRaw row.
type AccidentCurated struct {
	ID              int64    `json:"id,omitempty"`
	RawID           int64    `json:"bronze_id"`
	Season          string   `json:"season"`
	Date            string   `json:"date"` // YYYY-MM-DD
	State           string   `json:"state"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	Fatalities      int      `json:"fatalities"`
	RefinedLocation string   `json:"refined_location"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

// RunStatus is the outcome recorded for one pipeline execution.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "Success"
	RunStatusFailure RunStatus = "Failure"
)

// RunLog is the audit row written once at the end of every execution.
type RunLog struct {
	JobID        string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	Status       RunStatus
	DataCount    int
	ErrorMessage *string
}
