package postgres

import (
	"time"

	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
)

// accidentBronze mirrors a scraped row verbatim. Every column is text so a
// malformed upstream value can still be landed and audited.
type accidentBronze struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Season      string `gorm:"type:text"`
	Date        string `gorm:"type:text"`
	State       string `gorm:"type:text"`
	Location    string `gorm:"type:text"`
	Description string `gorm:"type:text"`
	Fatalities  string `gorm:"type:text"`
}

func (accidentBronze) TableName() string { return "accidents_bronze" }

type accidentSilver struct {
	ID              int64    `gorm:"primaryKey;autoIncrement"`
	BronzeID        int64    `gorm:"not null;uniqueIndex"`
	Season          string   `gorm:"type:varchar(50)"`
	Date            string   `gorm:"type:varchar(25)"`
	State           string   `gorm:"type:varchar(50)"`
	Location        string   `gorm:"type:text"`
	Description     string   `gorm:"type:text"`
	Fatalities      int      `gorm:"not null"`
	RefinedLocation string   `gorm:"type:text"`
	Latitude        *float64 `gorm:"type:double precision"`
	Longitude       *float64 `gorm:"type:double precision"`
}

func (accidentSilver) TableName() string { return "accidents_silver" }

type runLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	EltJobID     string    `gorm:"column:elt_job_id;type:text;not null"`
	StartTime    time.Time `gorm:"not null"`
	EndTime      time.Time `gorm:"not null"`
	Duration     float64   `gorm:"not null"` // seconds
	Status       string    `gorm:"type:varchar(16);not null"`
	DataCount    int       `gorm:"not null"`
	ErrorMessage *string   `gorm:"type:text"`
}

func (runLog) TableName() string { return "log" }

func toBronze(r domain.AccidentRaw) accidentBronze {
	return accidentBronze{
		Season:      r.Season,
		Date:        r.Date,
		State:       r.State,
		Location:    r.Location,
		Description: r.Description,
		Fatalities:  r.Fatalities,
	}
}

func (b accidentBronze) toDomain() domain.AccidentRaw {
	return domain.AccidentRaw{
		ID:          b.ID,
		Season:      b.Season,
		Date:        b.Date,
		State:       b.State,
		Location:    b.Location,
		Description: b.Description,
		Fatalities:  b.Fatalities,
	}
}

func toSilver(c domain.AccidentCurated) accidentSilver {
	return accidentSilver{
		BronzeID:        c.RawID,
		Season:          c.Season,
		Date:            c.Date,
		State:           c.State,
		Location:        c.Location,
		Description:     c.Description,
		Fatalities:      c.Fatalities,
		RefinedLocation: c.RefinedLocation,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
	}
}

func toRunLog(l domain.RunLog) runLog {
	return runLog{
		EltJobID:     l.JobID,
		StartTime:    l.StartTime,
		EndTime:      l.EndTime,
		Duration:     l.Duration.Seconds(),
		Status:       string(l.Status),
		DataCount:    l.DataCount,
		ErrorMessage: l.ErrorMessage,
	}
}
