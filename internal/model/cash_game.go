package model

import (
	"database/sql/driver"
	"time"
)

// DateLayout is the format of CashGame.ScheduledDates entries.
const DateLayout = "2006-01-02"

// DateList is a JSON array of YYYY-MM-DD dates.
type DateList []string

func (d *DateList) Scan(src any) error { return scanJSON(src, d) }

func (d DateList) Value() (driver.Value, error) {
	if d == nil {
		d = DateList{}
	}
	return valueJSON(d)
}

// Contains reports whether day (in its own location) is listed.
func (d DateList) Contains(day time.Time) bool {
	key := day.Format(DateLayout)
	for _, v := range d {
		if v == key {
			return true
		}
	}
	return false
}

// CashGame is a recurring cash table.  Schedule is free text such as
// "Hétfő-Vasárnap 18:00-06:00".
type CashGame struct {
	ID             uint64    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Game           string    `json:"game" db:"game"`
	Stakes         string    `json:"stakes" db:"stakes"`
	MinBuyIn       int64     `json:"minBuyIn" db:"min_buy_in"`
	MaxBuyIn       int64     `json:"maxBuyIn" db:"max_buy_in"`
	Schedule       string    `json:"schedule" db:"schedule"`
	ScheduledDates DateList  `json:"scheduledDates" db:"scheduled_dates"`
	Description    string    `json:"description" db:"description"`
	Active         bool      `json:"active" db:"is_active"`
	Featured       bool      `json:"featured" db:"featured"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
