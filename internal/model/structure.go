package model

import (
	"database/sql/driver"
	"time"
)

// BlindLevel is one step of a tournament structure.  Breaks carry no blinds
// and have Level 0.
type BlindLevel struct {
	Level      int    `json:"level"`
	SmallBlind int64  `json:"smallBlind"`
	BigBlind   int64  `json:"bigBlind"`
	Ante       int64  `json:"ante"`
	Duration   int    `json:"duration"`
	IsBreak    bool   `json:"isBreak"`
	BreakName  string `json:"breakName,omitempty"`
}

// BlindLevels is stored in the structures.levels JSON column.
type BlindLevels []BlindLevel

func (l *BlindLevels) Scan(src any) error { return scanJSON(src, l) }

func (l BlindLevels) Value() (driver.Value, error) {
	if l == nil {
		l = BlindLevels{}
	}
	return valueJSON(l)
}

// Renumber assigns level numbers 1..n to the playing levels in order.
func (l BlindLevels) Renumber() BlindLevels {
	out := make(BlindLevels, len(l))
	n := 0
	for i, lv := range l {
		if lv.IsBreak {
			lv.Level = 0
			lv.SmallBlind, lv.BigBlind, lv.Ante = 0, 0, 0
		} else {
			n++
			lv.Level = n
		}
		out[i] = lv
	}
	return out
}

// TotalMinutes sums the duration of every level and break.
func (l BlindLevels) TotalMinutes() int {
	total := 0
	for _, lv := range l {
		total += lv.Duration
	}
	return total
}

// Structure is a named blind structure referenced by tournaments.
type Structure struct {
	ID          uint64      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	Levels      BlindLevels `json:"levels" db:"levels"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}
