package model

import "time"

// Tournament statuses.
const (
	TournamentUpcoming  = "upcoming"
	TournamentOngoing   = "ongoing"
	TournamentCompleted = "completed"
	TournamentCancelled = "cancelled"
	TournamentInactive  = "inactive"
)

// TournamentStatuses lists every valid status in display order.
var TournamentStatuses = []string{
	TournamentUpcoming,
	TournamentOngoing,
	TournamentCompleted,
	TournamentCancelled,
	TournamentInactive,
}

// Tournament is a scheduled poker tournament.  Structure is the free-text
// name of a Structure; nothing enforces that it exists.
type Tournament struct {
	ID            uint64     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	StartTime     time.Time  `json:"startTime" db:"start_time"`
	BuyIn         int64      `json:"buyIn" db:"buy_in"`
	RebuyPrice    int64      `json:"rebuyPrice" db:"rebuy_price"`
	RebuyChips    int64      `json:"rebuyChips" db:"rebuy_chips"`
	AddonPrice    int64      `json:"addonPrice" db:"addon_price"`
	AddonChips    int64      `json:"addonChips" db:"addon_chips"`
	StartingChips int64      `json:"startingChips" db:"starting_chips"`
	Guarantee     int64      `json:"guarantee" db:"guarantee"`
	Structure     string     `json:"structure" db:"structure"`
	Status        string     `json:"status" db:"status"`
	VisibleFrom   *time.Time `json:"visibleFrom" db:"visible_from"`
	VisibleUntil  *time.Time `json:"visibleUntil" db:"visible_until"`
	Featured      bool       `json:"featured" db:"featured"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// VisibleAt reports whether t falls inside the optional visibility window.
func VisibleAt(from, until *time.Time, t time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if until != nil && t.After(*until) {
		return false
	}
	return true
}

// ToggledStatus flips between inactive and upcoming; any other status
// becomes inactive.
func (t Tournament) ToggledStatus() string {
	if t.Status == TournamentInactive {
		return TournamentUpcoming
	}
	return TournamentInactive
}
