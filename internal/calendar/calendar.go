// Package calendar exports tournaments as iCalendar documents so players
// can add them to their own calendars.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/iliyamo/poker-club/internal/format"
	"github.com/iliyamo/poker-club/internal/model"
)

// DefaultDuration is used as the event length; tournaments carry no end
// time.
const DefaultDuration = 6 * time.Hour

const productID = "-//poker-club//tournaments//HU"

// Options carries site-level data that is not part of a tournament.
type Options struct {
	Location string // venue name or address
	BaseURL  string // public site, used for the event URL
	Domain   string // right-hand side of the UID
	Duration time.Duration
	Now      func() time.Time
}

func (o Options) duration(levels model.BlindLevels) time.Duration {
	if o.Duration > 0 {
		return o.Duration
	}
	if m := levels.TotalMinutes(); m > 0 {
		return time.Duration(m) * time.Minute
	}
	return DefaultDuration
}

// UID is stable for a tournament so that re-imports update the event.
func UID(t model.Tournament, domain string) string {
	if domain == "" {
		domain = "poker-club"
	}
	return fmt.Sprintf("tournament-%d@%s", t.ID, domain)
}

// Tournament builds a calendar with a single VEVENT.  levels may be nil;
// when given, the sum of level durations sets the event end.
func Tournament(t model.Tournament, levels model.BlindLevels, o Options) *ics.Calendar {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	ev := cal.AddEvent(UID(t, o.Domain))
	ev.SetDtStampTime(now().UTC())
	ev.SetCreatedTime(t.CreatedAt.UTC())
	ev.SetModifiedAt(t.UpdatedAt.UTC())
	ev.SetStartAt(t.StartTime.UTC())
	ev.SetEndAt(t.StartTime.UTC().Add(o.duration(levels)))
	ev.SetSummary(t.Title)
	ev.SetDescription(Description(t))
	if o.Location != "" {
		ev.SetLocation(o.Location)
	}
	if o.BaseURL != "" {
		ev.SetURL(fmt.Sprintf("%s/tournaments/%d", strings.TrimRight(o.BaseURL, "/"), t.ID))
	}
	return cal
}

// Description summarises the money side of a tournament.
func Description(t model.Tournament) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buy-in: %s", format.HUF(t.BuyIn))
	if t.StartingChips > 0 {
		fmt.Fprintf(&b, "\nKezdő stack: %s", format.Chips(t.StartingChips))
	}
	if t.RebuyPrice > 0 {
		fmt.Fprintf(&b, "\nRebuy: %s (%s zseton)", format.HUF(t.RebuyPrice), format.Chips(t.RebuyChips))
	}
	if t.AddonPrice > 0 {
		fmt.Fprintf(&b, "\nAdd-on: %s (%s zseton)", format.HUF(t.AddonPrice), format.Chips(t.AddonChips))
	}
	if t.Guarantee > 0 {
		fmt.Fprintf(&b, "\nGarantált díjalap: %s", format.HUF(t.Guarantee))
	}
	if t.Structure != "" {
		fmt.Fprintf(&b, "\nStruktúra: %s", t.Structure)
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		b.WriteString("\n\n")
		b.WriteString(d)
	}
	return b.String()
}
