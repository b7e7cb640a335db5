// Package schedule evaluates the free-text weekly schedules attached to cash
// games, e.g. "Péntek-Vasárnap 20:00-04:00".
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrMalformed = errors.New("malformed schedule")

// dayNames maps folded (lower-case, accent-free) Hungarian day names to
// time.Weekday.
var dayNames = map[string]time.Weekday{
	"vasarnap":  time.Sunday,
	"hetfo":     time.Monday,
	"kedd":      time.Tuesday,
	"szerda":    time.Wednesday,
	"csutortok": time.Thursday,
	"pentek":    time.Friday,
	"szombat":   time.Saturday,
}

// fold lower-cases name and strips its accents, so any mix of "ő", "ö" and
// "o" spellings resolves to the same key.
func fold(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, name)
	if err != nil {
		return strings.ToLower(name)
	}
	return strings.ToLower(out)
}

var pattern = regexp.MustCompile(`^\s*([\p{L}]+)(?:\s*-\s*([\p{L}]+))?\s+(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\s*$`)

// Window is a recurring weekly session.  Start and End are minutes since
// midnight; End <= Start means the session runs past midnight.
type Window struct {
	StartDay time.Weekday
	EndDay   time.Weekday
	Start    int
	End      int
}

// Parse reads "<StartDay>-<EndDay> HH:MM-HH:MM" or "<Day> HH:MM-HH:MM".
func Parse(s string) (Window, error) {
	m := pattern.FindStringSubmatch(norm.NFC.String(s))
	if m == nil {
		return Window{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	startDay, ok := lookupDay(m[1])
	if !ok {
		return Window{}, fmt.Errorf("%w: unknown day %q", ErrMalformed, m[1])
	}
	endDay := startDay
	if m[2] != "" {
		if endDay, ok = lookupDay(m[2]); !ok {
			return Window{}, fmt.Errorf("%w: unknown day %q", ErrMalformed, m[2])
		}
	}

	start, err := clock(m[3], m[4])
	if err != nil {
		return Window{}, err
	}
	end, err := clock(m[5], m[6])
	if err != nil {
		return Window{}, err
	}

	return Window{StartDay: startDay, EndDay: endDay, Start: start, End: end}, nil
}

func lookupDay(name string) (time.Weekday, bool) {
	d, ok := dayNames[fold(name)]
	return d, ok
}

func clock(hh, mm string) (int, error) {
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: hour %q", ErrMalformed, hh)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: minute %q", ErrMalformed, mm)
	}
	// 24:00 is accepted as end of day.
	if h > 24 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: clock %s:%s", ErrMalformed, hh, mm)
	}
	return h*60 + m, nil
}

// Wraps reports whether the session crosses midnight.
func (w Window) Wraps() bool {
	return w.End <= w.Start
}

// HasDay reports whether sessions start on d, honouring ranges that wrap
// around the week (Friday-Sunday, Monday-Sunday).
func (w Window) HasDay(d time.Weekday) bool {
	if w.StartDay <= w.EndDay {
		return d >= w.StartDay && d <= w.EndDay
	}
	return d >= w.StartDay || d <= w.EndDay
}

// SessionStart returns the start of the session containing t and true, or
// false when t is outside every session.  The after-midnight part of a
// wrapping session belongs to the session that began the previous day.
func (w Window) SessionStart(t time.Time) (time.Time, bool) {
	now := t.Hour()*60 + t.Minute()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	var day time.Time
	switch {
	case w.Start == w.End:
		// whole day session
		day = midnight
	case !w.Wraps():
		if now < w.Start || now >= w.End {
			return time.Time{}, false
		}
		day = midnight
	case now >= w.Start:
		day = midnight
	case now < w.End:
		day = midnight.AddDate(0, 0, -1)
	default:
		return time.Time{}, false
	}

	if !w.HasDay(day.Weekday()) {
		return time.Time{}, false
	}
	return day.Add(time.Duration(w.Start) * time.Minute), true
}

// Contains reports whether t falls inside one of the window's sessions.
func (w Window) Contains(t time.Time) bool {
	_, ok := w.SessionStart(t)
	return ok
}

// IsLive parses s and evaluates it at t.  Malformed schedules are never live.
func IsLive(s string, t time.Time) bool {
	w, err := Parse(s)
	if err != nil {
		return false
	}
	return w.Contains(t)
}
