package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/poker-club/internal/model"
)

var start = time.Date(2026, 10, 23, 18, 0, 0, 0, time.UTC)

func sample() model.Tournament {
	return model.Tournament{
		ID:            12,
		Title:         "Friday Deepstack",
		StartTime:     start,
		BuyIn:         15000,
		StartingChips: 30000,
		Guarantee:     1000000,
		Structure:     "Deepstack",
		CreatedAt:     start.Add(-48 * time.Hour),
		UpdatedAt:     start.Add(-24 * time.Hour),
	}
}

func fixedNow() time.Time { return start.Add(-time.Hour) }

func TestTournamentEventDefaults(t *testing.T) {
	cal := Tournament(sample(), nil, Options{Domain: "club.hu", BaseURL: "https://club.hu/", Now: fixedNow})

	out := cal.Serialize()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "UID:tournament-12@club.hu")
	assert.Contains(t, out, "SUMMARY:Friday Deepstack")
	assert.Contains(t, out, "DTSTART:20261023T180000Z")
	assert.Contains(t, out, "DTEND:20261024T000000Z")
	assert.Contains(t, out, "URL:https://club.hu/tournaments/12")

	parsed, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, parsed.Events(), 1)
	end, err := parsed.Events()[0].GetEndAt()
	require.NoError(t, err)
	assert.Equal(t, start.Add(DefaultDuration), end.UTC())
}

func TestTournamentEventUsesLevelDurations(t *testing.T) {
	levels := model.BlindLevels{{Duration: 20}, {Duration: 20}, {IsBreak: true, Duration: 10}}
	out := Tournament(sample(), levels, Options{Now: fixedNow}).Serialize()
	assert.Contains(t, out, "DTEND:20261023T185000Z")
	assert.Contains(t, out, "UID:tournament-12@poker-club")
}

func TestDescription(t *testing.T) {
	d := Description(sample())
	assert.Contains(t, d, "Buy-in: 15 000 Ft")
	assert.Contains(t, d, "Garantált díjalap: 1 000 000 Ft")
	assert.Contains(t, d, "Struktúra: Deepstack")
	assert.NotContains(t, d, "Rebuy")
}
