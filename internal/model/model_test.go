package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlindLevels_Renumber(t *testing.T) {
	levels := BlindLevels{
		{SmallBlind: 100, BigBlind: 200, Duration: 20},
		{SmallBlind: 200, BigBlind: 400, Duration: 20},
		{IsBreak: true, BreakName: "Color up", SmallBlind: 5, Duration: 10},
		{SmallBlind: 300, BigBlind: 600, Ante: 600, Duration: 20},
	}

	got := levels.Renumber()

	assert.Equal(t, []int{1, 2, 0, 3}, []int{got[0].Level, got[1].Level, got[2].Level, got[3].Level})
	assert.Zero(t, got[2].SmallBlind)
	assert.Equal(t, 70, got.TotalMinutes())
	assert.Zero(t, levels[0].Level, "input must not be mutated")
}

func TestBlindLevels_ScanValue(t *testing.T) {
	in := BlindLevels{{Level: 1, SmallBlind: 100, BigBlind: 200, Duration: 15}}
	v, err := in.Value()
	require.NoError(t, err)

	var out BlindLevels
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)

	var empty BlindLevels
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	assert.Error(t, out.Scan(42))
}

func TestDateList(t *testing.T) {
	var nilList DateList
	v, err := nilList.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var d DateList
	require.NoError(t, d.Scan(`["2026-10-16","2026-10-17"]`))
	assert.True(t, d.Contains(time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)))
	assert.False(t, d.Contains(time.Date(2026, 10, 18, 0, 30, 0, 0, time.UTC)))
}

func TestVisibleAt(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	assert.True(t, VisibleAt(nil, nil, now))
	assert.True(t, VisibleAt(&before, &after, now))
	assert.False(t, VisibleAt(&after, nil, now))
	assert.False(t, VisibleAt(nil, &before, now))
}

func TestTournament_ToggledStatus(t *testing.T) {
	assert.Equal(t, TournamentUpcoming, Tournament{Status: TournamentInactive}.ToggledStatus())
	assert.Equal(t, TournamentInactive, Tournament{Status: TournamentUpcoming}.ToggledStatus())
	assert.Equal(t, TournamentInactive, Tournament{Status: TournamentCompleted}.ToggledStatus())
}
