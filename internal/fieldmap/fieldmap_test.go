package fieldmap

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/poker-club/internal/model"
)

var modelTypes = map[string]reflect.Type{
	"tournaments":    reflect.TypeOf(model.Tournament{}),
	"cash_games":     reflect.TypeOf(model.CashGame{}),
	"banners":        reflect.TypeOf(model.Banner{}),
	"players":        reflect.TypeOf(model.Player{}),
	"gallery_images": reflect.TypeOf(model.GalleryImage{}),
	"news_articles":  reflect.TypeOf(model.NewsArticle{}),
	"structures":     reflect.TypeOf(model.Structure{}),
}

func tagName(f reflect.StructField, key string) string {
	return strings.Split(f.Tag.Get(key), ",")[0]
}

// Every dictionary entry must name exactly one model field whose json and db
// tags agree with it, and every writable model field must be in the dictionary.
func TestMappings_AgreeWithModelTags(t *testing.T) {
	derived := map[string]bool{
		"id": true, "created_at": true, "updated_at": true, "levels": true,
		"total_deposits": true, "total_withdrawals": true, "balance": true,
	}

	for table, m := range All {
		typ, ok := modelTypes[table]
		require.True(t, ok, "no model registered for %s", table)

		seen := map[string]bool{}
		for i := 0; i < typ.NumField(); i++ {
			sf := typ.Field(i)
			jsonName, dbName := tagName(sf, "json"), tagName(sf, "db")
			if derived[dbName] {
				continue
			}
			col, ok := m.Column(jsonName)
			require.True(t, ok, "%s: field %s missing from dictionary", table, jsonName)
			assert.Equal(t, dbName, col, "%s.%s", table, jsonName)

			back, ok := m.Field(col)
			require.True(t, ok)
			assert.Equal(t, jsonName, back, "%s: round trip of %s", table, jsonName)
			seen[jsonName] = true
		}
		assert.Len(t, seen, len(m.Names()), "%s: dictionary has fields the model lacks", table)
	}
}

func TestColumns_Converts(t *testing.T) {
	cols, err := Tournaments.Columns(map[string]any{
		"title":        "Friday Deepstack",
		"buyIn":        float64(20000),
		"featured":     true,
		"startTime":    "2026-10-23T19:00:00+02:00",
		"visibleFrom":  "",
		"visibleUntil": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "Friday Deepstack", cols["title"])
	assert.Equal(t, int64(20000), cols["buy_in"])
	assert.Equal(t, true, cols["featured"])
	assert.Equal(t, time.Date(2026, 10, 23, 17, 0, 0, 0, time.UTC), cols["start_time"])
	assert.Nil(t, cols["visible_from"])
	assert.Contains(t, cols, "visible_until")
}

func TestColumns_Rejects(t *testing.T) {
	_, err := Tournaments.Columns(map[string]any{"buy_in": float64(1)})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = Tournaments.Columns(map[string]any{"buyIn": "lots"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Tournaments.Columns(map[string]any{"buyIn": 1.5})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Tournaments.Columns(map[string]any{"title": nil})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = CashGames.Columns(map[string]any{"scheduledDates": []any{"2026-10-17", "tomorrow"}})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestColumns_EnforcesRules(t *testing.T) {
	cases := []struct {
		name string
		m    Mapping
		body map[string]any
		msg  string
	}{
		{"blank cash game name", CashGames, map[string]any{"name": "  "}, "name is required"},
		{"blank stakes", CashGames, map[string]any{"stakes": ""}, "stakes is required"},
		{"negative min buy-in", CashGames, map[string]any{"minBuyIn": float64(-5000)}, "minBuyIn must be at least 0"},
		{"negative max buy-in", CashGames, map[string]any{"maxBuyIn": float64(-1)}, "maxBuyIn must be at least 0"},
		{"blank banner image", Banners, map[string]any{"imageUrl": ""}, "imageUrl is required"},
		{"blank gallery image", Gallery, map[string]any{"imageUrl": " "}, "imageUrl is required"},
		{"negative buy-in", Tournaments, map[string]any{"buyIn": float64(-1)}, "buyIn must be at least 0"},
		{"unknown status", Tournaments, map[string]any{"status": "party"}, "status must be one of"},
		{"unknown news status", News, map[string]any{"status": "archived"}, "status must be one of"},
		{"long stakes", CashGames, map[string]any{"stakes": strings.Repeat("9", 65)}, "stakes must be at most 64"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.m.Columns(tc.body)
			require.ErrorIs(t, err, ErrInvalidValue)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}

	cols, err := Banners.Columns(map[string]any{"linkUrl": "", "displayOrder": float64(-2)})
	require.NoError(t, err)
	assert.Nil(t, cols["link_url"])
	assert.Equal(t, int64(-2), cols["display_order"])

	_, err = News.Columns(map[string]any{"status": model.NewsPublished, "imageUrl": ""})
	assert.NoError(t, err)
}

func TestColumns_Dates(t *testing.T) {
	cols, err := CashGames.Columns(map[string]any{"scheduledDates": []any{"2026-10-17"}})
	require.NoError(t, err)
	assert.Equal(t, model.DateList{"2026-10-17"}, cols["scheduled_dates"])
}

func TestSortColumn(t *testing.T) {
	col, ok := Tournaments.SortColumn("-startTime")
	require.True(t, ok)
	assert.Equal(t, "start_time DESC", col)

	col, ok = News.SortColumn("publishedAt")
	require.True(t, ok)
	assert.Equal(t, "published_at ASC", col)

	_, ok = Tournaments.SortColumn("start_time; DROP TABLE users")
	assert.False(t, ok)
}

func TestParseTime_FormLayouts(t *testing.T) {
	got, err := ParseTime("2026-10-23T19:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 23, 19, 0, 0, 0, time.UTC), got)

	_, err = ParseTime("next friday")
	assert.Error(t, err)
}

func TestNew_PanicsOnDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		New("t", Field{Name: "a", Column: "a"}, Field{Name: "b", Column: "a"})
	})
}
