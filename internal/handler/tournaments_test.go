package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/calendar"
	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/queue"
	"github.com/iliyamo/poker-club/internal/repository"
)

type fakeTournaments struct {
	mu      sync.Mutex
	rows    map[uint64]model.Tournament
	next    uint64
	listErr error
	last    repository.TournamentFilter
	patched map[string]any
}

func newFakeTournaments(rows ...model.Tournament) *fakeTournaments {
	f := &fakeTournaments{rows: map[uint64]model.Tournament{}, next: 100}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeTournaments) List(_ context.Context, flt repository.TournamentFilter) ([]model.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = flt
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Tournament{}
	for _, t := range f.rows {
		if flt.PublicAt != nil && (t.Status == model.TournamentInactive || !model.VisibleAt(t.VisibleFrom, t.VisibleUntil, *flt.PublicAt)) {
			continue
		}
		if flt.Status != "" && t.Status != flt.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeTournaments) GetByID(_ context.Context, id uint64) (*model.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTournaments) Create(_ context.Context, t *model.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	t.ID = f.next
	t.CreatedAt, t.UpdatedAt = now, now
	f.rows[t.ID] = *t
	return nil
}

func (f *fakeTournaments) Update(_ context.Context, t *model.Tournament) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[t.ID]; !ok {
		return repository.ErrNotFound
	}
	f.rows[t.ID] = *t
	return nil
}

func (f *fakeTournaments) Patch(_ context.Context, id uint64, cols map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.patched = cols
	if v, ok := cols["title"].(string); ok {
		t.Title = v
	}
	if v, ok := cols["buy_in"].(int64); ok {
		t.BuyIn = v
	}
	if v, ok := cols["start_time"].(time.Time); ok {
		t.StartTime = v
	}
	f.rows[id] = t
	return nil
}

func (f *fakeTournaments) SetStatus(_ context.Context, id uint64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	f.rows[id] = t
	return nil
}

func (f *fakeTournaments) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTournaments) Duplicate(ctx context.Context, id uint64, title string) (*model.Tournament, error) {
	src, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *src
	cp.Title, cp.Status, cp.Featured = title, model.TournamentUpcoming, false
	if err := f.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

type fakeStructureLookup map[string]model.BlindLevels

func (f fakeStructureLookup) GetByName(_ context.Context, name string) (*model.Structure, error) {
	l, ok := f[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Structure{Name: name, Levels: l}, nil
}

func sampleTournaments() []model.Tournament {
	past := now.Add(-time.Hour)
	return []model.Tournament{
		{ID: 1, Title: "Friday Deepstack", StartTime: now.Add(48 * time.Hour), BuyIn: 15000, Guarantee: 1000000,
			Structure: "Deepstack", Status: model.TournamentUpcoming, Featured: true},
		{ID: 2, Title: "Hidden", StartTime: now.Add(72 * time.Hour), Status: model.TournamentInactive},
		{ID: 3, Title: "Expired window", StartTime: now.Add(24 * time.Hour), Status: model.TournamentUpcoming, VisibleUntil: &past},
	}
}

func tournamentEcho(store *fakeTournaments, n *recordingNotifier) *TournamentHandler {
	if n == nil {
		n = &recordingNotifier{}
	}
	h := NewTournamentHandler(store, fakeStructureLookup{
		"Deepstack": {{Level: 1, SmallBlind: 100, BigBlind: 200, Duration: 30}},
	}, n, calendar.Options{Domain: "club.hu"}, nopLog())
	h.Now = clock
	return h
}

func TestTournamentPublicListHidesInvisible(t *testing.T) {
	store := newFakeTournaments(sampleTournaments()...)
	h := tournamentEcho(store, &recordingNotifier{})
	e := newEcho()
	e.GET("/api/tournaments", h.PublicList)

	rec := request(t, e, http.MethodGet, "/api/tournaments?featured=true&limit=5", "")
	okStatus(t, rec, http.StatusOK)

	got := decode[[]map[string]any](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Friday Deepstack", got[0]["title"])
	assert.Equal(t, "15 000 Ft", got[0]["buyInText"])
	assert.Equal(t, "1 000 000 Ft", got[0]["guaranteeText"])
	assert.Contains(t, got[0], "startTime")
	assert.Equal(t, 5, store.last.Limit)
	require.NotNil(t, store.last.Featured)
	assert.True(t, *store.last.Featured)
}

func TestTournamentPublicListMasksErrors(t *testing.T) {
	store := newFakeTournaments()
	store.listErr = errors.New("db down")
	e := newEcho()
	e.GET("/api/tournaments", tournamentEcho(store, nil).PublicList)

	rec := request(t, e, http.MethodGet, "/api/tournaments", "")
	okStatus(t, rec, http.StatusOK)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTournamentPublicGet(t *testing.T) {
	e := newEcho()
	h := tournamentEcho(newFakeTournaments(sampleTournaments()...), nil)
	e.GET("/api/tournaments/:id", h.PublicGet)

	rec := request(t, e, http.MethodGet, "/api/tournaments/1", "")
	okStatus(t, rec, http.StatusOK)
	got := decode[map[string]any](t, rec)
	levels, ok := got["structureLevels"].([]any)
	require.True(t, ok)
	assert.Len(t, levels, 1)

	assert.Equal(t, http.StatusNotFound, request(t, e, http.MethodGet, "/api/tournaments/2", "").Code)
	assert.Equal(t, http.StatusNotFound, request(t, e, http.MethodGet, "/api/tournaments/3", "").Code)
	assert.Equal(t, http.StatusNotFound, request(t, e, http.MethodGet, "/api/tournaments/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, request(t, e, http.MethodGet, "/api/tournaments/abc", "").Code)
}

func TestTournamentCalendar(t *testing.T) {
	e := newEcho()
	h := tournamentEcho(newFakeTournaments(sampleTournaments()...), nil)
	e.GET("/api/tournaments/:id/calendar.ics", h.CalendarICS)

	rec := request(t, e, http.MethodGet, "/api/tournaments/1/calendar.ics", "")
	okStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "UID:tournament-1@club.hu")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Friday Deepstack")
}

func TestTournamentCreateValidates(t *testing.T) {
	n := &recordingNotifier{}
	e := newEcho()
	e.POST("/api/admin/tournaments", tournamentEcho(newFakeTournaments(), n).Create)

	rec := request(t, e, http.MethodPost, "/api/admin/tournaments", `{"title":"No start"}`)
	okStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "startTime is required")

	rec = request(t, e, http.MethodPost, "/api/admin/tournaments", `{"title":"Bad status","startTime":"2026-10-20T19:00","status":"weird"}`)
	okStatus(t, rec, http.StatusBadRequest)

	rec = request(t, e, http.MethodPost, "/api/admin/tournaments",
		`{"title":"Window","startTime":"2026-10-20T19:00","visibleFrom":"2026-10-19T00:00:00Z","visibleUntil":"2026-10-18T00:00:00Z"}`)
	okStatus(t, rec, http.StatusBadRequest)
	assert.Empty(t, n.all())
}

func TestTournamentCreateThenEditRoundTrip(t *testing.T) {
	store := newFakeTournaments()
	n := &recordingNotifier{}
	h := tournamentEcho(store, n)
	e := newEcho()
	e.POST("/api/admin/tournaments", h.Create)
	e.GET("/api/admin/tournaments/:id", h.Get)
	e.PUT("/api/admin/tournaments", h.Update)

	body := `{"title":"Sunday Main","description":"Big one","startTime":"2026-10-25T18:00:00Z","buyIn":25000,` +
		`"rebuyPrice":10000,"rebuyChips":20000,"addonPrice":10000,"addonChips":30000,"startingChips":40000,` +
		`"guarantee":2000000,"structure":"Deepstack","visibleFrom":"2026-10-18T00:00","featured":true}`
	rec := request(t, e, http.MethodPost, "/api/admin/tournaments", body)
	okStatus(t, rec, http.StatusCreated)
	created := decode[model.Tournament](t, rec)
	assert.Equal(t, model.TournamentUpcoming, created.Status)

	rec = request(t, e, http.MethodGet, "/api/admin/tournaments/101", "")
	okStatus(t, rec, http.StatusOK)
	fetched := decode[model.Tournament](t, rec)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, int64(25000), fetched.BuyIn)
	assert.Equal(t, int64(30000), fetched.AddonChips)
	assert.True(t, fetched.StartTime.Equal(time.Date(2026, 10, 25, 18, 0, 0, 0, time.UTC)))
	require.NotNil(t, fetched.VisibleFrom)
	assert.True(t, fetched.VisibleFrom.Equal(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, fetched.VisibleUntil)

	rec = request(t, e, http.MethodPut, "/api/admin/tournaments", `{"id":101,"title":"Sunday Main II","startTime":"2026-10-25T18:00:00Z","buyIn":30000}`)
	okStatus(t, rec, http.StatusOK)
	assert.Equal(t, "Sunday Main II", store.rows[101].Title)
	assert.Equal(t, int64(30000), store.rows[101].BuyIn)

	assert.Equal(t, []change{
		{cache.Tournaments, queue.ActionCreated, 101},
		{cache.Tournaments, queue.ActionUpdated, 101},
	}, n.all())
}

func TestTournamentUpdateRequiresID(t *testing.T) {
	e := newEcho()
	e.PUT("/api/admin/tournaments", tournamentEcho(newFakeTournaments(), nil).Update)
	rec := request(t, e, http.MethodPut, "/api/admin/tournaments", `{"title":"x","startTime":"2026-10-25T18:00:00Z"}`)
	okStatus(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "id is required")

	rec = request(t, e, http.MethodPut, "/api/admin/tournaments?id=7", `{"title":"x","startTime":"2026-10-25T18:00:00Z"}`)
	okStatus(t, rec, http.StatusNotFound)
}

func TestTournamentPatch(t *testing.T) {
	store := newFakeTournaments(sampleTournaments()...)
	e := newEcho()
	h := tournamentEcho(store, nil)
	e.PATCH("/api/admin/tournaments/:id", h.Patch)
	e.PATCH("/api/admin/tournaments", h.Patch)

	rec := request(t, e, http.MethodPatch, "/api/admin/tournaments/1", `{"title":"Renamed","buyIn":20000}`)
	okStatus(t, rec, http.StatusOK)
	assert.Equal(t, map[string]any{"title": "Renamed", "buy_in": int64(20000)}, store.patched)
	assert.Equal(t, "Renamed", decode[model.Tournament](t, rec).Title)

	rec = request(t, e, http.MethodPatch, "/api/admin/tournaments", `{"id":1,"startTime":"2026-11-01T19:00"}`)
	okStatus(t, rec, http.StatusOK)
	assert.Equal(t, time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC), store.rows[1].StartTime)

	assert.Equal(t, http.StatusBadRequest, request(t, e, http.MethodPatch, "/api/admin/tournaments/1", `{"colour":"red"}`).Code)
	assert.Equal(t, http.StatusBadRequest, request(t, e, http.MethodPatch, "/api/admin/tournaments/1", `{"buyIn":"lots"}`).Code)
	assert.Equal(t, http.StatusBadRequest, request(t, e, http.MethodPatch, "/api/admin/tournaments/1", `{"status":"party"}`).Code)
	assert.Equal(t, http.StatusBadRequest, request(t, e, http.MethodPatch, "/api/admin/tournaments/1", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, request(t, e, http.MethodPatch, "/api/admin/tournaments/55", `{"title":"x"}`).Code)
}

func TestTournamentPatchKeepsFullBodyRules(t *testing.T) {
	store := newFakeTournaments(sampleTournaments()...)
	from := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	row := store.rows[1]
	row.VisibleFrom = &from
	store.rows[1] = row

	e := newEcho()
	h := tournamentEcho(store, nil)
	e.PATCH("/api/admin/tournaments/:id", h.Patch)

	for _, body := range []string{
		`{"title":"  "}`,
		`{"buyIn":-1}`,
		`{"guarantee":-1000000}`,
		`{"visibleUntil":"2026-10-01T00:00"}`,
		`{"visibleFrom":"2026-11-01T00:00","visibleUntil":"2026-10-25T00:00"}`,
	} {
		store.patched = nil
		rec := request(t, e, http.MethodPatch, "/api/admin/tournaments/1", body)
		okStatus(t, rec, http.StatusBadRequest)
		assert.Nil(t, store.patched, body)
	}

	rec := request(t, e, http.MethodPatch, "/api/admin/tournaments/1", `{"visibleFrom":null,"visibleUntil":"2026-10-01T00:00"}`)
	okStatus(t, rec, http.StatusOK)
	assert.Contains(t, store.patched, "visible_from")

	rec = request(t, e, http.MethodPatch, "/api/admin/tournaments/1", `{"visibleUntil":"2026-10-25T00:00"}`)
	okStatus(t, rec, http.StatusOK)
}

func TestTournamentDeleteByQueryAndPath(t *testing.T) {
	store := newFakeTournaments(sampleTournaments()...)
	n := &recordingNotifier{}
	e := newEcho()
	h := tournamentEcho(store, n)
	e.DELETE("/api/admin/tournaments", h.Delete)
	e.DELETE("/api/admin/tournaments/:id", h.Delete)

	okStatus(t, request(t, e, http.MethodDelete, "/api/admin/tournaments?id=1", ""), http.StatusNoContent)
	okStatus(t, request(t, e, http.MethodDelete, "/api/admin/tournaments/2", ""), http.StatusNoContent)
	okStatus(t, request(t, e, http.MethodDelete, "/api/admin/tournaments/2", ""), http.StatusNotFound)
	okStatus(t, request(t, e, http.MethodDelete, "/api/admin/tournaments", ""), http.StatusBadRequest)
	assert.Len(t, n.all(), 2)
}

func TestTournamentDuplicateAndToggle(t *testing.T) {
	store := newFakeTournaments(sampleTournaments()...)
	e := newEcho()
	h := tournamentEcho(store, nil)
	e.POST("/api/admin/tournaments/:id/duplicate", h.Duplicate)
	e.POST("/api/admin/tournaments/:id/toggle-status", h.ToggleStatus)

	rec := request(t, e, http.MethodPost, "/api/admin/tournaments/1/duplicate", "")
	okStatus(t, rec, http.StatusCreated)
	cp := decode[model.Tournament](t, rec)
	assert.Equal(t, "Friday Deepstack (másolat)", cp.Title)
	assert.False(t, cp.Featured)
	assert.NotEqual(t, uint64(1), cp.ID)

	rec = request(t, e, http.MethodPost, "/api/admin/tournaments/1/duplicate", `{"title":"Saturday Deepstack"}`)
	okStatus(t, rec, http.StatusCreated)
	assert.Equal(t, "Saturday Deepstack", decode[model.Tournament](t, rec).Title)

	before := len(store.rows)
	rec = request(t, e, http.MethodPost, "/api/admin/tournaments/1/duplicate", `{"title":`)
	okStatus(t, rec, http.StatusBadRequest)
	assert.Len(t, store.rows, before)

	rec = request(t, e, http.MethodPost, "/api/admin/tournaments/2/toggle-status", "")
	okStatus(t, rec, http.StatusOK)
	assert.Equal(t, model.TournamentUpcoming, store.rows[2].Status)

	rec = request(t, e, http.MethodPost, "/api/admin/tournaments/2/toggle-status", "")
	okStatus(t, rec, http.StatusOK)
	assert.Equal(t, model.TournamentInactive, store.rows[2].Status)
}

func TestTournamentAdminListSort(t *testing.T) {
	store := newFakeTournaments(sampleTournaments()...)
	e := newEcho()
	e.GET("/api/admin/tournaments", tournamentEcho(store, nil).List)

	okStatus(t, request(t, e, http.MethodGet, "/api/admin/tournaments?sort=-startTime&status=upcoming", ""), http.StatusOK)
	assert.Equal(t, "start_time DESC", store.last.OrderBy)
	assert.Equal(t, model.TournamentUpcoming, store.last.Status)

	okStatus(t, request(t, e, http.MethodGet, "/api/admin/tournaments?sort=password", ""), http.StatusBadRequest)
	okStatus(t, request(t, e, http.MethodGet, "/api/admin/tournaments?status=nope", ""), http.StatusBadRequest)
}
