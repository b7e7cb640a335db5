package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/calendar"
	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/format"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/queue"
	"github.com/iliyamo/poker-club/internal/repository"
)

type TournamentStore interface {
	List(ctx context.Context, f repository.TournamentFilter) ([]model.Tournament, error)
	GetByID(ctx context.Context, id uint64) (*model.Tournament, error)
	Create(ctx context.Context, t *model.Tournament) error
	Update(ctx context.Context, t *model.Tournament) error
	Patch(ctx context.Context, id uint64, cols map[string]any) error
	SetStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
	Duplicate(ctx context.Context, id uint64, title string) (*model.Tournament, error)
}

// StructureLookup resolves the structure name stored on a tournament.
type StructureLookup interface {
	GetByName(ctx context.Context, name string) (*model.Structure, error)
}

type TournamentHandler struct {
	Store      TournamentStore
	Structures StructureLookup
	Notify     Notifier
	Log        *logging.Logger
	Calendar   calendar.Options
	Now        func() time.Time
}

func NewTournamentHandler(store TournamentStore, structures StructureLookup, notify Notifier, cal calendar.Options, log *logging.Logger) *TournamentHandler {
	return &TournamentHandler{
		Store:      store,
		Structures: structures,
		Notify:     notifierOr(notify),
		Log:        loggerOr(log).With("handler", "tournaments"),
		Calendar:   cal,
		Now:        time.Now,
	}
}

type tournamentReq struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title" validate:"required,max=255"`
	Description   string    `json:"description"`
	StartTime     flexTime  `json:"startTime"`
	BuyIn         int64     `json:"buyIn" validate:"gte=0"`
	RebuyPrice    int64     `json:"rebuyPrice" validate:"gte=0"`
	RebuyChips    int64     `json:"rebuyChips" validate:"gte=0"`
	AddonPrice    int64     `json:"addonPrice" validate:"gte=0"`
	AddonChips    int64     `json:"addonChips" validate:"gte=0"`
	StartingChips int64     `json:"startingChips" validate:"gte=0"`
	Guarantee     int64     `json:"guarantee" validate:"gte=0"`
	Structure     string    `json:"structure" validate:"max=191"`
	Status        string    `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled inactive"`
	VisibleFrom   *flexTime `json:"visibleFrom"`
	VisibleUntil  *flexTime `json:"visibleUntil"`
	Featured      bool      `json:"featured"`
}

func (r *tournamentReq) check() error {
	if r.StartTime.IsZero() {
		return errors.New("startTime is required")
	}
	return checkWindow(r.VisibleFrom.ptr(), r.VisibleUntil.ptr())
}

func checkWindow(from, until *time.Time) error {
	if from != nil && until != nil && until.Before(*from) {
		return errors.New("visibleUntil must not be before visibleFrom")
	}
	return nil
}

func touchesWindow(cols map[string]any) bool {
	_, from := cols["visible_from"]
	_, until := cols["visible_until"]
	return from || until
}

// patchedWindow checks the visibility window a PATCH leaves behind: patched
// columns override the stored bounds.
func patchedWindow(cols map[string]any, from, until *time.Time) error {
	pick := func(col string, cur *time.Time) *time.Time {
		v, ok := cols[col]
		if !ok {
			return cur
		}
		if t, ok := v.(time.Time); ok {
			return &t
		}
		return nil
	}
	if err := checkWindow(pick("visible_from", from), pick("visible_until", until)); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

func (r *tournamentReq) model() *model.Tournament {
	status := r.Status
	if status == "" {
		status = model.TournamentUpcoming
	}
	return &model.Tournament{
		ID:            r.ID,
		Title:         strings.TrimSpace(r.Title),
		Description:   r.Description,
		StartTime:     r.StartTime.Time,
		BuyIn:         r.BuyIn,
		RebuyPrice:    r.RebuyPrice,
		RebuyChips:    r.RebuyChips,
		AddonPrice:    r.AddonPrice,
		AddonChips:    r.AddonChips,
		StartingChips: r.StartingChips,
		Guarantee:     r.Guarantee,
		Structure:     strings.TrimSpace(r.Structure),
		Status:        status,
		VisibleFrom:   r.VisibleFrom.ptr(),
		VisibleUntil:  r.VisibleUntil.ptr(),
		Featured:      r.Featured,
	}
}

// tournamentView is the public shape: the row plus display strings and
// the resolved blind levels when the structure name matches.
type tournamentView struct {
	model.Tournament
	BuyInText       string            `json:"buyInText"`
	GuaranteeText   string            `json:"guaranteeText,omitempty"`
	StructureLevels model.BlindLevels `json:"structureLevels,omitempty"`
}

func newTournamentView(t model.Tournament) tournamentView {
	v := tournamentView{Tournament: t, BuyInText: format.HUF(t.BuyIn)}
	if t.Guarantee > 0 {
		v.GuaranteeText = format.HUF(t.Guarantee)
	}
	return v
}

// PublicList handles GET /api/tournaments.
func (h *TournamentHandler) PublicList(c echo.Context) error {
	featured, err := queryBool(c, "featured")
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	now := h.Now().UTC()

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Store.List(ctx, repository.TournamentFilter{Featured: featured, PublicAt: &now, Limit: queryLimit(c, 100)})
	views := make([]tournamentView, 0, len(items))
	for _, t := range items {
		views = append(views, newTournamentView(t))
	}
	return publicList(c, h.Log, "tournament", views, err)
}

// publicGet loads a tournament and hides what the public may not see.
func (h *TournamentHandler) publicGet(ctx context.Context, c echo.Context) (*model.Tournament, error) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return nil, badRequest("invalid id")
	}
	t, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == model.TournamentInactive || !model.VisibleAt(t.VisibleFrom, t.VisibleUntil, h.Now().UTC()) {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (h *TournamentHandler) levels(ctx context.Context, name string) model.BlindLevels {
	if name == "" || h.Structures == nil {
		return nil
	}
	s, err := h.Structures.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.Log.Warn("structure lookup failed", "structure", name, "error", err)
		}
		return nil
	}
	return s.Levels
}

// PublicGet handles GET /api/tournaments/:id.
func (h *TournamentHandler) PublicGet(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	t, err := h.publicGet(ctx, c)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	v := newTournamentView(*t)
	v.StructureLevels = h.levels(ctx, t.Structure)
	return c.JSON(http.StatusOK, v)
}

// CalendarICS handles GET /api/tournaments/:id/calendar.ics.
func (h *TournamentHandler) CalendarICS(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	t, err := h.publicGet(ctx, c)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	opts := h.Calendar
	opts.Now = h.Now
	cal := calendar.Tournament(*t, h.levels(ctx, t.Structure), opts)

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tournament.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

// List handles GET /api/admin/tournaments (?status=&sort=).
func (h *TournamentHandler) List(c echo.Context) error {
	f := repository.TournamentFilter{Status: c.QueryParam("status")}
	if f.Status != "" && !slices.Contains(model.TournamentStatuses, f.Status) {
		return fail(c, h.Log, "tournament", badRequest("unknown status"))
	}
	if s := c.QueryParam("sort"); s != "" {
		col, ok := fieldmap.Tournaments.SortColumn(s)
		if !ok {
			return fail(c, h.Log, "tournament", badRequest("unknown sort field"))
		}
		f.OrderBy = col
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Store.List(ctx, f)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *TournamentHandler) Get(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	t, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TournamentHandler) Create(c echo.Context) error {
	var req tournamentReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	t := req.model()
	t.ID = 0

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Store.Create(ctx, t); err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	h.Notify.Changed(ctx, cache.Tournaments, queue.ActionCreated, t.ID)
	return c.JSON(http.StatusCreated, t)
}

// Update handles PUT with the id in the path, the query or the body.
func (h *TournamentHandler) Update(c echo.Context) error {
	var req tournamentReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	id, err := resolveID(c, req.ID)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	t := req.model()
	t.ID = id

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Store.Update(ctx, t); err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	h.Notify.Changed(ctx, cache.Tournaments, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, t)
}

func (h *TournamentHandler) Patch(c echo.Context) error {
	id, cols, err := bindPatch(c, fieldmap.Tournaments)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if touchesWindow(cols) {
		cur, err := h.Store.GetByID(ctx, id)
		if err != nil {
			return fail(c, h.Log, "tournament", err)
		}
		if err := patchedWindow(cols, cur.VisibleFrom, cur.VisibleUntil); err != nil {
			return fail(c, h.Log, "tournament", err)
		}
	}
	if err := h.Store.Patch(ctx, id, cols); err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	h.Notify.Changed(ctx, cache.Tournaments, queue.ActionUpdated, id)
	t, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TournamentHandler) Delete(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	h.Notify.Changed(ctx, cache.Tournaments, queue.ActionDeleted, id)
	return c.NoContent(http.StatusNoContent)
}

// Duplicate handles POST /:id/duplicate.  The copy starts upcoming and
// not featured.
func (h *TournamentHandler) Duplicate(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	var req struct {
		Title string `json:"title"`
	}
	// An empty body is fine; a body that does not decode is not.
	if err := c.Bind(&req); err != nil {
		return fail(c, h.Log, "tournament", badRequest("invalid body"))
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		src, err := h.Store.GetByID(ctx, id)
		if err != nil {
			return fail(c, h.Log, "tournament", err)
		}
		title = src.Title + " (másolat)"
	}
	cp, err := h.Store.Duplicate(ctx, id, title)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	h.Notify.Changed(ctx, cache.Tournaments, queue.ActionCreated, cp.ID)
	return c.JSON(http.StatusCreated, cp)
}

// ToggleStatus flips between inactive and upcoming.
func (h *TournamentHandler) ToggleStatus(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	t, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	next := t.ToggledStatus()
	if err := h.Store.SetStatus(ctx, id, next); err != nil {
		return fail(c, h.Log, "tournament", err)
	}
	t.Status = next
	h.Notify.Changed(ctx, cache.Tournaments, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, t)
}
