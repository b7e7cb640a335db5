package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/queue"
	"github.com/iliyamo/poker-club/internal/repository"
	"github.com/iliyamo/poker-club/internal/schedule"
)

type CashGameStore interface {
	List(ctx context.Context, f repository.CashGameFilter) ([]model.CashGame, error)
	GetByID(ctx context.Context, id uint64) (*model.CashGame, error)
	Create(ctx context.Context, g *model.CashGame) error
	Update(ctx context.Context, g *model.CashGame) error
	Patch(ctx context.Context, id uint64, cols map[string]any) error
	SetActive(ctx context.Context, id uint64, active bool) error
	Delete(ctx context.Context, id uint64) error
}

type CashGameHandler struct {
	Store    CashGameStore
	Notify   Notifier
	Log      *logging.Logger
	Location *time.Location // club wall clock for the live predicate
	Now      func() time.Time
}

func NewCashGameHandler(store CashGameStore, notify Notifier, loc *time.Location, log *logging.Logger) *CashGameHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CashGameHandler{
		Store:    store,
		Notify:   notifierOr(notify),
		Log:      loggerOr(log).With("handler", "cash-games"),
		Location: loc,
		Now:      time.Now,
	}
}

type cashGameReq struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name" validate:"required,max=255"`
	Game           string   `json:"game" validate:"max=32"`
	Stakes         string   `json:"stakes" validate:"required,max=64"`
	MinBuyIn       int64    `json:"minBuyIn" validate:"gte=0"`
	MaxBuyIn       int64    `json:"maxBuyIn" validate:"gte=0"`
	Schedule       string   `json:"schedule" validate:"max=255"`
	ScheduledDates []string `json:"scheduledDates" validate:"dive,datetime=2006-01-02"`
	Description    string   `json:"description"`
	Active         *bool    `json:"active"`
	Featured       bool     `json:"featured"`
}

func (r *cashGameReq) model() *model.CashGame {
	game := strings.TrimSpace(r.Game)
	if game == "" {
		game = "NLH"
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &model.CashGame{
		ID:             r.ID,
		Name:           strings.TrimSpace(r.Name),
		Game:           game,
		Stakes:         strings.TrimSpace(r.Stakes),
		MinBuyIn:       r.MinBuyIn,
		MaxBuyIn:       r.MaxBuyIn,
		Schedule:       strings.TrimSpace(r.Schedule),
		ScheduledDates: model.DateList(r.ScheduledDates),
		Description:    r.Description,
		Active:         active,
		Featured:       r.Featured,
	}
}

// cashGameView adds the live flag to the public shape.
type cashGameView struct {
	model.CashGame
	IsLive bool `json:"isLive"`
}

// Live reports whether g is running at t.  Inactive games never are; a
// game with scheduled dates only runs on sessions starting on one of them.
func Live(g model.CashGame, t time.Time) bool {
	if !g.Active {
		return false
	}
	w, err := schedule.Parse(g.Schedule)
	if err != nil {
		return false
	}
	start, ok := w.SessionStart(t)
	if !ok {
		return false
	}
	if len(g.ScheduledDates) > 0 && !g.ScheduledDates.Contains(start) {
		return false
	}
	return true
}

func (h *CashGameHandler) PublicList(c echo.Context) error {
	now := h.Now().In(h.Location)

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Store.List(ctx, repository.CashGameFilter{ActiveOnly: true})
	views := make([]cashGameView, 0, len(items))
	for _, g := range items {
		views = append(views, cashGameView{CashGame: g, IsLive: Live(g, now)})
	}
	return publicList(c, h.Log, "cash game", views, err)
}

func (h *CashGameHandler) List(c echo.Context) error {
	featured, err := queryBool(c, "featured")
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Store.List(ctx, repository.CashGameFilter{Featured: featured})
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	now := h.Now().In(h.Location)
	views := make([]cashGameView, 0, len(items))
	for _, g := range items {
		views = append(views, cashGameView{CashGame: g, IsLive: Live(g, now)})
	}
	return c.JSON(http.StatusOK, views)
}

func (h *CashGameHandler) Get(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	g, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	return c.JSON(http.StatusOK, cashGameView{CashGame: *g, IsLive: Live(*g, h.Now().In(h.Location))})
}

func (h *CashGameHandler) Create(c echo.Context) error {
	var req cashGameReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	g := req.model()
	g.ID = 0

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Create(ctx, g); err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	h.Notify.Changed(ctx, cache.CashGames, queue.ActionCreated, g.ID)
	return c.JSON(http.StatusCreated, g)
}

func (h *CashGameHandler) Update(c echo.Context) error {
	var req cashGameReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	id, err := resolveID(c, req.ID)
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	g := req.model()
	g.ID = id

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Update(ctx, g); err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	h.Notify.Changed(ctx, cache.CashGames, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, g)
}

func (h *CashGameHandler) Patch(c echo.Context) error {
	id, cols, err := bindPatch(c, fieldmap.CashGames)
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Store.Patch(ctx, id, cols); err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	h.Notify.Changed(ctx, cache.CashGames, queue.ActionUpdated, id)
	g, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	return c.JSON(http.StatusOK, g)
}

// ToggleActive handles POST /:id/toggle-active.
func (h *CashGameHandler) ToggleActive(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	g, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	if err := h.Store.SetActive(ctx, id, !g.Active); err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	g.Active = !g.Active
	h.Notify.Changed(ctx, cache.CashGames, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, g)
}

func (h *CashGameHandler) Delete(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		return fail(c, h.Log, "cash game", err)
	}
	h.Notify.Changed(ctx, cache.CashGames, queue.ActionDeleted, id)
	return c.NoContent(http.StatusNoContent)
}
