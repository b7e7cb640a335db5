package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/queue"
)

type StructureStore interface {
	StructureLookup
	List(ctx context.Context) ([]model.Structure, error)
	GetByID(ctx context.Context, id uint64) (*model.Structure, error)
	Create(ctx context.Context, s *model.Structure) error
	Update(ctx context.Context, s *model.Structure) error
	Delete(ctx context.Context, id uint64) error
}

type StructureHandler struct {
	Store  StructureStore
	Notify Notifier
	Log    *logging.Logger
}

func NewStructureHandler(store StructureStore, notify Notifier, log *logging.Logger) *StructureHandler {
	return &StructureHandler{Store: store, Notify: notifierOr(notify), Log: loggerOr(log).With("handler", "structures")}
}

type blindLevelReq struct {
	SmallBlind int64  `json:"smallBlind" validate:"gte=0"`
	BigBlind   int64  `json:"bigBlind" validate:"gte=0"`
	Ante       int64  `json:"ante" validate:"gte=0"`
	Duration   int    `json:"duration" validate:"gt=0,lte=600"`
	IsBreak    bool   `json:"isBreak"`
	BreakName  string `json:"breakName" validate:"max=64"`
}

type structureReq struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name" validate:"required,max=191"`
	Description string          `json:"description"`
	Levels      []blindLevelReq `json:"levels" validate:"dive"`
}

// model renumbers the levels by position; the client's level numbers are
// ignored.
func (r *structureReq) model() *model.Structure {
	levels := make(model.BlindLevels, 0, len(r.Levels))
	for _, l := range r.Levels {
		levels = append(levels, model.BlindLevel{
			SmallBlind: l.SmallBlind,
			BigBlind:   l.BigBlind,
			Ante:       l.Ante,
			Duration:   l.Duration,
			IsBreak:    l.IsBreak,
			BreakName:  strings.TrimSpace(l.BreakName),
		})
	}
	return &model.Structure{
		ID:          r.ID,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Levels:      levels.Renumber(),
	}
}

func (h *StructureHandler) PublicList(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx)
	return publicList(c, h.Log, "structure", items, err)
}

// Get serves both GET /api/structures/:id and the admin detail.
func (h *StructureHandler) Get(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "structure", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	s, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "structure", err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *StructureHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx)
	if err != nil {
		return fail(c, h.Log, "structure", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *StructureHandler) Create(c echo.Context) error {
	var req structureReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "structure", err)
	}
	s := req.model()
	s.ID = 0

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Create(ctx, s); err != nil {
		return fail(c, h.Log, "structure", err)
	}
	h.Notify.Changed(ctx, cache.Structures, queue.ActionCreated, s.ID)
	return c.JSON(http.StatusCreated, s)
}

func (h *StructureHandler) Update(c echo.Context) error {
	var req structureReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "structure", err)
	}
	id, err := resolveID(c, req.ID)
	if err != nil {
		return fail(c, h.Log, "structure", err)
	}
	s := req.model()
	s.ID = id

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Update(ctx, s); err != nil {
		return fail(c, h.Log, "structure", err)
	}
	h.Notify.Changed(ctx, cache.Structures, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, s)
}

func (h *StructureHandler) Delete(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "structure", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		return fail(c, h.Log, "structure", err)
	}
	h.Notify.Changed(ctx, cache.Structures, queue.ActionDeleted, id)
	return c.NoContent(http.StatusNoContent)
}
