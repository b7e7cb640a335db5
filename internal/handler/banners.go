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
)

type BannerStore interface {
	List(ctx context.Context, f repository.BannerFilter) ([]model.Banner, error)
	GetByID(ctx context.Context, id uint64) (*model.Banner, error)
	Create(ctx context.Context, b *model.Banner) error
	Update(ctx context.Context, b *model.Banner) error
	Patch(ctx context.Context, id uint64, cols map[string]any) error
	Delete(ctx context.Context, id uint64) error
}

type BannerHandler struct {
	Store  BannerStore
	Notify Notifier
	Log    *logging.Logger
	Now    func() time.Time
}

func NewBannerHandler(store BannerStore, notify Notifier, log *logging.Logger) *BannerHandler {
	return &BannerHandler{Store: store, Notify: notifierOr(notify), Log: loggerOr(log).With("handler", "banners"), Now: time.Now}
}

type bannerReq struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title" validate:"required,max=255"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl" validate:"required,max=1024"`
	LinkURL      *string   `json:"linkUrl" validate:"omitempty,max=1024"`
	VisibleFrom  *flexTime `json:"visibleFrom"`
	VisibleUntil *flexTime `json:"visibleUntil"`
	DisplayOrder int       `json:"displayOrder"`
	Active       *bool     `json:"active"`
}

func (r *bannerReq) check() error {
	return checkWindow(r.VisibleFrom.ptr(), r.VisibleUntil.ptr())
}

func (r *bannerReq) model() *model.Banner {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &model.Banner{
		ID:           r.ID,
		Title:        strings.TrimSpace(r.Title),
		Description:  r.Description,
		ImageURL:     strings.TrimSpace(r.ImageURL),
		LinkURL:      optString(r.LinkURL),
		VisibleFrom:  r.VisibleFrom.ptr(),
		VisibleUntil: r.VisibleUntil.ptr(),
		DisplayOrder: r.DisplayOrder,
		Active:       active,
	}
}

// PublicList serves active banners inside their window, by displayOrder.
func (h *BannerHandler) PublicList(c echo.Context) error {
	now := h.Now().UTC()
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx, repository.BannerFilter{PublicAt: &now})
	return publicList(c, h.Log, "banner", items, err)
}

func (h *BannerHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx, repository.BannerFilter{})
	if err != nil {
		return fail(c, h.Log, "banner", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BannerHandler) Get(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "banner", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	b, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "banner", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BannerHandler) Create(c echo.Context) error {
	var req bannerReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "banner", err)
	}
	b := req.model()
	b.ID = 0

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Create(ctx, b); err != nil {
		return fail(c, h.Log, "banner", err)
	}
	h.Notify.Changed(ctx, cache.Banners, queue.ActionCreated, b.ID)
	return c.JSON(http.StatusCreated, b)
}

func (h *BannerHandler) Update(c echo.Context) error {
	var req bannerReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "banner", err)
	}
	id, err := resolveID(c, req.ID)
	if err != nil {
		return fail(c, h.Log, "banner", err)
	}
	b := req.model()
	b.ID = id

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Update(ctx, b); err != nil {
		return fail(c, h.Log, "banner", err)
	}
	h.Notify.Changed(ctx, cache.Banners, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, b)
}

func (h *BannerHandler) Patch(c echo.Context) error {
	id, cols, err := bindPatch(c, fieldmap.Banners)
	if err != nil {
		return fail(c, h.Log, "banner", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if touchesWindow(cols) {
		cur, err := h.Store.GetByID(ctx, id)
		if err != nil {
			return fail(c, h.Log, "banner", err)
		}
		if err := patchedWindow(cols, cur.VisibleFrom, cur.VisibleUntil); err != nil {
			return fail(c, h.Log, "banner", err)
		}
	}
	if err := h.Store.Patch(ctx, id, cols); err != nil {
		return fail(c, h.Log, "banner", err)
	}
	h.Notify.Changed(ctx, cache.Banners, queue.ActionUpdated, id)
	b, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "banner", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BannerHandler) Delete(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "banner", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		return fail(c, h.Log, "banner", err)
	}
	h.Notify.Changed(ctx, cache.Banners, queue.ActionDeleted, id)
	return c.NoContent(http.StatusNoContent)
}
