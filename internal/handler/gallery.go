package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/queue"
	"github.com/iliyamo/poker-club/internal/repository"
)

type GalleryStore interface {
	List(ctx context.Context, f repository.GalleryFilter) ([]model.GalleryImage, error)
	GetByID(ctx context.Context, id uint64) (*model.GalleryImage, error)
	Create(ctx context.Context, g *model.GalleryImage) error
	Update(ctx context.Context, g *model.GalleryImage) error
	Patch(ctx context.Context, id uint64, cols map[string]any) error
	Delete(ctx context.Context, id uint64) error
}

type GalleryHandler struct {
	Store  GalleryStore
	Notify Notifier
	Log    *logging.Logger
}

func NewGalleryHandler(store GalleryStore, notify Notifier, log *logging.Logger) *GalleryHandler {
	return &GalleryHandler{Store: store, Notify: notifierOr(notify), Log: loggerOr(log).With("handler", "gallery")}
}

type galleryReq struct {
	ID           uint64 `json:"id"`
	Title        string `json:"title" validate:"max=255"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl" validate:"required,max=1024"`
	Category     string `json:"category" validate:"max=64"`
	DisplayOrder int    `json:"displayOrder"`
	Active       *bool  `json:"active"`
}

func (r *galleryReq) model() *model.GalleryImage {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &model.GalleryImage{
		ID:           r.ID,
		Title:        strings.TrimSpace(r.Title),
		Description:  r.Description,
		ImageURL:     strings.TrimSpace(r.ImageURL),
		Category:     strings.TrimSpace(r.Category),
		DisplayOrder: r.DisplayOrder,
		Active:       active,
	}
}

func (h *GalleryHandler) PublicList(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx, repository.GalleryFilter{ActiveOnly: true, Category: c.QueryParam("category")})
	return publicList(c, h.Log, "gallery", items, err)
}

func (h *GalleryHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx, repository.GalleryFilter{Category: c.QueryParam("category")})
	if err != nil {
		return fail(c, h.Log, "image", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *GalleryHandler) Get(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "image", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	g, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "image", err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GalleryHandler) Create(c echo.Context) error {
	var req galleryReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "image", err)
	}
	g := req.model()
	g.ID = 0

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Create(ctx, g); err != nil {
		return fail(c, h.Log, "image", err)
	}
	h.Notify.Changed(ctx, cache.Gallery, queue.ActionCreated, g.ID)
	return c.JSON(http.StatusCreated, g)
}

func (h *GalleryHandler) Update(c echo.Context) error {
	var req galleryReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "image", err)
	}
	id, err := resolveID(c, req.ID)
	if err != nil {
		return fail(c, h.Log, "image", err)
	}
	g := req.model()
	g.ID = id

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Update(ctx, g); err != nil {
		return fail(c, h.Log, "image", err)
	}
	h.Notify.Changed(ctx, cache.Gallery, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, g)
}

func (h *GalleryHandler) Patch(c echo.Context) error {
	id, cols, err := bindPatch(c, fieldmap.Gallery)
	if err != nil {
		return fail(c, h.Log, "image", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Patch(ctx, id, cols); err != nil {
		return fail(c, h.Log, "image", err)
	}
	h.Notify.Changed(ctx, cache.Gallery, queue.ActionUpdated, id)
	g, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "image", err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GalleryHandler) Delete(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "image", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		return fail(c, h.Log, "image", err)
	}
	h.Notify.Changed(ctx, cache.Gallery, queue.ActionDeleted, id)
	return c.NoContent(http.StatusNoContent)
}
