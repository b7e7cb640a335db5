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

type NewsStore interface {
	List(ctx context.Context, f repository.NewsFilter) ([]model.NewsArticle, error)
	GetByID(ctx context.Context, id uint64) (*model.NewsArticle, error)
	Create(ctx context.Context, n *model.NewsArticle) error
	Update(ctx context.Context, n *model.NewsArticle) error
	Patch(ctx context.Context, id uint64, cols map[string]any) error
	Delete(ctx context.Context, id uint64) error
}

type NewsHandler struct {
	Store  NewsStore
	Notify Notifier
	Log    *logging.Logger
	Now    func() time.Time
}

func NewNewsHandler(store NewsStore, notify Notifier, log *logging.Logger) *NewsHandler {
	return &NewsHandler{Store: store, Notify: notifierOr(notify), Log: loggerOr(log).With("handler", "news"), Now: time.Now}
}

type newsReq struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title" validate:"required,max=255"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content" validate:"required"`
	ImageURL    string    `json:"imageUrl" validate:"max=1024"`
	Category    string    `json:"category" validate:"max=64"`
	Author      string    `json:"author" validate:"max=255"`
	Status      string    `json:"status" validate:"omitempty,oneof=draft published"`
	PublishedAt *flexTime `json:"publishedAt"`
	Featured    bool      `json:"featured"`
	Active      *bool     `json:"active"`
}

func (r *newsReq) model() *model.NewsArticle {
	status := r.Status
	if status == "" {
		status = model.NewsDraft
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &model.NewsArticle{
		ID:          r.ID,
		Title:       strings.TrimSpace(r.Title),
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		ImageURL:    strings.TrimSpace(r.ImageURL),
		Category:    strings.TrimSpace(r.Category),
		Author:      strings.TrimSpace(r.Author),
		Status:      status,
		PublishedAt: r.PublishedAt.ptr(),
		Featured:    r.Featured,
		Active:      active,
	}
}

func (h *NewsHandler) PublicList(c echo.Context) error {
	now := h.Now().UTC()
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx, repository.NewsFilter{
		PublishedAt: &now,
		Category:    c.QueryParam("category"),
		Limit:       queryLimit(c, 50),
	})
	return publicList(c, h.Log, "news", items, err)
}

// PublicGet hides drafts, inactive and scheduled articles.
func (h *NewsHandler) PublicGet(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, h.Log, "article", badRequest("invalid id"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	n, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "article", err)
	}
	if n.Status != model.NewsPublished || !n.Active || (n.PublishedAt != nil && n.PublishedAt.After(h.Now().UTC())) {
		return fail(c, h.Log, "article", repository.ErrNotFound)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && status != model.NewsDraft && status != model.NewsPublished {
		return fail(c, h.Log, "article", badRequest("unknown status"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx, repository.NewsFilter{Status: status, Category: c.QueryParam("category")})
	if err != nil {
		return fail(c, h.Log, "article", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *NewsHandler) Get(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "article", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	n, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "article", err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) Create(c echo.Context) error {
	var req newsReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "article", err)
	}
	n := req.model()
	n.ID = 0

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Create(ctx, n); err != nil {
		return fail(c, h.Log, "article", err)
	}
	h.Notify.Changed(ctx, cache.News, queue.ActionCreated, n.ID)
	return c.JSON(http.StatusCreated, n)
}

func (h *NewsHandler) Update(c echo.Context) error {
	var req newsReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "article", err)
	}
	id, err := resolveID(c, req.ID)
	if err != nil {
		return fail(c, h.Log, "article", err)
	}
	n := req.model()
	n.ID = id

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Update(ctx, n); err != nil {
		return fail(c, h.Log, "article", err)
	}
	h.Notify.Changed(ctx, cache.News, queue.ActionUpdated, id)
	return c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) Patch(c echo.Context) error {
	id, cols, err := bindPatch(c, fieldmap.News)
	if err != nil {
		return fail(c, h.Log, "article", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Patch(ctx, id, cols); err != nil {
		return fail(c, h.Log, "article", err)
	}
	h.Notify.Changed(ctx, cache.News, queue.ActionUpdated, id)
	n, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, "article", err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NewsHandler) Delete(c echo.Context) error {
	id, err := resolveID(c, 0)
	if err != nil {
		return fail(c, h.Log, "article", err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		return fail(c, h.Log, "article", err)
	}
	h.Notify.Changed(ctx, cache.News, queue.ActionDeleted, id)
	return c.NoContent(http.StatusNoContent)
}
