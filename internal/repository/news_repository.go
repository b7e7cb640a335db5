package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/model"
)

const newsColumns = `id, title, excerpt, content, image_url, category, author, status, published_at,
	featured, is_active, created_at, updated_at`

// NewsFilter.PublishedAt keeps active published articles whose publish
// time is not in the future.
type NewsFilter struct {
	PublishedAt *time.Time
	Category    string
	Status      string
	Limit       int
}

type NewsRepo struct {
	db *sqlx.DB
}

func NewNewsRepo(db *sqlx.DB) *NewsRepo {
	return &NewsRepo{db: db}
}

func (r *NewsRepo) List(ctx context.Context, f NewsFilter) ([]model.NewsArticle, error) {
	var w where
	if f.PublishedAt != nil {
		w.add("status = ?", model.NewsPublished)
		w.add("is_active = ?", true)
		w.add("(published_at IS NULL OR published_at <= ?)", *f.PublishedAt)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	q := "SELECT " + newsColumns + " FROM news_articles" + w.sql() +
		" ORDER BY featured DESC, COALESCE(published_at, created_at) DESC, id DESC" + limitSQL(f.Limit)
	out := []model.NewsArticle{}
	if err := r.db.SelectContext(ctx, &out, q, w.args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NewsRepo) GetByID(ctx context.Context, id uint64) (*model.NewsArticle, error) {
	var n model.NewsArticle
	if err := getOne(ctx, r.db, &n, "SELECT "+newsColumns+" FROM news_articles WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &n, nil
}

// Create stamps publishedAt when the article is born published.
func (r *NewsRepo) Create(ctx context.Context, n *model.NewsArticle) error {
	if n.Status == model.NewsPublished && n.PublishedAt == nil {
		now := time.Now().UTC()
		n.PublishedAt = &now
	}
	const q = `INSERT INTO news_articles (title, excerpt, content, image_url, category, author, status,
		published_at, featured, is_active)
		VALUES (:title, :excerpt, :content, :image_url, :category, :author, :status,
		:published_at, :featured, :is_active)`
	id, err := insertID(r.db.NamedExecContext(ctx, q, n))
	if err != nil {
		return err
	}
	return r.reload(ctx, id, n)
}

// Update keeps an existing publishedAt when the body carries none.  Clearing
// it takes PATCH {"publishedAt": null}; a published article is then
// restamped with the current time.
func (r *NewsRepo) Update(ctx context.Context, n *model.NewsArticle) error {
	const q = `UPDATE news_articles SET title = :title, excerpt = :excerpt, content = :content,
		image_url = :image_url, category = :category, author = :author, status = :status,
		published_at = COALESCE(:published_at, published_at), featured = :featured,
		is_active = :is_active, updated_at = CURRENT_TIMESTAMP WHERE id = :id`
	if err := affectOne(r.db.NamedExecContext(ctx, q, n)); err != nil {
		return err
	}
	if err := r.stampPublished(ctx, n.ID); err != nil {
		return err
	}
	return r.reload(ctx, n.ID, n)
}

func (r *NewsRepo) Patch(ctx context.Context, id uint64, cols map[string]any) error {
	if err := patchRow(ctx, r.db, fieldmap.News.Table, id, cols); err != nil {
		return err
	}
	return r.stampPublished(ctx, id)
}

func (r *NewsRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, fieldmap.News.Table, id)
}

// stampPublished records the first publication time.
func (r *NewsRepo) stampPublished(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE news_articles SET published_at = UTC_TIMESTAMP() WHERE id = ? AND status = ? AND published_at IS NULL",
		id, model.NewsPublished)
	return err
}

func (r *NewsRepo) reload(ctx context.Context, id uint64, n *model.NewsArticle) error {
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*n = *fresh
	return nil
}
