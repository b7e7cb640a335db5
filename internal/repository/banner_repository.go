package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/model"
)

const bannerColumns = `id, title, description, image_url, link_url, visible_from, visible_until,
	display_order, is_active, created_at, updated_at`

// BannerFilter.PublicAt keeps only active banners whose window contains
// the instant.
type BannerFilter struct {
	PublicAt *time.Time
}

type BannerRepo struct {
	db *sqlx.DB
}

func NewBannerRepo(db *sqlx.DB) *BannerRepo {
	return &BannerRepo{db: db}
}

func (r *BannerRepo) List(ctx context.Context, f BannerFilter) ([]model.Banner, error) {
	var w where
	if f.PublicAt != nil {
		w.add("is_active = ?", true)
		w.visibleAt(*f.PublicAt)
	}
	q := "SELECT " + bannerColumns + " FROM banners" + w.sql() + " ORDER BY display_order ASC, id ASC"
	out := []model.Banner{}
	if err := r.db.SelectContext(ctx, &out, q, w.args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BannerRepo) GetByID(ctx context.Context, id uint64) (*model.Banner, error) {
	var b model.Banner
	if err := getOne(ctx, r.db, &b, "SELECT "+bannerColumns+" FROM banners WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BannerRepo) Create(ctx context.Context, b *model.Banner) error {
	const q = `INSERT INTO banners (title, description, image_url, link_url, visible_from, visible_until,
		display_order, is_active)
		VALUES (:title, :description, :image_url, :link_url, :visible_from, :visible_until,
		:display_order, :is_active)`
	id, err := insertID(r.db.NamedExecContext(ctx, q, b))
	if err != nil {
		return err
	}
	return r.reload(ctx, id, b)
}

func (r *BannerRepo) Update(ctx context.Context, b *model.Banner) error {
	const q = `UPDATE banners SET title = :title, description = :description, image_url = :image_url,
		link_url = :link_url, visible_from = :visible_from, visible_until = :visible_until,
		display_order = :display_order, is_active = :is_active, updated_at = CURRENT_TIMESTAMP
		WHERE id = :id`
	if err := affectOne(r.db.NamedExecContext(ctx, q, b)); err != nil {
		return err
	}
	return r.reload(ctx, b.ID, b)
}

func (r *BannerRepo) Patch(ctx context.Context, id uint64, cols map[string]any) error {
	return patchRow(ctx, r.db, fieldmap.Banners.Table, id, cols)
}

func (r *BannerRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, fieldmap.Banners.Table, id)
}

func (r *BannerRepo) reload(ctx context.Context, id uint64, b *model.Banner) error {
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}
