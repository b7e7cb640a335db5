package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/model"
)

const galleryColumns = `id, title, description, image_url, category, display_order, is_active,
	created_at, updated_at`

type GalleryFilter struct {
	ActiveOnly bool
	Category   string
}

type GalleryRepo struct {
	db *sqlx.DB
}

func NewGalleryRepo(db *sqlx.DB) *GalleryRepo {
	return &GalleryRepo{db: db}
}

func (r *GalleryRepo) List(ctx context.Context, f GalleryFilter) ([]model.GalleryImage, error) {
	var w where
	if f.ActiveOnly {
		w.add("is_active = ?", true)
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	q := "SELECT " + galleryColumns + " FROM gallery_images" + w.sql() + " ORDER BY display_order ASC, id DESC"
	out := []model.GalleryImage{}
	if err := r.db.SelectContext(ctx, &out, q, w.args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GalleryRepo) GetByID(ctx context.Context, id uint64) (*model.GalleryImage, error) {
	var g model.GalleryImage
	if err := getOne(ctx, r.db, &g, "SELECT "+galleryColumns+" FROM gallery_images WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GalleryRepo) Create(ctx context.Context, g *model.GalleryImage) error {
	const q = `INSERT INTO gallery_images (title, description, image_url, category, display_order, is_active)
		VALUES (:title, :description, :image_url, :category, :display_order, :is_active)`
	id, err := insertID(r.db.NamedExecContext(ctx, q, g))
	if err != nil {
		return err
	}
	return r.reload(ctx, id, g)
}

func (r *GalleryRepo) Update(ctx context.Context, g *model.GalleryImage) error {
	const q = `UPDATE gallery_images SET title = :title, description = :description, image_url = :image_url,
		category = :category, display_order = :display_order, is_active = :is_active,
		updated_at = CURRENT_TIMESTAMP WHERE id = :id`
	if err := affectOne(r.db.NamedExecContext(ctx, q, g)); err != nil {
		return err
	}
	return r.reload(ctx, g.ID, g)
}

func (r *GalleryRepo) Patch(ctx context.Context, id uint64, cols map[string]any) error {
	return patchRow(ctx, r.db, fieldmap.Gallery.Table, id, cols)
}

func (r *GalleryRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, fieldmap.Gallery.Table, id)
}

func (r *GalleryRepo) reload(ctx context.Context, id uint64, g *model.GalleryImage) error {
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*g = *fresh
	return nil
}
