package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/model"
)

const cashGameColumns = `id, name, game, stakes, min_buy_in, max_buy_in, schedule, scheduled_dates,
	description, is_active, featured, created_at, updated_at`

type CashGameFilter struct {
	ActiveOnly bool
	Featured   *bool
}

type CashGameRepo struct {
	db *sqlx.DB
}

func NewCashGameRepo(db *sqlx.DB) *CashGameRepo {
	return &CashGameRepo{db: db}
}

// List orders featured tables first, then by name.
func (r *CashGameRepo) List(ctx context.Context, f CashGameFilter) ([]model.CashGame, error) {
	var w where
	if f.ActiveOnly {
		w.add("is_active = ?", true)
	}
	if f.Featured != nil {
		w.add("featured = ?", *f.Featured)
	}
	q := "SELECT " + cashGameColumns + " FROM cash_games" + w.sql() + " ORDER BY featured DESC, name ASC"
	out := []model.CashGame{}
	if err := r.db.SelectContext(ctx, &out, q, w.args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CashGameRepo) GetByID(ctx context.Context, id uint64) (*model.CashGame, error) {
	var g model.CashGame
	if err := getOne(ctx, r.db, &g, "SELECT "+cashGameColumns+" FROM cash_games WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *CashGameRepo) Create(ctx context.Context, g *model.CashGame) error {
	const q = `INSERT INTO cash_games (name, game, stakes, min_buy_in, max_buy_in, schedule, scheduled_dates,
		description, is_active, featured)
		VALUES (:name, :game, :stakes, :min_buy_in, :max_buy_in, :schedule, :scheduled_dates,
		:description, :is_active, :featured)`
	id, err := insertID(r.db.NamedExecContext(ctx, q, g))
	if err != nil {
		return err
	}
	return r.reload(ctx, id, g)
}

func (r *CashGameRepo) Update(ctx context.Context, g *model.CashGame) error {
	const q = `UPDATE cash_games SET name = :name, game = :game, stakes = :stakes, min_buy_in = :min_buy_in,
		max_buy_in = :max_buy_in, schedule = :schedule, scheduled_dates = :scheduled_dates,
		description = :description, is_active = :is_active, featured = :featured,
		updated_at = CURRENT_TIMESTAMP WHERE id = :id`
	if err := affectOne(r.db.NamedExecContext(ctx, q, g)); err != nil {
		return err
	}
	return r.reload(ctx, g.ID, g)
}

func (r *CashGameRepo) Patch(ctx context.Context, id uint64, cols map[string]any) error {
	return patchRow(ctx, r.db, fieldmap.CashGames.Table, id, cols)
}

func (r *CashGameRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	return patchRow(ctx, r.db, fieldmap.CashGames.Table, id, map[string]any{"is_active": active})
}

func (r *CashGameRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, fieldmap.CashGames.Table, id)
}

func (r *CashGameRepo) reload(ctx context.Context, id uint64, g *model.CashGame) error {
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*g = *fresh
	return nil
}
