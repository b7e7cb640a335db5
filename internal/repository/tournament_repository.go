package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/model"
)

const tournamentColumns = `id, title, description, start_time, buy_in, rebuy_price, rebuy_chips,
	addon_price, addon_chips, starting_chips, guarantee, structure, status,
	visible_from, visible_until, featured, created_at, updated_at`

// TournamentFilter narrows List.  PublicAt restricts the result to what the
// public site shows at that instant: inside the visibility window and not
// inactive.
type TournamentFilter struct {
	Status   string
	Featured *bool
	PublicAt *time.Time
	OrderBy  string // resolved through fieldmap.Tournaments.SortColumn
	Limit    int
}

// TournamentRepo encapsulates all queries on the tournaments table.
type TournamentRepo struct {
	db *sqlx.DB
}

func NewTournamentRepo(db *sqlx.DB) *TournamentRepo {
	return &TournamentRepo{db: db}
}

func (r *TournamentRepo) List(ctx context.Context, f TournamentFilter) ([]model.Tournament, error) {
	var w where
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Featured != nil {
		w.add("featured = ?", *f.Featured)
	}
	if f.PublicAt != nil {
		w.add("status <> ?", model.TournamentInactive)
		w.visibleAt(*f.PublicAt)
	}
	order := f.OrderBy
	if order == "" {
		order = "start_time ASC"
	}

	q := "SELECT " + tournamentColumns + " FROM tournaments" + w.sql() + " ORDER BY " + order + ", id ASC" + limitSQL(f.Limit)
	out := []model.Tournament{}
	if err := r.db.SelectContext(ctx, &out, q, w.args...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrNotFound when the tournament does not exist.
func (r *TournamentRepo) GetByID(ctx context.Context, id uint64) (*model.Tournament, error) {
	var t model.Tournament
	if err := getOne(ctx, r.db, &t, "SELECT "+tournamentColumns+" FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts t and reloads it so that the caller sees the generated id
// and timestamps.
func (r *TournamentRepo) Create(ctx context.Context, t *model.Tournament) error {
	const q = `INSERT INTO tournaments (title, description, start_time, buy_in, rebuy_price, rebuy_chips,
		addon_price, addon_chips, starting_chips, guarantee, structure, status, visible_from, visible_until, featured)
		VALUES (:title, :description, :start_time, :buy_in, :rebuy_price, :rebuy_chips,
		:addon_price, :addon_chips, :starting_chips, :guarantee, :structure, :status, :visible_from, :visible_until, :featured)`
	id, err := insertID(r.db.NamedExecContext(ctx, q, t))
	if err != nil {
		return err
	}
	return r.reload(ctx, id, t)
}

// Update overwrites every writable column of t.ID.
func (r *TournamentRepo) Update(ctx context.Context, t *model.Tournament) error {
	const q = `UPDATE tournaments SET title = :title, description = :description, start_time = :start_time,
		buy_in = :buy_in, rebuy_price = :rebuy_price, rebuy_chips = :rebuy_chips, addon_price = :addon_price,
		addon_chips = :addon_chips, starting_chips = :starting_chips, guarantee = :guarantee,
		structure = :structure, status = :status, visible_from = :visible_from, visible_until = :visible_until,
		featured = :featured, updated_at = CURRENT_TIMESTAMP
		WHERE id = :id`
	if err := affectOne(r.db.NamedExecContext(ctx, q, t)); err != nil {
		return err
	}
	return r.reload(ctx, t.ID, t)
}

// Patch updates only the given columns (already mapped by fieldmap).
func (r *TournamentRepo) Patch(ctx context.Context, id uint64, cols map[string]any) error {
	return patchRow(ctx, r.db, fieldmap.Tournaments.Table, id, cols)
}

func (r *TournamentRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	return patchRow(ctx, r.db, fieldmap.Tournaments.Table, id, map[string]any{"status": status})
}

func (r *TournamentRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, fieldmap.Tournaments.Table, id)
}

// Duplicate copies a tournament into a new upcoming, non-featured row.
func (r *TournamentRepo) Duplicate(ctx context.Context, id uint64, title string) (*model.Tournament, error) {
	src, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *src
	cp.ID = 0
	cp.Title = title
	cp.Status = model.TournamentUpcoming
	cp.Featured = false
	if err := r.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *TournamentRepo) reload(ctx context.Context, id uint64, t *model.Tournament) error {
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*t = *fresh
	return nil
}
