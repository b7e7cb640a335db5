package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/model"
)

const structureColumns = "id, name, description, levels, created_at, updated_at"

// StructureRepo manages blind structures.  Names are unique; a duplicate
// name yields ErrConflict.
type StructureRepo struct {
	db *sqlx.DB
}

func NewStructureRepo(db *sqlx.DB) *StructureRepo {
	return &StructureRepo{db: db}
}

func (r *StructureRepo) List(ctx context.Context) ([]model.Structure, error) {
	out := []model.Structure{}
	if err := r.db.SelectContext(ctx, &out, "SELECT "+structureColumns+" FROM structures ORDER BY name ASC"); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StructureRepo) GetByID(ctx context.Context, id uint64) (*model.Structure, error) {
	var s model.Structure
	if err := getOne(ctx, r.db, &s, "SELECT "+structureColumns+" FROM structures WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByName resolves the free-text reference stored on tournaments.
func (r *StructureRepo) GetByName(ctx context.Context, name string) (*model.Structure, error) {
	var s model.Structure
	if err := getOne(ctx, r.db, &s, "SELECT "+structureColumns+" FROM structures WHERE name = ? LIMIT 1", name); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StructureRepo) Create(ctx context.Context, s *model.Structure) error {
	const q = `INSERT INTO structures (name, description, levels) VALUES (:name, :description, :levels)`
	id, err := insertID(r.db.NamedExecContext(ctx, q, s))
	if err != nil {
		return err
	}
	return r.reload(ctx, id, s)
}

func (r *StructureRepo) Update(ctx context.Context, s *model.Structure) error {
	const q = `UPDATE structures SET name = :name, description = :description, levels = :levels,
		updated_at = CURRENT_TIMESTAMP WHERE id = :id`
	if err := affectOne(r.db.NamedExecContext(ctx, q, s)); err != nil {
		return err
	}
	return r.reload(ctx, s.ID, s)
}

func (r *StructureRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, fieldmap.Structures.Table, id)
}

func (r *StructureRepo) reload(ctx context.Context, id uint64, s *model.Structure) error {
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}
