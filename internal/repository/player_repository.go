package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/poker-club/internal/fieldmap"
	"github.com/iliyamo/poker-club/internal/model"
)

// playerLedgerSQL derives the totals from the transaction log on every
// read, so the ledger never drifts from its transactions.
const playerLedgerSQL = `SELECT p.id, p.name, p.nickname, p.email, p.phone, p.notes,
	COALESCE(SUM(CASE WHEN t.type = 'deposit' THEN t.amount ELSE 0 END), 0) AS total_deposits,
	COALESCE(SUM(CASE WHEN t.type = 'withdrawal' THEN t.amount ELSE 0 END), 0) AS total_withdrawals,
	COALESCE(SUM(CASE WHEN t.type = 'deposit' THEN t.amount WHEN t.type = 'withdrawal' THEN -t.amount ELSE 0 END), 0) AS balance,
	p.created_at, p.updated_at
	FROM players p LEFT JOIN player_transactions t ON t.player_id = p.id`

const playerGroupBy = ` GROUP BY p.id, p.name, p.nickname, p.email, p.phone, p.notes, p.created_at, p.updated_at`

type PlayerFilter struct {
	Search string // matched against name, nickname and email
}

type PlayerRepo struct {
	db *sqlx.DB
}

func NewPlayerRepo(db *sqlx.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

func (r *PlayerRepo) List(ctx context.Context, f PlayerFilter) ([]model.Player, error) {
	var w where
	if f.Search != "" {
		like := "%" + f.Search + "%"
		w.add("(p.name LIKE ? OR p.nickname LIKE ? OR p.email LIKE ?)", like, like, like)
	}
	q := playerLedgerSQL + w.sql() + playerGroupBy + " ORDER BY p.name ASC, p.id ASC"
	out := []model.Player{}
	if err := r.db.SelectContext(ctx, &out, q, w.args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PlayerRepo) GetByID(ctx context.Context, id uint64) (*model.Player, error) {
	var p model.Player
	if err := getOne(ctx, r.db, &p, playerLedgerSQL+" WHERE p.id = ?"+playerGroupBy, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepo) Create(ctx context.Context, p *model.Player) error {
	const q = `INSERT INTO players (name, nickname, email, phone, notes)
		VALUES (:name, :nickname, :email, :phone, :notes)`
	id, err := insertID(r.db.NamedExecContext(ctx, q, p))
	if err != nil {
		return err
	}
	return r.reload(ctx, id, p)
}

func (r *PlayerRepo) Update(ctx context.Context, p *model.Player) error {
	const q = `UPDATE players SET name = :name, nickname = :nickname, email = :email, phone = :phone,
		notes = :notes, updated_at = CURRENT_TIMESTAMP WHERE id = :id`
	if err := affectOne(r.db.NamedExecContext(ctx, q, p)); err != nil {
		return err
	}
	return r.reload(ctx, p.ID, p)
}

func (r *PlayerRepo) Patch(ctx context.Context, id uint64, cols map[string]any) error {
	return patchRow(ctx, r.db, fieldmap.Players.Table, id, cols)
}

// Delete removes the player; the transactions go with it through the
// foreign key cascade.
func (r *PlayerRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, fieldmap.Players.Table, id)
}

// Transactions lists a player's ledger, newest first.
func (r *PlayerRepo) Transactions(ctx context.Context, playerID uint64) ([]model.Transaction, error) {
	out := []model.Transaction{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT id, player_id, type, amount, note, created_at FROM player_transactions WHERE player_id = ? ORDER BY created_at DESC, id DESC",
		playerID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddTransaction appends to the ledger.  An unknown player yields
// ErrNotFound.
func (r *PlayerRepo) AddTransaction(ctx context.Context, t *model.Transaction) error {
	res, err := r.db.NamedExecContext(ctx,
		"INSERT INTO player_transactions (player_id, type, amount, note) VALUES (:player_id, :type, :amount, :note)", t)
	if err != nil && isMissingParent(err) {
		return ErrNotFound
	}
	id, err := insertID(res, err)
	if err != nil {
		return err
	}
	return getOne(ctx, r.db, t,
		"SELECT id, player_id, type, amount, note, created_at FROM player_transactions WHERE id = ?", id)
}

// DeleteTransaction removes one entry, scoped to its player.
func (r *PlayerRepo) DeleteTransaction(ctx context.Context, playerID, txID uint64) error {
	return affectOne(r.db.ExecContext(ctx,
		"DELETE FROM player_transactions WHERE id = ? AND player_id = ?", txID, playerID))
}

func (r *PlayerRepo) reload(ctx context.Context, id uint64, p *model.Player) error {
	fresh, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}
