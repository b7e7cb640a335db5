package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// where accumulates AND-ed conditions and their arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// visibleAt adds the optional visibility window condition for table alias-free columns.
func (w *where) visibleAt(now any) {
	w.add("(visible_from IS NULL OR visible_from <= ?) AND (visible_until IS NULL OR visible_until >= ?)", now, now)
}

func limitSQL(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

// getOne runs a single-row SELECT into dest, mapping no rows to ErrNotFound.
func getOne(ctx context.Context, db sqlx.QueryerContext, dest any, q string, args ...any) error {
	if err := sqlx.GetContext(ctx, db, dest, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// affectOne checks that an UPDATE/DELETE matched a row.  The DSN enables
// clientFoundRows, so an UPDATE that changes nothing still reports 1.
func affectOne(res sql.Result, err error) error {
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func insertID(res sql.Result, err error) (uint64, error) {
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// patchRow updates the given columns of one row.  Table and column names
// come from the static fieldmap dictionaries, never from the request.
func patchRow(ctx context.Context, db sqlx.ExecerContext, table string, id uint64, cols map[string]any) error {
	if len(cols) == 0 {
		return ErrNoFields
	}
	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for _, c := range names {
		sets = append(sets, c+" = ?")
		args = append(args, cols[c])
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	return affectOne(db.ExecContext(ctx, q, args...))
}

func deleteRow(ctx context.Context, db sqlx.ExecerContext, table string, id uint64) error {
	return affectOne(db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id))
}
