// Package repository contains the MySQL data access for every club entity.
// Handlers translate the sentinel errors below into HTTP statuses.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist (or no row matched an
// UPDATE/DELETE).  Handlers translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrConflict signals a unique-key collision, e.g. a second structure with
// the same name.  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// ErrNoFields is returned by Patch when the body carried nothing to update.
var ErrNoFields = errors.New("no fields to update")

const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isMissingParent reports a foreign key violation on insert, i.e. the
// referenced row does not exist.
func isMissingParent(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlNoReferencedRow
}
