// Package repository defines the MySQL-backed stores and the sentinel errors
// they share.  Higher layers use errors.Is on these values to tell "nothing
// there" and "already there" apart from genuine store failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist or is not owned by the
// caller.  The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("duplicate")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
