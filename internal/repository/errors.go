// Package repository holds the data access layer: one Repo per table over
// a *sql.DB handed in by the caller.  Relationships between venues,
// artists and shows are explicit functions over foreign keys
// (ShowRepo.ListForVenue, VenueRepo.DeleteCascade, ...) and every
// mutation runs inside a transaction that is rolled back on any error.
//
// The sentinel errors below let handlers tell failure kinds apart with
// errors.Is.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrInvalidReference is returned when a show points at an artist or
// venue that does not exist.  Handlers treat it as a validation failure.
var ErrInvalidReference = errors.New("referenced artist or venue does not exist")

// mysqlErrNoReferencedRow is ER_NO_REFERENCED_ROW_2, raised by InnoDB
// when an insert violates a foreign key.
const mysqlErrNoReferencedRow = 1452

func isForeignKeyViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlErrNoReferencedRow
}
