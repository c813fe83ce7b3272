// Package sqlxrepos implements the domain repositories on top of sqlx and SQLite.
package sqlxrepos

import (
	"strings"

	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/trezcool/mafunzo/core"
)

// isUniqueViolation reports whether err comes from a UNIQUE (or PRIMARY KEY) constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// orderByClause builds an ORDER BY clause from the orderings on allowed fields.
// def is used when none is left.
func orderByClause(ordering []core.DBOrdering, allowed map[string]bool, def string) string {
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if allowed[ord.Field] {
			parts = append(parts, ord.String())
		}
	}
	if len(parts) == 0 {
		if def == "" {
			return ""
		}
		return " ORDER BY " + def
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
