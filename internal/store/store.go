package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrHasChores is returned when deleting a child or task that still has chores
// and cascading was not requested.
var ErrHasChores = errors.New("dependent chores exist")

// ErrMissingReference is returned when a chore names a child or task that
// does not exist.
var ErrMissingReference = errors.New("referenced row does not exist")

// isForeignKeyViolation reports whether err is SQLite refusing a write because
// of a foreign key constraint.
func isForeignKeyViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	if serr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(serr.Error(), "FOREIGN KEY")
}

type scanner interface{ Scan(...any) error }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// where accumulates AND-ed predicates and their arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// deleteWithChores removes a row from table together with the chores that
// reference it through fkCol, or refuses with ErrHasChores.
func deleteWithChores(ctx context.Context, db *sql.DB, table, fkCol string, id int64, cascade bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM chores WHERE `+fkCol+` = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("count chores: %w", err)
	}
	if n > 0 {
		if !cascade {
			return ErrHasChores
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM chores WHERE `+fkCol+` = ?`, id); err != nil {
			return fmt.Errorf("delete chores: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return tx.Commit()
}
