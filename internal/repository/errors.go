// Package repository implements the store ports on MySQL.  Each repo
// wraps a DBTX so the same code runs on the pool or inside a transaction
// opened by Store.InTx.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/classroom-seating/internal/store"
)

// MySQL error numbers the repositories translate.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
)

// mapErr translates driver errors into store sentinels.  sql.ErrNoRows
// becomes store.ErrNotFound; duplicate keys become store.ErrConflict.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			return store.ErrConflict
		case errNoReferencedRow:
			return store.ErrNotFound
		}
	}
	return err
}
