package database

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"modernc.org/sqlite"
)

// SQLiteDialect, SQLite lehçesi (modernc.org/sqlite, cgo gerektirmez).
//
// SQLite LIKE için varsayılan kaçış karakteri tanımlamaz, bu yüzden
// kaçışlı desenlerin sonuna ESCAPE '\' eklenir.
type SQLiteDialect struct{}

// NewSQLiteDialect, SQLite lehçesini oluşturur.
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) OpenDB(dsn string, _ func(string)) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "sqlite: open")
	}
	return db, nil
}

func (d *SQLiteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *SQLiteDialect) Placeholder(int) string { return "?" }

func (d *SQLiteDialect) EscapeString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (d *SQLiteDialect) EscapeBinary(value []byte) string {
	return "X'" + hex.EncodeToString(value) + "'"
}

func (d *SQLiteDialect) EscapeBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

func (d *SQLiteDialect) LikeEscape() string { return ` ESCAPE '\'` }

func (d *SQLiteDialect) BackslashEscapes() bool { return false }

func (d *SQLiteDialect) ApplyLimit(sql string, limit, offset int64) string {
	return applyLimitOffset(sql, limit, offset, "-1")
}

func (d *SQLiteDialect) SupportsLastInsertID() bool { return true }

// TranslateError, *sqlite.Error'ı sonuç kodu ile *Error'a çevirir.
func (d *SQLiteDialect) TranslateError(err error, sql string) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return genericDriverError(err, sql)
	}
	return NewDriverError(se.Error(), se.Code(), sql, err)
}
