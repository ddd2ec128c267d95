package database

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"strconv"

	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
)

// -----------------------------------------------------------------------------
// PostgreSQL Dialect
// -----------------------------------------------------------------------------
// Identifier ve literal kaçışı pq.QuoteIdentifier / pq.QuoteLiteral ile
// yapılır. Placeholder'lar numaralıdır ($1, $2 ...).
//
// PostgreSQL LastInsertId desteklemez; Table.Insert bu lehçede
// "RETURNING <primary>" kullanır.
//
// PL/pgSQL içinden RAISE ile yükseltilen hatalar (SQLSTATE sınıfı P0)
// procedure hatası olarak, sunucunun bildirdiği severity ile döner. RAISE
// NOTICE/WARNING gibi hata olmayan mesajlar notice handler'a iletilir.
// -----------------------------------------------------------------------------

// PostgresDialect, PostgreSQL lehçesi.
type PostgresDialect struct{}

// NewPostgresDialect, PostgreSQL lehçesini oluşturur.
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

const pgProcedureClass pq.ErrorClass = "P0"

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "postgres" }

// OpenDB, pq connector'ını notice handler ile sarmalayarak havuz oluşturur.
func (d *PostgresDialect) OpenDB(dsn string, notices func(string)) (*sql.DB, error) {
	base, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "postgres: invalid DSN")
	}
	if notices == nil {
		return sql.OpenDB(base), nil
	}

	connector := pq.ConnectorWithNoticeHandler(base, func(notice *pq.Error) {
		notices(notice.Message)
	})
	return sql.OpenDB(connector), nil
}

func (d *PostgresDialect) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (d *PostgresDialect) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (d *PostgresDialect) EscapeString(value string) string {
	return pq.QuoteLiteral(value)
}

func (d *PostgresDialect) EscapeBinary(value []byte) string {
	return "decode('" + hex.EncodeToString(value) + "', 'hex')"
}

func (d *PostgresDialect) EscapeBool(value bool) string {
	if value {
		return "TRUE"
	}
	return "FALSE"
}

func (d *PostgresDialect) LikeEscape() string { return "" }

func (d *PostgresDialect) BackslashEscapes() bool { return false }

func (d *PostgresDialect) ApplyLimit(sql string, limit, offset int64) string {
	return applyLimitOffset(sql, limit, offset, "ALL")
}

func (d *PostgresDialect) SupportsLastInsertID() bool { return false }

// TranslateError, *pq.Error'ı SQLSTATE ve severity ile *Error'a çevirir.
// Sayısal SQLSTATE'ler (ör: 23505) Code alanına da yazılır.
func (d *PostgresDialect) TranslateError(err error, sql string) error {
	if err == nil {
		return nil
	}
	var pe *pq.Error
	if !errors.As(err, &pe) {
		return genericDriverError(err, sql)
	}

	code, _ := strconv.Atoi(string(pe.Code))

	var e *Error
	if pe.Code.Class() == pgProcedureClass {
		e = NewProcedureError(pe.Message, code, pe.Severity, sql)
		e.Err = err
	} else {
		e = NewDriverError(pe.Message, code, sql, err)
		e.Severity = pe.Severity
	}
	e.SQLState = string(pe.Code)
	return e
}
