package database

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
)

// -----------------------------------------------------------------------------
// MySQL Dialect
// -----------------------------------------------------------------------------
// MySQL/MariaDB için backtick identifier'lar, "?" placeholder'ları ve
// mysql_real_escape_string ile aynı kaçış kuralları.
//
// DSN, mysql.ParseDSN ile okunur ve ParseTime her zaman açılır; böylece
// DATE/DATETIME kolonları time.Time olarak döner.
// -----------------------------------------------------------------------------

// MySQLDialect, MySQL lehçesi.
type MySQLDialect struct{}

// NewMySQLDialect, MySQL lehçesini oluşturur.
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

// mysqlUserException, SIGNAL ile procedure/trigger içinden yükseltilen hatanın SQLSTATE'i.
const mysqlUserException = "45000"

func (d *MySQLDialect) Name() string       { return "mysql" }
func (d *MySQLDialect) DriverName() string { return "mysql" }

// OpenDB, DSN'i parse eder ve connector üzerinden havuz oluşturur.
// MySQL sürücüsü uyarıları ayrı bir kanaldan iletmediği için notices kullanılmaz.
func (d *MySQLDialect) OpenDB(dsn string, _ func(string)) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mysql: invalid DSN")
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mysql: connector")
	}
	return sql.OpenDB(connector), nil
}

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *MySQLDialect) Placeholder(int) string { return "?" }

var mysqlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

func (d *MySQLDialect) EscapeString(value string) string {
	return "'" + mysqlEscaper.Replace(value) + "'"
}

func (d *MySQLDialect) EscapeBinary(value []byte) string {
	return "X'" + hex.EncodeToString(value) + "'"
}

func (d *MySQLDialect) EscapeBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

func (d *MySQLDialect) LikeEscape() string { return "" }

func (d *MySQLDialect) BackslashEscapes() bool { return true }

// ApplyLimit, sadece OFFSET verildiğinde MySQL'in kabul ettiği en büyük LIMIT'i kullanır.
func (d *MySQLDialect) ApplyLimit(sql string, limit, offset int64) string {
	return applyLimitOffset(sql, limit, offset, "18446744073709551615")
}

func (d *MySQLDialect) SupportsLastInsertID() bool { return true }

// TranslateError, *mysql.MySQLError'ı hata numarası ile *Error'a çevirir.
// SIGNAL SQLSTATE '45000' procedure hatası olarak sınıflandırılır.
func (d *MySQLDialect) TranslateError(err error, sql string) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return genericDriverError(err, sql)
	}

	state := string(me.SQLState[:])
	if state == mysqlUserException {
		e := NewProcedureError(me.Message, int(me.Number), "ERROR", sql)
		e.SQLState = state
		e.Err = err
		return e
	}

	e := NewDriverError(me.Message, int(me.Number), sql, err)
	e.SQLState = strings.TrimRight(state, "\x00")
	return e
}
