package database

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// -----------------------------------------------------------------------------
// Dialect Interface
// -----------------------------------------------------------------------------
// Dialect, SQL lehçesine özgü her şeyi tek bir yerde toplar: identifier
// sarmalama, placeholder stili, literal kaçışları, LIMIT/OFFSET uygulaması ve
// sürücü hatalarının *Error'a çevrilmesi.
//
// Translator ve Connection sadece bu arayüzü bilir. Yeni bir veritabanı
// eklemek için yeni bir Dialect yazmak yeterlidir.
//
// Mevcut implementasyonlar:
// - MySQLDialect: MySQL/MariaDB (github.com/go-sql-driver/mysql)
// - PostgresDialect: PostgreSQL (github.com/lib/pq)
// - SQLiteDialect: SQLite (modernc.org/sqlite)
// -----------------------------------------------------------------------------

// Dialect, veritabanı lehçesini tanımlar.
type Dialect interface {
	// Name, lehçenin adını döndürür ("mysql", "postgres", "sqlite").
	Name() string

	// DriverName, database/sql'e kayıtlı sürücü adını döndürür.
	DriverName() string

	// OpenDB, DSN ile bağlantı havuzu oluşturur. notices, sürücünün hata
	// döndürmeden bildirdiği uyarı mesajlarını alır (nil olabilir).
	OpenDB(dsn string, notices func(string)) (*sql.DB, error)

	// QuoteIdentifier, tek parçalı bir identifier'ı doğrulama yapmadan sarmalar.
	// MySQL: `name`, PostgreSQL/SQLite: "name"
	QuoteIdentifier(name string) string

	// Placeholder, n. (1'den başlayan) parametre için yer tutucu döndürür.
	// MySQL/SQLite: "?", PostgreSQL: "$1", "$2" ...
	Placeholder(n int) string

	// EscapeString, string'i tırnaklı SQL literal'ine çevirir.
	EscapeString(value string) string

	// EscapeBinary, binary veriyi SQL literal'ine çevirir.
	EscapeBinary(value []byte) string

	// EscapeBool, boolean'ı SQL literal'ine çevirir.
	EscapeBool(value bool) string

	// LikeEscape, LIKE ifadesinin sonuna eklenecek ESCAPE cümlesini döndürür.
	// Ters bölü varsayılan kaçış karakteri olan lehçelerde boştur.
	LikeEscape() string

	// BackslashEscapes, tırnaklı literal'lerde ters bölünün kaçış karakteri
	// olup olmadığını belirtir. Sadece MySQL'de true.
	BackslashEscapes() bool

	// ApplyLimit, sorguya LIMIT/OFFSET ekler. limit < 0 ve offset <= 0 ise
	// sorgu değişmeden döner.
	ApplyLimit(sql string, limit, offset int64) string

	// SupportsLastInsertID, sql.Result.LastInsertId'nin çalışıp çalışmadığını belirtir.
	SupportsLastInsertID() bool

	// TranslateError, sürücü hatasını *Error'a çevirir.
	TranslateError(err error, sql string) error
}

// DialectFor, sürücü adına göre Dialect döndürür.
//
// Kabul edilen adlar: mysql, mariadb, postgres, postgresql, pgsql, sqlite, sqlite3
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "mysql", "mariadb":
		return NewMySQLDialect(), nil
	case "postgres", "postgresql", "pgsql":
		return NewPostgresDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	}
	return nil, NotSupported(fmt.Sprintf("dibi: driver '%s' is not supported", driver))
}

var validIdentifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// WrapIdentifier, identifier'ı lehçeye göre doğrulayıp sarmalar.
//
// Özellikler:
// - "*" olduğu gibi bırakılır
// - "tablo.kolon" formatında her parça ayrı sarmalanır ("u.*" de geçerlidir)
// - Güvenli olmayan karakter içeren identifier ErrInvalidInput döner
//
// Örnek:
//
//	WrapIdentifier(NewMySQLDialect(), "users.id") // `users`.`id`
func WrapIdentifier(d Dialect, value string) (string, error) {
	if value == "*" {
		return value, nil
	}

	parts := strings.Split(value, ".")
	wrapped := make([]string, len(parts))
	for i, part := range parts {
		if part == "*" && i == len(parts)-1 && i > 0 {
			wrapped[i] = part
			continue
		}
		if !validIdentifierPattern.MatchString(part) {
			return "", errors.Wrapf(ErrInvalidInput, "invalid SQL identifier: %s (contains unsafe characters)", value)
		}
		wrapped[i] = d.QuoteIdentifier(part)
	}
	return strings.Join(wrapped, "."), nil
}

// IsValidIdentifier, değerin WrapIdentifier tarafından kabul edilip edilmeyeceğini söyler.
func IsValidIdentifier(value string) bool {
	if value == "" {
		return false
	}
	for _, part := range strings.Split(value, ".") {
		if !validIdentifierPattern.MatchString(part) {
			return false
		}
	}
	return true
}

func applyLimitOffset(sql string, limit, offset int64, unlimited string) string {
	if limit < 0 && offset <= 0 {
		return sql
	}
	if limit >= 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	} else if unlimited != "" {
		sql += " LIMIT " + unlimited
	}
	if offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d", offset)
	}
	return sql
}

func genericDriverError(err error, sql string) error {
	return NewDriverError(err.Error(), 0, sql, err)
}
