// -----------------------------------------------------------------------------
// Database Errors
// -----------------------------------------------------------------------------
// Bu dosya, veritabanı katmanının hata sınıflandırmasını içerir. Tüm hatalar
// tek bir *Error tipi üzerinden taşınır; hangi türde olduğu Kind alanı ile
// belirlenir (generic, driver, pattern, not-implemented, not-supported,
// procedure).
//
// Her hata mesaj, sayısal kod, (varsa) hataya sebep olan SQL ve (varsa)
// severity bilgisini taşır. Error() çıktısı SQL varsa "\nSQL: ..." ekiyle
// döner, böylece log'larda hatanın hangi sorgudan geldiği görülür.
//
// Kontrol:
//
//	if errors.Is(err, database.ErrDriver) { ... }
//	var dbErr *database.Error
//	if errors.As(err, &dbErr) { log.Println(dbErr.SQL) }
// -----------------------------------------------------------------------------

package database

import (
	"database/sql"
	"errors"
	"strings"
)

// Kind, hatanın türünü belirten discriminant.
type Kind int

const (
	KindGeneric Kind = iota
	KindDriver
	KindPattern
	KindNotImplemented
	KindNotSupported
	KindProcedure
)

// String, Kind'ın okunabilir adını döndürür.
func (k Kind) String() string {
	switch k {
	case KindDriver:
		return "driver"
	case KindPattern:
		return "pattern"
	case KindNotImplemented:
		return "not implemented"
	case KindNotSupported:
		return "not supported"
	case KindProcedure:
		return "procedure"
	default:
		return "generic"
	}
}

// Sentinel errors. errors.Is ile kontrol edilebilir.
var (
	// ErrInvalidInput, facade veya translator'a yanlış şekilde veri verildiğinde döner
	// (ör: Record yerine int). SQL gönderilmeden önce üretilir.
	ErrInvalidInput = errors.New("dibi: invalid input")

	// ErrNoRows, tek satır beklenen sorgu hiç satır döndürmediğinde döner.
	// sql.ErrNoRows'u sarmalar.
	ErrNoRows = &Error{Kind: KindGeneric, Message: "dibi: no rows in result set", Err: sql.ErrNoRows}

	// Kind sentinel'leri
	ErrDriver         = &Error{Kind: KindDriver}
	ErrPattern        = &Error{Kind: KindPattern}
	ErrNotImplemented = &Error{Kind: KindNotImplemented}
	ErrNotSupported   = &Error{Kind: KindNotSupported}
	ErrProcedure      = &Error{Kind: KindProcedure}
)

// Error, veritabanı katmanının ortak hata tipi.
//
// Alanlar:
//   - Kind: Hata türü
//   - Message: Hata mesajı
//   - Code: Sürücüden gelen (veya tablo bazlı) sayısal kod
//   - SQL: Hataya sebep olan SQL (opsiyonel)
//   - Severity: Procedure hataları için severity (opsiyonel)
//   - SQLState: Sunucunun bildirdiği 5 karakterlik SQLSTATE (opsiyonel)
//   - Err: Sarmalanan asıl hata (opsiyonel)
//
// Oluşturulduktan sonra değiştirilmemelidir.
type Error struct {
	Kind     Kind
	Message  string
	Code     int
	SQL      string
	Severity string
	SQLState string
	Err      error
}

// NewError, generic bir hata oluşturur.
func NewError(message string, code int, sql string) *Error {
	return &Error{Kind: KindGeneric, Message: message, Code: code, SQL: sql}
}

// NewDriverError, sürücü (database server) hatası oluşturur.
//
// Örnek:
//
//	return database.NewDriverError("Table 'shop.users' doesn't exist", 1146, sqlStr, err)
func NewDriverError(message string, code int, sql string, cause error) *Error {
	return &Error{Kind: KindDriver, Message: message, Code: code, SQL: sql, Err: cause}
}

// NewProcedureError, stored procedure / fonksiyon içinden yükselen hatayı temsil eder.
func NewProcedureError(message string, code int, severity, sql string) *Error {
	return &Error{Kind: KindProcedure, Message: message, Code: code, Severity: severity, SQL: sql}
}

// NotImplemented, henüz yazılmamış bir kod yolunu işaretler.
func NotImplemented(message string) *Error {
	return &Error{Kind: KindNotImplemented, Message: message}
}

// NotSupported, sürücü veya dialect'in desteklemediği bir işlemi işaretler.
func NotSupported(message string) *Error {
	return &Error{Kind: KindNotSupported, Message: message}
}

// Pattern hata kodları.
const (
	PatternInternalError       = 1
	PatternBacktrackLimitError = 2
	PatternRecursionLimitError = 3
	PatternBadUTF8Error        = 4
	PatternBadUTF8OffsetError  = 5
)

var patternMessages = map[int]string{
	PatternInternalError:       "Internal error",
	PatternBacktrackLimitError: "Backtrack limit was exhausted",
	PatternRecursionLimitError: "Recursion limit was exhausted",
	PatternBadUTF8Error:        "Malformed UTF-8 data",
	PatternBadUTF8OffsetError:  "Offset didn't correspond to the begin of a valid UTF-8 code point",
}

// NewPatternError, pattern motoru hata kodunu okunabilir mesaja çevirir.
//
// format içindeki "%msg" kod tablosundaki mesajla değiştirilir; format boşsa
// "%msg." kullanılır. Bilinmeyen kodlar "Unknown error" olur.
//
// Örnek:
//
//	NewPatternError(PatternBadUTF8Error, "") // "Malformed UTF-8 data."
func NewPatternError(code int, format string) *Error {
	if format == "" {
		format = "%msg."
	}
	msg, ok := patternMessages[code]
	if !ok {
		msg = "Unknown error"
	}
	return &Error{
		Kind:    KindPattern,
		Message: strings.ReplaceAll(format, "%msg", msg),
		Code:    code,
	}
}

// Error, mesajı ve varsa SQL'i birlikte döndürür.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "dibi: " + e.Kind.String() + " error"
	}
	if e.SQL != "" {
		msg += "\nSQL: " + e.SQL
	}
	return msg
}

// Unwrap, sarmalanan hatayı döndürür.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is, kind sentinel'leri ile karşılaştırma yapar. ErrDriver gibi boş
// sentinel'ler aynı Kind'daki tüm hatalarla eşleşir.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	if t.Message == "" && t.Err == nil && t.Code == 0 {
		return t.Kind == e.Kind
	}
	return t == ErrNoRows && e.Message == ErrNoRows.Message
}

// WithSQL, aynı hatanın SQL bilgisi eklenmiş bir kopyasını döndürür.
func (e *Error) WithSQL(sql string) *Error {
	c := *e
	c.SQL = sql
	return &c
}
