package database

import (
	"database/sql"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// -----------------------------------------------------------------------------
// RESULT
// -----------------------------------------------------------------------------
// Result, sorgu sonucunu satır satır okuyan bir cursor'dur. Ya canlı bir
// *sql.Rows'u ya da bellekte tutulan satırları (cache isabeti, boş sonuç)
// sarar; kullanan kod farkı görmez.
//
// Satırlar Record olarak, sorgudaki kolon sırasıyla döner. Metin kolonlarından
// gelen []byte değerler string'e çevrilir; BLOB/BINARY/BYTEA kolonları []byte
// olarak kalır.
//
// Result mutlaka sonuna kadar okunmalı veya Close ile kapatılmalıdır.
// -----------------------------------------------------------------------------

// ExecResult, Exec sonucunu sarar.
type ExecResult struct {
	result  sql.Result
	dialect Dialect
}

// AffectedRows, etkilenen satır sayısını döndürür.
func (r ExecResult) AffectedRows() (int64, error) {
	if r.result == nil {
		return 0, nil
	}
	n, err := r.result.RowsAffected()
	if err != nil {
		return 0, NotSupported("dibi: affected rows are not available: " + err.Error())
	}
	return n, nil
}

// InsertID, son eklenen satırın otomatik artan anahtarını döndürür.
// LastInsertId desteklemeyen lehçelerde ErrNotSupported döner.
func (r ExecResult) InsertID() (int64, error) {
	if r.result == nil || (r.dialect != nil && !r.dialect.SupportsLastInsertID()) {
		return 0, NotSupported("dibi: insert id is not available for this driver")
	}
	id, err := r.result.LastInsertId()
	if err != nil {
		return 0, NotSupported("dibi: insert id is not available: " + err.Error())
	}
	return id, nil
}

// Result, sorgu sonucu.
type Result struct {
	rows    *sql.Rows
	dialect Dialect
	sql     string
	columns []string
	binary  []bool

	buffered [][]any
	pos      int
	closed   bool
}

// newRowsResult, *sql.Rows'u sarar ve kolon tiplerini okur.
func newRowsResult(rows *sql.Rows, dialect Dialect, query string) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, dialect.TranslateError(err, query)
	}

	binary := make([]bool, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			binary[i] = isBinaryType(ct.DatabaseTypeName())
		}
	}

	return &Result{
		rows:    rows,
		dialect: dialect,
		sql:     query,
		columns: columns,
		binary:  binary,
	}, nil
}

// newBufferedResult, bellekteki satırlardan Result oluşturur.
func newBufferedResult(columns []string, rows [][]any) *Result {
	return &Result{columns: columns, buffered: rows}
}

func isBinaryType(name string) bool {
	name = strings.ToUpper(name)
	return strings.Contains(name, "BLOB") || strings.Contains(name, "BINARY") || name == "BYTEA"
}

// Columns, kolon adlarını sorgudaki sırayla döndürür.
func (r *Result) Columns() []string {
	return append([]string(nil), r.columns...)
}

// SQL, sonucu üreten sorguyu döndürür (buffered sonuçlarda boş olabilir).
func (r *Result) SQL() string {
	return r.sql
}

// next, sıradaki satırın ham değerlerini döndürür. Sonda (nil, nil).
func (r *Result) next() ([]any, error) {
	if r.closed {
		return nil, nil
	}

	if r.rows == nil {
		if r.pos >= len(r.buffered) {
			r.closed = true
			return nil, nil
		}
		row := r.buffered[r.pos]
		r.pos++
		return row, nil
	}

	if !r.rows.Next() {
		err := r.rows.Err()
		r.Close()
		if err != nil {
			return nil, r.dialect.TranslateError(err, r.sql)
		}
		return nil, nil
	}

	values := make([]any, len(r.columns))
	pointers := make([]any, len(r.columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := r.rows.Scan(pointers...); err != nil {
		r.Close()
		return nil, r.dialect.TranslateError(err, r.sql)
	}

	for i, v := range values {
		if b, ok := v.([]byte); ok {
			if r.binary[i] {
				values[i] = append([]byte(nil), b...)
			} else {
				values[i] = string(b)
			}
		}
	}
	return values, nil
}

func (r *Result) record(values []any) *Record {
	rec := &Record{}
	for i, col := range r.columns {
		rec.Set(col, values[i])
	}
	return rec
}

// Fetch, sıradaki satırı döndürür. Satır kalmadığında (nil, nil) döner ve
// sonuç kapanır.
//
// Örnek:
//
//	for {
//	    row, err := res.Fetch()
//	    if err != nil || row == nil {
//	        break
//	    }
//	    fmt.Println(row.Value("name"))
//	}
func (r *Result) Fetch() (*Record, error) {
	values, err := r.next()
	if err != nil || values == nil {
		return nil, err
	}
	return r.record(values), nil
}

// FetchAll, kalan tüm satırları okur ve sonucu kapatır.
func (r *Result) FetchAll() ([]*Record, error) {
	defer r.Close()

	rows := make([]*Record, 0)
	for {
		row, err := r.Fetch()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// FetchSingle, ilk satırın ilk kolonunu döndürür. Satır yoksa ErrNoRows.
//
// Örnek:
//
//	count, err := res.FetchSingle() // SELECT COUNT(*) ...
func (r *Result) FetchSingle() (any, error) {
	defer r.Close()

	values, err := r.next()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoRows
	}
	return values[0], nil
}

// FetchPairs, iki kolonu anahtar -> değer olarak okur. key boşsa ilk kolon,
// value boşsa ikinci kolon kullanılır. Anahtarlar string'e çevrilir.
func (r *Result) FetchPairs(key, value string) (*Record, error) {
	defer r.Close()

	ki, vi, err := r.pairColumns(key, value)
	if err != nil {
		return nil, err
	}

	pairs := &Record{}
	for {
		values, err := r.next()
		if err != nil {
			return nil, err
		}
		if values == nil {
			return pairs, nil
		}
		k, err := toString(values[ki])
		if err != nil {
			return nil, err
		}
		pairs.Set(k, values[vi])
	}
}

func (r *Result) pairColumns(key, value string) (int, int, error) {
	find := func(name string, fallback int) (int, error) {
		if name == "" {
			if fallback >= len(r.columns) {
				return 0, errors.Wrap(ErrInvalidInput, "FetchPairs needs at least two columns")
			}
			return fallback, nil
		}
		for i, col := range r.columns {
			if col == name {
				return i, nil
			}
		}
		return 0, errors.Wrapf(ErrInvalidInput, "unknown column %q", name)
	}

	ki, err := find(key, 0)
	if err != nil {
		return 0, 0, err
	}
	vi, err := find(value, 1)
	if err != nil {
		return 0, 0, err
	}
	return ki, vi, nil
}

// Scan, sıradaki satırı struct'a yazar ve sonucu kapatır. Kolonlar 'db'
// tag'leri ile eşleşir. Satır yoksa ErrNoRows.
//
// Örnek:
//
//	var user User
//	err := res.Scan(&user)
func (r *Result) Scan(dest any) error {
	defer r.Close()

	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Ptr || target.IsNil() || target.Elem().Kind() != reflect.Struct {
		return errors.Wrapf(ErrInvalidInput, "Scan destination must be a pointer to struct, got %T", dest)
	}

	row, err := r.Fetch()
	if err != nil {
		return err
	}
	if row == nil {
		return ErrNoRows
	}
	return assignRecord(target.Elem(), row)
}

// ScanAll, kalan tüm satırları struct slice'ına yazar. Slice elemanları
// struct veya struct pointer olabilir.
//
// Örnek:
//
//	var users []User
//	err := res.ScanAll(&users)
func (r *Result) ScanAll(dest any) error {
	defer r.Close()

	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Ptr || target.IsNil() || target.Elem().Kind() != reflect.Slice {
		return errors.Wrapf(ErrInvalidInput, "ScanAll destination must be a pointer to slice, got %T", dest)
	}

	slice := target.Elem()
	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	structType := elemType
	if isPtr {
		structType = elemType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return errors.Wrapf(ErrInvalidInput, "ScanAll destination elements must be structs, got %s", elemType)
	}

	for {
		row, err := r.Fetch()
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}

		item := reflect.New(structType)
		if err := assignRecord(item.Elem(), row); err != nil {
			return err
		}
		if isPtr {
			slice.Set(reflect.Append(slice, item))
		} else {
			slice.Set(reflect.Append(slice, item.Elem()))
		}
	}
}

// buffer, kalan satırları belleğe okur ve sonucu kapatır.
func (r *Result) buffer() ([][]any, error) {
	defer r.Close()

	rows := make([][]any, 0)
	for {
		values, err := r.next()
		if err != nil {
			return nil, err
		}
		if values == nil {
			return rows, nil
		}
		rows = append(rows, values)
	}
}

// Close, alttaki *sql.Rows'u kapatır. Birden fazla çağrılabilir.
func (r *Result) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.rows != nil {
		return r.rows.Close()
	}
	return nil
}
