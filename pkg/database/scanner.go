package database

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// Reflection-Based Struct Mapping
// -----------------------------------------------------------------------------
// Bu dosya, struct'lar ile Record'lar arasında 'db' tag'lerine göre dönüşüm
// yapar. İki yönde çalışır:
//   - recordFromStruct: struct -> Record (INSERT/UPDATE verisi için)
//   - assignRecord: Record (satır) -> struct (Result.Scan için)
//
// Alan bilgisi struct tipi başına önbelleğe alınır. Struct tipi sayısı
// programda sabit olduğu için cache sınırsız büyümez.
// -----------------------------------------------------------------------------

// structField, bir kolonun struct içindeki konumunu tutar.
type structField struct {
	column string
	index  []int
}

var (
	structCache   = make(map[reflect.Type][]structField)
	structCacheMu sync.RWMutex
)

var timeType = reflect.TypeOf(time.Time{})

// getStructFields, struct tipini analiz eder ve kolonları tanım sırasıyla döndürür.
//
// Özellikler:
// - Embedded (gömülü) struct'ları özyineli olarak işler (örn: BaseModel)
// - db:"-" tag'i olan alanları atlar
// - Tag yoksa alan adının küçük harfli hali kolon adıdır
// - Export edilmemiş alanlar atlanır
func getStructFields(structType reflect.Type) []structField {
	structCacheMu.RLock()
	if fields, ok := structCache[structType]; ok {
		structCacheMu.RUnlock()
		return fields
	}
	structCacheMu.RUnlock()

	fields := collectStructFields(structType, nil)

	structCacheMu.Lock()
	structCache[structType] = fields
	structCacheMu.Unlock()

	return fields
}

func collectStructFields(structType reflect.Type, parent []int) []structField {
	var fields []structField

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		index := append(append([]int{}, parent...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Type != timeType {
			if field.Tag.Get("db") == "-" {
				continue
			}
			fields = append(fields, collectStructFields(field.Type, index)...)
			continue
		}

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if comma := strings.IndexByte(tag, ','); comma >= 0 {
			tag = tag[:comma]
		}
		if tag == "" {
			tag = strings.ToLower(field.Name)
		}

		fields = append(fields, structField{column: tag, index: index})
	}

	return fields
}

// recordFromStruct, struct değerini Record'a çevirir.
func recordFromStruct(v reflect.Value) *Record {
	fields := getStructFields(v.Type())
	r := &Record{}
	for _, f := range fields {
		r.Set(f.column, v.FieldByIndex(f.index).Interface())
	}
	return r
}

// assignRecord, satırdaki değerleri struct alanlarına yazar. Struct'ta karşılığı
// olmayan kolonlar atlanır.
func assignRecord(dest reflect.Value, row *Record) error {
	for _, f := range getStructFields(dest.Type()) {
		value, ok := row.Get(f.column)
		if !ok {
			continue
		}
		field := dest.FieldByIndex(f.index)
		if !field.CanSet() {
			return fmt.Errorf("scanner: '%s' alanı ayarlanamıyor", f.column)
		}
		if err := assignValue(field, value); err != nil {
			return fmt.Errorf("scanner: '%s' kolonu: %w", f.column, err)
		}
	}
	return nil
}

// assignValue, tek bir veritabanı değerini alana dönüştürerek yazar.
func assignValue(field reflect.Value, value any) error {
	if scanner, ok := field.Addr().Interface().(sql.Scanner); ok {
		return scanner.Scan(value)
	}

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Ptr {
		elem := reflect.New(field.Type().Elem())
		if err := assignValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	src := reflect.ValueOf(value)
	if b, ok := value.([]byte); ok && field.Kind() == reflect.String {
		field.SetString(string(b))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		if src.Kind() != reflect.String {
			field.SetString(fmt.Sprint(value))
			return nil
		}
	case reflect.Bool:
		switch {
		case src.CanInt():
			field.SetBool(src.Int() != 0)
			return nil
		case src.Kind() == reflect.String:
			b, err := strconv.ParseBool(src.String())
			if err != nil {
				return err
			}
			field.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if src.Kind() == reflect.String {
			n, err := strconv.ParseInt(src.String(), 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if src.Kind() == reflect.String {
			n, err := strconv.ParseUint(src.String(), 10, 64)
			if err != nil {
				return err
			}
			field.SetUint(n)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if src.Kind() == reflect.String {
			n, err := strconv.ParseFloat(src.String(), 64)
			if err != nil {
				return err
			}
			field.SetFloat(n)
			return nil
		}
	}

	if src.Type().AssignableTo(field.Type()) {
		field.Set(src)
		return nil
	}
	if src.Type().ConvertibleTo(field.Type()) && isNumericKind(src.Kind()) == isNumericKind(field.Kind()) {
		field.Set(src.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("%T değeri %s tipine atanamıyor", value, field.Type())
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
