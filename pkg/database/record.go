// -----------------------------------------------------------------------------
// Record: Sıralı Kolon/Değer Haritası
// -----------------------------------------------------------------------------
// INSERT/UPDATE verisi ve sorgu satırları için kullanılan tek mapping tipi.
// Go map'leri sırasız olduğu için kolon sırası burada korunur: INSERT'te
// kolonlar Record'a eklendikleri sırayla yazılır, satırlarda ise sorgudaki
// kolon sırası ile döner.
//
// Facade katmanına sadece Record girer. Struct veya map gibi diğer şekiller
// ToRecord ile sınırda dönüştürülür; dönüştürülemeyen her şey ErrInvalidInput
// ile reddedilir.
// -----------------------------------------------------------------------------

package database

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Record, kolon adı -> değer eşleşmesini ekleme sırasıyla tutar.
type Record struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewRecord, anahtar/değer çiftlerinden Record oluşturur.
//
// Örnek:
//
//	data := database.NewRecord("name", "John", "email", "john@example.com")
//
// Çift sayıda argüman ve string anahtar beklenir; aksi halde panic atar
// (programcı hatasıdır, kullanıcı girdisi değildir).
func NewRecord(pairs ...any) *Record {
	if len(pairs)%2 != 0 {
		panic("dibi: NewRecord requires key/value pairs")
	}
	r := &Record{m: orderedmap.New[string, any]()}
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("dibi: NewRecord key must be string, got %T", pairs[i]))
		}
		r.m.Set(key, pairs[i+1])
	}
	return r
}

// RecordFromMap, map'i Record'a çevirir. Map sırasız olduğundan anahtarlar
// alfabetik sıralanır.
func RecordFromMap(data map[string]any) *Record {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := &Record{m: orderedmap.New[string, any](len(keys))}
	for _, k := range keys {
		r.m.Set(k, data[k])
	}
	return r
}

// ToRecord, desteklenen veri şekillerini Record'a çevirir.
//
// Kabul edilenler:
//   - *Record / Record
//   - map[string]T
//   - struct veya struct pointer ('db' tag'leri kolon adıdır, db:"-" atlanır)
//
// Diğer her şey ErrInvalidInput döner.
func ToRecord(data any) (*Record, error) {
	switch v := data.(type) {
	case nil:
		return nil, errors.Wrap(ErrInvalidInput, "dataset must be a record, map or struct, got nil")
	case *Record:
		if v == nil {
			return nil, errors.Wrap(ErrInvalidInput, "dataset must be a record, map or struct, got nil record")
		}
		return v, nil
	case Record:
		return &v, nil
	case map[string]any:
		return RecordFromMap(v), nil
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, errors.Wrapf(ErrInvalidInput, "dataset must be a record, map or struct, got nil %T", data)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		converted := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			converted[iter.Key().String()] = iter.Value().Interface()
		}
		return RecordFromMap(converted), nil
	case reflect.Struct:
		return recordFromStruct(rv), nil
	}

	return nil, errors.Wrapf(ErrInvalidInput, "dataset must be a record, map or struct, got %T", data)
}

func (r *Record) init() {
	if r.m == nil {
		r.m = orderedmap.New[string, any]()
	}
}

// Set, kolona değer atar. Var olan kolon yerinde güncellenir.
func (r *Record) Set(column string, value any) *Record {
	r.init()
	r.m.Set(column, value)
	return r
}

// Get, kolonun değerini döndürür.
func (r *Record) Get(column string) (any, bool) {
	if r == nil || r.m == nil {
		return nil, false
	}
	return r.m.Get(column)
}

// Value, kolonun değerini döndürür; yoksa nil.
func (r *Record) Value(column string) any {
	v, _ := r.Get(column)
	return v
}

// Delete, kolonu siler.
func (r *Record) Delete(column string) {
	if r == nil || r.m == nil {
		return
	}
	r.m.Delete(column)
}

// Len, kolon sayısını döndürür.
func (r *Record) Len() int {
	if r == nil || r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Keys, kolon adlarını sırayla döndürür.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.Len())
	r.Each(func(k string, _ any) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values, değerleri kolon sırasıyla döndürür.
func (r *Record) Values() []any {
	values := make([]any, 0, r.Len())
	r.Each(func(_ string, v any) bool {
		values = append(values, v)
		return true
	})
	return values
}

// Each, kolonları sırayla gezer. fn false dönerse durur.
func (r *Record) Each(fn func(column string, value any) bool) {
	if r == nil || r.m == nil {
		return
	}
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Map, Record'u sırasız map'e çevirir.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, r.Len())
	r.Each(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}

// Clone, Record'un sığ bir kopyasını döndürür.
func (r *Record) Clone() *Record {
	c := &Record{m: orderedmap.New[string, any](r.Len())}
	r.Each(func(k string, v any) bool {
		c.m.Set(k, v)
		return true
	})
	return c
}

// MarshalJSON, kolon sırasını koruyarak JSON üretir.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil || r.m == nil {
		return []byte("{}"), nil
	}
	return r.m.MarshalJSON()
}

// UnmarshalJSON, JSON object'i kolon sırasını koruyarak okur.
func (r *Record) UnmarshalJSON(data []byte) error {
	r.m = orderedmap.New[string, any]()
	if err := r.m.UnmarshalJSON(data); err != nil {
		return errors.Wrap(err, "record: invalid JSON object")
	}
	return nil
}

// MarshalYAML, kolon sırasını koruyan bir mapping node üretir.
func (r *Record) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	var encodeErr error
	r.Each(func(k string, v any) bool {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		val := &yaml.Node{}
		if err := val.Encode(v); err != nil {
			encodeErr = err
			return false
		}
		node.Content = append(node.Content, key, val)
		return true
	})
	if encodeErr != nil {
		return nil, encodeErr
	}
	return node, nil
}

// String, debug çıktısı için JSON gösterimini döndürür.
func (r *Record) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("Record(%d)", r.Len())
	}
	return string(b)
}
