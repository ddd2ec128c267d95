package database

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// -----------------------------------------------------------------------------
// TABLE
// -----------------------------------------------------------------------------
// Table, tek bir tablo üzerinde primary key'e dayalı CRUD işlemleri sunan
// ince bir facade'dır. Her metod tek bir SQL ifadesine çevrilir ve verilen
// Querier (Connection veya Transaction) üzerinden çalıştırılır.
//
// Tablo adı ve primary key kurulum sırasında bir kez belirlenir ve sonra
// değişmez. Table bağlantının sahibi değildir, kapatmaz.
//
// Örnek:
//
//	users, err := database.NewTable(conn, database.TableConfig{Name: "Users"}, database.DefaultNaming())
//	// name: users, primary: id, modifier: %i
//
//	id, err := users.Insert(ctx, database.NewRecord("name", "Ada", "email", "ada@example.com"))
//	n, err := users.Update(ctx, []int64{1, 2}, database.NewRecord("active", false))
//	row, err := users.Fetch(ctx, id)
// -----------------------------------------------------------------------------

const defaultPrimaryModifier = "%i"

// primaryModifiers, primary key değerleri için kabul edilen skaler modifier'lar.
var primaryModifiers = map[string]bool{
	"%i": true, "%s": true, "%f": true, "%b": true,
	"%d": true, "%t": true, "%bin": true,
}

// Naming, tablo adı ve primary key türetme kuralları.
//
// PrimaryMask içinde %p tablo adıyla, %s baştaki/sondaki 's' harfleri
// atılmış tablo adıyla değiştirilir:
//
//	"id"     -> id
//	"%p_id"  -> users_id
//	"%s_id"  -> user_id
type Naming struct {
	PrimaryMask string // Varsayılan: "id"
	LowerCase   bool   // Tablo adı küçük harfe çevrilsin mi
}

// DefaultNaming, varsayılan isimlendirme kurallarını döndürür.
func DefaultNaming() Naming {
	return Naming{PrimaryMask: "id", LowerCase: true}
}

// TableConfig, tablo tanımı.
type TableConfig struct {
	Name            string // Tablo adı (zorunlu)
	Primary         string // Primary key kolonu; boşsa Naming.PrimaryMask'ten türetilir
	PrimaryModifier string // Primary key değerlerinin modifier'ı; boşsa "%i"
}

// Table, tablo facade'ı.
type Table struct {
	db              Querier
	name            string
	primary         string
	primaryModifier string
}

// NewTable, tabloyu oluşturur ve adları doğrular.
//
// Parametreler:
//   - db: Sorguların çalışacağı Connection veya Transaction
//   - cfg: Tablo tanımı
//   - naming: İsimlendirme kuralları
//
// Döndürür:
//   - *Table: Tablo facade'ı
//   - error: Geçersiz tablo/kolon adı veya modifier (ErrInvalidInput)
func NewTable(db Querier, cfg TableConfig, naming Naming) (*Table, error) {
	if db == nil {
		return nil, errors.Wrap(ErrInvalidInput, "table needs a connection")
	}

	name := strings.TrimSpace(cfg.Name)
	if naming.LowerCase {
		name = strings.ToLower(name)
	}
	if name == "" {
		return nil, errors.Wrap(ErrInvalidInput, "table name is required")
	}

	primary := strings.TrimSpace(cfg.Primary)
	if primary == "" {
		mask := naming.PrimaryMask
		if mask == "" {
			mask = "id"
		}
		primary = strings.NewReplacer("%p", name, "%s", strings.Trim(name, "s")).Replace(mask)
	}

	modifier := cfg.PrimaryModifier
	if modifier == "" {
		modifier = defaultPrimaryModifier
	}
	if !primaryModifiers[modifier] {
		return nil, errors.Wrapf(ErrInvalidInput, "invalid primary key modifier %q", modifier)
	}

	d := db.Dialect()
	if _, err := WrapIdentifier(d, name); err != nil {
		return nil, err
	}
	if !IsValidIdentifier(primary) {
		return nil, errors.Wrapf(ErrInvalidInput, "invalid primary key column %q", primary)
	}

	return &Table{
		db:              db,
		name:            name,
		primary:         primary,
		primaryModifier: modifier,
	}, nil
}

// Name, tablo adını döndürür.
func (t *Table) Name() string {
	return t.name
}

// Primary, primary key kolonunu döndürür.
func (t *Table) Primary() string {
	return t.primary
}

// PrimaryModifier, primary key değerlerinin modifier'ını döndürür.
func (t *Table) PrimaryModifier() string {
	return t.primaryModifier
}

// Insert, satır ekler ve üretilen primary key'i döndürür.
//
// data; *Record, map[string]T veya struct olabilir. Kolonlar verilen sırayla
// yazılır. LastInsertId desteklemeyen lehçelerde (PostgreSQL) değer
// RETURNING ile okunur.
//
// Örnek:
//
//	id, err := users.Insert(ctx, database.NewRecord("name", "Ada"))
func (t *Table) Insert(ctx context.Context, data any) (int64, error) {
	rec, err := t.dataset(data)
	if err != nil {
		return 0, err
	}

	if !t.db.Dialect().SupportsLastInsertID() {
		res, err := t.db.Query(ctx, "INSERT INTO %n", t.name, "%v", rec, "RETURNING %n", t.primary)
		if err != nil {
			return 0, err
		}
		id, err := res.FetchSingle()
		if err != nil {
			return 0, err
		}
		n, err := toInt64(id)
		if err != nil {
			return 0, NotSupported("dibi: generated key is not an integer")
		}
		return n, nil
	}

	res, err := t.db.Exec(ctx, "INSERT INTO %n", t.name, "%v", rec)
	if err != nil {
		return 0, err
	}
	return res.InsertID()
}

// Update, primary key'i where içinde olan satırları günceller ve etkilenen
// satır sayısını döndürür. where tek bir değer veya değer listesi olabilir;
// boş liste SQL çalıştırmadan 0 döndürür.
//
// Örnek:
//
//	n, err := users.Update(ctx, []int{1, 2, 3}, database.NewRecord("active", false))
func (t *Table) Update(ctx context.Context, where any, data any) (int64, error) {
	rec, err := t.dataset(data)
	if err != nil {
		return 0, err
	}
	keys := primaryKeys(where)
	if len(keys) == 0 {
		return 0, nil
	}

	res, err := t.db.Exec(ctx,
		"UPDATE %n", t.name,
		"SET %a", rec,
		"WHERE %n", t.primary, "IN ("+t.primaryModifier, keys, ")",
	)
	if err != nil {
		return 0, err
	}
	return res.AffectedRows()
}

// Delete, primary key'i where içinde olan satırları siler ve silinen satır
// sayısını döndürür. Boş liste SQL çalıştırmadan 0 döndürür.
func (t *Table) Delete(ctx context.Context, where any) (int64, error) {
	keys := primaryKeys(where)
	if len(keys) == 0 {
		return 0, nil
	}

	res, err := t.db.Exec(ctx,
		"DELETE FROM %n", t.name,
		"WHERE %n", t.primary, "IN ("+t.primaryModifier, keys, ")",
	)
	if err != nil {
		return 0, err
	}
	return res.AffectedRows()
}

// Find, primary key'i verilen anahtarlardan biri olan satırları seçer.
// Anahtarlar tek tek, tek bir liste olarak veya karışık verilebilir.
//
// Örnek:
//
//	res, err := users.Find(ctx, 1, 2, 3)
//	res, err := users.Find(ctx, []int{1, 2, 3})
func (t *Table) Find(ctx context.Context, keys ...any) (*Result, error) {
	flat := make([]any, 0, len(keys))
	for _, k := range keys {
		flat = append(flat, primaryKeys(k)...)
	}
	if len(flat) == 0 {
		return newBufferedResult(nil, nil), nil
	}

	return t.db.Query(ctx,
		"SELECT * FROM %n", t.name,
		"WHERE %n", t.primary, "IN ("+t.primaryModifier, flat, ")",
	)
}

// FindAll, tüm satırları seçer. Kolon verilirse sonuç bu kolonlara göre
// (verilen sırayla) sıralanır.
//
// Örnek:
//
//	res, err := users.FindAll(ctx, "last_name", "first_name")
func (t *Table) FindAll(ctx context.Context, order ...string) (*Result, error) {
	if len(order) == 0 {
		return t.db.Query(ctx, "SELECT * FROM %n", t.name)
	}
	return t.db.Query(ctx, "SELECT * FROM %n", t.name, "ORDER BY %n", order)
}

// Fetch, primary key'i key olan satırı döndürür. Satır yoksa ErrNoRows.
func (t *Table) Fetch(ctx context.Context, key any) (*Record, error) {
	key = deref(key)
	if key == nil {
		return nil, errors.Wrap(ErrInvalidInput, "fetch needs a primary key")
	}
	if _, ok := listOf(key); ok {
		return nil, errors.Wrapf(ErrInvalidInput, "fetch expects a single primary key, got %T", key)
	}

	res, err := t.db.Query(ctx,
		"SELECT * FROM %n", t.name,
		"WHERE %n", t.primary, "= "+t.primaryModifier, key,
	)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	row, err := res.Fetch()
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNoRows
	}
	return row, nil
}

// dataset, Insert/Update verisini Record'a çevirir; boş veri kabul edilmez.
func (t *Table) dataset(data any) (*Record, error) {
	rec, err := ToRecord(data)
	if err != nil {
		return nil, err
	}
	if rec.Len() == 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "dataset for table %q is empty", t.name)
	}
	return rec, nil
}

// primaryKeys, tek değeri veya listeyi anahtar listesine açar. nil boş liste sayılır.
func primaryKeys(where any) []any {
	where = deref(where)
	if where == nil {
		return nil
	}
	if items, ok := listOf(where); ok {
		return items
	}
	return []any{where}
}
