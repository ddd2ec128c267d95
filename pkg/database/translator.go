// -----------------------------------------------------------------------------
// SQL Translator
// -----------------------------------------------------------------------------
// Sorgular, SQL parçaları ve değerlerin sırayla verildiği bir argüman listesi
// olarak yazılır:
//
//	conn.Query(ctx, "SELECT * FROM %n", "users", "WHERE [id] IN %in", ids)
//
// Argümanlar soldan sağa işlenir. SQL konumundaki string bir SQL parçasıdır
// ve içindeki her %modifier sıradaki argümanı tüketir. SQL konumundaki string
// olmayan argümanlar tipine göre otomatik biçimlenir.
//
// Değerler varsayılan olarak placeholder ile bağlanır (? veya $n). Literal
// modda (TestSQL) değerler lehçenin kaçış kurallarıyla SQL'e gömülür.
//
// Modifier listesi:
//
//	%s %i %f %b %d %t %bin   skaler değerler (liste verilirse virgülle birleşir)
//	%n                       identifier ("tablo.kolon", "*", liste)
//	%sql                     ham SQL
//	%ex                      liste argümanlarını yerinde çevirir
//	%a %v %m                 SET listesi, INSERT VALUES, çok satırlı INSERT
//	%l %in                   (v1, v2) ve IN (v1, v2); boş liste IN (NULL) olur
//	%and %or                 Record'dan koşul listesi
//	%by                      ORDER BY listesi
//	%like~ %~like %~like~    kaçışlı LIKE deseni
//	%lmt %ofs                LIMIT / OFFSET (sorgunun sonuna eklenir)
//	%if %else %end           koşullu SQL
//	%%                       literal %
//
// Ayrıca [name] identifier olarak sarmalanır, :name: substitution tablosundan
// değiştirilir ve tırnak içindeki literal'lere dokunulmaz.
// -----------------------------------------------------------------------------

package database

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Literal, SQL'e olduğu gibi yazılan değer. Hangi modifier ile verilirse
// verilsin kaçışa uğramaz.
//
// Örnek:
//
//	conn.Exec(ctx, "UPDATE %n", "users", "SET %a", database.NewRecord("updated_at", database.Literal("NOW()")))
type Literal string

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

var timeLayouts = []string{
	datetimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	dateLayout,
}

// modifiers, uzun olanlar önce gelecek şekilde sıralıdır.
var modifiers = []string{
	"~like~", "~like", "like~",
	"else",
	"and", "bin", "end", "lmt", "ofs", "sql",
	"by", "ex", "if", "in", "or",
	"a", "b", "d", "f", "i", "l", "m", "n", "s", "t", "v",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Translate, argüman listesini parametreli SQL'e çevirir.
//
// Parametreler:
//   - d: SQL lehçesi
//   - subst: :name: substitution tablosu (nil olabilir)
//   - args: SQL parçaları ve değerler
//
// Döndürür:
//   - string: SQL
//   - []any: Placeholder sırasıyla bağlanacak değerler
//   - error: Bilinmeyen modifier (ErrNotSupported), bozuk UTF-8 (ErrPattern),
//     yanlış şekilli değer (ErrInvalidInput)
func Translate(d Dialect, subst map[string]string, args ...any) (string, []any, error) {
	t := newTranslator(d, subst, false)
	query, err := t.translate(args)
	if err != nil {
		return "", nil, err
	}
	return query, t.bound, nil
}

// TranslateLiteral, değerleri SQL'e gömerek çevirir. Sonuç loglama ve hata
// ayıklama içindir.
func TranslateLiteral(d Dialect, subst map[string]string, args ...any) (string, error) {
	t := newTranslator(d, subst, true)
	return t.translate(args)
}

type translator struct {
	dialect Dialect
	subst   map[string]string
	literal bool

	queue []any
	pos   int

	bound  []any
	limit  int64
	offset int64
	cond   []bool
	insert bool
}

func newTranslator(d Dialect, subst map[string]string, literal bool) *translator {
	return &translator{
		dialect: d,
		subst:   subst,
		literal: literal,
		limit:   -1,
	}
}

func (t *translator) translate(args []any) (string, error) {
	if len(args) > 0 {
		if first, ok := args[0].(string); ok {
			verb := strings.ToUpper(strings.TrimSpace(first))
			t.insert = strings.HasPrefix(verb, "INSERT") || strings.HasPrefix(verb, "REPLACE")
		}
	}

	t.queue, t.pos = args, 0
	query, err := t.walk()
	if err != nil {
		return "", err
	}
	if len(t.cond) > 0 {
		return "", errors.Wrapf(ErrInvalidInput, "missing %%end for %d open %%if", len(t.cond))
	}
	return t.dialect.ApplyLimit(query, t.limit, t.offset), nil
}

// walk, kuyruktaki argümanları sırayla işler ve parçaları birleştirir.
func (t *translator) walk() (string, error) {
	var pieces []string
	for t.pos < len(t.queue) {
		arg := t.queue[t.pos]
		t.pos++

		if fragment, ok := arg.(string); ok {
			piece, err := t.fragment(fragment)
			if err != nil {
				return "", err
			}
			pieces = append(pieces, piece)
			continue
		}

		if !t.active() {
			continue
		}
		piece, err := t.format(arg, "")
		if err != nil {
			return "", err
		}
		pieces = append(pieces, piece)
	}
	return joinPieces(pieces), nil
}

// joinPieces, parçaları tek boşlukla birleştirir. Parantez açılışından sonra
// ve kapanış/virgülden önce boşluk konmaz.
func joinPieces(pieces []string) string {
	var b strings.Builder
	prev := ""
	for _, p := range pieces {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if prev != "" && !strings.HasSuffix(prev, "(") && !endsWithSpace(prev) &&
			!strings.HasPrefix(p, ")") && !strings.HasPrefix(p, ",") && !startsWithSpace(p) {
			b.WriteByte(' ')
		}
		b.WriteString(p)
		prev = p
	}
	return b.String()
}

func endsWithSpace(s string) bool {
	return s != "" && isSpace(s[len(s)-1])
}

func startsWithSpace(s string) bool {
	return s != "" && isSpace(s[0])
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (t *translator) active() bool {
	for _, on := range t.cond {
		if !on {
			return false
		}
	}
	return true
}

func (t *translator) next(mod string) (any, error) {
	if t.pos >= len(t.queue) {
		return nil, errors.Wrapf(ErrInvalidInput, "missing argument for modifier %%%s", mod)
	}
	v := t.queue[t.pos]
	t.pos++
	return v, nil
}

// fragment, bir SQL parçasını tarar; modifier'lar sıradaki argümanları tüketir.
func (t *translator) fragment(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", NewPatternError(PatternBadUTF8Error, "")
	}

	var b strings.Builder
	emit := func(str string) {
		if t.active() {
			b.WriteString(str)
		}
	}

	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\'', '"':
			end, err := skipQuoted(s, i, t.dialect.BackslashEscapes())
			if err != nil {
				return "", err
			}
			emit(s[i:end])
			i = end

		case '[':
			if j := strings.IndexByte(s[i+1:], ']'); j > 0 {
				name := s[i+1 : i+1+j]
				if isBracketIdentifier(name) {
					wrapped, err := WrapIdentifier(t.dialect, name)
					if err != nil {
						return "", err
					}
					emit(wrapped)
					i += j + 2
					continue
				}
			}
			emit("[")
			i++

		case ':':
			if j := strings.IndexByte(s[i+1:], ':'); j > 0 {
				name := s[i+1 : i+1+j]
				if value, ok := t.subst[name]; ok && validIdentifierPattern.MatchString(name) {
					emit(value)
					i += j + 2
					continue
				}
			}
			emit(":")
			i++

		case '%':
			mod, err := parseModifier(s[i+1:])
			if err != nil {
				return "", err
			}
			if mod == "" {
				emit("%")
				i++
				continue
			}
			i += 1 + len(mod)
			if mod == "%" {
				emit("%")
				continue
			}
			out, err := t.modifier(mod)
			if err != nil {
				return "", err
			}
			emit(out)

		default:
			j := i + 1
			for j < len(s) && !isSpecial(s[j]) {
				j++
			}
			emit(s[i:j])
			i = j
		}
	}
	return b.String(), nil
}

func isSpecial(c byte) bool {
	return c == '\'' || c == '"' || c == '[' || c == ':' || c == '%'
}

// skipQuoted, i'deki tırnakla başlayan literal'in bittiği indeksi döndürür.
// Çift tırnak kaçışı ('') her lehçede, ters bölü kaçışı sadece backslash
// true ise geçerlidir. Kapanmayan tırnak ErrInvalidInput döndürür.
func skipQuoted(s string, i int, backslash bool) (int, error) {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			if backslash {
				j++
			}
		case quote:
			if j+1 < len(s) && s[j+1] == quote {
				j++
				continue
			}
			return j + 1, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidInput, "unterminated %c quote at offset %d", quote, i)
}

func isBracketIdentifier(name string) bool {
	if name[0] >= '0' && name[0] <= '9' {
		return false
	}
	return IsValidIdentifier(name)
}

// parseModifier, '%' sonrasındaki modifier'ı okur. '%' ardından harf
// gelmiyorsa boş döner (literal %).
func parseModifier(rest string) (string, error) {
	if rest == "" {
		return "", nil
	}
	if rest[0] == '%' {
		return "%", nil
	}
	if !isLetter(rest[0]) && rest[0] != '~' {
		return "", nil
	}
	if strings.HasPrefix(rest, "like") && !strings.HasPrefix(rest, "like~") {
		return "", NotSupported("dibi: unknown modifier %like")
	}
	for _, m := range modifiers {
		if strings.HasPrefix(rest, m) {
			return m, nil
		}
	}

	word := rest
	for k := 0; k < len(rest); k++ {
		if !isLetter(rest[k]) && rest[k] != '~' {
			word = rest[:k]
			break
		}
	}
	return "", NotSupported(fmt.Sprintf("dibi: unknown modifier %%%s", word))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// modifier, kontrol modifier'larını uygular; diğerleri için sıradaki argümanı biçimler.
func (t *translator) modifier(mod string) (string, error) {
	switch mod {
	case "if":
		v, err := t.next(mod)
		if err != nil {
			return "", err
		}
		t.cond = append(t.cond, truthy(v))
		return "", nil

	case "else":
		if len(t.cond) == 0 {
			return "", errors.Wrap(ErrInvalidInput, "%else without %if")
		}
		t.cond[len(t.cond)-1] = !t.cond[len(t.cond)-1]
		return "", nil

	case "end":
		if len(t.cond) == 0 {
			return "", errors.Wrap(ErrInvalidInput, "%end without %if")
		}
		t.cond = t.cond[:len(t.cond)-1]
		return "", nil

	case "lmt", "ofs":
		v, err := t.next(mod)
		if err != nil || !t.active() {
			return "", err
		}
		n, err := toInt64(v)
		if err != nil {
			return "", errors.Wrapf(ErrInvalidInput, "%%%s expects an integer, got %T", mod, v)
		}
		if mod == "lmt" {
			t.limit = n
		} else {
			t.offset = n
		}
		return "", nil
	}

	v, err := t.next(mod)
	if err != nil || !t.active() {
		return "", err
	}
	return t.format(v, mod)
}

// truthy, %if argümanının doğruluk değerini belirler.
func truthy(v any) bool {
	v = deref(v)
	if v == nil {
		return false
	}
	if r, ok := v.(*Record); ok {
		return r.Len() > 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	}
	return true
}

// deref, nil pointer'ları nil'e, skaler pointer'ları değerlerine çevirir.
// *Record ve struct pointer'ları olduğu gibi kalır.
func deref(v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.(*Record); ok {
		return v
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		if rv.Elem().Kind() == reflect.Struct && rv.Elem().Type() != timeType {
			return rv.Interface()
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// param, değeri placeholder ile bağlar veya literal modda gömer.
func (t *translator) param(bound any, literal string) string {
	if t.literal {
		return literal
	}
	t.bound = append(t.bound, bound)
	return t.dialect.Placeholder(len(t.bound))
}

// format, değeri modifier'a göre SQL'e çevirir. mod boşsa tip otomatik seçilir.
func (t *translator) format(v any, mod string) (string, error) {
	if lit, ok := v.(Literal); ok {
		return string(lit), nil
	}
	v = deref(v)

	switch mod {
	case "":
		return t.auto(v)
	case "n":
		return t.identifiers(v)
	case "sql":
		if v == nil {
			return "", nil
		}
		return fmt.Sprint(v), nil
	case "ex":
		return t.expand(v)
	case "a":
		rec, err := ToRecord(v)
		if err != nil {
			return "", err
		}
		return t.assignments(rec)
	case "v":
		rec, err := ToRecord(v)
		if err != nil {
			return "", err
		}
		return t.values(rec)
	case "m":
		return t.multiValues(v)
	case "l":
		list, err := t.list(v, "")
		if err != nil {
			return "", err
		}
		return "(" + list + ")", nil
	case "in":
		if v == nil {
			return "IN (NULL)", nil
		}
		list, err := t.list(v, "")
		if err != nil {
			return "", err
		}
		if list == "" {
			return "IN (NULL)", nil
		}
		return "IN (" + list + ")", nil
	case "and", "or":
		return t.conditions(v, strings.ToUpper(mod))
	case "by":
		return t.orderBy(v)
	case "like~", "~like", "~like~":
		return t.like(v, mod)
	}

	if v == nil {
		return "NULL", nil
	}
	if items, ok := listOf(v); ok {
		return t.joinFormatted(items, mod)
	}
	return t.scalar(v, mod)
}

// auto, değerin tipine göre biçimleme seçer.
func (t *translator) auto(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case Literal:
		return string(x), nil
	case *Record:
		return t.recordAuto(x)
	case string:
		return t.scalar(x, "s")
	case bool:
		return t.scalar(x, "b")
	case time.Time:
		return t.scalar(x, "t")
	case []byte:
		return t.scalar(x, "bin")
	case driver.Valuer:
		value, err := x.Value()
		if err != nil {
			return "", errors.Wrapf(ErrInvalidInput, "driver.Valuer %T: %v", v, err)
		}
		return t.auto(value)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t.scalar(v, "i")
	case reflect.Float32, reflect.Float64:
		return t.scalar(v, "f")
	case reflect.String:
		return t.scalar(rv.String(), "s")
	case reflect.Bool:
		return t.scalar(rv.Bool(), "b")
	case reflect.Slice, reflect.Array:
		items, _ := listOf(v)
		return t.joinFormatted(items, "")
	case reflect.Map, reflect.Struct, reflect.Ptr:
		rec, err := ToRecord(v)
		if err != nil {
			return "", err
		}
		return t.recordAuto(rec)
	}
	return "", errors.Wrapf(ErrInvalidInput, "unsupported value type %T", v)
}

// recordAuto, INSERT/REPLACE sorgularında VALUES, diğerlerinde SET listesi üretir.
func (t *translator) recordAuto(rec *Record) (string, error) {
	if t.insert {
		return t.values(rec)
	}
	return t.assignments(rec)
}

func (t *translator) joinFormatted(items []any, mod string) (string, error) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		s, err := t.format(item, mod)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

// listOf, slice/array değerlerini []any'e açar. []byte liste sayılmaz.
func listOf(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// list, liste veya tek değeri virgülle ayrılmış değerlere çevirir.
func (t *translator) list(v any, mod string) (string, error) {
	items, ok := listOf(v)
	if !ok {
		items = []any{v}
	}
	return t.joinFormatted(items, mod)
}

func (t *translator) expand(v any) (string, error) {
	items, ok := listOf(v)
	if !ok {
		items = []any{v}
	}
	queue, pos := t.queue, t.pos
	t.queue, t.pos = items, 0
	out, err := t.walk()
	t.queue, t.pos = queue, pos
	return out, err
}

func (t *translator) identifiers(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return WrapIdentifier(t.dialect, x)
	case *Record:
		if x.Len() == 0 {
			return "", errors.Wrap(ErrInvalidInput, "%n expects at least one identifier")
		}
		parts := make([]string, 0, x.Len())
		var err error
		x.Each(func(column string, alias any) bool {
			var col string
			if col, err = WrapIdentifier(t.dialect, column); err != nil {
				return false
			}
			if name, ok := alias.(string); ok && name != "" {
				var as string
				if as, err = WrapIdentifier(t.dialect, name); err != nil {
					return false
				}
				col += " AS " + as
			}
			parts = append(parts, col)
			return true
		})
		if err != nil {
			return "", err
		}
		return strings.Join(parts, ", "), nil
	}

	items, ok := listOf(v)
	if !ok || len(items) == 0 {
		return "", errors.Wrapf(ErrInvalidInput, "%%n expects an identifier or a list of identifiers, got %T", v)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		name, ok := item.(string)
		if !ok {
			return "", errors.Wrapf(ErrInvalidInput, "%%n expects string identifiers, got %T", item)
		}
		wrapped, err := WrapIdentifier(t.dialect, name)
		if err != nil {
			return "", err
		}
		parts[i] = wrapped
	}
	return strings.Join(parts, ", "), nil
}

// splitKey, "kolon%mod" biçimindeki Record anahtarını ayırır.
func splitKey(key string) (string, string) {
	if i := strings.IndexByte(key, '%'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}

func (t *translator) recordPairs(rec *Record, fn func(col, value string) error) error {
	if rec.Len() == 0 {
		return errors.Wrap(ErrInvalidInput, "record must contain at least one column")
	}
	var err error
	rec.Each(func(key string, value any) bool {
		name, mod := splitKey(key)
		var col, val string
		if col, err = WrapIdentifier(t.dialect, name); err != nil {
			return false
		}
		if val, err = t.format(value, mod); err != nil {
			return false
		}
		err = fn(col, val)
		return err == nil
	})
	return err
}

func (t *translator) assignments(rec *Record) (string, error) {
	parts := make([]string, 0, rec.Len())
	err := t.recordPairs(rec, func(col, value string) error {
		parts = append(parts, col+" = "+value)
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ", "), nil
}

func (t *translator) values(rec *Record) (string, error) {
	cols := make([]string, 0, rec.Len())
	vals := make([]string, 0, rec.Len())
	err := t.recordPairs(rec, func(col, value string) error {
		cols = append(cols, col)
		vals = append(vals, value)
		return nil
	})
	if err != nil {
		return "", err
	}
	return "(" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(vals, ", ") + ")", nil
}

// multiValues, Record listesini çok satırlı INSERT'e çevirir. Tüm satırlar
// ilk satırla aynı kolonlara sahip olmalıdır.
func (t *translator) multiValues(v any) (string, error) {
	items, ok := listOf(v)
	if !ok || len(items) == 0 {
		return "", errors.Wrapf(ErrInvalidInput, "%%m expects a non-empty list of records, got %T", v)
	}

	rows := make([]*Record, len(items))
	for i, item := range items {
		rec, err := ToRecord(item)
		if err != nil {
			return "", err
		}
		rows[i] = rec
	}

	keys := rows[0].Keys()
	if len(keys) == 0 {
		return "", errors.Wrap(ErrInvalidInput, "record must contain at least one column")
	}
	cols := make([]string, len(keys))
	for i, key := range keys {
		name, _ := splitKey(key)
		wrapped, err := WrapIdentifier(t.dialect, name)
		if err != nil {
			return "", err
		}
		cols[i] = wrapped
	}

	tuples := make([]string, len(rows))
	for r, rec := range rows {
		if rec.Len() != len(keys) {
			return "", errors.Wrapf(ErrInvalidInput, "%%m row %d has %d columns, expected %d", r, rec.Len(), len(keys))
		}
		vals := make([]string, len(keys))
		for i, key := range keys {
			value, ok := rec.Get(key)
			if !ok {
				return "", errors.Wrapf(ErrInvalidInput, "%%m row %d is missing column %s", r, key)
			}
			_, mod := splitKey(key)
			s, err := t.format(value, mod)
			if err != nil {
				return "", err
			}
			vals[i] = s
		}
		tuples[r] = "(" + strings.Join(vals, ", ") + ")"
	}

	return "(" + strings.Join(cols, ", ") + ") VALUES " + strings.Join(tuples, ", "), nil
}

// conditions, %and / %or koşul listesini üretir.
//
// Record için: nil -> IS NULL, liste -> IN (...), diğerleri -> = değer.
// Liste için: her eleman parantez içinde; []any elemanlar yeniden çevrilir,
// string elemanlar ham SQL'dir.
func (t *translator) conditions(v any, op string) (string, error) {
	empty := "1=1"
	if op == "OR" {
		empty = "1=0"
	}
	if v == nil {
		return empty, nil
	}

	if items, ok := listOf(v); ok {
		if len(items) == 0 {
			return empty, nil
		}
		parts := make([]string, len(items))
		for i, item := range items {
			var s string
			var err error
			switch x := item.(type) {
			case string:
				s = x
			default:
				s, err = t.expand(x)
			}
			if err != nil {
				return "", err
			}
			parts[i] = "(" + s + ")"
		}
		return strings.Join(parts, " "+op+" "), nil
	}

	rec, err := ToRecord(v)
	if err != nil {
		return "", err
	}
	if rec.Len() == 0 {
		return empty, nil
	}

	parts := make([]string, 0, rec.Len())
	rec.Each(func(key string, value any) bool {
		name, mod := splitKey(key)
		var col string
		if col, err = WrapIdentifier(t.dialect, name); err != nil {
			return false
		}
		value = deref(value)
		if value == nil {
			parts = append(parts, col+" IS NULL")
			return true
		}
		if items, ok := listOf(value); ok {
			if len(items) == 0 {
				parts = append(parts, col+" IN (NULL)")
				return true
			}
			var list string
			if list, err = t.joinFormatted(items, mod); err != nil {
				return false
			}
			parts = append(parts, col+" IN ("+list+")")
			return true
		}
		var s string
		if s, err = t.format(value, mod); err != nil {
			return false
		}
		parts = append(parts, col+" = "+s)
		return true
	})
	if err != nil {
		return "", err
	}
	return strings.Join(parts, " "+op+" "), nil
}

// orderBy, ORDER BY terimlerini üretir. Yön sadece ASC/DESC olabilir.
func (t *translator) orderBy(v any) (string, error) {
	if rec, ok := v.(*Record); ok {
		if rec.Len() == 0 {
			return "", errors.Wrap(ErrInvalidInput, "%by expects at least one column")
		}
		parts := make([]string, 0, rec.Len())
		var err error
		rec.Each(func(column string, dir any) bool {
			var term string
			if term, err = t.orderTerm(column, dir); err != nil {
				return false
			}
			parts = append(parts, term)
			return true
		})
		if err != nil {
			return "", err
		}
		return strings.Join(parts, ", "), nil
	}

	items, ok := listOf(v)
	if !ok {
		items = []any{v}
	}
	if len(items) == 0 {
		return "", errors.Wrap(ErrInvalidInput, "%by expects at least one column")
	}
	parts := make([]string, len(items))
	for i, item := range items {
		spec, ok := item.(string)
		if !ok {
			return "", errors.Wrapf(ErrInvalidInput, "%%by expects column names, got %T", item)
		}
		fields := strings.Fields(spec)
		var dir any
		switch len(fields) {
		case 1:
		case 2:
			dir = fields[1]
		default:
			return "", errors.Wrapf(ErrInvalidInput, "invalid ORDER BY term: %q", spec)
		}
		term, err := t.orderTerm(fields[0], dir)
		if err != nil {
			return "", err
		}
		parts[i] = term
	}
	return strings.Join(parts, ", "), nil
}

func (t *translator) orderTerm(column string, dir any) (string, error) {
	col, err := WrapIdentifier(t.dialect, column)
	if err != nil {
		return "", err
	}
	switch d := dir.(type) {
	case nil:
		return col, nil
	case OrderDirection:
		dir = string(d)
	}
	s, ok := dir.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidInput, "order direction must be ASC or DESC, got %T", dir)
	}
	direction, err := ParseOrderDirection(s)
	if err != nil {
		return "", err
	}
	return col + " " + string(direction), nil
}

func (t *translator) like(v any, mod string) (string, error) {
	s, err := toString(v)
	if err != nil {
		return "", err
	}
	pattern := likeEscaper.Replace(s)
	switch mod {
	case "like~":
		pattern += "%"
	case "~like":
		pattern = "%" + pattern
	default:
		pattern = "%" + pattern + "%"
	}
	return t.param(pattern, t.dialect.EscapeString(pattern)) + t.dialect.LikeEscape(), nil
}

// scalar, tek bir değeri skaler modifier'a göre bağlar.
func (t *translator) scalar(v any, mod string) (string, error) {
	if valuer, ok := v.(driver.Valuer); ok {
		value, err := valuer.Value()
		if err != nil {
			return "", errors.Wrapf(ErrInvalidInput, "driver.Valuer %T: %v", v, err)
		}
		if value == nil {
			return "NULL", nil
		}
		v = value
	}

	switch mod {
	case "s":
		s, err := toString(v)
		if err != nil {
			return "", err
		}
		return t.param(s, t.dialect.EscapeString(s)), nil

	case "i":
		n, text, err := toInteger(v)
		if err != nil {
			return "", err
		}
		return t.param(n, text), nil

	case "f":
		f, err := toFloat(v)
		if err != nil {
			return "", err
		}
		return t.param(f, strconv.FormatFloat(f, 'f', -1, 64)), nil

	case "b":
		b, err := toBool(v)
		if err != nil {
			return "", err
		}
		return t.param(b, t.dialect.EscapeBool(b)), nil

	case "d":
		tm, err := toTime(v)
		if err != nil {
			return "", err
		}
		date := tm.Format(dateLayout)
		return t.param(date, t.dialect.EscapeString(date)), nil

	case "t":
		tm, err := toTime(v)
		if err != nil {
			return "", err
		}
		return t.param(tm, t.dialect.EscapeString(tm.Format(datetimeLayout))), nil

	case "bin":
		var data []byte
		switch x := v.(type) {
		case []byte:
			data = x
		case string:
			data = []byte(x)
		default:
			return "", errors.Wrapf(ErrInvalidInput, "%%bin expects []byte, got %T", v)
		}
		return t.param(data, t.dialect.EscapeBinary(data)), nil
	}

	return "", NotSupported(fmt.Sprintf("dibi: unknown modifier %%%s", mod))
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(v), nil
	}
	return "", errors.Wrapf(ErrInvalidInput, "expected a string value, got %T", v)
}

// toInteger, değeri int64 (veya int64'e sığmayan uint64) ve literal gösterimine çevirir.
func toInteger(v any) (any, string, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		return n, strconv.FormatInt(n, 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u), strconv.FormatUint(u, 10), nil
		}
		return u, strconv.FormatUint(u, 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
			return nil, "", errors.Wrapf(ErrInvalidInput, "%v is not an integer", f)
		}
		n := int64(f)
		return n, strconv.FormatInt(n, 10), nil
	case reflect.Bool:
		if rv.Bool() {
			return int64(1), "1", nil
		}
		return int64(0), "0", nil
	case reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		if err != nil {
			return nil, "", errors.Wrapf(ErrInvalidInput, "%q is not an integer", rv.String())
		}
		return n, strconv.FormatInt(n, 10), nil
	}
	return nil, "", errors.Wrapf(ErrInvalidInput, "expected an integer value, got %T", v)
}

func toInt64(v any) (int64, error) {
	n, _, err := toInteger(deref(v))
	if err != nil {
		return 0, err
	}
	switch x := n.(type) {
	case int64:
		return x, nil
	default:
		return 0, errors.Wrapf(ErrInvalidInput, "%v overflows int64", v)
	}
}

func toFloat(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidInput, "%q is not a number", rv.String())
		}
		return f, nil
	}
	return 0, errors.Wrapf(ErrInvalidInput, "expected a float value, got %T", v)
}

func toBool(v any) (bool, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	case reflect.String:
		b, err := strconv.ParseBool(strings.TrimSpace(rv.String()))
		if err != nil {
			return false, errors.Wrapf(ErrInvalidInput, "%q is not a boolean", rv.String())
		}
		return b, nil
	}
	return false, errors.Wrapf(ErrInvalidInput, "expected a boolean value, got %T", v)
}

// toTime, time.Time, unix timestamp veya tarih string'ini time.Time'a çevirir.
func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if tm, err := time.Parse(layout, s); err == nil {
				return tm, nil
			}
		}
		return time.Time{}, errors.Wrapf(ErrInvalidInput, "%q is not a date", x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Unix(rv.Int(), 0), nil
	}
	return time.Time{}, errors.Wrapf(ErrInvalidInput, "expected a date value, got %T", v)
}
