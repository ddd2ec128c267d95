// -----------------------------------------------------------------------------
// Database Types
// -----------------------------------------------------------------------------
// Translator ve Table tarafından kullanılan küçük yardımcı tipler.
//
// OrderDirection, ORDER BY yönünü enum gibi kullanarak sadece "ASC" ve
// "DESC" değerlerini kabul eder. Bu sayede kullanıcı input'u direkt SQL'e
// enjekte edilemez.
// -----------------------------------------------------------------------------

package database

import (
	"strings"

	"github.com/pkg/errors"
)

// OrderDirection, ORDER BY için izin verilen yönleri temsil eder.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// IsValid, yönün ASC veya DESC olup olmadığını kontrol eder.
func (d OrderDirection) IsValid() bool {
	return d == OrderAsc || d == OrderDesc
}

// ParseOrderDirection, büyük/küçük harf duyarsız olarak yönü okur.
//
// Örnek:
//
//	dir, err := ParseOrderDirection("desc") // OrderDesc
//	dir, err := ParseOrderDirection("DESC; DROP TABLE users") // ErrInvalidInput
func ParseOrderDirection(s string) (OrderDirection, error) {
	d := OrderDirection(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", errors.Wrapf(ErrInvalidInput, "order direction must be ASC or DESC, got %q", s)
	}
	return d, nil
}
