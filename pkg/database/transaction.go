// pkg/database/transaction.go
//
// Bir transaction, bir grup veritabanı işleminin *ya tamamen başarılı
// olmasını* ya da *hiçbirinin uygulanmamış kabul edilmesini* sağlar.
//
// Buradaki Transaction yapısı, Go'nun sql.Tx tipine bir sarmalayıcıdır ve
// Connection ile aynı Querier arayüzünü uygular. Böylece Table ve diğer
// yardımcılar transaction içinde değişiklik yapmadan çalışır.
//
// Örnek kullanım:
//
//   tx, _ := conn.Begin(ctx)
//   users, _ := database.NewTable(tx, database.TableConfig{Name: "users"}, database.DefaultNaming())
//   users.Update(ctx, 7, database.NewRecord("active", false))
//   tx.Commit()
//
// Eğer işlem sırasında hata olursa:
//   tx.Rollback()

package database

import (
	"context"
	"database/sql"

	"github.com/biyonik/dibi-go/pkg/events"
)

// Transaction
//
// Veritabanı transaction yapısını temsil eder. Her transaction'ın log ve
// event'lerde görünen bir kimliği (uuid) vardır.
type Transaction struct {
	conn *Connection
	tx   *sql.Tx
	id   string
	done bool
}

// ID, transaction kimliğini döndürür.
func (t *Transaction) ID() string {
	return t.id
}

// Tx, alttaki *sql.Tx'i döndürür.
func (t *Transaction) Tx() *sql.Tx {
	return t.tx
}

// Dialect, bağlantının SQL lehçesini döndürür.
func (t *Transaction) Dialect() Dialect {
	return t.conn.dialect
}

// Query, sorguyu transaction içinde çalıştırır.
func (t *Transaction) Query(ctx context.Context, args ...any) (*Result, error) {
	query, bound, err := t.conn.Translate(args...)
	if err != nil {
		return nil, err
	}
	return t.conn.query(ctx, t.tx, t.id, query, bound)
}

// Exec, ifadeyi transaction içinde çalıştırır.
func (t *Transaction) Exec(ctx context.Context, args ...any) (ExecResult, error) {
	query, bound, err := t.conn.Translate(args...)
	if err != nil {
		return ExecResult{}, err
	}
	return t.conn.exec(ctx, t.tx, t.id, query, bound)
}

// Commit
//
// Transaction'ı başarılı şekilde sonlandırır.
//
// Dönüş: error
func (t *Transaction) Commit() error {
	err := t.tx.Commit()
	t.finish(events.EventTransactionCommit, err)
	if err != nil {
		return t.conn.dialect.TranslateError(err, "COMMIT")
	}
	t.conn.logger.Debug("✅ Transaction commit edildi.", "tx", t.id)
	return nil
}

// Rollback
//
// Yapılmış tüm değişiklikleri geri alır. Commit veya Rollback'ten sonra
// tekrar çağrılırsa sql.ErrTxDone döner.
//
// Dönüş: error
func (t *Transaction) Rollback() error {
	err := t.tx.Rollback()
	t.finish(events.EventTransactionRollback, err)
	if err != nil {
		return t.conn.dialect.TranslateError(err, "ROLLBACK")
	}
	t.conn.logger.Debug("❌ Transaction geri alındı.", "tx", t.id)
	return nil
}

func (t *Transaction) finish(name string, err error) {
	if t.done {
		return
	}
	t.done = true
	t.conn.dispatch(events.NewTransactionEvent(name, t.id, err))
}
