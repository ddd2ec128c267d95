package database

import (
	"context"
	"database/sql"
)

// QueryExecutor, Go'nun 'database/sql' paketindeki hem *sql.DB (havuz) hem de
// *sql.Tx (transaction) tarafından örtük olarak uygulanan metodları tanımlar.
//
// Connection ve Transaction aynı çalıştırma yolunu bu arayüz üzerinden
// paylaşır.
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Querier, SQL argüman listesini çalıştırabilen her şeyi temsil eder.
//
// Connection ve Transaction bu arayüzü uygular. Table bu arayüze kilitlenir;
// böylece hem normal sorgularda hem de transaction içinde çalışabilir.
type Querier interface {
	Query(ctx context.Context, args ...any) (*Result, error)
	Exec(ctx context.Context, args ...any) (ExecResult, error)
	Dialect() Dialect
}

var (
	_ Querier = (*Connection)(nil)
	_ Querier = (*Transaction)(nil)
)
