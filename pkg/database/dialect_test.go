package database

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := map[string]string{
		"mysql":      "mysql",
		"MariaDB":    "mysql",
		"postgres":   "postgres",
		"postgresql": "postgres",
		"pgsql":      "postgres",
		"sqlite":     "sqlite",
		" sqlite3 ":  "sqlite",
	}
	for driver, want := range tests {
		d, err := DialectFor(driver)
		require.NoError(t, err, driver)
		assert.Equal(t, want, d.Name(), driver)
	}

	_, err := DialectFor("oracle")
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestWrapIdentifier(t *testing.T) {
	tests := []struct {
		dialect Dialect
		input   string
		want    string
	}{
		{mysqlDialect, "users", "`users`"},
		{mysqlDialect, "u.name", "`u`.`name`"},
		{mysqlDialect, "u.*", "`u`.*"},
		{mysqlDialect, "*", "*"},
		{postgresDialect, "public.users", `"public"."users"`},
		{sqliteDialect, "users", `"users"`},
	}
	for _, tt := range tests {
		got, err := WrapIdentifier(tt.dialect, tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "users; DROP TABLE x", "a.b-c", "*.id", "na`me", "a..b"} {
		_, err := WrapIdentifier(mysqlDialect, bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	assert.True(t, IsValidIdentifier("users"))
	assert.True(t, IsValidIdentifier("shop.users"))
	assert.False(t, IsValidIdentifier(""))
	assert.False(t, IsValidIdentifier("users "))
	assert.False(t, IsValidIdentifier("a.*"))
}

func TestDialect_Placeholders(t *testing.T) {
	assert.Equal(t, "?", mysqlDialect.Placeholder(3))
	assert.Equal(t, "?", sqliteDialect.Placeholder(3))
	assert.Equal(t, "$3", postgresDialect.Placeholder(3))
}

func TestDialect_LastInsertID(t *testing.T) {
	assert.True(t, mysqlDialect.SupportsLastInsertID())
	assert.True(t, sqliteDialect.SupportsLastInsertID())
	assert.False(t, postgresDialect.SupportsLastInsertID())
}

func TestMySQLDialect_TranslateError(t *testing.T) {
	driverErr := &mysql.MySQLError{Number: 1146, SQLState: [5]byte{'4', '2', 'S', '0', '2'}, Message: "Table 'shop.users' doesn't exist"}
	err := mysqlDialect.TranslateError(driverErr, "SELECT * FROM users")

	var dbErr *Error
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, KindDriver, dbErr.Kind)
	assert.Equal(t, 1146, dbErr.Code)
	assert.Equal(t, "42S02", dbErr.SQLState)
	assert.Equal(t, "Table 'shop.users' doesn't exist\nSQL: SELECT * FROM users", dbErr.Error())
	assert.ErrorIs(t, err, driverErr)

	signal := &mysql.MySQLError{Number: 1644, SQLState: [5]byte{'4', '5', '0', '0', '0'}, Message: "out of stock"}
	err = mysqlDialect.TranslateError(signal, "CALL reserve(1)")
	assert.ErrorIs(t, err, ErrProcedure)
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "ERROR", dbErr.Severity)
	assert.Equal(t, 1644, dbErr.Code)
}

func TestPostgresDialect_TranslateError(t *testing.T) {
	unique := &pq.Error{Severity: "ERROR", Code: "23505", Message: "duplicate key value violates unique constraint"}
	err := postgresDialect.TranslateError(unique, "INSERT INTO users")

	var dbErr *Error
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, KindDriver, dbErr.Kind)
	assert.Equal(t, 23505, dbErr.Code)
	assert.Equal(t, "23505", dbErr.SQLState)
	assert.Equal(t, "ERROR", dbErr.Severity)

	raised := &pq.Error{Severity: "ERROR", Code: "P0001", Message: "order already closed"}
	err = postgresDialect.TranslateError(raised, "CALL close_order(1)")
	assert.ErrorIs(t, err, ErrProcedure)
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "P0001", dbErr.SQLState)
	assert.Equal(t, 0, dbErr.Code)
	assert.Equal(t, "order already closed\nSQL: CALL close_order(1)", dbErr.Error())
}

func TestDialect_TranslateGenericError(t *testing.T) {
	cause := errors.New("connection refused")
	for _, d := range []Dialect{mysqlDialect, postgresDialect, sqliteDialect} {
		err := d.TranslateError(cause, "SELECT 1")
		assert.ErrorIs(t, err, ErrDriver, d.Name())
		assert.ErrorIs(t, err, cause, d.Name())
		assert.Nil(t, d.TranslateError(nil, ""), d.Name())
	}
}
