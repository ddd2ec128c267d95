package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingQuerier, çalıştırılan SQL'i kaydeden sahte Querier.
type recordingQuerier struct {
	dialect  Dialect
	sql      []string
	bound    [][]any
	columns  []string
	rows     [][]any
	affected int64
	insertID int64
}

func newRecordingQuerier(d Dialect) *recordingQuerier {
	return &recordingQuerier{dialect: d, affected: 1, insertID: 42}
}

func (q *recordingQuerier) record(args []any) error {
	sql, bound, err := Translate(q.dialect, nil, args...)
	if err != nil {
		return err
	}
	q.sql = append(q.sql, sql)
	q.bound = append(q.bound, bound)
	return nil
}

func (q *recordingQuerier) Query(_ context.Context, args ...any) (*Result, error) {
	if err := q.record(args); err != nil {
		return nil, err
	}
	return newBufferedResult(q.columns, q.rows), nil
}

func (q *recordingQuerier) Exec(_ context.Context, args ...any) (ExecResult, error) {
	if err := q.record(args); err != nil {
		return ExecResult{}, err
	}
	return ExecResult{result: fakeSQLResult{id: q.insertID, affected: q.affected}, dialect: q.dialect}, nil
}

func (q *recordingQuerier) Dialect() Dialect {
	return q.dialect
}

func (q *recordingQuerier) last() string {
	if len(q.sql) == 0 {
		return ""
	}
	return q.sql[len(q.sql)-1]
}

type fakeSQLResult struct {
	id       int64
	affected int64
}

func (r fakeSQLResult) LastInsertId() (int64, error) { return r.id, nil }
func (r fakeSQLResult) RowsAffected() (int64, error) { return r.affected, nil }

func newUsersTable(t *testing.T, q Querier) *Table {
	t.Helper()
	users, err := NewTable(q, TableConfig{Name: "Users"}, DefaultNaming())
	require.NoError(t, err)
	return users
}

func TestNewTable_Naming(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)

	tests := []struct {
		name    string
		cfg     TableConfig
		naming  Naming
		table   string
		primary string
	}{
		{"default mask", TableConfig{Name: "Users"}, DefaultNaming(), "users", "id"},
		{"table mask", TableConfig{Name: "users"}, Naming{PrimaryMask: "%p_id", LowerCase: true}, "users", "users_id"},
		{"singular mask", TableConfig{Name: "users"}, Naming{PrimaryMask: "%s_id", LowerCase: true}, "users", "user_id"},
		{"keeps case", TableConfig{Name: "Orders"}, Naming{PrimaryMask: "id"}, "Orders", "id"},
		{"explicit primary", TableConfig{Name: "countries", Primary: "code", PrimaryModifier: "%s"}, DefaultNaming(), "countries", "code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(q, tt.cfg, tt.naming)
			require.NoError(t, err)
			assert.Equal(t, tt.table, table.Name())
			assert.Equal(t, tt.primary, table.Primary())
		})
	}
}

func TestNewTable_Validation(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)

	bad := []TableConfig{
		{Name: ""},
		{Name: "users; DROP TABLE x"},
		{Name: "users", Primary: "id OR 1=1"},
		{Name: "users", PrimaryModifier: "i"},
		{Name: "users", PrimaryModifier: "%i)"},
		{Name: "users", PrimaryModifier: "%sql"},
		{Name: "users", PrimaryModifier: "%if"},
		{Name: "users", PrimaryModifier: "%ex"},
		{Name: "users", PrimaryModifier: "%lmt"},
		{Name: "users", PrimaryModifier: "%by"},
		{Name: "users", PrimaryModifier: "%and"},
		{Name: "users", PrimaryModifier: "%in"},
	}
	for _, cfg := range bad {
		_, err := NewTable(q, cfg, DefaultNaming())
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", cfg)
	}

	_, err := NewTable(nil, TableConfig{Name: "users"}, DefaultNaming())
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, mod := range []string{"%i", "%s", "%f", "%b", "%d", "%t", "%bin"} {
		table, err := NewTable(q, TableConfig{Name: "users", PrimaryModifier: mod}, DefaultNaming())
		require.NoError(t, err, mod)
		assert.Equal(t, mod, table.PrimaryModifier())
	}
	assert.Empty(t, q.sql)
}

func TestTable_InsertColumnsFollowRecordOrder(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)
	users := newUsersTable(t, q)

	id, err := users.Insert(context.Background(), NewRecord("name", "Ada", "email", "ada@example.com", "age", 36))
	require.NoError(t, err)

	assert.Equal(t, int64(42), id)
	assert.Equal(t, "INSERT INTO `users` (`name`, `email`, `age`) VALUES (?, ?, ?)", q.last())
	assert.Equal(t, []any{"Ada", "ada@example.com", int64(36)}, q.bound[0])
}

func TestTable_InsertStruct(t *testing.T) {
	q := newRecordingQuerier(sqliteDialect)
	users := newUsersTable(t, q)

	_, err := users.Insert(context.Background(), recordUser{ID: 3, Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("id", "name", "email") VALUES (?, ?, ?)`, q.last())
}

func TestTable_InsertUsesReturningWithoutLastInsertID(t *testing.T) {
	q := newRecordingQuerier(postgresDialect)
	q.columns = []string{"id"}
	q.rows = [][]any{{int64(9)}}
	users := newUsersTable(t, q)

	id, err := users.Insert(context.Background(), NewRecord("name", "Ada"))
	require.NoError(t, err)

	assert.Equal(t, int64(9), id)
	assert.Equal(t, `INSERT INTO "users" ("name") VALUES ($1) RETURNING "id"`, q.last())
}

func TestTable_RejectsNonRecordInputBeforeSQL(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)
	users := newUsersTable(t, q)
	ctx := context.Background()

	for _, data := range []any{nil, 5, "name=Ada", []string{"Ada"}, NewRecord()} {
		_, err := users.Insert(ctx, data)
		assert.ErrorIs(t, err, ErrInvalidInput, "insert %T", data)

		_, err = users.Update(ctx, 1, data)
		assert.ErrorIs(t, err, ErrInvalidInput, "update %T", data)
	}

	assert.Empty(t, q.sql)
}

func TestTable_KeyListsRenderMatchingInClause(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)
	users := newUsersTable(t, q)
	ctx := context.Background()

	n, err := users.Update(ctx, []int{1, 2, 3}, NewRecord("active", false))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "UPDATE `users` SET `active` = ? WHERE `id` IN (?, ?, ?)", q.last())
	assert.Equal(t, []any{false, int64(1), int64(2), int64(3)}, q.bound[0])

	_, err = users.Delete(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users` WHERE `id` IN (?)", q.last())

	for _, keys := range [][]any{{1, 2, 3}, {[]int{1, 2, 3}}, {1, []int64{2, 3}}} {
		_, err = users.Find(ctx, keys...)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM `users` WHERE `id` IN (?, ?, ?)", q.last())
	}
}

func TestTable_PrimaryModifier(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)
	countries, err := NewTable(q, TableConfig{Name: "countries", Primary: "code", PrimaryModifier: "%s"}, DefaultNaming())
	require.NoError(t, err)

	_, err = countries.Delete(context.Background(), []string{"TR", "DE"})
	require.NoError(t, err)
	assert.Equal(t, []any{"TR", "DE"}, q.bound[0])

	_, err = countries.Delete(context.Background(), 90)
	require.NoError(t, err)
	assert.Equal(t, []any{"90"}, q.bound[1])
}

func TestTable_EmptyKeySetDispatchesNothing(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)
	users := newUsersTable(t, q)
	ctx := context.Background()

	n, err := users.Update(ctx, []int{}, NewRecord("active", false))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = users.Delete(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	res, err := users.Find(ctx)
	require.NoError(t, err)
	rows, err := res.FetchAll()
	require.NoError(t, err)
	assert.Empty(t, rows)

	res, err = users.Find(ctx, []int{})
	require.NoError(t, err)
	row, err := res.Fetch()
	require.NoError(t, err)
	assert.Nil(t, row)

	assert.Empty(t, q.sql)
}

func TestTable_FindAllOrder(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)
	users := newUsersTable(t, q)
	ctx := context.Background()

	_, err := users.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users`", q.last())
	assert.NotContains(t, q.last(), "ORDER BY")

	_, err = users.FindAll(ctx, "last_name", "first_name", "id")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users` ORDER BY `last_name`, `first_name`, `id`", q.last())

	_, err = users.FindAll(ctx, "name; DROP TABLE users")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTable_FetchReturnsRow(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)
	q.columns = []string{"id", "name"}
	q.rows = [][]any{{int64(1), "Ada"}}
	users := newUsersTable(t, q)

	row, err := users.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users` WHERE `id` = ?", q.last())
	assert.Equal(t, "Ada", row.Value("name"))

	q.rows = nil
	_, err = users.Fetch(context.Background(), 2)
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestTable_FetchRejectsListKey(t *testing.T) {
	q := newRecordingQuerier(mysqlDialect)
	users := newUsersTable(t, q)

	_, err := users.Fetch(context.Background(), []int{1, 2})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = users.Fetch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, q.sql)
}

func TestTable_SQLite(t *testing.T) {
	conn := openTestDB(t)
	users := newUsersTable(t, conn)
	ctx := context.Background()

	first, err := users.Insert(ctx, NewRecord("name", "Ada", "email", "ada@example.com"))
	require.NoError(t, err)
	second, err := users.Insert(ctx, map[string]any{"name": "Grace"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	row, err := users.Fetch(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "email", "active", "avatar"}, row.Keys())
	assert.Equal(t, int64(1), row.Value("id"))
	assert.Equal(t, "Ada", row.Value("name"))

	n, err := users.Update(ctx, []int64{first, second}, NewRecord("active", false))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	res, err := users.Find(ctx, first, second, 99)
	require.NoError(t, err)
	rows, err := res.FetchAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(0), rows[0].Value("active"))

	res, err = users.FindAll(ctx, "name")
	require.NoError(t, err)
	rows, err = res.FetchAll()
	require.NoError(t, err)
	assert.Equal(t, "Ada", rows[0].Value("name"))
	assert.Equal(t, "Grace", rows[1].Value("name"))

	n, err = users.Delete(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = users.Fetch(ctx, first)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestTable_InsideTransaction(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := conn.Transaction(ctx, func(tx *Transaction) error {
		users := newUsersTable(t, tx)
		if _, err := users.Insert(ctx, NewRecord("name", "Ada")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	users := newUsersTable(t, conn)
	res, err := users.FindAll(ctx)
	require.NoError(t, err)
	rows, err := res.FetchAll()
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = conn.Transaction(ctx, func(tx *Transaction) error {
		_, err := newUsersTable(t, tx).Insert(ctx, NewRecord("name", "Grace"))
		return err
	})
	require.NoError(t, err)

	row, err := users.Fetch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Grace", row.Value("name"))
}
