package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanUser struct {
	ID     int64          `db:"id"`
	Name   string         `db:"name"`
	Email  *string        `db:"email"`
	Active bool           `db:"active"`
	Avatar []byte         `db:"avatar"`
	Note   sql.NullString `db:"note"`
}

func seedUsers(t *testing.T) *Connection {
	t.Helper()
	conn := openTestDB(t)
	_, err := conn.Exec(context.Background(), "INSERT INTO %n", "users", "%m", []*Record{
		NewRecord("name", "Ada", "email", "ada@example.com", "avatar", []byte("png")),
		NewRecord("name", "Grace", "email", nil, "avatar", nil),
	})
	require.NoError(t, err)
	return conn
}

func TestResult_FetchIteratesInColumnOrder(t *testing.T) {
	conn := seedUsers(t)

	res, err := conn.Query(context.Background(), "SELECT [name], [id] FROM users ORDER BY [id]")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "id"}, res.Columns())
	assert.Equal(t, `SELECT "name", "id" FROM users ORDER BY "id"`, res.SQL())

	var names []string
	for {
		row, err := res.Fetch()
		require.NoError(t, err)
		if row == nil {
			break
		}
		assert.Equal(t, []string{"name", "id"}, row.Keys())
		names = append(names, row.Value("name").(string))
	}
	assert.Equal(t, []string{"Ada", "Grace"}, names)

	assert.NoError(t, res.Close())
	assert.NoError(t, res.Close())
}

func TestResult_BinaryColumnsStayBytes(t *testing.T) {
	conn := seedUsers(t)

	res, err := conn.Query(context.Background(), "SELECT [name], [avatar] FROM users WHERE [id] = %i", 1)
	require.NoError(t, err)
	rows, err := res.FetchAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.IsType(t, "", rows[0].Value("name"))
	assert.Equal(t, []byte("png"), rows[0].Value("avatar"))
}

func TestResult_FetchSingle(t *testing.T) {
	conn := seedUsers(t)
	ctx := context.Background()

	res, err := conn.Query(ctx, "SELECT COUNT(*) FROM users")
	require.NoError(t, err)
	count, err := res.FetchSingle()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	res, err = conn.Query(ctx, "SELECT [id] FROM users WHERE [id] = %i", 99)
	require.NoError(t, err)
	_, err = res.FetchSingle()
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestResult_FetchPairs(t *testing.T) {
	conn := seedUsers(t)
	ctx := context.Background()

	res, err := conn.Query(ctx, "SELECT [id], [name] FROM users ORDER BY [id]")
	require.NoError(t, err)
	pairs, err := res.FetchPairs("", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pairs.Keys())
	assert.Equal(t, "Grace", pairs.Value("2"))

	res, err = conn.Query(ctx, "SELECT * FROM users ORDER BY [id]")
	require.NoError(t, err)
	pairs, err = res.FetchPairs("name", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), pairs.Value("Ada"))

	res, err = conn.Query(ctx, "SELECT * FROM users")
	require.NoError(t, err)
	_, err = res.FetchPairs("nope", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	single := newBufferedResult([]string{"id"}, [][]any{{int64(1)}})
	_, err = single.FetchPairs("", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResult_Scan(t *testing.T) {
	conn := seedUsers(t)
	ctx := context.Background()

	res, err := conn.Query(ctx, "SELECT * FROM users WHERE [id] = %i", 1)
	require.NoError(t, err)

	var user scanUser
	require.NoError(t, res.Scan(&user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Ada", user.Name)
	require.NotNil(t, user.Email)
	assert.Equal(t, "ada@example.com", *user.Email)
	assert.True(t, user.Active)
	assert.Equal(t, []byte("png"), user.Avatar)
	assert.False(t, user.Note.Valid)

	res, err = conn.Query(ctx, "SELECT * FROM users WHERE [id] = %i", 99)
	require.NoError(t, err)
	assert.ErrorIs(t, res.Scan(&user), ErrNoRows)

	res, err = conn.Query(ctx, "SELECT * FROM users")
	require.NoError(t, err)
	assert.ErrorIs(t, res.Scan(user), ErrInvalidInput)
}

func TestResult_ScanAll(t *testing.T) {
	conn := seedUsers(t)
	ctx := context.Background()

	res, err := conn.Query(ctx, "SELECT * FROM users ORDER BY [id]")
	require.NoError(t, err)
	var users []scanUser
	require.NoError(t, res.ScanAll(&users))
	require.Len(t, users, 2)
	assert.Equal(t, "Grace", users[1].Name)
	assert.Nil(t, users[1].Email)
	assert.Nil(t, users[1].Avatar)

	res, err = conn.Query(ctx, "SELECT * FROM users ORDER BY [id]")
	require.NoError(t, err)
	var pointers []*scanUser
	require.NoError(t, res.ScanAll(&pointers))
	require.Len(t, pointers, 2)
	assert.Equal(t, int64(2), pointers[1].ID)

	res, err = conn.Query(ctx, "SELECT * FROM users")
	require.NoError(t, err)
	var wrong []int
	assert.ErrorIs(t, res.ScanAll(&wrong), ErrInvalidInput)
}

func TestResult_Buffered(t *testing.T) {
	res := newBufferedResult([]string{"id", "name"}, [][]any{
		{int64(1), "Ada"},
		{int64(2), "Grace"},
	})

	first, err := res.Fetch()
	require.NoError(t, err)
	assert.Equal(t, "Ada", first.Value("name"))

	rest, err := res.FetchAll()
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Grace", rest[0].Value("name"))

	row, err := res.Fetch()
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestExecResult_InsertIDUnsupported(t *testing.T) {
	res := ExecResult{result: fakeSQLResult{id: 5, affected: 1}, dialect: postgresDialect}

	_, err := res.InsertID()
	assert.ErrorIs(t, err, ErrNotSupported)

	n, err := res.AffectedRows()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
