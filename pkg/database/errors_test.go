package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_SQLSuffix(t *testing.T) {
	withSQL := NewError("Table 'shop.users' doesn't exist", 1146, "SELECT * FROM users")
	assert.Equal(t, "Table 'shop.users' doesn't exist\nSQL: SELECT * FROM users", withSQL.Error())
	assert.Equal(t, 1146, withSQL.Code)
	assert.Equal(t, "SELECT * FROM users", withSQL.SQL)

	withoutSQL := NewError("connection lost", 2013, "")
	assert.Equal(t, "connection lost", withoutSQL.Error())
	assert.NotContains(t, withoutSQL.Error(), "SQL:")
}

func TestError_KindSentinels(t *testing.T) {
	cause := errors.New("broken pipe")

	tests := []struct {
		name   string
		err    error
		target error
		kind   Kind
	}{
		{"driver", NewDriverError("broken pipe", 0, "SELECT 1", cause), ErrDriver, KindDriver},
		{"procedure", NewProcedureError("out of stock", 45000, "ERROR", "CALL reserve()"), ErrProcedure, KindProcedure},
		{"pattern", NewPatternError(PatternInternalError, ""), ErrPattern, KindPattern},
		{"not implemented", NotImplemented("later"), ErrNotImplemented, KindNotImplemented},
		{"not supported", NotSupported("nope"), ErrNotSupported, KindNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("repository: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.target)

			var dbErr *Error
			require.ErrorAs(t, wrapped, &dbErr)
			assert.Equal(t, tt.kind, dbErr.Kind)

			for _, other := range []error{ErrDriver, ErrProcedure, ErrPattern, ErrNotImplemented, ErrNotSupported} {
				if other != tt.target {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestError_UnwrapCause(t *testing.T) {
	cause := errors.New("broken pipe")
	err := NewDriverError("broken pipe", 0, "", cause)
	assert.ErrorIs(t, err, cause)

	assert.ErrorIs(t, ErrNoRows, sql.ErrNoRows)
	assert.ErrorIs(t, fmt.Errorf("find: %w", ErrNoRows), ErrNoRows)
}

func TestError_WithSQL(t *testing.T) {
	base := NewDriverError("deadlock", 1213, "", nil)
	withSQL := base.WithSQL("UPDATE t SET a = 1")

	assert.Empty(t, base.SQL)
	assert.Equal(t, "deadlock\nSQL: UPDATE t SET a = 1", withSQL.Error())
}

func TestNewPatternError(t *testing.T) {
	tests := []struct {
		code   int
		format string
		want   string
	}{
		{PatternInternalError, "", "Internal error."},
		{PatternBacktrackLimitError, "", "Backtrack limit was exhausted."},
		{PatternRecursionLimitError, "", "Recursion limit was exhausted."},
		{PatternBadUTF8Error, "", "Malformed UTF-8 data."},
		{PatternBadUTF8OffsetError, "", "Offset didn't correspond to the begin of a valid UTF-8 code point."},
		{99, "", "Unknown error."},
		{PatternBadUTF8Error, "split failed: %msg", "split failed: Malformed UTF-8 data"},
	}

	for _, tt := range tests {
		err := NewPatternError(tt.code, tt.format)
		assert.Equal(t, tt.want, err.Error())
		assert.Equal(t, tt.code, err.Code)
	}
}

func TestKind_String(t *testing.T) {
	for _, k := range []Kind{KindGeneric, KindDriver, KindPattern, KindNotImplemented, KindNotSupported, KindProcedure} {
		assert.NotEmpty(t, k.String())
	}
}
