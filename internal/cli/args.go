package cli

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/biyonik/dibi-go/pkg/database"
)

// parseArgs, komut satırı argümanlarını translator argümanlarına çevirir.
//
//	"42"             -> int64(42)
//	"1.5"            -> float64(1.5)
//	"[1,2]"          -> []any{int64(1), int64(2)}
//	`{"a":1,"b":2}`  -> *database.Record (a, b sırasıyla)
//	"true", "null"   -> bool, nil
//	"SELECT ..."     -> string (olduğu gibi)
func parseArgs(args []string) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = parseArg(arg)
	}
	return out
}

func parseArg(arg string) any {
	trimmed := bytes.TrimSpace([]byte(arg))
	if len(trimmed) == 0 {
		return arg
	}

	if trimmed[0] == '{' {
		rec := &database.Record{}
		if err := rec.UnmarshalJSON(trimmed); err != nil {
			return arg
		}
		return normalizeRecord(rec)
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return arg
	}
	if _, ok := v.(string); ok {
		// tırnaklı JSON string'leri olduğu gibi bırakılır; SQL parçası olabilir
		return arg
	}
	return normalize(v)
}

// normalize, JSON'dan gelen tam sayı değerli float64'leri int64'e çevirir.
func normalize(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
		return x
	case *database.Record:
		return normalizeRecord(x)
	default:
		return v
	}
}

func normalizeRecord(rec *database.Record) *database.Record {
	for _, k := range rec.Keys() {
		rec.Set(k, normalize(rec.Value(k)))
	}
	return rec
}
