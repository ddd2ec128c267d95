package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/biyonik/dibi-go/pkg/database"
	"gopkg.in/yaml.v3"
)

// Çıktı formatları.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (table, json, yaml)", format)
	}
}

// writeRows, satırları istenen formatta yazar. columns boşsa ilk satırın
// kolonları kullanılır.
func writeRows(w io.Writer, format string, columns []string, rows []*database.Record) error {
	if rows == nil {
		rows = []*database.Record{}
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(columns) == 0 && len(rows) > 0 {
		columns = rows[0].Keys()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(row.Value(col))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return err
}

// writeValue, tek bir değeri (sayı, id, etkilenen satır) yazar.
func writeValue(w io.Writer, format, name string, value any) error {
	rec := database.NewRecord(name, value)
	switch format {
	case formatJSON, formatYAML:
		return writeRows(w, format, nil, []*database.Record{rec})
	default:
		_, err := fmt.Fprintf(w, "%s: %s\n", name, cell(value))
		return err
	}
}

// cell, tablo hücresi için değeri metne çevirir.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		if utf8.Valid(x) {
			return string(x)
		}
		return "0x" + hex.EncodeToString(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
