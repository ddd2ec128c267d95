package cli

import (
	"context"
	"strings"

	"github.com/biyonik/dibi-go/pkg/database"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) tableCommand() *cobra.Command {
	var primary, modifier string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Primary-key CRUD on a single table",
		Long: `Table runs single-statement operations through the table facade.
The primary key column comes from --primary or from naming.primary
(%p is replaced by the table name, %s by the singular table name).`,
	}
	cmd.PersistentFlags().StringVar(&primary, "primary", "", "primary key column")
	cmd.PersistentFlags().StringVar(&modifier, "primary-modifier", "", "modifier for primary key values (default %i)")

	// withTable, bağlantıyı açar, tabloyu kurar ve fn'i çalıştırır.
	withTable := func(cmd *cobra.Command, name string, fn func(ctx context.Context, t *database.Table) error) error {
		ctx := cmd.Context()
		conn, cleanup, err := a.connect(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()

		t, err := database.NewTable(conn, database.TableConfig{
			Name:            name,
			Primary:         primary,
			PrimaryModifier: modifier,
		}, a.cfg.TableNaming())
		if err != nil {
			return err
		}
		return fn(ctx, t)
	}

	printResult := func(cmd *cobra.Command, res *database.Result) error {
		defer res.Close()
		rows, err := res.FetchAll()
		if err != nil {
			return err
		}
		return writeRows(stdout(cmd), a.format, res.Columns(), rows)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "find <table> <key>...",
			Short:   "Select rows by primary key",
			Example: `  dibi table find users 1 2 3`,
			Args:    cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTable(cmd, args[0], func(ctx context.Context, t *database.Table) error {
					res, err := t.Find(ctx, parseArgs(args[1:])...)
					if err != nil {
						return err
					}
					return printResult(cmd, res)
				})
			},
		},
		&cobra.Command{
			Use:     "all <table> [column]...",
			Short:   "Select all rows, optionally ordered by columns",
			Example: `  dibi table all users last_name first_name`,
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTable(cmd, args[0], func(ctx context.Context, t *database.Table) error {
					res, err := t.FindAll(ctx, args[1:]...)
					if err != nil {
						return err
					}
					return printResult(cmd, res)
				})
			},
		},
		&cobra.Command{
			Use:   "fetch <table> <key>",
			Short: "Fetch a single row by primary key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTable(cmd, args[0], func(ctx context.Context, t *database.Table) error {
					row, err := t.Fetch(ctx, parseArg(args[1]))
					if err != nil {
						return err
					}
					return writeRows(stdout(cmd), a.format, nil, []*database.Record{row})
				})
			},
		},
		&cobra.Command{
			Use:     "insert <table> <json-object>",
			Short:   "Insert a row and print the generated key",
			Example: `  dibi table insert users '{"name":"Ada","email":"ada@example.com"}'`,
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := recordArg(args[1])
				if err != nil {
					return err
				}
				return withTable(cmd, args[0], func(ctx context.Context, t *database.Table) error {
					id, err := t.Insert(ctx, data)
					if err != nil {
						return err
					}
					return writeValue(stdout(cmd), a.format, t.Primary(), id)
				})
			},
		},
		&cobra.Command{
			Use:     "update <table> <key|json-array> <json-object>",
			Short:   "Update rows by primary key",
			Example: `  dibi table update users '[1,2]' '{"active":false}'`,
			Args:    cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := recordArg(args[2])
				if err != nil {
					return err
				}
				return withTable(cmd, args[0], func(ctx context.Context, t *database.Table) error {
					n, err := t.Update(ctx, parseArg(args[1]), data)
					if err != nil {
						return err
					}
					return writeValue(stdout(cmd), a.format, "affected", n)
				})
			},
		},
		&cobra.Command{
			Use:     "delete <table> <key|json-array>",
			Short:   "Delete rows by primary key",
			Example: `  dibi table delete users 3`,
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withTable(cmd, args[0], func(ctx context.Context, t *database.Table) error {
					n, err := t.Delete(ctx, parseArg(args[1]))
					if err != nil {
						return err
					}
					return writeValue(stdout(cmd), a.format, "affected", n)
				})
			},
		},
	)
	return cmd
}

// recordArg, JSON nesnesi argümanını Record'a çevirir.
func recordArg(arg string) (*database.Record, error) {
	if !strings.HasPrefix(strings.TrimSpace(arg), "{") {
		return nil, errors.Wrapf(database.ErrInvalidInput, "expected a JSON object, got %q", arg)
	}
	rec, ok := parseArg(arg).(*database.Record)
	if !ok {
		return nil, errors.Wrapf(database.ErrInvalidInput, "invalid JSON object %q", arg)
	}
	return rec, nil
}
