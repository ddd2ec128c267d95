package cli

import (
	"fmt"

	"github.com/biyonik/dibi-go/pkg/database"
	"github.com/spf13/cobra"
)

func (a *app) translateCommand() *cobra.Command {
	var literal bool

	cmd := &cobra.Command{
		Use:   "translate [flags] <arg>...",
		Short: "Translate SQL fragments without running them",
		Long: `Translate prints the SQL produced for the given arguments in the
configured driver's dialect, followed by the bound values. With --literal
the values are escaped inline instead.`,
		Example: `  dibi translate "SELECT * FROM %n" users "WHERE %and" '{"active":true,"role":"admin"}'
  dibi --driver mysql translate --literal "INSERT INTO users" '{"name":"Ada"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dialect, err := database.DialectFor(a.cfg.DB.Driver)
			if err != nil {
				return err
			}
			values := parseArgs(args)
			w := stdout(cmd)

			if literal {
				sql, err := database.TranslateLiteral(dialect, a.cfg.DB.Substitutions, values...)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, sql)
				return err
			}

			sql, bound, err := database.Translate(dialect, a.cfg.DB.Substitutions, values...)
			if err != nil {
				return err
			}
			if a.format != formatTable {
				return writeRows(w, a.format, nil, []*database.Record{
					database.NewRecord("sql", sql, "args", bound),
				})
			}
			if _, err := fmt.Fprintln(w, sql); err != nil {
				return err
			}
			for i, v := range bound {
				if _, err := fmt.Fprintf(w, "  $%d = %s (%T)\n", i+1, cell(v), v); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&literal, "literal", false, "embed escaped values into the SQL")
	return cmd
}
