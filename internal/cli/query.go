package cli

import (
	"github.com/biyonik/dibi-go/pkg/database"
	"github.com/spf13/cobra"
)

func (a *app) queryCommand() *cobra.Command {
	var useCache bool

	cmd := &cobra.Command{
		Use:   "query [flags] <arg>...",
		Short: "Run a row-returning statement and print the rows",
		Example: `  dibi query "SELECT * FROM users WHERE [id] IN (%i)" '[1,2,3]'
  dibi -o json query --cache "SELECT COUNT(*) AS total FROM users"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, cleanup, err := a.connect(ctx, useCache)
			if err != nil {
				return err
			}
			defer cleanup()

			values := parseArgs(args)
			var res *database.Result
			if useCache {
				res, err = conn.QueryCached(ctx, a.cfg.Cache.TTL, values...)
			} else {
				res, err = conn.Query(ctx, values...)
			}
			if err != nil {
				return err
			}
			defer res.Close()

			rows, err := res.FetchAll()
			if err != nil {
				return err
			}
			return writeRows(stdout(cmd), a.format, res.Columns(), rows)
		},
	}

	cmd.Flags().BoolVar(&useCache, "cache", false, "serve the result from the configured cache (cache.driver, cache.ttl)")
	return cmd
}

func (a *app) execCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "exec <arg>...",
		Short:   "Run a statement and print the affected row count",
		Example: `  dibi exec "UPDATE users SET %a" '{"active":false}' "WHERE [id] = %i" 3`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, cleanup, err := a.connect(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := conn.Exec(ctx, parseArgs(args)...)
			if err != nil {
				return err
			}

			affected, err := res.AffectedRows()
			if err != nil {
				return err
			}
			out := database.NewRecord("affected", affected)
			if id, err := res.InsertID(); err == nil && id > 0 {
				out.Set("insert_id", id)
			}
			return writeRows(stdout(cmd), a.format, nil, []*database.Record{out})
		},
	}
}
