package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/ttscrape/internal/config"
	"github.com/nao1215/ttscrape/internal/database"
	"github.com/nao1215/ttscrape/internal/schema"
)

// NewMigrateCmd creates the migrate command.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or drop the Postgres warehouse tables",
		Long: `Migrate applies the courses, classes and times table definitions to the
Postgres database named by ` + config.EnvPostgresDSN + `, then prints the row count of each table.
"ttscrape scrape --postgres" migrates automatically; this command is for
preparing or resetting a warehouse by hand.`,
		Args: cobra.NoArgs,
		RunE: runMigrateCmd,
	}

	cmd.Flags().String("dsn", "", "Postgres connection string (overrides "+config.EnvPostgresDSN+")")
	cmd.Flags().Bool("down", false, "Drop the tables instead of creating them")

	return cmd
}

func runMigrateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if changed(cmd, "dsn") {
		if cfg.PostgresDSN, err = cmd.Flags().GetString("dsn"); err != nil {
			return err
		}
	}
	down, err := cmd.Flags().GetBool("down")
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	ctx, stop := signalContext()
	defer stop()

	pg, err := database.OpenPostgres(ctx, cfg.PostgresDSN, database.WithSinkLogger(logger))
	if err != nil {
		return err
	}
	defer pg.Close()

	out := cmd.OutOrStdout()
	if down {
		if err := pg.Drop(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Dropped warehouse tables")
		return nil
	}

	if err := pg.Migrate(ctx); err != nil {
		return err
	}
	for _, name := range schema.Order {
		n, err := pg.Count(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-8s %d rows\n", name, n)
	}
	return nil
}
