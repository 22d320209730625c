package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// NewResolveYearCmd creates the resolve-year command.
func NewResolveYearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve-year",
		Short: "Print the newest year the timetable publishes",
		Long: `Resolve-year probes the timetable for the newest year with published
data, starting from the current year: forward while the next year answers,
otherwise backward until a year answers.`,
		Args: cobra.NoArgs,
		RunE: runResolveYearCmd,
	}

	addHTTPFlags(cmd)
	cmd.Flags().Int("from", 0, "Year to start probing from (default: current year)")

	return cmd
}

func runResolveYearCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if err := applyHTTPFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	from, err := cmd.Flags().GetInt("from")
	if err != nil {
		return err
	}
	if from == 0 {
		from = time.Now().Year()
	}

	logger := newLogger(cfg)
	ctx, stop := signalContext()
	defer stop()

	client, err := newFetchClient(cfg, logger)
	if err != nil {
		return err
	}
	_, resolver, err := newResolver(cfg, client, logger)
	if err != nil {
		return err
	}
	y, err := resolver.Resolve(ctx, from)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), y)
	return nil
}
