package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/ttscrape/internal/database"
	"github.com/nao1215/ttscrape/internal/report"
)

// defaultHistoryLimit is how many runs "history" lists.
const defaultHistoryLimit = 20

// errEmptyHistory is returned when the history database has no runs.
var errEmptyHistory = errors.New("no runs recorded")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scrape runs",
		Long: `History lists the runs recorded by "ttscrape scrape", newest first, with
their row counts and whether the dataset changed since the previous run of
the same year.

Examples:
  # List the last 20 runs
  ttscrape history

  # Show the latest run of 2025
  ttscrape history --year 2025

  # Restore the dataset of one run, then upload it
  ttscrape history --id <run-id> --export out/
  ttscrape upload --input out/`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list")
	cmd.Flags().IntP("year", "y", 0, "Show only the latest run of this year")
	cmd.Flags().String("id", "", "Show the summary of one run")
	cmd.Flags().String("export", "", "With --id, write the run's dataset to this directory")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	newLogger(cfg)

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	y, err := cmd.Flags().GetInt("year")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	export, err := cmd.Flags().GetString("export")
	if err != nil {
		return err
	}
	if export != "" && id == "" {
		return errors.New("--export requires --id")
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case id != "":
		run, err := db.GetRun(ctx, id)
		if err != nil {
			return err
		}
		ds, err := db.LoadDataset(ctx, id)
		if err != nil {
			return err
		}
		s := report.NewSummary(run.Year, ds, run.CreatedAt).WithRun(run.ID, run.Digest, run.Changed)
		if _, err := report.NewTextWriter(out, report.WithVerbose(cfg.Verbose)).Write(s); err != nil {
			return err
		}
		if export != "" {
			if err := report.WriteDataset(export, ds); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote dataset of run %s to %s\n", id, export)
		}
		return nil

	case y != 0:
		run, err := db.LatestRun(ctx, y)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("%w for %d", errEmptyHistory, y)
		}
		return writeRuns(out, []database.Run{*run})

	default:
		runs, err := db.ListRuns(ctx, limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintf(out, "No runs recorded in %s\n", db.Path())
			return nil
		}
		return writeRuns(out, runs)
	}
}

// writeRuns renders runs as a Markdown table.
func writeRuns(w io.Writer, runs []database.Run) error {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		changed := "no"
		if r.Changed {
			changed = "yes"
		}
		rows = append(rows, []string{
			r.ID,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Courses),
			strconv.Itoa(r.Classes),
			strconv.Itoa(r.Times),
			changed,
			shortDigest(r.Digest),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}

	md := markdown.NewMarkdown(w)
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Year", "Courses", "Classes", "Times", "Changed", "Digest", "Created"},
		Rows:   rows,
	})
	return md.Build()
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
