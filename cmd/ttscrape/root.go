package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ttscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ttscrape",
		Short: "Scrape a university class timetable into a flat dataset",
		Long: `ttscrape crawls a class timetable website, extracts every course, class
and meeting time for one teaching year, and writes them as three flat tables
(courses, classes, times).

The timetable URL template is read from TIMETABLE_API_URL (or the
timetable_url setting) and must contain a /year/ segment. Without --year
the newest published year is found by probing the site.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .ttscrape in current or home directory)")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewUploadCmd())
	cmd.AddCommand(NewResolveYearCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
