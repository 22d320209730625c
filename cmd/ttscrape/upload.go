package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/ttscrape/internal/config"
	"github.com/nao1215/ttscrape/internal/report"
	"github.com/nao1215/ttscrape/internal/upload"
)

// NewUploadCmd creates the upload command.
func NewUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a previously written dataset",
		Long: `Upload reads courses.json, classes.json and times.json from a directory
written by "ttscrape scrape" and sends them to the batch insert endpoint
without crawling again.

The endpoint and key are read from ` + config.EnvUploadURL + ` and ` + config.EnvUploadAPIKey + `.

Examples:
  # Upload the dataset in the current directory
  ttscrape upload

  # Validate a saved dataset without writing it
  ttscrape upload --input out/2025 --dry-run`,
		Args: cobra.NoArgs,
		RunE: runUploadCmd,
	}

	cmd.Flags().StringP("input", "i", config.DefaultOutputDir,
		"Directory holding the JSON dataset")
	cmd.Flags().Bool("dry-run", false,
		"Ask the batch insert endpoint to validate without writing")

	return cmd
}

func runUploadCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if changed(cmd, "dry-run") {
		if cfg.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
			return err
		}
	}
	if err := cfg.ValidateUpload(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	ctx, stop := signalContext()
	defer stop()

	ds, err := report.ReadDataset(input)
	if err != nil {
		return err
	}

	client, err := upload.New(cfg.UploadURL, cfg.UploadAPIKey,
		upload.WithDryRun(cfg.DryRun),
		upload.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := client.Upload(ctx, ds); err != nil {
		return err
	}

	courses, classes, times := ds.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d courses, %d classes, %d times from %s\n",
		courses, classes, times, input)
	return nil
}
