package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"driftwatch/internal/indexer"
	"driftwatch/internal/scan"
	"driftwatch/internal/store"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var (
		rootFlag    string
		dbFlag      string
		excludeExts []string
		reportFlag  string
		jsonFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan files and store hashes for new or changed entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			dbPath, err := resolveDBPath(cfg, dbFlag)
			if err != nil {
				return err
			}

			st, err := store.Open(dbPath)
			if err != nil {
				if errors.Is(err, store.ErrLocked) {
					return fmt.Errorf("another index run is writing to %s", dbPath)
				}
				return err
			}
			defer st.Close()
			st.SetCommitEvery(cfg.Store.CommitEvery)

			reportPath, err := resolveReportPath(reportFlag)
			if err != nil {
				return err
			}

			opts := indexer.Options{
				Exclude:        scan.ParseExtensions(append(append([]string{}, cfg.Scan.ExcludeExts...), excludeExts...)),
				CaptureDetails: reportPath != "" || jsonFlag,
				ChunkSize:      cfg.ChunkSizeBytes(),
				SkipPaths:      storeSkipPaths(dbPath, reportPath),
			}

			rep, err := indexer.New(st, logger, opts).Run(cmd.Context(), rootFlag)
			if err != nil {
				return err
			}

			if reportPath != "" {
				if err := writeReportFile(reportPath, rep); err != nil {
					return err
				}
				logger.Info("report written", "path", reportPath)
			}
			if jsonFlag {
				return writeJSON(cmd, rep)
			}
			printIndexSummary(cmd, rep)
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Root directory to scan recursively")
	cmd.Flags().StringVar(&dbFlag, "db", "", "Integrity database path (overrides config)")
	cmd.Flags().StringArrayVar(&excludeExts, "exclude-ext", nil, "File extensions to exclude (comma-separated or repeatable)")
	cmd.Flags().StringVar(&reportFlag, "report", "", "Write the full JSON report to this path")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the full JSON report to stdout")
	_ = cmd.MarkFlagRequired("root")

	return cmd
}
