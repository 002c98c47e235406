package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"driftwatch/internal/scan"
	"driftwatch/internal/store"
	"driftwatch/internal/verifier"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var (
		rootFlag    string
		dbFlag      string
		excludeExts []string
		reportFlag  string
		jsonFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify files by comparing stored hashes to current hashes",
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

			st, err := store.OpenReadOnly(dbPath)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no integrity database at %s; run index first", dbPath)
				}
				return err
			}
			defer st.Close()

			reportPath, err := resolveReportPath(reportFlag)
			if err != nil {
				return err
			}

			opts := verifier.Options{
				Exclude:        scan.ParseExtensions(append(append([]string{}, cfg.Scan.ExcludeExts...), excludeExts...)),
				CaptureDetails: reportPath != "" || jsonFlag,
				ChunkSize:      cfg.ChunkSizeBytes(),
				SkipPaths:      storeSkipPaths(dbPath, reportPath),
			}

			rep, err := verifier.New(st, logger, opts).Run(cmd.Context(), rootFlag)
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
				if err := writeJSON(cmd, rep); err != nil {
					return err
				}
			} else {
				printVerifySummary(cmd, rep)
			}

			if rep.Failed() {
				return fmt.Errorf("verification failed: %d mismatched, %d missing, %d errors",
					rep.Stats.Mismatched, rep.Stats.Missing, rep.Stats.Errors)
			}
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
