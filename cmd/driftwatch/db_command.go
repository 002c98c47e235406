package main

import (
	"errors"

	"github.com/spf13/cobra"

	"driftwatch/internal/store"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the integrity database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newDBHealthCommand(ctx))
	return cmd
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	var dbFlag string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Run diagnostics against the integrity database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
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
					return writeJSON(cmd, store.DatabaseHealth{DBPath: dbPath})
				}
				return err
			}
			defer st.Close()

			health, err := st.CheckHealth(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd, health)
		},
	}

	cmd.Flags().StringVar(&dbFlag, "db", "", "Integrity database path (overrides config)")
	return cmd
}
