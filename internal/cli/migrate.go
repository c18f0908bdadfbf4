package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garnizeh/ambucheck/internal/bootstrap"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Long:  "Apply pending SQL migrations to the configured database. The JSON file backend has no schema and is left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, backend, err := rootOpts.openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if backend == bootstrap.BackendJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "%s backend: nothing to migrate\n", backend)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s backend: migrations applied\n", backend)
			return nil
		},
	}
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default accounts and sample runsheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, backend, err := rootOpts.openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := bootstrap.Seed(cmd.Context(), store, rootOpts.cfg.AdminDefaultPassword, rootOpts.logger(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s backend: seeded\n", backend)
			return nil
		},
	}
}
