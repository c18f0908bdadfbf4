// Package cli implements ambuctl, the operator command line for AmbuCheck.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/garnizeh/ambucheck/internal/bootstrap"
	"github.com/garnizeh/ambucheck/internal/config"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	cfg *config.Config
}

// NewRootCommand creates the root command for ambuctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "ambuctl",
		Short:         "AmbuCheck administration",
		Long:          "Maintenance commands for an AmbuCheck deployment: storage, accounts and form catalogue.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config YAML file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	// Add subcommands
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewFormsCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))

	return cmd
}

func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
}

// openStore opens the configured backend; the caller closes it.
func (o *RootOptions) openStore(ctx context.Context, cmd *cobra.Command) (repository.Store, bootstrap.Backend, error) {
	return bootstrap.OpenStore(ctx, o.cfg, o.logger(cmd))
}
