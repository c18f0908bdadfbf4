package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garnizeh/ambucheck/internal/bootstrap"
)

const backupSuffix = ".bak"

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the SQLite file or the JSON data directory next to itself",
		Long: `Copy the SQLite database to <path>.bak, or every JSON file of the data
directory to <data_dir>.bak/. Postgres deployments should use pg_dump.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst, err := backupPaths(rootOpts)
			if err != nil {
				return err
			}
			if err := copyPath(src, dst); err != nil {
				return fmt.Errorf("backup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s\n", dst)
			return nil
		},
	}
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the copy made by backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			live, bak, err := backupPaths(rootOpts)
			if err != nil {
				return err
			}
			if err := copyPath(bak, live); err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s from %s\n", live, bak)
			return nil
		},
	}
}

func backupPaths(rootOpts *RootOptions) (string, string, error) {
	cfg := rootOpts.cfg
	switch bootstrap.SelectBackend(cfg) {
	case bootstrap.BackendSQLite:
		return cfg.DatabasePath, cfg.DatabasePath + backupSuffix, nil
	case bootstrap.BackendJSON:
		dir := filepath.Clean(cfg.DataDir)
		return dir, dir + backupSuffix, nil
	default:
		return "", "", errors.New("postgres backend: use pg_dump and pg_restore")
	}
}

// copyPath copies a file, or the top-level *.json files of a directory.
func copyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
