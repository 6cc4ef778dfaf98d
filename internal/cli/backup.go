package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/backup"
	"github.com/idartimm2-jpg/nezam/internal/pos"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of all data",
		Long: `Write every collection and the settings to a JSON backup file.
The default file name is backup_YYYY-MM-DD.json; use --out - for stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				data, err := backup.Marshal(backup.Export(s.store.Snapshot()))
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to encode backup", err)
				}
				if out == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				path := out
				if path == "" {
					path = backup.FileName(pos.SystemClock{}.Now())
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return WrapExitError(ExitCommandError, "failed to write backup", err)
				}
				return s.out.Emit(map[string]any{"path": path, "bytes": len(data)}, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Backup written to %s\n", path)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (- for stdout)")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Restore data from a JSON backup",
		Long: `Restore data from a JSON backup. Each collection present in the file
replaces the stored one; absent collections are left as they are. The file
is checked in full first and nothing is written if any record is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read backup", err)
			}
			b, err := backup.Parse(data)
			if err != nil {
				var verr *backup.ValidationError
				if errors.As(err, &verr) {
					f := newFormatter(rootOpts, cmd)
					_ = f.Error(string(pos.ErrCodeInvalidImport), "backup rejected", verr.Problems)
					if f.Format != "json" {
						for _, p := range verr.Problems {
							fmt.Fprintf(f.Writer, "  %s\n", p)
						}
					}
					return WrapExitError(ExitFailure, "import rejected", err)
				}
				return WrapExitError(ExitFailure, "import rejected", err)
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				if err := s.store.ImportAll(ctx, b); err != nil {
					return storeError("import", err)
				}
				snap := s.store.Snapshot()
				counts := map[string]int{
					"products":  len(snap.Products),
					"customers": len(snap.Customers),
					"invoices":  len(snap.Invoices),
					"stockLogs": len(snap.StockLogs),
				}
				return s.out.Emit(counts, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Imported %s: %d products, %d customers, %d invoices, %d stock logs\n",
						args[0], counts["products"], counts["customers"], counts["invoices"], counts["stockLogs"])
				})
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data and restore default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "reset deletes all data; pass --yes to confirm")
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				if err := s.store.ResetAll(ctx); err != nil {
					return storeError("reset", err)
				}
				return s.out.Emit(map[string]bool{"reset": true}, func(w io.Writer) {
					fmt.Fprintln(w, "✓ All data deleted")
				})
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}
