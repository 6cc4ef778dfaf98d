package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idartimm2-jpg/nezam/internal/httpapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API for the browser UI",
		Long: `Serve the store over HTTP as a JSON API until interrupted.

Example:
  nezam serve --db ./shop.db --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				cfg := s.cfg.HTTP
				if opts.Addr != "" {
					cfg.Addr = opts.Addr
				}

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				s.logger.Info("serving store", zap.String("db", s.cfg.DBPath), zap.String("addr", cfg.Addr))
				if err := httpapi.New(s.store, s.logger, cfg).Run(ctx); err != nil {
					return WrapExitError(ExitCommandError, "http server failed", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config)")
	return cmd
}
