package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idartimm2-jpg/nezam/internal/config"
	"github.com/idartimm2-jpg/nezam/internal/logger"
	"github.com/idartimm2-jpg/nezam/internal/pos"
	"github.com/idartimm2-jpg/nezam/internal/store"
)

// session is an opened database with a ready Store.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	db     *store.Store
	store  *pos.Store
	out    *OutputFormatter
}

// Close flushes the logger and closes the database.
func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.db.Close()
}

// loadConfig resolves configuration and applies global flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openSession loads config, builds the logger, opens the database and
// loads the Store. Callers must Close the session.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}

	log.Debug("opening database", zap.String("path", cfg.DBPath))
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to open database %s", cfg.DBPath), err)
	}

	st := pos.New(db,
		pos.WithLogger(log),
		pos.WithStockEnforcement(cfg.EnforceStock),
	)
	if err := st.Init(ctx); err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load store", err)
	}

	return &session{
		cfg:    cfg,
		logger: log,
		db:     db,
		store:  st,
		out:    newFormatter(opts, cmd),
	}, nil
}

// withSession opens a session, runs fn and closes it.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

// storeError maps a Store error to an exit error. Rejected input exits 1;
// persistence and other failures exit 2.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	code := ExitCommandError
	if pos.IsValidationError(err) || pos.IsInsufficientStock(err) {
		code = ExitFailure
	}
	return WrapExitError(code, op, err)
}
