// Package daemon runs the HTTP trigger surface as a long-lived process and
// enforces single-instance execution with a file lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/logs"
	"seoflow/internal/notify"
	"seoflow/internal/pipeline"
	"seoflow/internal/preflight"
	"seoflow/internal/server"
	"seoflow/internal/sheet"
	"seoflow/internal/workflow"
)

// Daemon owns the store, the workflow manager, and the HTTP server.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *sheet.Store
	manager *workflow.Manager
	server  *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *sheet.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	manager := pipeline.NewManager(cfg, store, logger, notify.NewService(cfg))
	lockPath := filepath.Join(cfg.Paths.DataDir, "seoflowd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		manager:  manager,
		server:   server.New(cfg, manager, store, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Manager exposes the workflow manager for CLI-driven runs.
func (d *Daemon) Manager() *workflow.Manager {
	return d.manager
}

// Addr returns the server's bound address once started.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Start acquires the instance lock and brings the server up.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another seoflow daemon instance is already running")
	}

	if failed := preflight.Failures(preflight.RunAll(ctx, d.cfg)); len(failed) > 0 {
		_ = d.lock.Unlock()
		return fmt.Errorf("preflight failed: %s", preflight.Describe(failed))
	}

	logs.CleanupOld(d.logger, d.cfg.Paths.LogDir, d.cfg.Logging.RetentionDays)

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.Addr()),
		logging.Bool("dry_run", d.cfg.DryRun),
	)
	return nil
}

// Stop shuts the server down and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}
