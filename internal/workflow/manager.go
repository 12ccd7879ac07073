package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"seoflow/internal/config"
	"seoflow/internal/logging"
	"seoflow/internal/notify"
	"seoflow/internal/services"
)

// ErrUnknownWorkflow is returned when a run is requested for an
// unregistered identifier.
var ErrUnknownWorkflow = errors.New("unknown workflow")

// ErrAlreadyRunning is returned when a workflow has a run in flight.
var ErrAlreadyRunning = errors.New("workflow already running")

// Manager executes registered workflows one run at a time per workflow.
type Manager struct {
	registry *Registry
	cfg      *config.Config
	logger   *slog.Logger
	notifier notify.Service

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewManager wires the registry to its runtime dependencies.
func NewManager(registry *Registry, cfg *config.Config, logger *slog.Logger, notifier notify.Service) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewService(&config.Config{})
	}
	return &Manager{
		registry: registry,
		cfg:      cfg,
		logger:   logger.With(logging.String(logging.FieldComponent, "workflow-manager")),
		notifier: notifier,
		inFlight: make(map[string]bool),
	}
}

// Registry exposes the managed workflows.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Running reports whether a workflow currently has a run in flight.
func (m *Manager) Running(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight[id]
}

// Run executes one workflow by identifier, enforcing the run timeout and
// single-flight semantics. Notification failures are logged, never returned.
func (m *Manager) Run(ctx context.Context, id string) (Summary, error) {
	wf, ok := m.registry.Lookup(id)
	if !ok {
		return Summary{}, fmt.Errorf("%w: %s", ErrUnknownWorkflow, id)
	}

	m.mu.Lock()
	if m.inFlight[wf.ID()] {
		m.mu.Unlock()
		return Summary{}, fmt.Errorf("%w: %s", ErrAlreadyRunning, wf.ID())
	}
	m.inFlight[wf.ID()] = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.inFlight, wf.ID())
		m.mu.Unlock()
	}()

	runID := uuid.NewString()
	runCtx := services.WithRunID(services.WithWorkflow(ctx, wf.ID()), runID)
	if timeout := m.runTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	logger := m.logger.With(
		logging.String(logging.FieldWorkflow, wf.ID()),
		logging.String(logging.FieldRunID, runID),
	)
	logger.Info("workflow run started", logging.String("name", wf.Name()))

	start := time.Now()
	summary, err := wf.Run(runCtx)
	if summary.Elapsed == 0 {
		summary.Elapsed = time.Since(start)
	}

	if err != nil {
		logger.Error("workflow run failed",
			logging.Int("processed", summary.Processed),
			logging.Int("failed", summary.Failed),
			logging.Error(err),
		)
		if notifyErr := m.notifier.NotifyError(runCtx, err, wf.Name()); notifyErr != nil {
			logger.Warn("notification delivery failed", logging.Error(notifyErr))
		}
		return summary, err
	}

	logger.Info("workflow run completed",
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("elapsed", summary.Elapsed),
	)
	if notifyErr := m.notifier.NotifyRunCompleted(context.WithoutCancel(runCtx), wf.Name(), summary.Processed, summary.Failed, summary.Skipped, summary.Elapsed); notifyErr != nil {
		logger.Warn("notification delivery failed", logging.Error(notifyErr))
	}
	return summary, nil
}

// RunAll executes every registered workflow in pipeline order, stopping at
// the first fatal error.
func (m *Manager) RunAll(ctx context.Context) (map[string]Summary, error) {
	summaries := make(map[string]Summary, len(m.registry.All()))
	for _, wf := range m.registry.All() {
		summary, err := m.Run(ctx, wf.ID())
		summaries[wf.ID()] = summary
		if err != nil && services.Fatal(err) {
			return summaries, err
		}
	}
	return summaries, nil
}

func (m *Manager) runTimeout() time.Duration {
	if m.cfg == nil {
		return 0
	}
	return time.Duration(m.cfg.Workflow.RunTimeoutSeconds) * time.Second
}
