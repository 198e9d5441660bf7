// Package monitor runs scheduled health sweeps over the configured providers and keeps
// the latest health snapshot per provider. Sweeps go through the dispatcher's
// health-check path, so they never write to the attempt log. The monitor can also
// prune old attempt records on its own schedule.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// DefaultSchedule runs a sweep every five minutes.
const DefaultSchedule = "@every 5m"

// Checker health-checks a set of providers.
type Checker interface {
	TestAll(ctx context.Context, providers []types.ProviderDescriptor) []types.TestResult
}

// Pruner drops attempt records older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// ProviderHealth represents the health status of a provider
type ProviderHealth struct {
	ProviderKey  string          `json:"provider_key"`
	Healthy      bool            `json:"healthy"`
	LastCheck    time.Time       `json:"last_check"`
	LastSuccess  time.Time       `json:"last_success,omitempty"`
	LastError    time.Time       `json:"last_error,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ErrorType    types.ErrorCode `json:"error_type,omitempty"`
	LatencyMs    int64           `json:"latency_ms"`
	CheckCount   int64           `json:"check_count"`
	SuccessCount int64           `json:"success_count"`
	FailureCount int64           `json:"failure_count"`
}

// HealthCallback is called after each provider's status is updated.
type HealthCallback func(health ProviderHealth)

// Monitor schedules health sweeps and attempt log retention.
type Monitor struct {
	checker   Checker
	providers func() []types.ProviderDescriptor
	schedule  string
	timeout   time.Duration
	logger    logrus.FieldLogger

	pruner         Pruner
	retention      time.Duration
	pruneSchedule  string
	now            func() time.Time
	checkCallbacks []HealthCallback

	mu      sync.RWMutex
	health  map[string]*ProviderHealth
	cron    *cron.Cron
	running bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSchedule sets the sweep schedule: a standard 5-field cron expression or a
// descriptor such as "@every 1m" or "@hourly".
func WithSchedule(schedule string) Option {
	return func(m *Monitor) { m.schedule = schedule }
}

// WithSweepTimeout bounds a whole sweep.
func WithSweepTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRetention prunes records older than maxAge on the given schedule.
func WithRetention(pruner Pruner, maxAge time.Duration, schedule string) Option {
	return func(m *Monitor) {
		m.pruner = pruner
		m.retention = maxAge
		m.pruneSchedule = schedule
	}
}

// WithCallback adds a callback run after every status update.
func WithCallback(cb HealthCallback) Option {
	return func(m *Monitor) { m.checkCallbacks = append(m.checkCallbacks, cb) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New creates a monitor. providers is called at every sweep so registry changes are
// picked up.
func New(checker Checker, providers func() []types.ProviderDescriptor, opts ...Option) *Monitor {
	m := &Monitor{
		checker:       checker,
		providers:     providers,
		schedule:      DefaultSchedule,
		timeout:       time.Minute,
		logger:        logrus.StandardLogger(),
		pruneSchedule: "@hourly",
		now:           time.Now,
		health:        make(map[string]*ProviderHealth),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidateSchedule reports whether expr is a schedule the monitor accepts.
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Start registers the jobs and starts the scheduler. Jobs run with ctx until Stop.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("monitor already running")
	}
	if err := ValidateSchedule(m.schedule); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc(m.schedule, func() { m.Sweep(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	if m.pruner != nil && m.retention > 0 {
		if _, err := c.AddFunc(m.pruneSchedule, func() { m.prune(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule retention: %w", err)
		}
	}

	c.Start()
	m.cron = c
	m.running = true

	m.logger.WithFields(logrus.Fields{
		"event":    "monitor_started",
		"schedule": m.schedule,
	}).Info("Health monitor started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	c := m.cron
	m.cron = nil
	m.running = false
	m.mu.Unlock()

	<-c.Stop().Done()
	m.logger.WithField("event", "monitor_stopped").Info("Health monitor stopped")
}

// Sweep health-checks every configured provider once and updates the snapshot.
func (m *Monitor) Sweep(ctx context.Context) []types.TestResult {
	providers := m.providers()
	if len(providers) == 0 {
		return nil
	}

	sweepCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	results := m.checker.TestAll(sweepCtx, providers)

	healthy := 0
	for _, r := range results {
		if r.Success {
			healthy++
		}
		m.update(r)
	}

	m.logger.WithFields(logrus.Fields{
		"event":     "health_sweep",
		"providers": len(results),
		"healthy":   healthy,
	}).Info("Health sweep complete")
	return results
}

func (m *Monitor) update(r types.TestResult) {
	checkedAt := r.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = m.now()
	}

	m.mu.Lock()
	h, ok := m.health[r.ProviderKey]
	if !ok {
		h = &ProviderHealth{ProviderKey: r.ProviderKey}
		m.health[r.ProviderKey] = h
	}

	h.Healthy = r.Success
	h.LastCheck = checkedAt
	h.LatencyMs = r.LatencyMs
	h.CheckCount++
	if r.Success {
		h.LastSuccess = checkedAt
		h.SuccessCount++
		h.ErrorMessage = ""
		h.ErrorType = ""
	} else {
		h.LastError = checkedAt
		h.FailureCount++
		h.ErrorMessage = r.Message
		h.ErrorType = r.ErrorType
	}
	snapshot := *h
	callbacks := append([]HealthCallback(nil), m.checkCallbacks...)
	m.mu.Unlock()

	if !r.Success {
		m.logger.WithFields(logrus.Fields{
			"event":      "provider_unhealthy",
			"provider":   r.ProviderKey,
			"error_type": r.ErrorType,
		}).Warn(r.Message)
	}

	for _, cb := range callbacks {
		cb(snapshot)
	}
}

func (m *Monitor) prune(ctx context.Context) {
	cutoff := m.now().Add(-m.retention)
	removed, err := m.pruner.Prune(ctx, cutoff)
	log := m.logger.WithFields(logrus.Fields{"event": "attempt_log_prune", "before": cutoff})
	if err != nil {
		log.WithError(err).Error("Failed to prune attempt log")
		return
	}
	log.WithField("removed", removed).Info("Pruned attempt log")
}

// Snapshot returns the latest health of every checked provider, sorted by key.
func (m *Monitor) Snapshot() []ProviderHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ProviderHealth, 0, len(m.health))
	for _, h := range m.health {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderKey < out[j].ProviderKey })
	return out
}

// Get returns the latest health of one provider.
func (m *Monitor) Get(key string) (ProviderHealth, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.health[key]
	if !ok {
		return ProviderHealth{}, false
	}
	return *h, true
}
