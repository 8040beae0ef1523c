// Package job provides background job schedulers.
package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"property-feed-service/internal/app/service"
	"property-feed-service/internal/domain"
	"property-feed-service/pkg/locker"
)

// refreshLockKey coordinates refresh cycles across instances when a
// distributed locker is configured.
const refreshLockKey = "refresh:scheduler:lock"

// Refresher runs one full ingestion cycle.
// Implementations: internal/app/service.IngestService
type Refresher interface {
	Refresh(ctx context.Context) (*service.RefreshResult, error)
}

// Config holds refresh scheduler configuration.
type Config struct {
	Expression string // standard five-field cron syntax
	Timezone   string
	Timeout    time.Duration
	OnStartup  bool
}

// RefreshScheduler fires refresh cycles on a cron schedule. It is a two
// state machine: a trigger while Idle starts a cycle, a trigger while
// Running is refused, never queued, so two cycles can never overlap. A
// manual trigger goes through the same guard as a timer fire.
type RefreshScheduler struct {
	refresher Refresher
	timeout   time.Duration
	onStartup bool
	logger    *zap.Logger
	locker    locker.DistributedLocker // optional, nil for single-instance

	cron    *cron.Cron
	entryID cron.EntryID

	mu      sync.Mutex
	running bool
	state   domain.ScheduleState
}

// NewRefreshScheduler creates a scheduler for the given cron expression.
// The expression and timezone are validated up front; an invalid schedule
// is rejected at construction.
func NewRefreshScheduler(
	refresher Refresher,
	cfg Config,
	logger *zap.Logger,
	lk locker.DistributedLocker,
) (*RefreshScheduler, error) {
	if _, err := cron.ParseStandard(cfg.Expression); err != nil {
		return nil, fmt.Errorf("invalid schedule expression %q: %w", cfg.Expression, err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule timezone %q: %w", cfg.Timezone, err)
	}

	s := &RefreshScheduler{
		refresher: refresher,
		timeout:   cfg.Timeout,
		onStartup: cfg.OnStartup,
		logger:    logger,
		locker:    lk,
		cron:      cron.New(cron.WithLocation(loc)),
		state: domain.ScheduleState{
			Expression: cfg.Expression,
			Timezone:   cfg.Timezone,
			Outcome:    domain.OutcomeNever,
		},
	}

	id, err := s.cron.AddFunc(cfg.Expression, s.onTick)
	if err != nil {
		return nil, fmt.Errorf("registering schedule: %w", err)
	}
	s.entryID = id

	return s, nil
}

// Start begins the cron schedule. When the scheduler was configured with
// OnStartup, one cycle is kicked off immediately so a fresh deployment
// doesn't serve a cold cache until the next scheduled fire.
func (s *RefreshScheduler) Start() {
	s.logger.Info("starting refresh scheduler",
		zap.String("expression", s.state.Expression),
		zap.String("timezone", s.state.Timezone),
		zap.Bool("run_on_startup", s.onStartup),
	)

	if s.onStartup {
		go s.onTick()
	}
	s.cron.Start()
}

// Stop halts the schedule and waits for an in-flight cycle registered with
// the cron runner to finish.
func (s *RefreshScheduler) Stop() {
	s.logger.Info("stopping refresh scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("refresh scheduler stopped")
}

// onTick is the timer entry point. An overlap is expected behavior, logged
// and dropped, never escalated.
func (s *RefreshScheduler) onTick() {
	if _, err := s.TriggerNow(); err != nil && err != domain.ErrRefreshRunning {
		s.logger.Warn("scheduled refresh failed", zap.Error(err))
	}
}

// TriggerNow runs one refresh cycle, subject to the Idle/Running guard.
// Returns domain.ErrRefreshRunning when a cycle is already in progress.
func (s *RefreshScheduler) TriggerNow() (*service.RefreshResult, error) {
	if !s.begin() {
		s.logger.Info("refresh cycle already running, trigger dropped")
		return nil, domain.ErrRefreshRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, refreshLockKey, s.timeout)
		if err != nil {
			s.finish(nil, fmt.Errorf("acquiring refresh lock: %w", err))
			return nil, err
		}
		if !acquired {
			// Another instance owns this cycle; not a failure.
			s.endWithoutOutcome()
			s.logger.Debug("another instance is refreshing, skipping")
			return nil, domain.ErrRefreshRunning
		}
		defer func() {
			if err := s.locker.Release(context.Background(), refreshLockKey); err != nil {
				s.logger.Error("failed to release refresh lock", zap.Error(err))
			}
		}()
	}

	result, err := s.refresher.Refresh(ctx)
	s.finish(result, err)

	return result, err
}

// UpdateSchedule swaps the cron expression. The new expression is
// validated first; an invalid one is rejected without disturbing the
// currently running schedule.
func (s *RefreshScheduler) UpdateSchedule(expression string) error {
	if _, err := cron.ParseStandard(expression); err != nil {
		return fmt.Errorf("invalid schedule expression %q: %w", expression, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Remove(s.entryID)
	id, err := s.cron.AddFunc(expression, s.onTick)
	if err != nil {
		return fmt.Errorf("registering schedule: %w", err)
	}
	s.entryID = id
	s.state.Expression = expression

	s.logger.Info("schedule updated", zap.String("expression", expression))

	return nil
}

// Status returns a snapshot of the scheduler state.
func (s *RefreshScheduler) Status() domain.ScheduleState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// begin attempts the Idle -> Running transition.
func (s *RefreshScheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.running = true
	s.state.Running = true

	return true
}

// finish records the cycle outcome and returns to Idle. A failed cycle
// records its reason but never clears previously cached data; staleness
// is preferred over emptiness.
func (s *RefreshScheduler) finish(result *service.RefreshResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.state.Running = false
	s.state.LastRun = time.Now().UTC()

	if err != nil {
		s.state.Outcome = domain.OutcomeFailure
		s.state.LastError = err.Error()
		return
	}

	s.state.Outcome = domain.OutcomeSuccess
	s.state.LastError = ""
	if result != nil {
		s.state.LastCount = result.Count
	}
}

// endWithoutOutcome returns to Idle without recording a run, used when
// another instance owns the cycle.
func (s *RefreshScheduler) endWithoutOutcome() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.state.Running = false
}
