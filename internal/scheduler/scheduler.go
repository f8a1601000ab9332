package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dairyherd/internal/config"
	"dairyherd/internal/service/reminders"
)

// Scheduler manages the periodic reminder sweeps: daily pregnancy
// check and separation sweeps, weekly milestone sweep. The sweeps are
// independent timers; they share no state beyond the store.
type Scheduler struct {
	cron      *cron.Cron
	reminders *reminders.Service
	cfg       config.SchedulerConfig
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.SchedulerConfig, remindersSvc *reminders.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:      c,
		reminders: remindersSvc,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers and starts the sweep jobs.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	jobs := []struct {
		name string
		expr string
		run  func(context.Context) (int, error)
	}{
		{"pregnancy_check_sweep", s.cfg.PregnancyCheckCron, s.reminders.SweepPregnancyChecks},
		{"separation_sweep", s.cfg.SeparationCron, s.reminders.SweepSeparations},
		{"milestone_sweep", s.cfg.MilestoneCron, s.reminders.SweepMilestones},
	}

	for _, job := range jobs {
		name, run := job.name, job.run
		if _, err := s.cron.AddFunc(job.expr, func() { s.runSweep(name, run) }); err != nil {
			s.logger.Error("failed to schedule sweep", zap.String("job", name), zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler. Running sweeps complete; no new ones fire.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runSweep(name string, run func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	emitted, err := run(ctx)
	if err != nil {
		s.logger.Error("sweep failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Info("sweep finished", zap.String("job", name), zap.Int("reminders", emitted))
}
