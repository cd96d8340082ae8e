package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/agiletrack/internal/filter"
	"github.com/zulandar/agiletrack/internal/logger"
	"github.com/zulandar/agiletrack/internal/metrics"
	"github.com/zulandar/agiletrack/internal/store"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// SchedulerOpts holds parameters for creating a Scheduler.
type SchedulerOpts struct {
	DB        *gorm.DB
	Schedule  string // 5-field cron expression
	Notifiers []Notifier
	Engine    *metrics.Engine  // defaults to metrics.Default()
	Filter    filter.Spec      // narrows the digest; nil means everything
	Logger    *logger.Logger   // defaults to logger.Nop()
	Now       func() time.Time // defaults to time.Now
}

// Scheduler sends the digest to every notifier on a cron schedule.
type Scheduler struct {
	db        *gorm.DB
	schedule  cron.Schedule
	notifiers []Notifier
	engine    *metrics.Engine
	filter    filter.Spec
	log       *logger.Logger
	now       func() time.Time
}

// NewScheduler validates opts and returns a Scheduler.
func NewScheduler(opts SchedulerOpts) (*Scheduler, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("digest: db is required")
	}
	if len(opts.Notifiers) == 0 {
		return nil, fmt.Errorf("digest: at least one notifier is required")
	}
	sched, err := ParseSchedule(opts.Schedule)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		db:        opts.DB,
		schedule:  sched,
		notifiers: opts.Notifiers,
		engine:    opts.Engine,
		filter:    opts.Filter,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if s.engine == nil {
		s.engine = metrics.Default()
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Compose loads the store and builds the digest message.
func (s *Scheduler) Compose(ctx context.Context) (Message, error) {
	snap, err := store.LoadSnapshot(s.db.WithContext(ctx))
	if err != nil {
		return Message{}, fmt.Errorf("digest: load: %w", err)
	}
	d, err := s.engine.Report(snap, s.filter, s.now())
	if err != nil {
		return Message{}, fmt.Errorf("digest: report: %w", err)
	}
	return Build(d), nil
}

// SendOnce composes the digest and delivers it to every notifier. A failing
// notifier does not stop delivery to the others; all failures are returned.
func (s *Scheduler) SendOnce(ctx context.Context) error {
	msg, err := s.Compose(ctx)
	if err != nil {
		return err
	}
	var errs error
	for _, n := range s.notifiers {
		if err := n.Send(ctx, msg); err != nil {
			s.log.Errorw("digest delivery failed", "notifier", n.Name(), "error", err)
			errs = multierr.Append(errs, fmt.Errorf("digest: send via %s: %w", n.Name(), err))
			continue
		}
		s.log.Infow("digest delivered", "notifier", n.Name())
	}
	return errs
}

// Run sends the digest at every scheduled time until ctx is cancelled.
// Delivery errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		wait := untilNext(s.schedule, s.now())
		s.log.Debugw("next digest scheduled", "in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if err := s.SendOnce(ctx); err != nil {
			s.log.Warnw("digest run failed", "error", err)
		}
	}
}
