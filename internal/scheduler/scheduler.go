// Package scheduler rebuilds the content index on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const scheduleTrigger = "schedule"

type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) (domain.IndexRebuildStatus, error)
}

type Scheduler struct {
	cron    *cron.Cron
	entry   cron.EntryID
	spec    string
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// New parses spec (standard five fields or a descriptor such as "@daily").
// A tick that arrives while the previous scheduled rebuild is still running is skipped.
func New(spec string, rebuilder Rebuilder) (*Scheduler, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   c,
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
	}

	id, err := c.AddFunc(spec, func() {
		if _, err := rebuilder.Rebuild(s.ctx, scheduleTrigger); err != nil {
			log.Error().Err(err).Str("spec", spec).Msg("Scheduled rebuild failed")
		}
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid rebuild schedule %q: %w", spec, err)
	}
	s.entry = id

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.started = true
	log.Info().Str("spec", s.spec).Time("next", s.Next()).Msg("Scheduled index rebuilds")
}

// Next is the time of the next scheduled rebuild; zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Stop cancels a running scheduled rebuild and waits for it to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	if !s.started {
		return nil
	}

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler did not stop: %w", ctx.Err())
	}
}

// cronLogger forwards cron's own logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
