package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CoordinatorConfig describes where the content comes from.
type CoordinatorConfig struct {
	RemoteURI   string
	LocalDir    string
	ForceReset  bool
	SyncTimeout time.Duration
}

// IndexCoordinator owns the published Snapshot. Rebuilds are serialized; reads
// never block on them.
type IndexCoordinator struct {
	cfg     CoordinatorConfig
	source  domain.SourceSync
	builder *IndexBuilder
	bus     *EventBus
	runs    domain.RebuildRepository

	rebuildMu sync.Mutex
	state     atomic.Int32
	current   atomic.Pointer[domain.Snapshot]

	now   func() time.Time
	newID func() string

	// Lifecycle for background rebuilds - cancelled when Close() is called
	ctx     context.Context
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewIndexCoordinator wires a coordinator. runs may be nil when run history is not kept.
func NewIndexCoordinator(cfg CoordinatorConfig, source domain.SourceSync, builder *IndexBuilder, bus *EventBus, runs domain.RebuildRepository) *IndexCoordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &IndexCoordinator{
		cfg:     cfg,
		source:  source,
		builder: builder,
		bus:     bus,
		runs:    runs,
		now:     time.Now,
		newID:   uuid.NewString,
		ctx:     ctx,
		cancel:  cancel,
		wg:      &sync.WaitGroup{},
	}
	c.current.Store(domain.EmptySnapshot())
	return c
}

// Snapshot returns the currently published snapshot.
func (c *IndexCoordinator) Snapshot() *domain.Snapshot {
	return c.current.Load()
}

func (c *IndexCoordinator) State() domain.IndexState {
	return domain.IndexState(c.state.Load())
}

// Rebuild syncs the working tree, builds a new snapshot and publishes it. A
// concurrent caller waits for the running rebuild and then performs its own.
// On failure the previously published snapshot stays current. Close cancels
// every rebuild in flight, whichever context it was started with.
func (c *IndexCoordinator) Rebuild(ctx context.Context, trigger string) (domain.IndexRebuildStatus, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	run := &domain.RebuildRun{
		ID:        c.newID(),
		Trigger:   trigger,
		State:     domain.StateSyncing,
		StartedAt: c.now(),
	}
	log.Info().Str("runID", run.ID).Str("trigger", trigger).Msg("Rebuilding content index")

	c.bus.PublishStarted(ctx, domain.IndexingStarted{RunID: run.ID, Trigger: trigger, At: run.StartedAt})
	c.saveRun(ctx, run)

	c.setState(domain.StateSyncing)
	if err := c.sync(ctx); err != nil {
		return domain.IndexRebuildStatus{}, c.fail(ctx, run, err)
	}

	c.setState(domain.StateBuilding)
	snapshot, err := c.builder.Build(ctx, c.cfg.LocalDir, run.ID)
	if err != nil {
		return domain.IndexRebuildStatus{}, c.fail(ctx, run, err)
	}

	c.setState(domain.StateSwapping)
	c.current.Store(snapshot)
	completedAt := c.now()

	c.bus.PublishFinished(ctx, domain.IndexingFinished{RunID: run.ID, Snapshot: snapshot, At: completedAt})
	c.setState(domain.StateIdle)

	run.State = domain.StateIdle
	run.EntryCount = snapshot.Len()
	run.CompletedAt = completedAt
	c.saveRun(ctx, run)

	log.Info().
		Str("runID", run.ID).
		Int("entries", snapshot.Len()).
		Dur("took", completedAt.Sub(run.StartedAt)).
		Msg("Content index published")

	return domain.IndexRebuildStatus{
		EntryCount:  snapshot.Len(),
		CompletedAt: completedAt,
	}, nil
}

func (c *IndexCoordinator) sync(ctx context.Context) error {
	if c.cfg.SyncTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SyncTimeout)
		defer cancel()
	}
	return c.source.Sync(ctx, c.cfg.RemoteURI, c.cfg.LocalDir, c.cfg.ForceReset)
}

func (c *IndexCoordinator) fail(ctx context.Context, run *domain.RebuildRun, err error) error {
	c.setState(domain.StateFailed)
	failedAt := c.now()

	log.Error().Err(err).Str("runID", run.ID).Str("trigger", run.Trigger).Msg("Content index rebuild failed")

	run.State = domain.StateFailed
	run.Error = err.Error()
	run.CompletedAt = failedAt
	c.saveRun(ctx, run)

	c.bus.PublishFailed(ctx, domain.IndexingFailed{RunID: run.ID, Err: err, At: failedAt})
	c.setState(domain.StateIdle)

	return fmt.Errorf("rebuild %s: %w", run.ID, err)
}

func (c *IndexCoordinator) saveRun(ctx context.Context, run *domain.RebuildRun) {
	if c.runs == nil {
		return
	}
	// Record the outcome even when the caller's context was cancelled.
	if err := c.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn().Err(err).Str("runID", run.ID).Msg("Failed to record rebuild run")
	}
}

func (c *IndexCoordinator) setState(s domain.IndexState) {
	c.state.Store(int32(s))
}

// RebuildAsync schedules a rebuild on the coordinator's lifecycle context.
// It returns immediately; failures are logged.
func (c *IndexCoordinator) RebuildAsync(trigger string) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		log.Warn().Str("trigger", trigger).Msg("Ignoring rebuild request after shutdown")
		return
	}

	c.wg.Go(func() {
		if _, err := c.Rebuild(c.ctx, trigger); err != nil {
			log.Error().Err(err).Str("trigger", trigger).Msg("Background rebuild failed")
		}
	})
}

// Close gracefully shuts down the coordinator by cancelling background rebuilds
func (c *IndexCoordinator) Close() error {
	c.closeMu.Lock()
	c.closed = true
	c.closeMu.Unlock()

	c.cancel()
	c.wg.Wait()

	return nil
}
