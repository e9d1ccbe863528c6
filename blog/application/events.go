package application

import (
	"context"
	"errors"
	"sync"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/rs/zerolog/log"
)

// StartedListener is notified when a rebuild begins.
type StartedListener interface {
	OnIndexingStarted(ctx context.Context, evt domain.IndexingStarted) error
}

// FinishedListener recomputes derived state from a newly published snapshot.
type FinishedListener interface {
	OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error
}

// FailedListener is notified when a rebuild aborts.
type FailedListener interface {
	OnIndexingFailed(ctx context.Context, evt domain.IndexingFailed) error
}

// FinishedFunc adapts a function to FinishedListener.
type FinishedFunc func(ctx context.Context, evt domain.IndexingFinished) error

func (f FinishedFunc) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	return f(ctx, evt)
}

// EventBus delivers indexing lifecycle events to listeners synchronously, in
// registration order, on the publishing goroutine.
type EventBus struct {
	mu       sync.RWMutex
	started  []StartedListener
	finished []FinishedListener
	failed   []FailedListener
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers l for every lifecycle event it implements a listener for.
func (b *EventBus) Subscribe(l any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := l.(StartedListener); ok {
		b.started = append(b.started, s)
	}
	if f, ok := l.(FinishedListener); ok {
		b.finished = append(b.finished, f)
	}
	if f, ok := l.(FailedListener); ok {
		b.failed = append(b.failed, f)
	}
}

func (b *EventBus) PublishStarted(ctx context.Context, evt domain.IndexingStarted) error {
	b.mu.RLock()
	listeners := append([]StartedListener(nil), b.started...)
	b.mu.RUnlock()

	var errs []error
	for _, l := range listeners {
		if err := l.OnIndexingStarted(ctx, evt); err != nil {
			log.Error().Err(err).Str("runID", evt.RunID).Msg("Indexing started listener failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishFinished runs every finished listener even when some fail; the
// returned error joins all failures.
func (b *EventBus) PublishFinished(ctx context.Context, evt domain.IndexingFinished) error {
	b.mu.RLock()
	listeners := append([]FinishedListener(nil), b.finished...)
	b.mu.RUnlock()

	var errs []error
	for _, l := range listeners {
		if err := l.OnIndexingFinished(ctx, evt); err != nil {
			log.Error().Err(err).Str("runID", evt.RunID).Msg("Indexing finished listener failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *EventBus) PublishFailed(ctx context.Context, evt domain.IndexingFailed) error {
	b.mu.RLock()
	listeners := append([]FailedListener(nil), b.failed...)
	b.mu.RUnlock()

	var errs []error
	for _, l := range listeners {
		if err := l.OnIndexingFailed(ctx, evt); err != nil {
			log.Error().Err(err).Str("runID", evt.RunID).Msg("Indexing failed listener failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
