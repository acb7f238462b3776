package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendorhub/marketplace-auth/internal/api/metrics"
	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes provider-pushed auth-state-change events to a fixed set
// of workers using consistent hashing on the subject, so all resolution
// attempts for one subject run on one worker in arrival order. Combined
// with the resolver's monotonic version check, a late event can never
// clobber a newer session state.
type Dispatcher struct {
	workers  []chan ports.ResolveInput
	resolver ports.SessionResolver
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, resolver ports.SessionResolver, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.ResolveInput, numWorkers),
		resolver: resolver,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ResolveInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its subject.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(in ports.ResolveInput) {
	d.workers[d.shardIndex(in.Subject)] <- in
}

// shardIndex maps a subject deterministically to a worker index.
func (d *Dispatcher) shardIndex(subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ResolveInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, in)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, in ports.ResolveInput) {
	start := time.Now()

	resolution, err := d.resolver.Resolve(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrStaleResolution) {
			metrics.ResolutionsTotal.WithLabelValues("stale").Inc()
			d.log.Debug().
				Str("subject", in.Subject).
				Uint64("version", in.Version).
				Msg("stale auth event dropped")
			return
		}
		metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("subject", in.Subject).
			Int("worker_id", id).
			Msg("auth event resolution failed")
		return
	}

	metrics.ResolutionsTotal.WithLabelValues(string(resolution.State)).Inc()
	metrics.ResolutionDuration.WithLabelValues(string(resolution.State)).Observe(time.Since(start).Seconds())
}
