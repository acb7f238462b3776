package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
	"github.com/vendorhub/marketplace-auth/internal/core/ports"
)

// recordingResolver captures the order resolution attempts arrive in and
// mimics the resolver's stale-version rejection.
type recordingResolver struct {
	mu       sync.Mutex
	seen     map[string][]uint64
	last     map[string]uint64
	resolved chan struct{}
}

func newRecordingResolver(buffer int) *recordingResolver {
	return &recordingResolver{
		seen:     make(map[string][]uint64),
		last:     make(map[string]uint64),
		resolved: make(chan struct{}, buffer),
	}
}

func (r *recordingResolver) Resolve(_ context.Context, in ports.ResolveInput) (*domain.Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { r.resolved <- struct{}{} }()

	if in.Version <= r.last[in.Subject] {
		return nil, domain.ErrStaleResolution
	}
	r.last[in.Subject] = in.Version
	r.seen[in.Subject] = append(r.seen[in.Subject], in.Version)
	return &domain.Resolution{State: domain.StateAnonymous, Version: in.Version}, nil
}

func (r *recordingResolver) versions(subject string) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, len(r.seen[subject]))
	copy(out, r.seen[subject])
	return out
}

func waitResolved(t *testing.T, r *recordingResolver, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.resolved:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d resolutions", i, n)
		}
	}
}

func TestDispatcher_PerSubjectOrdering(t *testing.T) {
	resolver := newRecordingResolver(64)
	d := NewDispatcher(4, resolver, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const events = 20
	for v := uint64(1); v <= events; v++ {
		d.Enqueue(ports.ResolveInput{Subject: "sub-1", Version: v})
	}
	waitResolved(t, resolver, events)

	got := resolver.versions("sub-1")
	if len(got) != events {
		t.Fatalf("expected %d applied events, got %d", events, len(got))
	}
	for i, v := range got {
		if v != uint64(i+1) {
			t.Fatalf("events applied out of order: %v", got)
		}
	}
}

func TestDispatcher_StaleEventDropped(t *testing.T) {
	resolver := newRecordingResolver(16)
	d := NewDispatcher(2, resolver, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.ResolveInput{Subject: "sub-1", Version: 5})
	d.Enqueue(ports.ResolveInput{Subject: "sub-1", Version: 3})
	d.Enqueue(ports.ResolveInput{Subject: "sub-1", Version: 6})
	waitResolved(t, resolver, 3)

	got := resolver.versions("sub-1")
	want := []uint64{5, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestDispatcher_ShardIsStablePerSubject(t *testing.T) {
	d := NewDispatcher(8, newRecordingResolver(1), zerolog.Nop())

	for _, subject := range []string{"sub-1", "sub-2", "carol@example.com"} {
		first := d.shardIndex(subject)
		for i := 0; i < 5; i++ {
			if d.shardIndex(subject) != first {
				t.Fatalf("shard index unstable for %q", subject)
			}
		}
	}
}

func TestDispatcher_SubjectsRunIndependently(t *testing.T) {
	resolver := newRecordingResolver(64)
	d := NewDispatcher(4, resolver, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	subjects := []string{"sub-a", "sub-b", "sub-c"}
	for _, s := range subjects {
		for v := uint64(1); v <= 5; v++ {
			d.Enqueue(ports.ResolveInput{Subject: s, Version: v})
		}
	}
	waitResolved(t, resolver, len(subjects)*5)

	for _, s := range subjects {
		got := resolver.versions(s)
		if len(got) != 5 {
			t.Fatalf("subject %s: expected 5 applied events, got %v", s, got)
		}
		for i, v := range got {
			if v != uint64(i+1) {
				t.Fatalf("subject %s: events out of order: %v", s, got)
			}
		}
	}
}
