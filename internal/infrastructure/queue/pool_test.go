package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingGauge struct {
	mu   sync.Mutex
	last float64
	sets int
}

func (g *recordingGauge) Set(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = v
	g.sets++
}

func TestPool_RunsAllSubmittedJobs(t *testing.T) {
	p := NewPool(4, 8, nil, zerolog.Nop())
	p.Start()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		if err := p.Submit(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	wg.Wait()

	if got := count.Load(); got != 50 {
		t.Fatalf("expected 50 jobs to run, got %d", got)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 3
	p := NewPool(workers, 16, nil, zerolog.Nop())
	p.Start()
	defer p.Stop(context.Background())

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		_ = p.Submit(context.Background(), func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		})
	}
	wg.Wait()

	if got := peak.Load(); got > workers {
		t.Fatalf("expected at most %d concurrent jobs, saw %d", workers, got)
	}
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1, nil, zerolog.Nop())
	p.Start()
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	err := p.Submit(context.Background(), func() {})
	if !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop must be a no-op, got %v", err)
	}
}

func TestPool_SubmitRespectsContextWhenFull(t *testing.T) {
	p := NewPool(1, 1, nil, zerolog.Nop())
	p.Start()

	block := make(chan struct{})
	started := make(chan struct{})
	_ = p.Submit(context.Background(), func() {
		close(started)
		<-block
	})
	<-started
	_ = p.Submit(context.Background(), func() {}) // fills the queue

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, func() {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(block)
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestPool_StopDrainsQueuedJobs(t *testing.T) {
	p := NewPool(1, 10, nil, zerolog.Nop())

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		_ = p.Submit(context.Background(), func() { count.Add(1) })
	}
	p.Start()

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := count.Load(); got != 5 {
		t.Fatalf("expected queued jobs to drain, ran %d", got)
	}
}

func TestPool_RecoversFromPanickingJob(t *testing.T) {
	p := NewPool(1, 2, nil, zerolog.Nop())
	p.Start()

	done := make(chan struct{})
	_ = p.Submit(context.Background(), func() { panic("boom") })
	_ = p.Submit(context.Background(), func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive a panicking job")
	}
	_ = p.Stop(context.Background())
}

func TestPool_ReportsQueueDepth(t *testing.T) {
	g := &recordingGauge{}
	p := NewPool(1, 4, g, zerolog.Nop())

	_ = p.Submit(context.Background(), func() {})
	_ = p.Submit(context.Background(), func() {})

	g.mu.Lock()
	last := g.last
	g.mu.Unlock()
	if last != 2 {
		t.Fatalf("expected depth 2 before workers start, got %v", last)
	}

	p.Start()
	_ = p.Stop(context.Background())

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last != 0 {
		t.Fatalf("expected depth 0 after drain, got %v", g.last)
	}
}
