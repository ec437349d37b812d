package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"slot-swapper/internal/domain/swaps"
)

type fakeRejecter struct {
	mu    sync.Mutex
	calls []time.Time
	out   []swaps.SwapRequest
	err   error
}

func (f *fakeRejecter) RejectStale(_ context.Context, now time.Time) ([]swaps.SwapRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return f.out, f.err
}

func (f *fakeRejecter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestRunOnce_PassesClockAndCounts(t *testing.T) {
	fixed := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	f := &fakeRejecter{out: []swaps.SwapRequest{{ID: "r1"}, {ID: "r2"}}}
	s := New(f, nil)
	s.now = func() time.Time { return fixed }

	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rejected, got %d", n)
	}
	if len(f.calls) != 1 || !f.calls[0].Equal(fixed) {
		t.Fatalf("expected one call at %s, got %v", fixed, f.calls)
	}
}

func TestRunOnce_Error(t *testing.T) {
	boom := errors.New("boom")
	s := New(&fakeRejecter{err: boom}, nil)
	if _, err := s.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s := New(&fakeRejecter{}, nil)
	if err := s.Start(""); err == nil {
		t.Fatalf("expected error for empty schedule")
	}
	if err := s.Start("not a cron"); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestStart_RunsOnSchedule(t *testing.T) {
	f := &fakeRejecter{}
	s := New(f, nil)
	if err := s.Start("@every 1s"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if err := s.Start("@every 1s"); err == nil {
		t.Fatalf("expected error on double start")
	}

	deadline := time.Now().Add(5 * time.Second)
	for f.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if f.count() == 0 {
		t.Fatalf("expected at least one scheduled run")
	}
}
