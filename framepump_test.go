package quadbatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

const pumpTimeout = 2 * time.Second

// within fails the test if fn does not return in time.
func within(t *testing.T, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(pumpTimeout):
		t.Fatalf("%s did not return within %v", what, pumpTimeout)
	}
}

func await(t *testing.T, p *FramePump) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), pumpTimeout)
	defer cancel()
	if err := p.Await(ctx); err != nil {
		t.Fatalf("Await: %v", err)
	}
}

func waitState(t *testing.T, p *FramePump, want PumpState) {
	t.Helper()
	deadline := time.Now().Add(pumpTimeout)
	for p.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, want %s", p.State(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestFramePumpStartOneFrameDestroy(t *testing.T) {
	var calls atomic.Int32
	p := NewFramePump(func(context.Context) { calls.Add(1) })
	if p.State() != PumpIdle {
		t.Fatalf("state = %s, want idle", p.State())
	}

	p.Start()
	await(t, p)
	waitState(t, p, PumpSuspended)

	within(t, "Destroy", p.Destroy)
	if p.State() != PumpStopped {
		t.Errorf("state = %s, want stopped", p.State())
	}

	p.Signal()
	p.Start()
	time.Sleep(20 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("frame ran %d times, want 1", n)
	}
	if p.Frames() != 1 {
		t.Errorf("Frames = %d, want 1", p.Frames())
	}
}

func TestFramePumpSignalsCoalesce(t *testing.T) {
	gate := make(chan struct{})
	p := NewFramePump(func(ctx context.Context) {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	})
	defer p.Destroy()

	p.Start()
	waitState(t, p, PumpRunning)
	// Three signals while frame 1 is in flight collapse into one.
	p.Signal()
	p.Signal()
	p.Signal()

	within(t, "frame 1", func() { gate <- struct{}{} })
	await(t, p)
	within(t, "frame 2", func() { gate <- struct{}{} })
	await(t, p)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := p.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("third Await err = %v, want deadline exceeded", err)
	}
	if p.Frames() != 2 {
		t.Errorf("Frames = %d, want 2", p.Frames())
	}
}

func TestFramePumpLockstep(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	p := NewFramePump(func(context.Context) {
		n := inFlight.Add(1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
	})
	p.Start()
	for i := 0; i < 20; i++ {
		await(t, p)
		p.Signal()
	}
	await(t, p)
	within(t, "Destroy", p.Destroy)

	if maxInFlight.Load() != 1 {
		t.Errorf("max frames in flight = %d, want 1", maxInFlight.Load())
	}
	if p.Frames() != 21 {
		t.Errorf("Frames = %d, want 21", p.Frames())
	}
}

func TestFramePumpAwaitAfterDestroy(t *testing.T) {
	p := NewFramePump(func(context.Context) {})
	p.Start()
	await(t, p)
	p.Destroy()
	if err := p.Await(context.Background()); !errors.Is(err, ErrPumpStopped) {
		t.Errorf("Await err = %v, want ErrPumpStopped", err)
	}
}

func TestFramePumpDestroyBeforeStart(t *testing.T) {
	var calls atomic.Int32
	p := NewFramePump(func(context.Context) { calls.Add(1) })
	within(t, "Destroy", p.Destroy)
	p.Start()
	time.Sleep(10 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("frame ran %d times after Destroy", calls.Load())
	}
	if p.State() != PumpStopped {
		t.Errorf("state = %s", p.State())
	}
	within(t, "second Destroy", p.Destroy)
}

func TestFramePumpDestroyCancelsInFlightFrame(t *testing.T) {
	started := make(chan struct{})
	var canceled atomic.Bool
	p := NewFramePump(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		canceled.Store(true)
	})
	p.Start()
	<-started
	within(t, "Destroy", p.Destroy)
	if !canceled.Load() {
		t.Error("frame context not canceled")
	}
	if p.Frames() != 1 {
		t.Errorf("Frames = %d, want 1", p.Frames())
	}
}

func TestPumpStateString(t *testing.T) {
	tests := map[PumpState]string{
		PumpIdle:      "idle",
		PumpRunning:   "running",
		PumpSuspended: "suspended",
		PumpStopped:   "stopped",
		PumpState(9):  "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
