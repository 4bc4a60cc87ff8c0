package quadbatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// PumpState is the lifecycle state of a FramePump.
type PumpState int32

const (
	PumpIdle      PumpState = iota // created, Start not called
	PumpRunning                    // a frame callback is in flight
	PumpSuspended                  // waiting for Signal
	PumpStopped                    // terminal
)

func (s PumpState) String() string {
	switch s {
	case PumpIdle:
		return "idle"
	case PumpRunning:
		return "running"
	case PumpSuspended:
		return "suspended"
	case PumpStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FramePump runs a render-frame callback on a dedicated goroutine, one frame
// at a time. After each frame the worker suspends until the update side
// calls Signal, so at most one frame is ever in flight and the update side
// controls pacing.
//
// Typical update loop:
//
//	pump.Start()
//	for running {
//		pump.Await(ctx)   // render phase finished; buffers are ours
//		mutateMeshes()
//		pump.Signal()     // hand buffers to the render phase
//	}
//	pump.Destroy()
type FramePump struct {
	frame func(ctx context.Context)

	ctx    context.Context
	cancel context.CancelFunc

	resume chan struct{} // capacity 1; pending Signal
	done   chan struct{} // capacity 1; a frame finished
	exited chan struct{} // closed when the worker returns

	state   atomic.Int32
	frames  atomic.Uint64
	start   sync.Once
	stop    sync.Once
	stopped chan struct{} // closed by Destroy
}

// NewFramePump creates a pump around frame. The callback receives a context
// that is canceled by Destroy.
func NewFramePump(frame func(ctx context.Context)) *FramePump {
	ctx, cancel := context.WithCancel(context.Background())
	return &FramePump{
		frame:   frame,
		ctx:     ctx,
		cancel:  cancel,
		resume:  make(chan struct{}, 1),
		done:    make(chan struct{}, 1),
		exited:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the worker, which runs the first frame immediately.
// Subsequent calls are no-ops, as is Start after Destroy.
func (p *FramePump) Start() {
	p.start.Do(func() {
		select {
		case <-p.stopped:
			close(p.exited)
			return
		default:
		}
		p.state.Store(int32(PumpRunning))
		Logger().Info("quadbatch: frame pump started")
		go p.run()
	})
}

func (p *FramePump) run() {
	defer close(p.exited)
	defer p.state.Store(int32(PumpStopped))
	for {
		// Destroy may race with a Signal; the stop request wins.
		select {
		case <-p.stopped:
			return
		default:
		}
		p.state.Store(int32(PumpRunning))
		p.frame(p.ctx)
		p.frames.Add(1)

		select {
		case p.done <- struct{}{}:
		default:
		}

		p.state.Store(int32(PumpSuspended))
		select {
		case <-p.stopped:
			return
		case <-p.resume:
		}
	}
}

// Signal lets a suspended worker run its next frame. Signals sent while a
// frame is in flight coalesce into one.
func (p *FramePump) Signal() {
	select {
	case <-p.stopped:
		return
	default:
	}
	select {
	case p.resume <- struct{}{}:
	default:
	}
}

// Await blocks until the worker finishes a frame it has not yet reported,
// ctx is done, or the pump is destroyed (ErrPumpStopped).
func (p *FramePump) Await(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-p.stopped:
		return ErrPumpStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current lifecycle state.
func (p *FramePump) State() PumpState { return PumpState(p.state.Load()) }

// Frames returns the number of completed frame callbacks.
func (p *FramePump) Frames() uint64 { return p.frames.Load() }

// Destroy stops the worker and waits for it to exit. The callback context is
// canceled so an in-flight frame can return early. No frame callback begins
// after Destroy returns. Destroy is idempotent and must not be called from
// the frame callback.
func (p *FramePump) Destroy() {
	p.stop.Do(func() {
		close(p.stopped)
		p.cancel()
	})
	// Never started: make sure a later Start does not launch the worker.
	p.start.Do(func() { close(p.exited) })
	<-p.exited
	p.state.Store(int32(PumpStopped))
	Logger().Info("quadbatch: frame pump stopped", slog.Uint64("frames", p.frames.Load()))
}
