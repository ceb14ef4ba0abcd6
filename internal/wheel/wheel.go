// Package wheel turns candidate labels into spinner frames. It never decides
// an outcome: AnimateTo is handed a winner that was drawn beforehand.
package wheel

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

type FrameKind string

const (
	FrameRender FrameKind = "render"
	FrameSpin   FrameKind = "spin"
	FrameStop   FrameKind = "stop"
)

// Placeholder is the single slice shown when no candidates remain.
const Placeholder = "-"

type Frame struct {
	Kind     FrameKind `json:"kind"`
	Labels   []string  `json:"labels,omitempty"`
	Disabled bool      `json:"disabled,omitempty"`
	Rotation int       `json:"rotation"`
	Winner   string    `json:"winner,omitempty"`
}

type Options struct {
	Ticks    int
	Interval time.Duration
	Step     int // degrees per tick
}

// DefaultOptions spins for roughly 300ms.
var DefaultOptions = Options{Ticks: 30, Interval: 10 * time.Millisecond, Step: 10}

// Wheel emits frames to a sink. Render runs on the caller's goroutine;
// AnimateTo spins on its own goroutine and calls done exactly once.
type Wheel struct {
	ctx  context.Context
	opts Options
	emit func(Frame)
	log  *zap.Logger

	mu       sync.Mutex
	rotation int
	labels   []string
}

func New(ctx context.Context, opts Options, emit func(Frame), log *zap.Logger) *Wheel {
	if opts.Ticks <= 0 {
		opts.Ticks = DefaultOptions.Ticks
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultOptions.Interval
	}
	if opts.Step == 0 {
		opts.Step = DefaultOptions.Step
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Wheel{ctx: ctx, opts: opts, emit: emit, log: log}
}

// Render replaces the slices. Empty labels show the disabled placeholder.
func (w *Wheel) Render(labels []string) {
	w.mu.Lock()
	f := Frame{Kind: FrameRender, Rotation: w.rotation}
	if len(labels) == 0 {
		f.Labels = []string{Placeholder}
		f.Disabled = true
	} else {
		f.Labels = slices.Clone(labels)
	}
	w.labels = f.Labels
	w.mu.Unlock()

	w.emit(f)
}

// Labels returns the slices of the last render.
func (w *Wheel) Labels() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.labels)
}

// AnimateTo spins for a fixed number of ticks and then stops on winner. If
// the wheel's context ends mid-spin the stop frame is still emitted and done
// still runs, because the outcome is already decided.
func (w *Wheel) AnimateTo(winner string, done func()) {
	var once sync.Once
	finish := func() { once.Do(done) }

	go func() {
		defer finish()

		ticker := time.NewTicker(w.opts.Interval)
		defer ticker.Stop()

		for tick := 0; tick < w.opts.Ticks; tick++ {
			select {
			case <-w.ctx.Done():
				w.log.Debug("spin cut short", zap.Int("tick", tick))
				w.stop(winner)
				return
			case <-ticker.C:
			}

			w.mu.Lock()
			w.rotation = (w.rotation + w.opts.Step) % 360
			r := w.rotation
			w.mu.Unlock()
			w.emit(Frame{Kind: FrameSpin, Rotation: r})
		}
		w.stop(winner)
	}()
}

func (w *Wheel) stop(winner string) {
	w.mu.Lock()
	r := w.rotation
	w.mu.Unlock()
	w.emit(Frame{Kind: FrameStop, Rotation: r, Winner: winner})
}
