// Package stopwatch implements a start/stop/reset stopwatch on a 4-digit display.
//
// Time and button events are produced concurrently (a ticker and edge-triggered
// GPIO buttons) and only set flags. A single foreground loop consumes each flag
// once and is the only code that touches the display, which is not reentrant.
package stopwatch

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// Display is the part of *tm1637.Dev the stopwatch draws on.
type Display interface {
	DisplayString(s string) error
	DisplayColon(on bool) error
}

// Stopwatch holds the elapsed time and the pending requests.
type Stopwatch struct {
	layout Layout
	log    *slog.Logger

	// Shared with producers.
	elapsed atomic.Int64 // nanoseconds
	running atomic.Bool
	update  atomic.Bool
	toggle  atomic.Bool
	reset   atomic.Bool
	wake    chan struct{}

	// Foreground only.
	colon      bool
	colonKnown bool
}

// New returns a stopped stopwatch at zero. logger may be nil.
func New(layout Layout, logger *slog.Logger) *Stopwatch {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Stopwatch{
		layout: layout,
		log:    logger,
		wake:   make(chan struct{}, 1),
	}
	s.update.Store(true)
	return s
}

// notify wakes the foreground loop. Wake-ups coalesce.
func (s *Stopwatch) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Tick adds d to the elapsed time when running and requests a display update.
// It is called by the time source.
func (s *Stopwatch) Tick(d time.Duration) {
	if !s.running.Load() {
		return
	}
	s.elapsed.Add(int64(d))
	s.update.Store(true)
	s.notify()
}

// ToggleRequest asks the foreground to start or stop the stopwatch.
func (s *Stopwatch) ToggleRequest() {
	s.toggle.Store(true)
	s.notify()
}

// ResetRequest asks the foreground to set the elapsed time to zero.
func (s *Stopwatch) ResetRequest() {
	s.reset.Store(true)
	s.notify()
}

// Elapsed returns the accumulated running time.
func (s *Stopwatch) Elapsed() time.Duration {
	return time.Duration(s.elapsed.Load())
}

// Running reports whether the stopwatch is counting.
func (s *Stopwatch) Running() bool {
	return s.running.Load()
}

// Layout returns the display layout.
func (s *Stopwatch) Layout() Layout {
	return s.layout
}

// Step consumes the pending requests once and redraws when needed.
// It must only be called from the foreground loop.
func (s *Stopwatch) Step(disp Display) error {
	redraw := s.update.Swap(false)
	if s.toggle.Swap(false) {
		running := !s.running.Load()
		s.running.Store(running)
		s.log.Info("stopwatch toggled", "running", running, "elapsed", s.Elapsed())
		redraw = true
	}
	if s.reset.Swap(false) {
		s.elapsed.Store(0)
		s.log.Info("stopwatch reset")
		redraw = true
	}
	if !redraw {
		return nil
	}
	return s.render(disp)
}

func (s *Stopwatch) render(disp Display) error {
	elapsed := s.Elapsed()
	colon := s.layout.Colon(elapsed, s.running.Load())
	if !s.colonKnown || colon != s.colon {
		if err := disp.DisplayColon(colon); err != nil {
			s.colonKnown = false
			return err
		}
		s.colon, s.colonKnown = colon, true
	}
	return disp.DisplayString(s.layout.Format(elapsed))
}

// Run is the foreground loop. It draws the initial state and then handles
// requests until ctx is done. A failed update is logged and the next one
// proceeds independently.
func (s *Stopwatch) Run(ctx context.Context, disp Display) error {
	if err := s.Step(disp); err != nil {
		s.log.Warn("display update failed", "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}
		if err := s.Step(disp); err != nil {
			s.log.Warn("display update failed", "err", err)
		}
	}
}
