package stopwatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"
)

// pollInterval bounds how long a button watcher waits for an edge before
// checking for cancellation.
const pollInterval = 100 * time.Millisecond

// Source produces requests for s until ctx is done.
type Source func(ctx context.Context, s *Stopwatch) error

// Timer returns a Source calling Tick every interval with the measured time
// since the previous tick.
func Timer(interval time.Duration) Source {
	return func(ctx context.Context, s *Stopwatch) error {
		if interval <= 0 {
			return errors.New("stopwatch: timer interval must be positive")
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-t.C:
				s.Tick(now.Sub(last))
				last = now
			}
		}
	}
}

// WatchButton calls fn on each falling edge of pin, ignoring edges closer than
// debounce to the previous accepted one. The pin is configured as input with
// pull-up, for a button switching to ground.
func WatchButton(ctx context.Context, pin gpio.PinIn, debounce time.Duration, fn func()) error {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("stopwatch: button %s: %w", pin, err)
	}
	defer pin.Halt()

	var last time.Time
	for ctx.Err() == nil {
		if !pin.WaitForEdge(pollInterval) {
			continue
		}
		if now := time.Now(); last.IsZero() || now.Sub(last) >= debounce {
			last = now
			fn()
		}
	}
	return nil
}

// Buttons returns a Source watching a start/stop and a reset button.
// Either pin may be nil.
func Buttons(startStop, reset gpio.PinIn, debounce time.Duration) Source {
	return func(ctx context.Context, s *Stopwatch) error {
		g, ctx := errgroup.WithContext(ctx)
		if startStop != nil {
			g.Go(func() error { return WatchButton(ctx, startStop, debounce, s.ToggleRequest) })
		}
		if reset != nil {
			g.Go(func() error { return WatchButton(ctx, reset, debounce, s.ResetRequest) })
		}
		return g.Wait()
	}
}

// Serve runs the foreground loop on disp together with all sources. It returns
// when ctx is done or the first source fails.
func (s *Stopwatch) Serve(ctx context.Context, disp Display, sources ...Source) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		g.Go(func() error { return src(ctx, s) })
	}
	g.Go(func() error { return s.Run(ctx, disp) })
	return g.Wait()
}
