package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events into one callback. The callback
// receives the name of the last event and how many events were merged.
type Debouncer struct {
	interval time.Duration
	callback func(name string, merged int)

	mu      sync.Mutex
	timer   *time.Timer
	last    string
	pending int
}

// NewDebouncer creates a debouncer that fires callback once interval has
// passed without further events.
func NewDebouncer(interval time.Duration, callback func(name string, merged int)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger records an event and restarts the quiet period.
func (d *Debouncer) Trigger(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = name
	d.pending++

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.mu.Lock()
	name, merged := d.last, d.pending
	d.pending = 0
	d.mu.Unlock()

	if merged == 0 {
		return
	}

	d.callback(name, merged)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.pending = 0
}
