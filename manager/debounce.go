package manager

import (
	"sync"
	"time"
)

const DefaultDebounce = 1200 * time.Millisecond

// Debouncer calls fn with the argument of the most recent Call once no
// further Call has arrived for the configured interval. Earlier arguments
// are dropped.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	fn       func(string)
	timer    *time.Timer
	gen      uint64
	stopped  bool
}

func NewDebouncer(interval time.Duration, fn func(string)) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Debouncer{interval: interval, fn: fn}
}

func (d *Debouncer) Call(arg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.interval, func() {
		d.fire(gen, arg)
	})
}

func (d *Debouncer) fire(gen uint64, arg string) {
	d.mu.Lock()
	// A timer that already fired cannot be stopped, so a newer Call is
	// detected by generation instead.
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn(arg)
}

// Stop drops any pending call. Calls after Stop are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
