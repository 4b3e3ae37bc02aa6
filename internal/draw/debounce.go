package draw

import (
	"sync"
	"time"

	"github.com/committeehq/committee-client/internal/metrics"
)

// DefaultDebounce is the quiet period after the last edit before a
// draw-amount update is sent.
const DefaultDebounce = 3 * time.Second

// FlushFunc sends one debounced draw-amount update.
type FlushFunc func(drawID int, amount float64)

// Debouncer collapses rapid draw-amount edits into one outbound update per
// draw. Each draw ID owns an independent timer, so edits to different draws
// never interfere. An update is only flushed when the edited value differs
// from the last known server value.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	flush  FlushFunc
	timers map[int]*time.Timer
	known  map[int]float64
	closed bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration, flush FlushFunc) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay:  delay,
		flush:  flush,
		timers: make(map[int]*time.Timer),
		known:  make(map[int]float64),
	}
}

// SetKnown records the server's value for a draw. Called when draws load and
// after a successful flush.
func (d *Debouncer) SetKnown(drawID int, amount float64) {
	d.mu.Lock()
	d.known[drawID] = amount
	d.mu.Unlock()
}

// Known returns the last known server value for a draw, used to revert the
// local display after a failed write.
func (d *Debouncer) Known(drawID int) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	amount, ok := d.known[drawID]
	return amount, ok
}

// Edit registers a local edit. The draw's timer restarts; when the quiet
// period elapses without further edits, the final value is flushed.
func (d *Debouncer) Edit(drawID int, amount float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	if timer, ok := d.timers[drawID]; ok {
		timer.Stop()
	}
	d.timers[drawID] = time.AfterFunc(d.delay, func() {
		d.fire(drawID, amount)
	})
}

// Close cancels all outstanding timers. Pending edits are dropped, matching
// the hosting view being torn down.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
}

func (d *Debouncer) fire(drawID int, amount float64) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.timers, drawID)
	known, hasKnown := d.known[drawID]
	d.mu.Unlock()

	if hasKnown && amount == known {
		metrics.ObserveDebounceFlush("unchanged")
		return
	}
	metrics.ObserveDebounceFlush("sent")
	d.flush(drawID, amount)
}
