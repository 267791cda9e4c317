package wizard

import "time"

// DefaultDebounce is the trailing delay for free-text token edits.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces rapid free-text edits into one trailing-edge fire.
// Each edit bumps a sequence number; a timer scheduled for an old sequence
// is stale by the time it fires and must be ignored. Flush bumps the
// sequence so a discrete edit (comma, blur) can fire immediately while
// invalidating any pending timer.
type Debouncer struct {
	seq   int
	delay time.Duration
}

// NewDebouncer builds a debouncer with the given trailing delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the trailing-edge delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Touch records an edit and returns the sequence a timer should carry.
func (d *Debouncer) Touch() int {
	d.seq++
	return d.seq
}

// Current reports whether a fired timer's sequence is still the latest.
func (d *Debouncer) Current(seq int) bool {
	return seq == d.seq
}

// Flush invalidates pending timers for an immediate fire.
func (d *Debouncer) Flush() {
	d.seq++
}
