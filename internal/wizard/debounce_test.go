package wizard

import (
	"testing"
	"time"
)

func TestDebouncerOnlyLatestTimerFires(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	first := d.Touch()
	second := d.Touch()
	if d.Current(first) {
		t.Fatalf("stale sequence should not be current")
	}
	if !d.Current(second) {
		t.Fatalf("latest sequence should be current")
	}
}

func TestDebouncerFlushInvalidatesPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	seq := d.Touch()
	d.Flush()
	if d.Current(seq) {
		t.Fatalf("flush should invalidate pending timers")
	}
}

func TestDebouncerDelay(t *testing.T) {
	d := NewDebouncer(300 * time.Millisecond)
	if d.Delay() != 300*time.Millisecond {
		t.Fatalf("unexpected delay %v", d.Delay())
	}
}
