package api

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffRetriesTransientFailures(t *testing.T) {
	b := Backoff{Base: time.Millisecond, Retries: 2}
	calls := 0
	err := b.Do(context.Background(), func(context.Context) error {
		calls++
		return &Error{Kind: KindTimeout}
	})
	if err == nil {
		t.Fatalf("expected final error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestBackoffStopsOnSuccess(t *testing.T) {
	b := Backoff{Base: time.Millisecond, Retries: 2}
	calls := 0
	err := b.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 2 {
			return &Error{Kind: KindNetwork}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestBackoffDoesNotRetryTerminalFailures(t *testing.T) {
	b := Backoff{Base: time.Millisecond, Retries: 2}
	calls := 0
	err := b.Do(context.Background(), func(context.Context) error {
		calls++
		return &Error{Kind: KindValidation, Message: "bad page"}
	})
	if err == nil || err.Error() != "bad page" {
		t.Fatalf("expected terminal error to pass through, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestBackoffDelaysGrowExponentially(t *testing.T) {
	b := Backoff{Base: 10 * time.Millisecond, Retries: 2}
	var stamps []time.Time
	_ = b.Do(context.Background(), func(context.Context) error {
		stamps = append(stamps, time.Now())
		return &Error{Kind: KindTimeout}
	})
	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}
	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	if first < 10*time.Millisecond {
		t.Fatalf("first delay too short: %v", first)
	}
	if second < 20*time.Millisecond {
		t.Fatalf("second delay too short: %v", second)
	}
}

func TestBackoffHonorsContext(t *testing.T) {
	b := Backoff{Base: time.Hour, Retries: 2}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := b.Do(ctx, func(context.Context) error {
		calls++
		return &Error{Kind: KindTimeout}
	})
	if err == nil {
		t.Fatalf("expected error after cancellation")
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
}

func TestFixedRetryRetriesOnce(t *testing.T) {
	r := FixedRetry{Delay: time.Millisecond}
	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return &Error{Kind: KindTimeout}
	})
	if err == nil {
		t.Fatalf("expected final error")
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestFixedRetrySkipsTerminalFailures(t *testing.T) {
	r := FixedRetry{Delay: time.Millisecond}
	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("decode failure")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}
