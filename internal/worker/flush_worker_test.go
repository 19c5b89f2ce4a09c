package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFlusher_PeriodicAndFinalFlush(t *testing.T) {
	var calls atomic.Int64
	f := NewFlusher(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	// Wait for at least one periodic flush.
	deadline := time.After(2 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no periodic flush within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	periodic := calls.Load()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls.Load() <= periodic {
		t.Error("cancellation should trigger one final flush")
	}
}

func TestFlusher_KeepsRunningAfterFlushError(t *testing.T) {
	var calls atomic.Int64
	f := NewFlusher(func(context.Context) error {
		calls.Add(1)
		return errors.New("storage unavailable")
	}, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("flusher stopped after an error")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run should swallow flush errors, got %v", err)
	}
}
