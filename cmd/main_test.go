package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAbortWindow(t *testing.T) {
	if err := abortWindow(context.Background(), 10*time.Millisecond); err != nil {
		t.Errorf("abortWindow() = %v, want nil after the delay", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := abortWindow(ctx, time.Minute)
	if !errors.Is(err, errAborted) {
		t.Errorf("abortWindow() = %v, want errAborted", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("cancellation must end the window immediately")
	}
}
