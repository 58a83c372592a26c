package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestSlidingWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	sw := NewSlidingWindow(3, time.Minute)
	sw.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !sw.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		now = now.Add(10 * time.Second)
	}

	if sw.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	// first request was at t0; window slides past it at t0+60s
	now = time.Unix(1700000000, 0).Add(time.Minute + time.Second)
	if !sw.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}
	// requests at t0+10s, t0+20s and t0+61s fill the window again
	if sw.Allow() {
		t.Error("Expected the admitted request to count against the window")
	}
}

func TestSlidingWindowWait(t *testing.T) {
	sw := NewSlidingWindow(1, 50*time.Millisecond)

	if err := sw.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait returned %v", err)
	}

	start := time.Now()
	if err := sw.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait returned %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Wait returned after %v, expected to block for the window", elapsed)
	}
}

func TestSlidingWindowWaitCancelled(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	sw.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := sw.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestKeyed(t *testing.T) {
	k := NewKeyed(1, time.Hour)

	if !k.For("a").Allow() {
		t.Error("first call for a should pass")
	}
	if k.For("a").Allow() {
		t.Error("second call for a should be limited")
	}
	if !k.For("b").Allow() {
		t.Error("b has its own window")
	}
}
