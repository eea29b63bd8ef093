package audiopipe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPlanSegments_ShortFileIsOneSegment(t *testing.T) {
	plan := planSegments(5*time.Minute, 10*time.Minute, nil)
	if len(plan) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(plan))
	}
	if plan[0].start != 0 || plan[0].end != 5*time.Minute {
		t.Fatalf("unexpected bounds: %+v", plan[0])
	}
}

func TestPlanSegments_LongFileSplitsOnFixedDuration(t *testing.T) {
	plan := planSegments(25*time.Minute, 10*time.Minute, nil)
	if len(plan) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(plan))
	}
	if plan[len(plan)-1].end != 25*time.Minute {
		t.Fatalf("last segment should end at total duration, got %v", plan[len(plan)-1].end)
	}
}

func TestPlanSegments_PrefersNearbySilenceBoundary(t *testing.T) {
	silences := []time.Duration{9*time.Minute + 50*time.Second}
	plan := planSegments(20*time.Minute, 10*time.Minute, silences)
	if plan[0].end != silences[0] {
		t.Fatalf("expected first cut at silence boundary %v, got %v", silences[0], plan[0].end)
	}
}

func TestNearestSilence_OutsideToleranceFallsBackToTarget(t *testing.T) {
	target := 10 * time.Minute
	silences := []time.Duration{5 * time.Minute}
	got := nearestSilence(silences, target, time.Minute)
	if got != target {
		t.Fatalf("expected fallback to target %v, got %v", target, got)
	}
}

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, 4*time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := retryWithBackoff(ctx, 5, time.Millisecond, 4*time.Millisecond, func() error {
		attempts++
		return errors.New("always fails")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt after cancellation, got %d", attempts)
	}
}
