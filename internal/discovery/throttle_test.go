package discovery

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestThrottleFirstWaitImmediate(t *testing.T) {
	th := NewThrottle(time.Second)

	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first wait should not block, took %s", elapsed)
	}
}

func TestThrottleEnforcesMinDelay(t *testing.T) {
	th := NewThrottle(150 * time.Millisecond)

	if err := th.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 140*time.Millisecond {
		t.Errorf("second wait returned after %s, want >= 150ms", elapsed)
	}
}

func TestThrottleSerializesConcurrentWaiters(t *testing.T) {
	th := NewThrottle(60 * time.Millisecond)

	times := make(chan time.Time, 3)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := th.Wait(context.Background()); err != nil {
				t.Error(err)
				return
			}
			times <- time.Now()
		}()
	}
	wg.Wait()
	close(times)

	var returns []time.Time
	for ts := range times {
		returns = append(returns, ts)
	}
	sort.Slice(returns, func(i, j int) bool { return returns[i].Before(returns[j]) })

	for i := 1; i < len(returns); i++ {
		if gap := returns[i].Sub(returns[i-1]); gap < 50*time.Millisecond {
			t.Errorf("waiters %d and %d returned %s apart, want >= 60ms", i-1, i, gap)
		}
	}
}

func TestThrottleContextCancel(t *testing.T) {
	th := NewThrottle(10 * time.Second)

	if err := th.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := th.Wait(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled wait took too long: %s", elapsed)
	}
}
