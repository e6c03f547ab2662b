package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestSendLimiter tests that Acquire/ReleaseSendToken bound parallelism,
// adapted from the teacher's TestConcurrencyLimiter.
func TestSendLimiter(t *testing.T) {
	const limit = 5

	ctx := WithSendLimiter(context.Background(), limit)

	var running int64
	var mu sync.Mutex
	max := 0

	var wg sync.WaitGroup
	for i := 0; i < limit*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			AcquireSendToken(ctx)
			defer ReleaseSendToken(ctx)

			n := int(atomic.AddInt64(&running, 1))
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt64(&running, -1)

			mu.Lock()
			if n > max {
				max = n
			}
			mu.Unlock()
		}()
	}

	ReleaseSendToken(ctx)
	wg.Wait()
	AcquireSendToken(ctx)

	if max > limit {
		t.Errorf("expected at most %d concurrent sends, saw %d", limit, max)
	}
}
