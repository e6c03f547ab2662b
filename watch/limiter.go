// Package watch streams invalidation events to remote subscribers over
// websockets, so a client can learn that a node it cares about went stale
// without polling the graph.
package watch

import "context"

// semaphore provides a set of tokens for limiting parallelism, adapted from
// the teacher's root-level concurrency_limiter.go.
type semaphore chan struct{}

func makeSemaphore(maxConns int) semaphore {
	return make(chan struct{}, maxConns)
}

func (s semaphore) acquire() {
	s <- struct{}{}
}

func (s semaphore) release() {
	<-s
}

// concurrencyLimiterKey is used as a key for a context.Context.
type concurrencyLimiterKey struct{}

// WithSendLimiter bounds how many subscriber sends a Server will have in
// flight at once, the same acquire/release discipline as the teacher's
// WithConcurrencyLimiter, renamed to this package's domain: a send, not an
// arbitrary goroutine, is the unit of bounded work.
func WithSendLimiter(ctx context.Context, maxConcurrentSends int) context.Context {
	sem := makeSemaphore(maxConcurrentSends)
	sem.acquire() // acquire one token for the caller's own goroutine
	return context.WithValue(ctx, concurrencyLimiterKey{}, sem)
}

// AcquireSendToken acquires a token, blocking until one is available.
func AcquireSendToken(ctx context.Context) {
	ctx.Value(concurrencyLimiterKey{}).(semaphore).acquire()
}

// ReleaseSendToken releases a token acquired by AcquireSendToken.
func ReleaseSendToken(ctx context.Context) {
	ctx.Value(concurrencyLimiterKey{}).(semaphore).release()
}
