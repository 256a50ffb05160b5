// Package xsync implements the extra synchronization tools used by the
// kernel cache.
package xsync

import "sync"

// Latch is a one-shot signal: it can be waited for until it is triggered,
// and once triggered it stays triggered forever.
type Latch struct {
	mu   sync.Mutex
	wait chan struct{}
}

// NewLatch returns an un-triggered latch.
func NewLatch() *Latch {
	return &Latch{wait: make(chan struct{})}
}

// Trigger the latch, releasing all current and future waiters. Triggering
// an already-triggered latch is a no-op.
func (l *Latch) Trigger() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Test() {
		return
	}
	close(l.wait)
}

// Wait blocks until the latch is triggered.
func (l *Latch) Wait() {
	<-l.wait
}

// Test reports whether the latch has been triggered, without blocking.
func (l *Latch) Test() bool {
	select {
	case <-l.wait:
		return true
	default:
		return false
	}
}

// WaitChan returns the channel closed when the latch triggers, for use in
// select statements.
func (l *Latch) WaitChan() <-chan struct{} {
	return l.wait
}
