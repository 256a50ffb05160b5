// Package instrument defines the observability hook the executor framework
// reports into.
//
// The framework itself keeps no global mutable counters: an execution
// context carries a Hook, and everything interesting (cache traffic, kernel
// builds, implementation selection, fallback emission) is reported through
// it. Nop is the default. See instrument/prom for a Prometheus-backed
// implementation.
package instrument

import "time"

// Hook receives notifications from the executor framework. Implementations
// must be safe for concurrent use: the kernel cache reports from arbitrary
// inference threads.
type Hook interface {
	// CacheHit is called when a kernel-cache lookup finds a live entry
	// (including lookups that waited for a concurrent build).
	CacheHit()

	// CacheMiss is called when a kernel-cache lookup triggers a build.
	CacheMiss()

	// KernelBuilt is called after a cache build function returns, with
	// its duration and outcome.
	KernelBuilt(d time.Duration, err error)

	// ImplementationSelected is called when the selection engine settles
	// on an implementation for a config.
	ImplementationSelected(name string)

	// FallbackEmitted is called when no implementation was fully
	// compliant and a decomposition was built instead.
	FallbackEmitted(name string)
}

// Nop is a Hook that discards everything.
type Nop struct{}

func (Nop) CacheHit()                        {}
func (Nop) CacheMiss()                       {}
func (Nop) KernelBuilt(time.Duration, error) {}
func (Nop) ImplementationSelected(string)    {}
func (Nop) FallbackEmitted(string)           {}

var _ Hook = Nop{}
