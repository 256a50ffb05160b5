package gemm

import (
	"runtime"
	"sync"
)

// Rows below this count run inline; goroutine handoff costs more than the
// compute saved.
const parallelRowThreshold = 64

// pool caps the number of goroutines the kernels fan work out to. The cap
// is a soft target per call: each ForRows invocation splits its rows into
// at most maxParallelism contiguous chunks, and a semaphore keeps
// concurrent invocations from oversubscribing the CPUs.
type pool struct {
	maxParallelism int
	sem            chan struct{}
}

// newPool returns a pool targeting the given parallelism; zero or negative
// means one worker per CPU.
func newPool(maxParallelism int) *pool {
	if maxParallelism <= 0 {
		maxParallelism = runtime.NumCPU()
	}
	return &pool{
		maxParallelism: maxParallelism,
		sem:            make(chan struct{}, maxParallelism),
	}
}

// forRows runs fn over contiguous sub-ranges covering [0, m). Small row
// counts and single-worker pools run inline on the caller's goroutine.
func (p *pool) forRows(m int, fn func(lo, hi int)) {
	if m < parallelRowThreshold || p.maxParallelism == 1 {
		fn(0, m)
		return
	}
	chunks := p.maxParallelism
	if chunks > m {
		chunks = m
	}
	chunk := (m + chunks - 1) / chunks

	var wg sync.WaitGroup
	for lo := 0; lo < m; lo += chunk {
		lo := lo
		hi := min(lo+chunk, m)
		wg.Add(1)
		p.sem <- struct{}{}
		go func() {
			defer func() {
				<-p.sem
				wg.Done()
			}()
			fn(lo, hi)
		}()
	}
	wg.Wait()
}

// workers is the process-wide kernel worker pool.
var workers = newPool(0)
