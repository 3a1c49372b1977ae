package utils

import (
	"math/rand"
	"sync"
	"time"
)

// WorkerPool bounds how many scrape jobs run at once. Each job owns its own
// browser session, so the limit exists to cap memory and Chrome processes,
// not to share state.
type WorkerPool struct {
	maxWorkers  int
	rateLimitMs int
	semaphore   chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastLaunch  time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency and a minimum
// interval between job launches.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	return &WorkerPool{
		maxWorkers:  maxWorkers,
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxWorkers),
		lastLaunch:  time.Now(),
	}
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.enforceLaunchInterval()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) enforceLaunchInterval() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	minInterval := time.Duration(wp.rateLimitMs) * time.Millisecond
	elapsed := time.Since(wp.lastLaunch)
	if elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
	wp.lastLaunch = time.Now()
}

// Jitter returns a random duration between minMs and maxMs milliseconds.
// Settle delays are randomized so scroll/click timing does not look scripted.
func Jitter(minMs, maxMs int) time.Duration {
	if maxMs <= minMs {
		return time.Duration(minMs) * time.Millisecond
	}
	return time.Duration(minMs+rand.Intn(maxMs-minMs)) * time.Millisecond
}
