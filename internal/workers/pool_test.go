package workers

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := NewPool(3)

	var ran int64
	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		last := i == 19
		pool.Submit(func() {
			atomic.AddInt64(&ran, 1)
			if last {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for jobs")
	}

	pool.Close()
	if got := atomic.LoadInt64(&ran); got != 20 {
		t.Fatalf("expected 20 jobs to run, got %d", got)
	}
}

func TestCloseWaitsForInFlightJobs(t *testing.T) {
	pool := NewPool(1)

	var finished int64
	pool.Submit(func() {
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt64(&finished, 1)
	})

	pool.Close()
	if atomic.LoadInt64(&finished) != 1 {
		t.Fatal("expected Close to wait for the in-flight job")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	pool := NewPool(2)
	pool.Close()
	pool.Close()
}

func TestZeroSizeFallsBackToOneWorker(t *testing.T) {
	pool := NewPool(0)

	done := make(chan struct{})
	pool.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected the fallback worker to run the job")
	}
	pool.Close()
}
