// Package workers provides the fixed-size pool shared by the analytics and
// inventory services, keeping report computation off request goroutines.
package workers

import "sync"

type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
	once sync.Once
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{jobs: make(chan func(), 64)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit queues a job. A submitted job always runs to completion, even if
// whoever asked for it has stopped waiting.
func (p *Pool) Submit(job func()) {
	p.jobs <- job
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
