// Package worker implements a bounded worker pool for upstream API fetches.
// The backfill path needs dozens of standings snapshots per season; the pool
// keeps the fan-out polite toward the league's servers while still
// overlapping network waits.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	jobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leafs_fetch_jobs_enqueued_total",
		Help: "Total number of fetch jobs enqueued",
	})

	jobsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leafs_fetch_jobs_processed_total",
		Help: "Total number of fetch jobs completed",
	})

	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leafs_fetch_jobs_failed_total",
		Help: "Total number of fetch jobs that returned an error",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "leafs_fetch_queue_depth",
		Help: "Current depth of the fetch job queue",
	})
)

// Job is one fetch. Errors are counted and logged; retries are the job's
// own business.
type Job func(ctx context.Context) error

// Pool runs Jobs on a fixed number of goroutines fed by a buffered queue.
type Pool struct {
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.SugaredLogger
}

func NewPool(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, queueSize),
		logger:  logger.Sugar(),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go p.reportQueueDepth()

	p.logger.Infow("Fetch pool started", "workers", p.workers, "queueSize", cap(p.jobs))
}

// Stop drains the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Fetch pool stopped")
}

// Enqueue queues a job, blocking when the queue is full. It reports false
// when the pool's context is already canceled.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.jobs <- job:
		jobsEnqueued.Inc()
		return true
	case <-p.ctx.Done():
		return false
	}
}

// QueueDepth returns the number of queued, unstarted jobs.
func (p *Pool) QueueDepth() int {
	return len(p.jobs)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		if p.ctx.Err() != nil {
			return
		}
		if err := job(p.ctx); err != nil {
			jobsFailed.Inc()
			p.logger.Warnw("Fetch job failed", "worker", id, "error", err)
			continue
		}
		jobsProcessed.Inc()
	}
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobs)))
		case <-p.ctx.Done():
			return
		}
	}
}
