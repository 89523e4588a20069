package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/key-collection/internal/service"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Add appends w to the workers started by Run.
func (w *Workers) Add(worker Worker) {
	w.workers = append(w.workers, worker)
}

func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}

// Stop stops the workers in reverse start order.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// replicationWorker runs a replication job on a fixed interval.
type replicationWorker struct {
	job      service.ReplicationJob
	interval time.Duration
}

// NewReplicationWorker adapts job to [Worker].
func NewReplicationWorker(job service.ReplicationJob, interval time.Duration) Worker {
	return &replicationWorker{job: job, interval: interval}
}

func (r *replicationWorker) Run(ctx context.Context) {
	r.job.Start(ctx, r.interval)
}

func (r *replicationWorker) Stop() {
	r.job.Stop()
}
