package domain

import "context"

// SubmitPort is the single-slot admission path for replay jobs
type SubmitPort interface {
	// Submit queues a validated job, a second job while one is queued or
	// still running is rejected with a conflict
	Submit(job Job) error
}

// RunnerPort drives jobs to completion
type RunnerPort interface {
	// Run consumes queued jobs until ctx is cancelled
	Run(ctx context.Context) error

	// RunOnce executes one job synchronously, bypassing the queue
	RunOnce(ctx context.Context, job Job) error
}
