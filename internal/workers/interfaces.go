// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that starts
// several workers together and stops them in reverse order.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run must not block: implementations spawn their own goroutines, which exit
// when ctx is cancelled or Stop is called. Stop blocks until they have
// exited.
//
// Example implementation:
//
//	type MyWorker struct{ job service.ReplicationJob }
//
//	func (w *MyWorker) Run(ctx context.Context) { w.job.Start(ctx, time.Second) }
//	func (w *MyWorker) Stop()                   { w.job.Stop() }
type Worker interface {
	Run(ctx context.Context)
	Stop()
}
