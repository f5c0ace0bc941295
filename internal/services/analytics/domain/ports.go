package domain

import "context"

// WriterPort persists event batches
type WriterPort interface {
	WriteBatch(ctx context.Context, xs []Event) error
}

// ServicePort is the buffered recorder the API modules talk to
type ServicePort interface {
	// Record enqueues an event and never blocks; events are dropped when
	// the buffer is full
	Record(ctx context.Context, ev Event)
	// Run drains the buffer until ctx is done, flushing on a cadence
	Run(ctx context.Context) error
}
