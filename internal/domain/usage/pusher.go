package usage

import "context"

// PushResult reports a bulk usage event ingestion. Partial failure is
// normal: per-event failures are listed and the rest of the batch stands.
type PushResult struct {
	Success      bool
	Total        int
	SuccessCount int
	FailureCount int
	Failures     []EventFailure
}

// EventFailure is one rejected event within a batch.
type EventFailure struct {
	Index int
	Err   string
}

// Pusher pushes usage events to the platform in bulk, one idempotency key
// per event.
type Pusher interface {
	PushUsageEvents(ctx context.Context, events []*Event) (*PushResult, error)
}
