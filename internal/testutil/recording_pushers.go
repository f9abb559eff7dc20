package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/usage"
)

// RecordingTermUploader records every billing term push without talking to
// any platform. It implements billingterm.BatchUploader.
type RecordingTermUploader struct {
	mu     sync.Mutex
	pushed []*billingterm.BillingTerm

	// Fail makes the next push report failure.
	Fail bool
}

// NewRecordingTermUploader creates a new instance of RecordingTermUploader
func NewRecordingTermUploader() *RecordingTermUploader {
	return &RecordingTermUploader{}
}

// PushBillingTerms records the batch and fabricates one created ID per term
func (u *RecordingTermUploader) PushBillingTerms(ctx context.Context, terms []*billingterm.BillingTerm) (*billingterm.PushResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.Fail {
		return &billingterm.PushResult{Success: false}, nil
	}

	result := &billingterm.PushResult{Success: true}
	for i, term := range terms {
		u.pushed = append(u.pushed, term)
		result.CreatedIDs = append(result.CreatedIDs, fmt.Sprintf("obligation-%d", i+1))
	}
	return result, nil
}

// Pushed returns all recorded terms
func (u *RecordingTermUploader) Pushed() []*billingterm.BillingTerm {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*billingterm.BillingTerm, len(u.pushed))
	copy(out, u.pushed)
	return out
}

// RecordingEventPusher records every usage event push. It implements
// usage.Pusher.
type RecordingEventPusher struct {
	mu     sync.Mutex
	pushed []*usage.Event

	// Fail makes the next push report total failure.
	Fail bool
}

// NewRecordingEventPusher creates a new instance of RecordingEventPusher
func NewRecordingEventPusher() *RecordingEventPusher {
	return &RecordingEventPusher{}
}

// PushUsageEvents records the batch
func (p *RecordingEventPusher) PushUsageEvents(ctx context.Context, events []*usage.Event) (*usage.PushResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Fail {
		return &usage.PushResult{Success: false, Total: len(events), FailureCount: len(events)}, nil
	}

	p.pushed = append(p.pushed, events...)
	return &usage.PushResult{
		Success:      true,
		Total:        len(events),
		SuccessCount: len(events),
	}, nil
}

// Pushed returns all recorded events
func (p *RecordingEventPusher) Pushed() []*usage.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*usage.Event, len(p.pushed))
	copy(out, p.pushed)
	return out
}
