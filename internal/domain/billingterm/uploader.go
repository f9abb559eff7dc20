package billingterm

import "context"

// PushResult reports the outcome of a billing term batch upload. Callers
// must check Success before trusting CreatedIDs; a failed push leaves the
// pipeline operating on the data it already has.
type PushResult struct {
	Success    bool
	CreatedIDs []string
	Failures   []RowFailure
}

// RowFailure is one rejected term within a batch.
type RowFailure struct {
	Index int
	Err   string
}

// BatchUploader pushes composed billing terms to the platform.
type BatchUploader interface {
	PushBillingTerms(ctx context.Context, terms []*BillingTerm) (*PushResult, error)
}
