package pricebook

import "github.com/meterflow/meterflow/internal/types"

// RateRow is one SKU rate line from a tenant's price book file, tagged with
// the identity extracted from the filename and the platform IDs filled in by
// the resolvers.
type RateRow struct {
	Category        string
	SKUName         string
	SKUDescription  string
	UnitOfMeasure   string
	OnDemandRate    string
	Discount        string
	// NetRate is kept as the raw cell text. It may carry spreadsheet
	// formula-error sentinels; those are a data-quality signal for the
	// operator, not a validation failure here.
	NetRate         string
	NetPaymentTerms string

	// TenantID and ContractLabel come from the filename grammar.
	TenantID      string
	ContractLabel string

	// Placeholder identity columns, unresolved at ingestion time.
	CustomerID        types.ResolvedID
	EventTypeID       types.ResolvedID
	IntegrationItemID types.ResolvedID
}

// TenantFile is one ingested price book file. Immutable after ingestion.
type TenantFile struct {
	TenantID      string
	ContractLabel string
	Filename      string
	Rows          []RateRow
}

// IngestResult is the outcome of ingesting a price book archive. Errors
// accumulate per file; a bad file contributes zero rows and never aborts
// the remaining files.
type IngestResult struct {
	// Files holds one entry per successfully parsed archive entry.
	Files []*TenantFile
	// Combined is every row across all files, in archive order.
	Combined []RateRow
	// Errors holds one descriptive message per rejected file.
	Errors []string
}

// TenantIDs returns the distinct tenant IDs across all ingested files, in
// first-seen order.
func (r *IngestResult) TenantIDs() []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		if _, ok := seen[f.TenantID]; ok {
			continue
		}
		seen[f.TenantID] = struct{}{}
		ids = append(ids, f.TenantID)
	}
	return ids
}
