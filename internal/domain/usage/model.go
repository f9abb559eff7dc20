package usage

import (
	"time"

	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
)

// Row is one raw meter reading from the monthly usage export. Multiple rows
// may share the same (tenant, SKU, contract, tenant name) key; their meter
// values are summed during reconciliation, never overwritten.
type Row struct {
	TenantID      string
	TenantName    string
	SKUName       string
	ContractLabel string
	// Meter is the raw cell text; bad literals degrade to zero with a
	// warning during aggregation.
	Meter string
}

// Event is one normalized usage event ready for platform ingestion.
// Exactly one event exists per (customer, event type name, contract) that
// has a matching billing term; enterprise support and prepaid events are
// always synthesized, never read from the raw export.
type Event struct {
	CustomerID     string
	EventTypeID    types.ResolvedID
	EventTypeName  string
	Datetime       time.Time
	Value          decimal.Decimal
	Differentiator string
	// Invoice is the sequential index of the tenant name within its
	// tenant id, splitting one tenant's usage across sub-entity invoices.
	Invoice int
	// IdempotencyKey deduplicates the event on platform re-ingestion.
	IdempotencyKey string
}
