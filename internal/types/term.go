package types

// TermKind is the provenance of a billing term.
type TermKind string

const (
	// TermKindRegular marks terms projected from a price book rate row.
	TermKindRegular TermKind = "REGULAR"
	// TermKindEnterpriseSupport marks the synthetic enterprise support
	// surcharge term appended per tenant.
	TermKindEnterpriseSupport TermKind = "ENTERPRISE_SUPPORT"
	// TermKindPrepaid marks the synthetic prepaid offset term appended
	// per tenant.
	TermKindPrepaid TermKind = "PREPAID"
)

// IsSynthetic reports whether the term was synthesized rather than ingested.
func (k TermKind) IsSynthetic() bool {
	return k == TermKindEnterpriseSupport || k == TermKindPrepaid
}

// IntervalUnit is the billing interval unit for a term.
type IntervalUnit string

const (
	IntervalUnitMonth IntervalUnit = "MONTH"
)

// InvoiceDateStrategy determines when a term is invoiced within its period.
type InvoiceDateStrategy string

const (
	InvoiceDateStrategyArrears InvoiceDateStrategy = "ARREARS"
)

// InvoiceType is the platform invoice type for a term.
type InvoiceType string

const (
	InvoiceTypeInvoice InvoiceType = "INVOICE"
)

// BillingType is the platform pricing mode for a term.
type BillingType string

const (
	BillingTypeUnitPrice BillingType = "UNIT_PRICE"
)

// Fixed platform catalog identities for the synthetic terms. These are
// stable IDs provisioned once in the billing platform, not per-run lookups.
const (
	EnterpriseSupportName        = "Enterprise Support"
	EnterpriseSupportEventTypeID = "f62255fd-9a75-4e23-b8bd-d39500334d22"
	EnterpriseSupportItemID      = "c9893624-ea6d-495f-8a8e-38fa4ef75050"

	PrepaidName        = "Prepaid"
	PrepaidEventTypeID = "16cb100d-4e22-41c8-bc06-603729e819ea"
	PrepaidItemID      = "24ab1afb-a18f-4fe5-8ba4-a6c274d89139"

	// Synthetic term unit amounts, as decimal strings like every other
	// term amount.
	EnterpriseSupportAmount = "1"
	PrepaidAmount           = "-1"
)
