package billingterm

import (
	"time"

	ierr "github.com/meterflow/meterflow/internal/errors"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
)

// BillingTerm is the canonical normalized record describing one recurring or
// one-time charge, ready for platform upload once its contract ID is set.
type BillingTerm struct {
	// CustomerID is the resolved platform customer; may be unresolved when
	// the identity resolver had no match for the tenant.
	CustomerID types.ResolvedID

	// TenantID is the external tenant identifier the row came from.
	TenantID string

	// ContractLabel is the contract token extracted from the source
	// filename or usage export (e.g. "SFDC#00000190"); may be empty.
	ContractLabel string

	// ContractID is the platform contract, populated by the contract
	// creation step after composition.
	ContractID string

	// Name is the SKU name; it doubles as the event type name for usage
	// matching.
	Name string

	// Amount is the unit rate as a decimal string. It is kept as text
	// until arithmetic needs it so formula-error sentinels survive to the
	// operator unchanged.
	Amount string

	EventTypeID       types.ResolvedID
	IntegrationItemID types.ResolvedID

	Recurring         bool
	Quantity          int
	IntervalUnit      types.IntervalUnit
	IntervalFrequency int
	Duration          int
	NetPaymentTerms   string
	BillingType       types.BillingType
	Strategy          types.InvoiceDateStrategy
	InvoiceType       types.InvoiceType

	// InvoiceDate and the revenue window all derive from the billing run
	// date; RevenueEndDate is start + 30 calendar days.
	InvoiceDate      time.Time
	RevenueStartDate time.Time
	RevenueEndDate   time.Time

	Note string

	// Kind records the term's provenance: projected from the price book or
	// synthesized for enterprise support / prepaid.
	Kind types.TermKind
}

// AmountDecimal parses the amount into an exact decimal. Formula-error
// sentinels and other junk fail here; callers degrade that term's
// contribution to zero.
func (t *BillingTerm) AmountDecimal() (decimal.Decimal, error) {
	d, err := types.ParseDecimal(t.Amount)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHintf("Billing term %q for tenant %s has a non-numeric amount", t.Name, t.TenantID).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}

// IsSynthetic reports whether the term was synthesized rather than ingested
// from a price book.
func (t *BillingTerm) IsSynthetic() bool {
	return t.Kind.IsSynthetic()
}
