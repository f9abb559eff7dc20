package service

import (
	"time"

	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/pricebook"
	"github.com/meterflow/meterflow/internal/domain/usage"
	"github.com/meterflow/meterflow/internal/types"
)

// BillingTermService composes canonical billing terms from resolved rate
// rows and appends the synthetic enterprise support and prepaid terms.
type BillingTermService interface {
	// Format projects resolved rate rows into billing terms, filling the
	// constant schedule defaults. Pure, no I/O.
	Format(rows []pricebook.RateRow, runDate time.Time) []billingterm.BillingTerm

	// FilterToUpload keeps only terms whose exact (tenant, SKU, contract)
	// triple also appears in the raw usage export.
	FilterToUpload(terms []billingterm.BillingTerm, rawUsage []usage.Row) []billingterm.BillingTerm

	// AddEnterpriseSupport appends one synthetic enterprise support term per
	// tenant in the percentage file that resolves against the existing term
	// set. Unresolved tenants are skipped with a warning.
	AddEnterpriseSupport(terms []billingterm.BillingTerm, es *EnterpriseSupportInput, runDate time.Time) []billingterm.BillingTerm

	// AddPrepaid appends one synthetic prepaid term per tenant in the
	// prepaid schedule that resolves against the existing term set.
	AddPrepaid(terms []billingterm.BillingTerm, prepaid *PrepaidInput, runDate time.Time) []billingterm.BillingTerm
}

type billingTermService struct {
	ServiceParams
}

func NewBillingTermService(params ServiceParams) BillingTermService {
	return &billingTermService{ServiceParams: params}
}

func (s *billingTermService) Format(rows []pricebook.RateRow, runDate time.Time) []billingterm.BillingTerm {
	terms := make([]billingterm.BillingTerm, 0, len(rows))
	for _, row := range rows {
		term := newTermDefaults(runDate)
		// Regular usage charges recur monthly; the enterprise support
		// surcharge is the only one-time term.
		term.Recurring = true
		term.CustomerID = row.CustomerID
		term.TenantID = row.TenantID
		term.ContractLabel = row.ContractLabel
		term.Name = row.SKUName
		term.Amount = row.NetRate
		term.EventTypeID = row.EventTypeID
		term.IntegrationItemID = row.IntegrationItemID
		term.NetPaymentTerms = row.NetPaymentTerms
		term.Kind = types.TermKindRegular
		terms = append(terms, term)
	}
	s.Logger.Infof("composed %d billing terms", len(terms))
	return terms
}

// newTermDefaults fills the constant billing-schedule defaults shared by
// every term, regular and synthetic alike.
func newTermDefaults(runDate time.Time) billingterm.BillingTerm {
	return billingterm.BillingTerm{
		Recurring:         false,
		Quantity:          1,
		IntervalUnit:      types.IntervalUnitMonth,
		IntervalFrequency: 1,
		Duration:          1,
		BillingType:       types.BillingTypeUnitPrice,
		Strategy:          types.InvoiceDateStrategyArrears,
		InvoiceType:       types.InvoiceTypeInvoice,
		InvoiceDate:       runDate,
		RevenueStartDate:  runDate,
		RevenueEndDate:    types.RevenueEndDate(runDate),
	}
}

// usageTriple is the exact (tenant, SKU, contract) key used to restrict the
// term set to what was actually used this period.
type usageTriple struct {
	tenantID string
	skuName  string
	contract string
}

func (s *billingTermService) FilterToUpload(terms []billingterm.BillingTerm, rawUsage []usage.Row) []billingterm.BillingTerm {
	used := make(map[usageTriple]struct{}, len(rawUsage))
	for _, row := range rawUsage {
		used[usageTriple{tenantID: row.TenantID, skuName: row.SKUName, contract: row.ContractLabel}] = struct{}{}
	}

	kept := make([]billingterm.BillingTerm, 0, len(terms))
	for _, term := range terms {
		key := usageTriple{tenantID: term.TenantID, skuName: term.Name, contract: term.ContractLabel}
		if _, ok := used[key]; ok {
			kept = append(kept, term)
		}
	}
	s.Logger.Infof("filtered billing terms to usage: kept %d of %d", len(kept), len(terms))
	return kept
}

func (s *billingTermService) AddEnterpriseSupport(terms []billingterm.BillingTerm, es *EnterpriseSupportInput, runDate time.Time) []billingterm.BillingTerm {
	if es == nil || len(es.Entries) == 0 {
		return terms
	}

	out := terms
	seen := make(map[string]struct{})
	for _, entry := range es.Entries {
		if _, dup := seen[entry.TenantID]; dup {
			continue
		}
		seen[entry.TenantID] = struct{}{}

		match, ok := findTermByTenant(terms, entry.TenantID)
		if !ok {
			s.Logger.Warnf("enterprise support: tenant %s has no billing terms this run, skipping", entry.TenantID)
			continue
		}

		term := newTermDefaults(runDate)
		term.CustomerID = match.CustomerID
		term.TenantID = entry.TenantID
		term.ContractLabel = match.ContractLabel
		term.Name = types.EnterpriseSupportName
		term.Amount = types.EnterpriseSupportAmount
		term.EventTypeID = types.NewResolvedID(types.EnterpriseSupportEventTypeID)
		term.IntegrationItemID = types.NewResolvedID(types.EnterpriseSupportItemID)
		term.NetPaymentTerms = match.NetPaymentTerms
		term.Kind = types.TermKindEnterpriseSupport
		out = append(out, term)
	}

	s.Logger.Infof("added %d enterprise support terms", len(out)-len(terms))
	return out
}

func (s *billingTermService) AddPrepaid(terms []billingterm.BillingTerm, prepaid *PrepaidInput, runDate time.Time) []billingterm.BillingTerm {
	if prepaid == nil || len(prepaid.TenantIDs) == 0 {
		return terms
	}

	out := terms
	for _, tenantID := range prepaid.TenantIDs {
		match, ok := findTermByTenant(terms, tenantID)
		if !ok {
			s.Logger.Warnf("prepaid: tenant %s has no billing terms this run, skipping", tenantID)
			continue
		}

		term := newTermDefaults(runDate)
		// The prepaid offset recurs monthly like the charges it offsets.
		term.Recurring = true
		term.CustomerID = match.CustomerID
		term.TenantID = tenantID
		term.ContractLabel = match.ContractLabel
		term.Name = types.PrepaidName
		term.Amount = types.PrepaidAmount
		term.EventTypeID = types.NewResolvedID(types.PrepaidEventTypeID)
		term.IntegrationItemID = types.NewResolvedID(types.PrepaidItemID)
		term.NetPaymentTerms = match.NetPaymentTerms
		term.Kind = types.TermKindPrepaid
		out = append(out, term)
	}

	s.Logger.Infof("added %d prepaid terms", len(out)-len(terms))
	return out
}

// findTermByTenant resolves a tenant against the already-composed term set.
// Synthetic terms only apply to customers who have at least one regular term
// this run, so resolution deliberately ignores the identity snapshot.
func findTermByTenant(terms []billingterm.BillingTerm, tenantID string) (*billingterm.BillingTerm, bool) {
	for i := range terms {
		if terms[i].TenantID == tenantID {
			return &terms[i], true
		}
	}
	return nil, false
}
