package service

import (
	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/usage"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
)

// ConsumptionKey groups consumption totals by tenant and contract.
type ConsumptionKey struct {
	TenantID      string
	ContractLabel string
}

// ReportService reduces the reconciled usage events into the two operator
// report maps. Pure reductions, no I/O.
type ReportService interface {
	// PrepaidReport sums prepaid event values per tenant.
	PrepaidReport(events []usage.Event, terms []billingterm.BillingTerm) map[string]decimal.Decimal

	// ConsumptionReport sums value × matching term amount for every
	// non-prepaid event, grouped by (tenant, contract). Enterprise support
	// is included; only prepaid is excluded.
	ConsumptionReport(events []usage.Event, terms []billingterm.BillingTerm) map[ConsumptionKey]decimal.Decimal
}

type reportService struct {
	ServiceParams
}

func NewReportService(params ServiceParams) ReportService {
	return &reportService{ServiceParams: params}
}

func (s *reportService) PrepaidReport(events []usage.Event, terms []billingterm.BillingTerm) map[string]decimal.Decimal {
	tenantOf := customerToTenant(terms)

	report := make(map[string]decimal.Decimal)
	for _, event := range events {
		if event.EventTypeName != types.PrepaidName {
			continue
		}
		tenantID, ok := tenantOf[event.CustomerID]
		if !ok {
			continue
		}
		report[tenantID] = report[tenantID].Add(event.Value)
	}
	return report
}

func (s *reportService) ConsumptionReport(events []usage.Event, terms []billingterm.BillingTerm) map[ConsumptionKey]decimal.Decimal {
	tenantOf := customerToTenant(terms)
	contractOf := make(map[string]string) // customer id + name -> contract label
	amountOf := make(map[string]decimal.Decimal)
	for i := range terms {
		term := &terms[i]
		customerID := term.CustomerID.String()
		if customerID == "" {
			continue
		}
		key := customerID + "\x00" + term.Name
		if _, exists := amountOf[key]; exists {
			continue
		}
		contractOf[key] = term.ContractLabel
		amount, err := term.AmountDecimal()
		if err != nil {
			s.Logger.Warnf("consumption report: non-numeric amount %q on term %q, using 0", term.Amount, term.Name)
			amount = decimal.Zero
		}
		amountOf[key] = amount
	}

	report := make(map[ConsumptionKey]decimal.Decimal)
	for _, event := range events {
		if event.EventTypeName == types.PrepaidName {
			continue
		}
		tenantID, ok := tenantOf[event.CustomerID]
		if !ok {
			continue
		}
		termKey := event.CustomerID + "\x00" + event.EventTypeName
		key := ConsumptionKey{TenantID: tenantID, ContractLabel: contractOf[termKey]}
		report[key] = report[key].Add(event.Value.Mul(amountOf[termKey]))
	}
	return report
}

// customerToTenant builds the reverse identity map from the composed term
// set: first term wins per customer.
func customerToTenant(terms []billingterm.BillingTerm) map[string]string {
	out := make(map[string]string)
	for i := range terms {
		customerID := terms[i].CustomerID.String()
		if customerID == "" {
			continue
		}
		if _, exists := out[customerID]; !exists {
			out[customerID] = terms[i].TenantID
		}
	}
	return out
}
