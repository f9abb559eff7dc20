package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/usage"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
)

// ReconcileService joins the raw usage export against the composed billing
// terms and produces the final usage events, including the synthesized
// enterprise support and prepaid events.
type ReconcileService interface {
	Reconcile(rawUsage []usage.Row, terms []billingterm.BillingTerm, esPct map[string]decimal.Decimal, runDate time.Time) ([]usage.Event, []string)
}

type reconcileService struct {
	ServiceParams

	identity *IdentityMap
}

func NewReconcileService(params ServiceParams, identity *IdentityMap) ReconcileService {
	return &reconcileService{ServiceParams: params, identity: identity}
}

// aggKey is the exact aggregation key for raw usage. A tenant may report the
// same SKU under several tenant names (sub-accounts); each name aggregates
// separately and gets its own invoice index.
type aggKey struct {
	customerID string
	skuName    string
	contract   string
	tenantName string
}

func (s *reconcileService) Reconcile(rawUsage []usage.Row, terms []billingterm.BillingTerm, esPct map[string]decimal.Decimal, runDate time.Time) ([]usage.Event, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		w := fmt.Sprintf(format, args...)
		s.Logger.Warnf("reconcile: %s", w)
		warnings = append(warnings, w)
	}

	// Step 1+2: resolve tenants and aggregate meter values. Values sharing
	// an exact key are summed, never overwritten.
	totals := make(map[aggKey]decimal.Decimal)
	var keyOrder []aggKey
	tenantOf := make(map[string]string) // customer id -> tenant id

	// Step 3 inputs: distinct tenant names per tenant in first-seen order.
	invoiceByName := make(map[string]map[string]int)
	nextInvoice := make(map[string]int)

	var unresolved []string
	unresolvedSeen := make(map[string]struct{})

	for _, row := range rawUsage {
		customerID, ok := s.identity.ResolveCustomerID(row.TenantID)
		if !ok {
			if _, dup := unresolvedSeen[row.TenantID]; !dup {
				unresolvedSeen[row.TenantID] = struct{}{}
				unresolved = append(unresolved, row.TenantID)
			}
			continue
		}
		tenantOf[customerID] = row.TenantID

		if invoiceByName[row.TenantID] == nil {
			invoiceByName[row.TenantID] = make(map[string]int)
		}
		if _, seen := invoiceByName[row.TenantID][row.TenantName]; !seen {
			nextInvoice[row.TenantID]++
			invoiceByName[row.TenantID][row.TenantName] = nextInvoice[row.TenantID]
		}

		value, err := types.ParseDecimal(row.Meter)
		if err != nil {
			warn("bad meter value %q for tenant %s SKU %q, using 0", row.Meter, row.TenantID, row.SKUName)
			value = decimal.Zero
		}

		key := aggKey{customerID: customerID, skuName: row.SKUName, contract: row.ContractLabel, tenantName: row.TenantName}
		if _, seen := totals[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		totals[key] = totals[key].Add(value)
	}
	if len(unresolved) > 0 {
		warn("no matching customer id found for tenant id(s): %s", strings.Join(unresolved, ", "))
	}

	// Step 4 inputs: valid triples and term lookups from the composed set.
	type triple struct {
		customerID string
		skuName    string
		contract   string
	}
	termByTriple := make(map[triple]*billingterm.BillingTerm)
	termByName := make(map[string]*billingterm.BillingTerm) // customer id + name
	contractInvoice := make(map[string]int)                 // customer id + contract -> invoice
	for i := range terms {
		term := &terms[i]
		customerID := term.CustomerID.String()
		if customerID == "" {
			continue
		}
		if !term.IsSynthetic() {
			key := triple{customerID: customerID, skuName: term.Name, contract: term.ContractLabel}
			if _, exists := termByTriple[key]; !exists {
				termByTriple[key] = term
			}
		}
		nameKey := customerID + "\x00" + term.Name
		if _, exists := termByName[nameKey]; !exists {
			termByName[nameKey] = term
		}
	}

	// Step 5: emit one event per aggregated key with a matching term. Usage
	// with no term is silently dropped; the customer wasn't billed for it
	// this cycle.
	var events []usage.Event
	eventsByCustomer := make(map[string][]int)
	for _, key := range keyOrder {
		term, ok := termByTriple[triple{customerID: key.customerID, skuName: key.skuName, contract: key.contract}]
		if !ok {
			continue
		}
		invoice := invoiceByName[tenantOf[key.customerID]][key.tenantName]
		events = append(events, usage.Event{
			CustomerID:     key.customerID,
			EventTypeID:    term.EventTypeID,
			EventTypeName:  key.skuName,
			Datetime:       runDate,
			Value:          totals[key],
			Invoice:        invoice,
			IdempotencyKey: types.GenerateEventIdempotencyKey(),
		})
		eventsByCustomer[key.customerID] = append(eventsByCustomer[key.customerID], len(events)-1)

		contractKey := key.customerID + "\x00" + key.contract
		if _, exists := contractInvoice[contractKey]; !exists {
			contractInvoice[contractKey] = invoice
		}
	}

	// Step 6: enterprise support, computed over the customer's regular
	// events only. At most one per customer.
	esEmitted := make(map[string]struct{})
	for i := range terms {
		term := &terms[i]
		if term.Kind != types.TermKindEnterpriseSupport {
			continue
		}
		customerID := term.CustomerID.String()
		if _, done := esEmitted[customerID]; done {
			continue
		}
		indices := eventsByCustomer[customerID]
		if len(indices) == 0 {
			continue
		}
		esEmitted[customerID] = struct{}{}

		pct := esPct[term.TenantID]
		sum := decimal.Zero
		for _, idx := range indices {
			event := events[idx]
			if event.EventTypeName == types.EnterpriseSupportName {
				continue
			}
			sum = sum.Add(event.Value.Mul(s.termAmount(termByName, customerID, event.EventTypeName, warn)))
		}
		value := types.RoundHalfUp(sum.Mul(pct), 2)

		invoice := contractInvoice[customerID+"\x00"+term.ContractLabel]
		if invoice == 0 {
			invoice = 1
		}
		events = append(events, usage.Event{
			CustomerID:     customerID,
			EventTypeID:    term.EventTypeID,
			EventTypeName:  types.EnterpriseSupportName,
			Datetime:       runDate,
			Value:          value,
			Invoice:        invoice,
			IdempotencyKey: types.GenerateEventIdempotencyKey(),
		})
		eventsByCustomer[customerID] = append(eventsByCustomer[customerID], len(events)-1)
	}

	// Step 7: prepaid, strictly after enterprise support so its sum includes
	// the enterprise support contribution. At most one per customer.
	prepaidEmitted := make(map[string]struct{})
	for i := range terms {
		term := &terms[i]
		if term.Kind != types.TermKindPrepaid {
			continue
		}
		customerID := term.CustomerID.String()
		if _, done := prepaidEmitted[customerID]; done {
			continue
		}
		indices := eventsByCustomer[customerID]
		if len(indices) == 0 {
			continue
		}
		prepaidEmitted[customerID] = struct{}{}

		sum := decimal.Zero
		for _, idx := range indices {
			event := events[idx]
			sum = sum.Add(event.Value.Mul(s.termAmount(termByName, customerID, event.EventTypeName, warn)))
		}
		value := types.RoundHalfUp(sum, 2)

		invoice := contractInvoice[customerID+"\x00"+term.ContractLabel]
		if invoice == 0 {
			invoice = 1
		}
		events = append(events, usage.Event{
			CustomerID:     customerID,
			EventTypeID:    term.EventTypeID,
			EventTypeName:  types.PrepaidName,
			Datetime:       runDate,
			Value:          value,
			Invoice:        invoice,
			IdempotencyKey: types.GenerateEventIdempotencyKey(),
		})
		eventsByCustomer[customerID] = append(eventsByCustomer[customerID], len(events)-1)
	}

	s.Logger.Infof("reconciled %d usage events from %d raw rows", len(events), len(rawUsage))
	return events, warnings
}

// termAmount looks up the matching term's amount for a (customer, event type
// name) pair. Missing terms and bad amounts both contribute zero.
func (s *reconcileService) termAmount(termByName map[string]*billingterm.BillingTerm, customerID, eventTypeName string, warn func(string, ...any)) decimal.Decimal {
	term, ok := termByName[customerID+"\x00"+eventTypeName]
	if !ok {
		return decimal.Zero
	}
	amount, err := term.AmountDecimal()
	if err != nil {
		warn("non-numeric amount %q on term %q for customer %s, using 0", term.Amount, term.Name, customerID)
		return decimal.Zero
	}
	return amount
}
