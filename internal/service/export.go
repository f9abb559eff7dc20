package service

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/usage"
	ierr "github.com/meterflow/meterflow/internal/errors"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
)

// ExportService writes the run outputs as CSV files into the configured
// output directory.
type ExportService interface {
	WriteBillingTerms(path string, terms []billingterm.BillingTerm) error
	WriteUsageEvents(path string, events []usage.Event) error
	WritePrepaidReport(path string, totals map[string]decimal.Decimal) error
	WriteConsumptionReport(path string, totals map[ConsumptionKey]decimal.Decimal) error

	// WriteAll writes the four standard output files into dir.
	WriteAll(dir string, result *RunResult) error
}

// billingTermHeader preserves the column order the downstream spreadsheet
// templates expect.
var billingTermHeader = []string{
	"customer_id",
	"tenant_id",
	"contract_id",
	"invoice_date",
	"is_recurring",
	"quantity",
	"due_interval",
	"due_interval_unit",
	"duration",
	"net_payment_terms",
	"is_volume",
	"billing_type",
	"invoiceDateStrategy",
	"event_to_track",
	"name",
	"note",
	"integration_item_id",
	"revenue_start_date",
	"revenue_end_date",
	"invoice_type",
	"revenue_product_id",
	"amount_1",
	"value_1",
	"amount_2",
	"value_2",
	"class_id",
}

var usageEventHeader = []string{
	"customer_id",
	"event_to_track",
	"event_type_name",
	"datetime",
	"value",
	"differentiator",
	"invoice",
	"idempotency_key",
}

type exportService struct {
	ServiceParams
}

func NewExportService(params ServiceParams) ExportService {
	return &exportService{ServiceParams: params}
}

func (s *exportService) WriteBillingTerms(path string, terms []billingterm.BillingTerm) error {
	records := make([][]string, 0, len(terms)+1)
	records = append(records, billingTermHeader)
	for i := range terms {
		term := &terms[i]
		records = append(records, []string{
			term.CustomerID.String(),
			term.TenantID,
			term.ContractID,
			types.FormatDate(term.InvoiceDate),
			boolCell(term.Recurring),
			strconv.Itoa(term.Quantity),
			strconv.Itoa(term.IntervalFrequency),
			string(term.IntervalUnit),
			strconv.Itoa(term.Duration),
			term.NetPaymentTerms,
			boolCell(false),
			string(term.BillingType),
			string(term.Strategy),
			term.EventTypeID.String(),
			term.Name,
			term.Note,
			term.IntegrationItemID.String(),
			types.FormatDate(term.RevenueStartDate),
			types.FormatDate(term.RevenueEndDate),
			string(term.InvoiceType),
			"",
			term.Amount,
			"",
			"",
			"",
			"",
		})
	}
	return s.writeCSV(path, records)
}

func (s *exportService) WriteUsageEvents(path string, events []usage.Event) error {
	records := make([][]string, 0, len(events)+1)
	records = append(records, usageEventHeader)
	for i := range events {
		event := &events[i]
		records = append(records, []string{
			event.CustomerID,
			event.EventTypeID.String(),
			event.EventTypeName,
			types.FormatDate(event.Datetime),
			event.Value.String(),
			event.Differentiator,
			strconv.Itoa(event.Invoice),
			event.IdempotencyKey,
		})
	}
	return s.writeCSV(path, records)
}

func (s *exportService) WritePrepaidReport(path string, totals map[string]decimal.Decimal) error {
	tenants := make([]string, 0, len(totals))
	for tenant := range totals {
		tenants = append(tenants, tenant)
	}
	sort.Strings(tenants)

	records := [][]string{{"tenant_id", "prepaid_total"}}
	for _, tenant := range tenants {
		records = append(records, []string{tenant, totals[tenant].String()})
	}
	return s.writeCSV(path, records)
}

func (s *exportService) WriteConsumptionReport(path string, totals map[ConsumptionKey]decimal.Decimal) error {
	keys := make([]ConsumptionKey, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TenantID != keys[j].TenantID {
			return keys[i].TenantID < keys[j].TenantID
		}
		return keys[i].ContractLabel < keys[j].ContractLabel
	})

	records := [][]string{{"tenant_id", "contract", "consumption_total"}}
	for _, key := range keys {
		records = append(records, []string{key.TenantID, key.ContractLabel, totals[key].String()})
	}
	return s.writeCSV(path, records)
}

func (s *exportService) WriteAll(dir string, result *RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ierr.WithError(err).
			WithHintf("Output directory %s could not be created", dir).
			Mark(ierr.ErrSystem)
	}
	if err := s.WriteBillingTerms(filepath.Join(dir, "billing_terms.csv"), result.Terms); err != nil {
		return err
	}
	if err := s.WriteUsageEvents(filepath.Join(dir, "usage_events.csv"), result.Events); err != nil {
		return err
	}
	if err := s.WritePrepaidReport(filepath.Join(dir, "prepaid_report.csv"), result.PrepaidTotals); err != nil {
		return err
	}
	return s.WriteConsumptionReport(filepath.Join(dir, "consumption_report.csv"), result.ConsumptionTotals)
}

func (s *exportService) writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Output file %s could not be created", path).
			Mark(ierr.ErrSystem)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return ierr.WithError(err).
			WithHintf("Writing %s failed", path).
			Mark(ierr.ErrSystem)
	}
	s.Logger.Infof("wrote %s (%d rows)", path, len(records)-1)
	return nil
}

func boolCell(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}
