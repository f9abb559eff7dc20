package service

import (
	"strings"

	"github.com/meterflow/meterflow/internal/domain/usage"
	ierr "github.com/meterflow/meterflow/internal/errors"
	"github.com/meterflow/meterflow/internal/tabular"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
)

// InputService parses the auxiliary run inputs: the raw monthly usage
// export, the enterprise support percentage file and the prepaid schedule.
type InputService interface {
	// ParseUsage reads the raw monthly usage export. All three required
	// columns must be present; Tenant Name and Contract are optional and
	// default to empty.
	ParseUsage(filename string, content []byte) ([]usage.Row, error)

	// ParseEnterpriseSupport reads the enterprise support file: one row per
	// tenant, percentage in column E. Unparseable percentages are skipped
	// with a warning.
	ParseEnterpriseSupport(filename string, content []byte) (*EnterpriseSupportInput, error)

	// ParsePrepaid reads the prepaid schedule: tenant IDs in column A,
	// possibly serialized as spreadsheet floats.
	ParsePrepaid(filename string, content []byte) (*PrepaidInput, error)
}

// EnterpriseSupportEntry is one tenant's enterprise support percentage,
// normalized to a fraction (0.5 means 50%).
type EnterpriseSupportEntry struct {
	TenantID string
	Pct      decimal.Decimal
}

// EnterpriseSupportInput is the parsed enterprise support file. Entries keep
// file order; PctByTenant keeps the first percentage seen per tenant.
type EnterpriseSupportInput struct {
	Entries     []EnterpriseSupportEntry
	PctByTenant map[string]decimal.Decimal
}

// PrepaidInput is the parsed prepaid schedule: unique tenant IDs in file
// order.
type PrepaidInput struct {
	TenantIDs []string
}

// enterprisePctColumn is the fixed position of the percentage column
// (column E) in the enterprise support file.
const enterprisePctColumn = 4

type inputService struct {
	ServiceParams
}

func NewInputService(params ServiceParams) InputService {
	return &inputService{ServiceParams: params}
}

func (s *inputService) ParseUsage(filename string, content []byte) ([]usage.Row, error) {
	table, err := tabular.ReadTable(filename, content)
	if err != nil {
		return nil, err
	}

	indexes := make(map[string]int, len(usage.RequiredColumns))
	var missing []string
	for _, col := range usage.RequiredColumns {
		idx, ok := table.ColumnIndex(col)
		if !ok {
			missing = append(missing, col)
			continue
		}
		indexes[col] = idx
	}
	if len(missing) > 0 {
		return nil, ierr.NewErrorf("missing required columns in raw monthly usage file: %s", strings.Join(missing, ", ")).
			WithHintf("File %s must contain the columns %s", filename, strings.Join(usage.RequiredColumns, ", ")).
			Mark(ierr.ErrValidation)
	}

	tenantNameIdx, hasTenantName := table.ColumnIndex(usage.ColumnTenantName)
	contractIdx, hasContract := table.ColumnIndex(usage.ColumnContract)

	rows := make([]usage.Row, 0, len(table.Rows))
	for _, raw := range table.Rows {
		row := usage.Row{
			TenantID: table.Cell(raw, indexes[usage.ColumnTenantID]),
			SKUName:  table.Cell(raw, indexes[usage.ColumnSKUName]),
			Meter:    table.Cell(raw, indexes[usage.ColumnMeter]),
		}
		if row.TenantID == "" && row.SKUName == "" && row.Meter == "" {
			continue
		}
		if hasTenantName {
			row.TenantName = table.Cell(raw, tenantNameIdx)
		}
		if hasContract {
			row.ContractLabel = table.Cell(raw, contractIdx)
		}
		rows = append(rows, row)
	}

	s.Logger.Infof("raw usage parsed: %d rows from %s", len(rows), filename)
	return rows, nil
}

func (s *inputService) ParseEnterpriseSupport(filename string, content []byte) (*EnterpriseSupportInput, error) {
	table, err := tabular.ReadTable(filename, content)
	if err != nil {
		return nil, err
	}

	tenantIdx, ok := table.ColumnIndex(usage.ColumnTenantID)
	if !ok {
		return nil, ierr.NewError("missing required column 'Tenant ID' in enterprise support file").
			WithHintf("File %s columns: %s", filename, strings.Join(table.Header, ", ")).
			Mark(ierr.ErrValidation)
	}
	if len(table.Header) <= enterprisePctColumn {
		return nil, ierr.NewErrorf("enterprise support file must have at least %d columns", enterprisePctColumn+1).
			WithHintf("Column E carries the enterprise support percentage; %s has %d column(s)", filename, len(table.Header)).
			Mark(ierr.ErrValidation)
	}

	input := &EnterpriseSupportInput{
		PctByTenant: make(map[string]decimal.Decimal),
	}
	for _, raw := range table.Rows {
		tenantID := table.Cell(raw, tenantIdx)
		if tenantID == "" {
			continue
		}
		rawPct := strings.TrimSuffix(table.Cell(raw, enterprisePctColumn), "%")
		pct, err := types.ParseDecimal(rawPct)
		if err != nil {
			s.Logger.Warnf("could not parse enterprise support percentage for tenant %s: %q", tenantID, rawPct)
			continue
		}
		pct = normalizePct(pct)

		input.Entries = append(input.Entries, EnterpriseSupportEntry{TenantID: tenantID, Pct: pct})
		if _, exists := input.PctByTenant[tenantID]; !exists {
			input.PctByTenant[tenantID] = pct
		}
	}

	s.Logger.Infof("enterprise support parsed: %d tenants from %s", len(input.PctByTenant), filename)
	return input, nil
}

// normalizePct accepts both whole-number percentages ("50") and fractions
// ("0.5"). Values above 1 are divided by 100.
func normalizePct(pct decimal.Decimal) decimal.Decimal {
	if pct.GreaterThan(decimal.NewFromInt(1)) {
		return pct.Div(decimal.NewFromInt(100))
	}
	return pct
}

func (s *inputService) ParsePrepaid(filename string, content []byte) (*PrepaidInput, error) {
	table, err := tabular.ReadTable(filename, content)
	if err != nil {
		return nil, err
	}
	if len(table.Header) == 0 {
		return nil, ierr.NewError("prepaid file must have at least 1 column").
			WithHintf("Column A of %s carries the tenant id", filename).
			Mark(ierr.ErrValidation)
	}

	input := &PrepaidInput{}
	seen := make(map[string]struct{})
	for _, raw := range table.Rows {
		cell := table.Cell(raw, 0)
		if cell == "" {
			continue
		}
		tenantID, ok := normalizeTenantID(cell)
		if !ok {
			s.Logger.Warnf("could not parse tenant id in prepaid file: %q", cell)
			continue
		}
		if _, dup := seen[tenantID]; dup {
			continue
		}
		seen[tenantID] = struct{}{}
		input.TenantIDs = append(input.TenantIDs, tenantID)
	}

	s.Logger.Infof("prepaid schedule parsed: %d tenants from %s", len(input.TenantIDs), filename)
	return input, nil
}

// normalizeTenantID collapses spreadsheet float serializations ("40.0") back
// to integer tenant IDs ("40").
func normalizeTenantID(cell string) (string, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(cell))
	if err != nil {
		return "", false
	}
	return d.Truncate(0).String(), true
}
