package service

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/meterflow/meterflow/internal/domain/pricebook"
	ierr "github.com/meterflow/meterflow/internal/errors"
	"github.com/meterflow/meterflow/internal/tabular"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/samber/lo"
)

// PriceBookService ingests a price book archive and resolves the ingested
// rows against the identity and catalog snapshots.
type PriceBookService interface {
	// IngestArchive extracts and parses every rate table in the archive.
	// Per-file failures accumulate in the result's error list; only an
	// unreadable archive is a hard error.
	IngestArchive(zipContent []byte) (*pricebook.IngestResult, error)

	// ResolveRows fills the placeholder identity columns on every row
	// using the two snapshots. Misses degrade: the field stays unresolved
	// and a warning is returned.
	ResolveRows(rows []pricebook.RateRow, ids *IdentityMap, cats *CatalogMap) ([]pricebook.RateRow, []string)
}

// filenameGrammar extracts a tenant ID from one filename form.
type filenameGrammar struct {
	name    string
	pattern *regexp.Regexp
}

// Ordered alternatives: the newer bare-prefix form first, then the legacy
// price_by_sku_ form.
var filenameGrammars = []filenameGrammar{
	{name: "prefix", pattern: regexp.MustCompile(`^(\d+)[_-]`)},
	{name: "legacy", pattern: regexp.MustCompile(`^price_by_sku_(\d+)_`)},
}

// contractLabelPattern matches a contract token immediately before the
// file extension, e.g. "40_Koch_SFDC#00000190.xlsx".
var contractLabelPattern = regexp.MustCompile(`(SFDC#\d+)\.[^.]+$`)

type priceBookService struct {
	ServiceParams
}

func NewPriceBookService(params ServiceParams) PriceBookService {
	return &priceBookService{ServiceParams: params}
}

func (s *priceBookService) IngestArchive(zipContent []byte) (*pricebook.IngestResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(zipContent), int64(len(zipContent)))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The price book archive could not be opened as a ZIP file").
			Mark(ierr.ErrValidation)
	}

	result := &pricebook.IngestResult{}
	for _, entry := range reader.File {
		if skipArchiveEntry(entry) {
			continue
		}
		if !tabular.SupportedExtension(entry.Name) {
			continue
		}

		file, ingestErr := s.ingestEntry(entry)
		if ingestErr != "" {
			s.Logger.Warnf("price book: %s", ingestErr)
			result.Errors = append(result.Errors, ingestErr)
			continue
		}
		result.Files = append(result.Files, file)
		result.Combined = append(result.Combined, file.Rows...)
	}

	s.Logger.Infof("price book ingested: %d files, %d rows, %d errors",
		len(result.Files), len(result.Combined), len(result.Errors))
	return result, nil
}

// skipArchiveEntry filters out directories and OS metadata that archivers
// sneak into ZIP files.
func skipArchiveEntry(entry *zip.File) bool {
	if entry.FileInfo().IsDir() {
		return true
	}
	if strings.HasPrefix(entry.Name, "__MACOSX/") {
		return true
	}
	base := path.Base(entry.Name)
	return strings.HasPrefix(base, ".")
}

// ingestEntry parses one archive entry into a TenantFile. A non-empty
// return string is the descriptive error for the result's error list.
func (s *priceBookService) ingestEntry(entry *zip.File) (*pricebook.TenantFile, string) {
	base := path.Base(entry.Name)

	tenantID, ok := parseTenantID(base)
	if !ok {
		return nil, fmt.Sprintf("could not extract tenant id from filename: %s", entry.Name)
	}
	contractLabel := parseContractLabel(base)

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Sprintf("error reading %s: %v", entry.Name, err)
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Sprintf("error reading %s: %v", entry.Name, err)
	}

	table, err := tabular.ReadTable(base, content)
	if err != nil {
		return nil, fmt.Sprintf("error reading %s: %v", entry.Name, err)
	}

	rows, missing := parseRateRows(table, tenantID, contractLabel)
	if len(missing) > 0 {
		return nil, fmt.Sprintf("error in %s: missing required columns: %s", entry.Name, strings.Join(missing, ", "))
	}

	s.warnFormulaErrors(entry.Name, rows)

	return &pricebook.TenantFile{
		TenantID:      tenantID,
		ContractLabel: contractLabel,
		Filename:      entry.Name,
		Rows:          rows,
	}, ""
}

// parseTenantID tries each filename grammar in order.
func parseTenantID(base string) (string, bool) {
	for _, g := range filenameGrammars {
		if m := g.pattern.FindStringSubmatch(base); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func parseContractLabel(base string) string {
	if m := contractLabelPattern.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return ""
}

// parseRateRows maps the table onto the fixed price book schema. The whole
// file is rejected (missing list non-empty) when any required column is
// absent; matching is case-insensitive and the payment terms column accepts
// several aliases.
func parseRateRows(table *tabular.Table, tenantID, contractLabel string) ([]pricebook.RateRow, []string) {
	indexes := make(map[string]int, len(pricebook.RequiredColumns))
	var missing []string

	for _, col := range pricebook.RequiredColumns {
		if col == pricebook.ColumnNetTerms {
			idx, ok := findNetTermsColumn(table)
			if !ok {
				missing = append(missing, col)
				continue
			}
			indexes[col] = idx
			continue
		}
		idx, ok := table.ColumnIndexFold(col)
		if !ok {
			missing = append(missing, col)
			continue
		}
		indexes[col] = idx
	}
	if len(missing) > 0 {
		return nil, missing
	}

	rows := make([]pricebook.RateRow, 0, len(table.Rows))
	for _, raw := range table.Rows {
		rows = append(rows, pricebook.RateRow{
			Category:        table.Cell(raw, indexes[pricebook.ColumnCategory]),
			SKUName:         table.Cell(raw, indexes[pricebook.ColumnSKUName]),
			SKUDescription:  table.Cell(raw, indexes[pricebook.ColumnSKUDescription]),
			UnitOfMeasure:   table.Cell(raw, indexes[pricebook.ColumnUnitOfMeasure]),
			OnDemandRate:    table.Cell(raw, indexes[pricebook.ColumnOnDemandRate]),
			Discount:        table.Cell(raw, indexes[pricebook.ColumnDiscount]),
			NetRate:         table.Cell(raw, indexes[pricebook.ColumnNetRate]),
			NetPaymentTerms: table.Cell(raw, indexes[pricebook.ColumnNetTerms]),
			TenantID:        tenantID,
			ContractLabel:   contractLabel,
		})
	}
	return rows, nil
}

func findNetTermsColumn(table *tabular.Table) (int, bool) {
	for _, alias := range pricebook.NetTermsAliases {
		if idx, ok := table.ColumnIndexFold(alias); ok {
			return idx, true
		}
	}
	return 0, false
}

// warnFormulaErrors logs spreadsheet formula-error sentinels found in the
// NET RATE column. The values pass through unchanged; downstream numeric
// parsing degrades them to zero.
func (s *priceBookService) warnFormulaErrors(filename string, rows []pricebook.RateRow) {
	var affected []string
	seen := make(map[string]struct{})
	count := 0
	for _, row := range rows {
		if !hasFormulaError(row.NetRate) {
			continue
		}
		count++
		if _, ok := seen[row.SKUName]; ok {
			continue
		}
		seen[row.SKUName] = struct{}{}
		affected = append(affected, row.SKUName)
	}
	if count == 0 {
		return
	}

	s.Logger.Warnf("found %d row(s) with spreadsheet formula errors in %s column in %s",
		count, pricebook.ColumnNetRate, filename)
	shown := affected
	if len(affected) > unmatchedWarningCap {
		shown = affected[:unmatchedWarningCap]
		s.Logger.Warnf("affected SKU names: %s (and %d more)",
			strings.Join(shown, ", "), len(affected)-unmatchedWarningCap)
		return
	}
	s.Logger.Warnf("affected SKU names: %s", strings.Join(shown, ", "))
}

func hasFormulaError(value string) bool {
	upper := strings.ToUpper(value)
	return lo.SomeBy(pricebook.FormulaErrorSentinels, func(sentinel string) bool {
		return strings.Contains(upper, sentinel)
	})
}

func (s *priceBookService) ResolveRows(rows []pricebook.RateRow, ids *IdentityMap, cats *CatalogMap) ([]pricebook.RateRow, []string) {
	var warnings []string

	unresolvedTenants := make(map[string]struct{})
	var unmatchedEvents, unmatchedItems []string
	seenEvent := make(map[string]struct{})
	seenItem := make(map[string]struct{})

	resolved := make([]pricebook.RateRow, len(rows))
	for i, row := range rows {
		if customerID, ok := ids.ResolveCustomerID(row.TenantID); ok {
			row.CustomerID = types.NewResolvedID(customerID)
		} else {
			unresolvedTenants[row.TenantID] = struct{}{}
		}

		if eventTypeID, ok := cats.ResolveEventTypeID(row.SKUName); ok {
			row.EventTypeID = types.NewResolvedID(eventTypeID)
		} else if row.SKUName != "" {
			if _, seen := seenEvent[row.SKUName]; !seen {
				seenEvent[row.SKUName] = struct{}{}
				unmatchedEvents = append(unmatchedEvents, row.SKUName)
			}
		}

		if itemID, ok := cats.ResolveItemID(row.SKUName); ok {
			row.IntegrationItemID = types.NewResolvedID(itemID)
		} else if row.SKUName != "" {
			if _, seen := seenItem[row.SKUName]; !seen {
				seenItem[row.SKUName] = struct{}{}
				unmatchedItems = append(unmatchedItems, row.SKUName)
			}
		}

		resolved[i] = row
	}

	if len(unresolvedTenants) > 0 {
		tenants := sortedStrings(lo.Keys(unresolvedTenants))
		warnings = append(warnings, fmt.Sprintf("no matching customer id found for tenant id(s): %s",
			strings.Join(tenants, ", ")))
	}
	if w := formatUnmatched("event type id", unmatchedEvents); w != "" {
		warnings = append(warnings, w)
	}
	if w := formatUnmatched("integration item id", unmatchedItems); w != "" {
		warnings = append(warnings, w)
	}

	for _, w := range warnings {
		s.Logger.Warnf("price book: %s", w)
	}
	return resolved, warnings
}
