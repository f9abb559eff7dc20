package pricebook

// Column names of the price book schema. Matching against file headers is
// case-insensitive.
const (
	ColumnCategory       = "Category"
	ColumnSKUName        = "SKU Name"
	ColumnSKUDescription = "SKU Description"
	ColumnUnitOfMeasure  = "Unit of Measure"
	ColumnOnDemandRate   = "On-Demand Rate"
	ColumnDiscount       = "Disc"
	ColumnNetRate        = "NET RATE"
	ColumnNetTerms       = "Net Terms"
)

// RequiredColumns is the fixed required-column set; a file missing any of
// these is rejected entirely.
var RequiredColumns = []string{
	ColumnCategory,
	ColumnSKUName,
	ColumnSKUDescription,
	ColumnUnitOfMeasure,
	ColumnOnDemandRate,
	ColumnDiscount,
	ColumnNetRate,
	ColumnNetTerms,
}

// NetTermsAliases are the accepted spellings of the payment terms column.
var NetTermsAliases = []string{
	ColumnNetTerms,
	"Net Payment Terms",
	"Payment Terms",
}

// FormulaErrorSentinels are spreadsheet formula-error markers detected in
// the NET RATE column. They are warned about and passed through unchanged.
var FormulaErrorSentinels = []string{"#REF", "#N/A", "#VALUE", "#DIV/0"}
