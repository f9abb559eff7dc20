package usage

// Raw monthly usage export column names. The export uses fixed headers, so
// matching is exact rather than case-folded.
const (
	ColumnTenantID   = "Tenant ID"
	ColumnTenantName = "Tenant Name"
	ColumnSKUName    = "SKU Name"
	ColumnContract   = "Contract"
	ColumnMeter      = "Meter"
)

// RequiredColumns must all be present in a usage export; Tenant Name and
// Contract are optional.
var RequiredColumns = []string{ColumnTenantID, ColumnSKUName, ColumnMeter}
