package catalog

// EventType is a platform event type that usage can be rated against.
// Matching against SKU names is case-insensitive.
type EventType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IntegrationItem is a platform integration item (accounting line item).
// Matching against SKU names is case-sensitive.
type IntegrationItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
