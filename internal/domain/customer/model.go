package customer

// Customer represents a customer record in the billing platform registry
type Customer struct {
	// ID is the platform-side customer identifier
	ID string `json:"id"`

	// Name is the display name of the customer
	Name string `json:"name"`

	// CustomFields are the named custom fields attached to the customer.
	// The external tenant identifier lives in one of these.
	CustomFields []CustomField `json:"customFields"`
}

// CustomField is a named value attached to a customer record
type CustomField struct {
	Name  string `json:"customFieldName"`
	Value string `json:"customFieldValue"`
}

// CustomFieldValue returns the value of the first custom field with the
// given name.
func (c *Customer) CustomFieldValue(name string) (string, bool) {
	for _, f := range c.CustomFields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
