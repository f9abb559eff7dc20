package contract

// Contract is a platform contract created for one customer per billing run.
type Contract struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
}
