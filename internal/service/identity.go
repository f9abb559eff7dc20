package service

import (
	"context"

	"github.com/meterflow/meterflow/internal/domain/customer"
)

// IdentityService builds the per-run snapshot mapping external tenant
// identifiers to platform customer IDs.
type IdentityService interface {
	// Snapshot reads the customer registry once and builds the tenant map.
	Snapshot(ctx context.Context) (*IdentityMap, error)
}

// IdentityMap is an immutable tenant -> customer ID snapshot. Lookups are
// read-only after construction.
type IdentityMap struct {
	byTenant map[string]string
}

// ResolveCustomerID returns the platform customer ID for an external tenant
// identifier.
func (m *IdentityMap) ResolveCustomerID(tenantID string) (string, bool) {
	id, ok := m.byTenant[tenantID]
	return id, ok
}

// Size returns the number of mapped tenants.
func (m *IdentityMap) Size() int {
	return len(m.byTenant)
}

type identityService struct {
	ServiceParams
}

func NewIdentityService(params ServiceParams) IdentityService {
	return &identityService{ServiceParams: params}
}

func (s *identityService) Snapshot(ctx context.Context) (*IdentityMap, error) {
	customers, err := s.CustomerRepo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	primary := s.Config.Resolver.TenantIDField
	fallback := s.Config.Resolver.TenantIDFallbackField

	byTenant := make(map[string]string, len(customers))
	for _, c := range customers {
		tenantID, ok := tenantIDOf(c, primary, fallback)
		if !ok || tenantID == "" {
			// Customers without a tenant field simply never match;
			// this is not an error.
			continue
		}
		if _, exists := byTenant[tenantID]; exists {
			s.Logger.Warnf("duplicate tenant id %q in customer registry, keeping first match", tenantID)
			continue
		}
		byTenant[tenantID] = c.ID
	}

	s.Logger.Infof("identity snapshot built: %d customers, %d mapped tenants", len(customers), len(byTenant))
	return &IdentityMap{byTenant: byTenant}, nil
}

// tenantIDOf searches the customer's custom fields for the primary field
// name, then the fallback field name. First match wins.
func tenantIDOf(c *customer.Customer, primary, fallback string) (string, bool) {
	if v, ok := c.CustomFieldValue(primary); ok {
		return v, true
	}
	if fallback == "" {
		return "", false
	}
	return c.CustomFieldValue(fallback)
}
