package service

import (
	"github.com/meterflow/meterflow/internal/config"
	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/catalog"
	"github.com/meterflow/meterflow/internal/domain/contract"
	"github.com/meterflow/meterflow/internal/domain/customer"
	"github.com/meterflow/meterflow/internal/domain/usage"
	"github.com/meterflow/meterflow/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// External collaborators
	CustomerRepo customer.Repository
	CatalogRepo  catalog.Repository
	ContractRepo contract.Repository
	TermUploader billingterm.BatchUploader
	EventPusher  usage.Pusher
}
