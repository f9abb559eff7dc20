package testutil

import (
	"context"
	"time"

	"github.com/meterflow/meterflow/internal/config"
	"github.com/meterflow/meterflow/internal/logger"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the collaborator fakes for testing
type Stores struct {
	CustomerRepo *InMemoryCustomerStore
	CatalogRepo  *InMemoryCatalogStore
	ContractRepo *InMemoryContractStore
	TermUploader *RecordingTermUploader
	EventPusher  *RecordingEventPusher
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = Stores{
		CustomerRepo: NewInMemoryCustomerStore(),
		CatalogRepo:  NewInMemoryCatalogStore(),
		ContractRepo: NewInMemoryContractStore(),
		TermUploader: NewRecordingTermUploader(),
		EventPusher:  NewRecordingEventPusher(),
	}
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.CustomerRepo.Clear()
	s.stores.CatalogRepo.Clear()
	s.stores.ContractRepo.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the collaborator fakes
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
