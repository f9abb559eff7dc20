package service

import (
	"testing"

	"github.com/meterflow/meterflow/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InputServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InputService
}

func TestInputService(t *testing.T) {
	suite.Run(t, new(InputServiceSuite))
}

func (s *InputServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInputService(ServiceParams{
		Logger: s.GetLogger(),
		Config: s.GetConfig(),
	})
}

func (s *InputServiceSuite) TestParseUsage() {
	content := []byte("Tenant ID,Tenant Name,SKU Name,Contract,Meter\n" +
		"40,Koch East,Widget,SFDC#1,5\n" +
		"40,Koch West,Widget,SFDC#1,3\n")

	rows, err := s.service.ParseUsage("usage.csv", content)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("40", rows[0].TenantID)
	s.Equal("Koch East", rows[0].TenantName)
	s.Equal("Widget", rows[0].SKUName)
	s.Equal("SFDC#1", rows[0].ContractLabel)
	s.Equal("5", rows[0].Meter)
}

func (s *InputServiceSuite) TestParseUsageOptionalColumnsAbsent() {
	content := []byte("Tenant ID,SKU Name,Meter\n40,Widget,5\n")

	rows, err := s.service.ParseUsage("usage.csv", content)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("", rows[0].TenantName)
	s.Equal("", rows[0].ContractLabel)
}

func (s *InputServiceSuite) TestParseUsageMissingRequiredColumn() {
	content := []byte("Tenant ID,SKU Name\n40,Widget\n")

	_, err := s.service.ParseUsage("usage.csv", content)
	s.Require().Error(err)
	s.Contains(err.Error(), "Meter")
}

func (s *InputServiceSuite) TestParseEnterpriseSupport() {
	content := []byte("Tenant ID,Name,Region,Plan,Support %\n" +
		"40,Koch,us,gold,10%\n" +
		"51,Acme,eu,gold,0.25\n" +
		"52,Globex,eu,gold,50\n" +
		"53,Initech,us,gold,n/a\n")

	input, err := s.service.ParseEnterpriseSupport("es.csv", content)
	s.Require().NoError(err)

	// Whole-number percentages normalize to fractions; junk is skipped.
	s.Require().Len(input.Entries, 3)
	s.True(input.PctByTenant["40"].Equal(decimal.RequireFromString("0.1")))
	s.True(input.PctByTenant["51"].Equal(decimal.RequireFromString("0.25")))
	s.True(input.PctByTenant["52"].Equal(decimal.RequireFromString("0.5")))
	s.NotContains(input.PctByTenant, "53")
}

func (s *InputServiceSuite) TestParseEnterpriseSupportRequiresFiveColumns() {
	_, err := s.service.ParseEnterpriseSupport("es.csv", []byte("Tenant ID,Support %\n40,10\n"))
	s.Error(err)
}

func (s *InputServiceSuite) TestParseEnterpriseSupportRequiresTenantColumn() {
	_, err := s.service.ParseEnterpriseSupport("es.csv", []byte("A,B,C,D,E\n1,2,3,4,5\n"))
	s.Error(err)
}

func (s *InputServiceSuite) TestParsePrepaidNormalizesFloatTenantIDs() {
	content := []byte("Tenant\n40.0\n51\n40\nnot-a-number\n\n")

	input, err := s.service.ParsePrepaid("prepaid.csv", content)
	s.Require().NoError(err)
	// "40.0" and "40" collapse to one tenant; junk and blanks are skipped.
	s.Equal([]string{"40", "51"}, input.TenantIDs)
}
