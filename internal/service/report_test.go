package service

import (
	"testing"

	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/usage"
	"github.com/meterflow/meterflow/internal/testutil"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReportServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ReportService
}

func TestReportService(t *testing.T) {
	suite.Run(t, new(ReportServiceSuite))
}

func (s *ReportServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewReportService(ServiceParams{
		Logger: s.GetLogger(),
		Config: s.GetConfig(),
	})
}

func (s *ReportServiceSuite) terms() []billingterm.BillingTerm {
	return []billingterm.BillingTerm{
		regularTerm("cust-1", "40", "Widget", "SFDC#1", "2"),
		regularTerm("cust-1", "40", "Gadget", "SFDC#1", "1"),
		{
			CustomerID:    types.NewResolvedID("cust-1"),
			TenantID:      "40",
			ContractLabel: "SFDC#1",
			Name:          types.EnterpriseSupportName,
			Amount:        types.EnterpriseSupportAmount,
			Kind:          types.TermKindEnterpriseSupport,
		},
		{
			CustomerID:    types.NewResolvedID("cust-1"),
			TenantID:      "40",
			ContractLabel: "SFDC#1",
			Name:          types.PrepaidName,
			Amount:        types.PrepaidAmount,
			Kind:          types.TermKindPrepaid,
		},
	}
}

func (s *ReportServiceSuite) events() []usage.Event {
	return []usage.Event{
		{CustomerID: "cust-1", EventTypeName: "Widget", Value: decimal.NewFromInt(100)},
		{CustomerID: "cust-1", EventTypeName: "Gadget", Value: decimal.NewFromInt(50)},
		{CustomerID: "cust-1", EventTypeName: types.EnterpriseSupportName, Value: decimal.NewFromInt(25)},
		{CustomerID: "cust-1", EventTypeName: types.PrepaidName, Value: decimal.NewFromInt(275)},
	}
}

func (s *ReportServiceSuite) TestPrepaidReport() {
	report := s.service.PrepaidReport(s.events(), s.terms())
	s.Require().Len(report, 1)
	s.True(report["40"].Equal(decimal.NewFromInt(275)))
}

func (s *ReportServiceSuite) TestConsumptionReportExcludesOnlyPrepaid() {
	report := s.service.ConsumptionReport(s.events(), s.terms())
	s.Require().Len(report, 1)

	key := ConsumptionKey{TenantID: "40", ContractLabel: "SFDC#1"}
	// Widget 100*2 + Gadget 50*1 + Enterprise Support 25*1; prepaid excluded.
	s.True(report[key].Equal(decimal.NewFromInt(275)), "got %s", report[key])
}

func (s *ReportServiceSuite) TestReportsIgnoreCustomersOutsideTermSet() {
	events := []usage.Event{
		{CustomerID: "cust-unknown", EventTypeName: types.PrepaidName, Value: decimal.NewFromInt(9)},
	}
	s.Empty(s.service.PrepaidReport(events, s.terms()))
	s.Empty(s.service.ConsumptionReport(events, s.terms()))
}
