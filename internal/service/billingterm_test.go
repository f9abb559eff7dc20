package service

import (
	"testing"
	"time"

	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/pricebook"
	"github.com/meterflow/meterflow/internal/domain/usage"
	"github.com/meterflow/meterflow/internal/testutil"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingTermServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingTermService
	runDate time.Time
}

func TestBillingTermService(t *testing.T) {
	suite.Run(t, new(BillingTermServiceSuite))
}

func (s *BillingTermServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingTermService(ServiceParams{
		Logger: s.GetLogger(),
		Config: s.GetConfig(),
	})
	var err error
	s.runDate, err = types.ParseRunDate("2024-01-15")
	s.Require().NoError(err)
}

func (s *BillingTermServiceSuite) TestFormatFillsConstants() {
	rows := []pricebook.RateRow{{
		TenantID:        "40",
		ContractLabel:   "SFDC#1",
		SKUName:         "Widget",
		NetRate:         "10.00",
		NetPaymentTerms: "Net 30",
		CustomerID:      types.NewResolvedID("cust-1"),
		EventTypeID:     types.NewResolvedID("evt-1"),
	}}

	terms := s.service.Format(rows, s.runDate)
	s.Require().Len(terms, 1)

	term := terms[0]
	s.Equal("cust-1", term.CustomerID.String())
	s.Equal("Widget", term.Name)
	s.Equal("10.00", term.Amount)
	s.Equal(types.TermKindRegular, term.Kind)
	s.True(term.Recurring)
	s.Equal(1, term.Quantity)
	s.Equal(types.IntervalUnitMonth, term.IntervalUnit)
	s.Equal(1, term.IntervalFrequency)
	s.Equal(1, term.Duration)
	s.Equal(types.InvoiceDateStrategyArrears, term.Strategy)
	s.Equal(types.InvoiceTypeInvoice, term.InvoiceType)
	s.Equal(types.BillingTypeUnitPrice, term.BillingType)
	s.Equal("2024-01-15", types.FormatDate(term.InvoiceDate))
	s.Equal("2024-01-15", types.FormatDate(term.RevenueStartDate))
	// Calendar-exact 30 day window.
	s.Equal("2024-02-14", types.FormatDate(term.RevenueEndDate))
}

func (s *BillingTermServiceSuite) TestFilterToUploadExactTriple() {
	terms := s.service.Format([]pricebook.RateRow{
		{TenantID: "40", ContractLabel: "SFDC#1", SKUName: "Widget"},
		{TenantID: "40", ContractLabel: "SFDC#1", SKUName: "Gadget"},
		{TenantID: "40", ContractLabel: "SFDC#2", SKUName: "Widget"},
		{TenantID: "51", ContractLabel: "SFDC#1", SKUName: "Widget"},
	}, s.runDate)

	rawUsage := []usage.Row{
		{TenantID: "40", SKUName: "Widget", ContractLabel: "SFDC#1"},
	}

	kept := s.service.FilterToUpload(terms, rawUsage)
	s.Require().Len(kept, 1)
	s.Equal("40", kept[0].TenantID)
	s.Equal("Widget", kept[0].Name)
	s.Equal("SFDC#1", kept[0].ContractLabel)
}

func (s *BillingTermServiceSuite) TestFilterToUploadContractMismatchExcludes() {
	terms := s.service.Format([]pricebook.RateRow{
		{TenantID: "40", ContractLabel: "SFDC#1", SKUName: "Widget"},
	}, s.runDate)

	// Usage without the contract label does not match a labeled term.
	kept := s.service.FilterToUpload(terms, []usage.Row{
		{TenantID: "40", SKUName: "Widget"},
	})
	s.Empty(kept)
}

func (s *BillingTermServiceSuite) TestAddEnterpriseSupport() {
	terms := s.service.Format([]pricebook.RateRow{{
		TenantID:        "40",
		ContractLabel:   "SFDC#1",
		SKUName:         "Widget",
		NetRate:         "10.00",
		NetPaymentTerms: "Net 30",
		CustomerID:      types.NewResolvedID("cust-1"),
	}}, s.runDate)

	es := &EnterpriseSupportInput{
		Entries: []EnterpriseSupportEntry{
			{TenantID: "40", Pct: decimal.RequireFromString("0.1")},
			{TenantID: "99", Pct: decimal.RequireFromString("0.5")},
		},
	}

	out := s.service.AddEnterpriseSupport(terms, es, s.runDate)
	s.Require().Len(out, 2, "unresolved tenant 99 is skipped")

	term := out[1]
	s.Equal(types.TermKindEnterpriseSupport, term.Kind)
	s.Equal(types.EnterpriseSupportName, term.Name)
	s.Equal(types.EnterpriseSupportAmount, term.Amount)
	s.Equal(types.EnterpriseSupportEventTypeID, term.EventTypeID.String())
	s.Equal(types.EnterpriseSupportItemID, term.IntegrationItemID.String())
	s.Equal("cust-1", term.CustomerID.String())
	s.Equal("Net 30", term.NetPaymentTerms, "net terms copied from the matched row")
	s.False(term.Recurring)
	s.True(term.IsSynthetic())
}

func (s *BillingTermServiceSuite) TestAddPrepaid() {
	terms := []billingterm.BillingTerm{{
		TenantID:   "40",
		CustomerID: types.NewResolvedID("cust-1"),
		Name:       "Widget",
		Kind:       types.TermKindRegular,
	}}

	out := s.service.AddPrepaid(terms, &PrepaidInput{TenantIDs: []string{"40", "77"}}, s.runDate)
	s.Require().Len(out, 2)

	term := out[1]
	s.Equal(types.TermKindPrepaid, term.Kind)
	s.Equal(types.PrepaidName, term.Name)
	s.Equal(types.PrepaidAmount, term.Amount)
	s.Equal(types.PrepaidEventTypeID, term.EventTypeID.String())
	s.Equal("cust-1", term.CustomerID.String())
	s.True(term.Recurring, "the prepaid offset recurs monthly like the charges it offsets")
	s.True(term.IsSynthetic())
}
