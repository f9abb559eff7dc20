package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meterflow/meterflow/internal/config"
	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/usage"
	"github.com/meterflow/meterflow/internal/httpclient"
	"github.com/meterflow/meterflow/internal/logger"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testAPIKey = "test-api-key"

type PlatformClientSuite struct {
	suite.Suite
	ctx context.Context
}

func TestPlatformClient(t *testing.T) {
	suite.Run(t, new(PlatformClientSuite))
}

func (s *PlatformClientSuite) SetupTest() {
	s.ctx = context.Background()
}

// recordedRequest captures enough of an inbound request to assert on.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

func (s *PlatformClientSuite) newClient(handler http.Handler) (*Client, *[]recordedRequest) {
	var seen []recordedRequest
	recorder := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		handler.ServeHTTP(w, r)
	})

	server := httptest.NewServer(recorder)
	s.T().Cleanup(server.Close)

	httpClient := httpclient.NewDefaultClient(httpclient.ClientConfig{
		Timeout:  5 * time.Second,
		RetryMax: 0,
	})
	log, err := logger.NewLogger(&config.Configuration{
		Logging: config.LoggingConfig{Level: types.LogLevelError},
	})
	s.Require().NoError(err)

	client := NewClient(httpClient, config.PlatformConfig{
		BaseURL: server.URL,
		APIKey:  testAPIKey,
	}, log)
	return client, &seen
}

func writeEnvelope(w http.ResponseWriter, payload string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"success":true,"payload":%s}`, payload)
}

func (s *PlatformClientSuite) TestListCustomersTwoPhase() {
	client, seen := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.RawQuery {
		case "limit=1":
			writeEnvelope(w, `{"totalItems":2,"data":[{"id":"cust-1"}]}`)
		case "limit=2":
			writeEnvelope(w, `{"totalItems":2,"data":[
				{"id":"cust-1","name":"Koch","customFields":[{"customFieldName":"Tenant ID","customFieldValue":"40"}]},
				{"id":"cust-2","name":"Acme","customFields":[]}
			]}`)
		default:
			http.Error(w, "unexpected query "+r.URL.RawQuery, http.StatusBadRequest)
		}
	}))

	customers, err := client.ListCustomers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(customers, 2)
	s.Equal("cust-1", customers[0].ID)
	value, ok := customers[0].CustomFieldValue("Tenant ID")
	s.True(ok)
	s.Equal("40", value)

	s.Require().Len(*seen, 2)
	s.Equal("/v3/customers", (*seen)[0].Path)
	s.Equal("limit=1", (*seen)[0].Query)
	s.Equal("limit=2", (*seen)[1].Query)
	s.Equal(testAPIKey, (*seen)[0].Auth)
}

func (s *PlatformClientSuite) TestListCustomersEmptyRegistry() {
	client, seen := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, `{"totalItems":0,"data":[]}`)
	}))

	customers, err := client.ListCustomers(s.ctx)
	s.Require().NoError(err)
	s.Nil(customers)
	// The probe alone answers; no second fetch for an empty registry.
	s.Len(*seen, 1)
}

func (s *PlatformClientSuite) TestListCatalogs() {
	client, seen := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/events/types":
			writeEnvelope(w, `{"totalItems":1,"data":[{"id":"evt-1","name":"Widget"}]}`)
		case "/v3/items":
			writeEnvelope(w, `{"totalItems":1,"data":[{"id":"item-1","name":"Widget"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))

	eventTypes, err := client.ListEventTypes(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(eventTypes, 1)
	s.Equal("evt-1", eventTypes[0].ID)

	items, err := client.ListItems(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("item-1", items[0].ID)

	s.Equal("limit=1000", (*seen)[0].Query)
	s.Equal("limit=1000", (*seen)[1].Query)
}

func (s *PlatformClientSuite) TestCreateContract() {
	client, seen := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/contracts":
			writeEnvelope(w, `{"id":"ct-1"}`)
		case "/v3/contracts/ct-1/actions":
			writeEnvelope(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	}))

	created, err := client.CreateContract(s.ctx, "cust-1", "40_2024-01-15")
	s.Require().NoError(err)
	s.Equal("ct-1", created.ID)
	s.Equal("cust-1", created.CustomerID)
	s.Equal("40_2024-01-15", created.Name)

	s.Require().Len(*seen, 2)

	var createBody createContractRequest
	s.Require().NoError(json.Unmarshal((*seen)[0].Body, &createBody))
	s.Equal("40_2024-01-15", createBody.Name)
	s.Equal("cust-1", createBody.CustomerID)
	s.False(createBody.ShouldProcess)

	var actionBody contractActionRequest
	s.Require().NoError(json.Unmarshal((*seen)[1].Body, &actionBody))
	s.Equal("MARK_AS_PROCESSED", actionBody.Action)
}

func (s *PlatformClientSuite) TestCreateContractMarkFailureDoesNotFailCreation() {
	client, _ := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v3/contracts" {
			writeEnvelope(w, `{"id":"ct-1"}`)
			return
		}
		fmt.Fprint(w, `{"success":false,"payload":{}}`)
	}))

	created, err := client.CreateContract(s.ctx, "cust-1", "40_2024-01-15")
	s.Require().NoError(err)
	s.Equal("ct-1", created.ID)
}

func (s *PlatformClientSuite) TestCreateContractWithoutIDFails() {
	client, _ := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, `{}`)
	}))

	_, err := client.CreateContract(s.ctx, "cust-1", "40_2024-01-15")
	s.Error(err)
}

func (s *PlatformClientSuite) TestEnvelopeFailureSurfacesAsError() {
	client, _ := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"payload":{}}`)
	}))

	_, err := client.ListCustomers(s.ctx)
	s.Error(err)
}

func (s *PlatformClientSuite) TestPushBillingTerms() {
	runDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	terms := []*billingterm.BillingTerm{
		{
			// No contract assigned; creation failed upstream.
			TenantID: "51",
			Name:     "Gadget",
			Amount:   "2.50",
		},
		{
			ContractID:        "ct-1",
			TenantID:          "40",
			Name:              "Widget",
			Amount:            "10.00",
			Recurring:         true,
			Quantity:          1,
			IntervalUnit:      types.IntervalUnitMonth,
			IntervalFrequency: 1,
			Duration:          1,
			NetPaymentTerms:   "Net 30",
			Strategy:          types.InvoiceDateStrategyArrears,
			InvoiceType:       types.InvoiceTypeInvoice,
			EventTypeID:       types.NewResolvedID("evt-1"),
			IntegrationItemID: types.NewResolvedID("item-1"),
			InvoiceDate:       runDate,
			RevenueStartDate:  runDate,
			RevenueEndDate:    runDate.AddDate(0, 0, 30),
		},
	}

	client, seen := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, `{"id":"ob-1"}`)
	}))

	result, err := client.PushBillingTerms(s.ctx, terms)
	s.Require().NoError(err)
	s.False(result.Success)
	s.Require().Len(result.Failures, 1)
	s.Equal(0, result.Failures[0].Index)
	s.Equal("missing contract id", result.Failures[0].Err)
	s.Equal([]string{"ob-1"}, result.CreatedIDs)

	s.Require().Len(*seen, 1)
	s.Equal("/v3/contracts/ct-1/obligations", (*seen)[0].Path)

	var body obligationRequest
	s.Require().NoError(json.Unmarshal((*seen)[0].Body, &body))
	s.Equal("2024-01-15", body.ServiceStartDate)
	s.Equal("2024-02-14", body.ServiceEndDate)
	s.Equal("Widget", body.BillingSchedule.Name)
	s.Equal("UNIT", body.BillingSchedule.BillingType)
	s.Equal("SIMPLE", body.BillingSchedule.PricingType)
	s.Equal("evt-1", body.BillingSchedule.EventTypeID)
	s.Equal("item-1", body.BillingSchedule.ItemID)
	s.True(body.BillingSchedule.IsRecurring)
	s.Require().Len(body.BillingSchedule.Pricing, 1)
	s.Equal(1, body.BillingSchedule.Pricing[0].Tier)
	s.InDelta(10.0, body.BillingSchedule.Pricing[0].Amount, 1e-9)
	s.Equal("PER_ITEM", body.BillingSchedule.Pricing[0].AmountType)
}

func (s *PlatformClientSuite) TestPushBillingTermsBadAmountDegradesToZero() {
	client, seen := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, `{"id":"ob-1"}`)
	}))

	terms := []*billingterm.BillingTerm{{
		ContractID: "ct-1",
		TenantID:   "40",
		Name:       "Widget",
		Amount:     "#REF!",
	}}
	result, err := client.PushBillingTerms(s.ctx, terms)
	s.Require().NoError(err)
	s.True(result.Success)

	var body obligationRequest
	s.Require().NoError(json.Unmarshal((*seen)[0].Body, &body))
	s.Zero(body.BillingSchedule.Pricing[0].Amount)
}

func (s *PlatformClientSuite) TestPushUsageEvents() {
	events := []*usage.Event{
		{
			CustomerID:     "cust-1",
			EventTypeID:    types.NewResolvedID("evt-1"),
			EventTypeName:  "Widget",
			Datetime:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Value:          decimal.RequireFromString("12.5"),
			Invoice:        1,
			IdempotencyKey: "evt_01",
		},
		{
			CustomerID:     "cust-2",
			EventTypeName:  "Gadget",
			Datetime:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Value:          decimal.NewFromInt(3),
			Invoice:        1,
			IdempotencyKey: "evt_02",
		},
	}

	client, seen := s.newClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, `{"results":[{"index":1,"error":"unknown customer"}]}`)
	}))

	result, err := client.PushUsageEvents(s.ctx, events)
	s.Require().NoError(err)
	s.False(result.Success)
	s.Equal(2, result.Total)
	s.Equal(1, result.SuccessCount)
	s.Equal(1, result.FailureCount)
	s.Require().Len(result.Failures, 1)
	s.Equal(1, result.Failures[0].Index)

	s.Require().Len(*seen, 1)
	s.Equal("/v3/events/bulk", (*seen)[0].Path)

	var body bulkUsageRequest
	s.Require().NoError(json.Unmarshal((*seen)[0].Body, &body))
	s.Require().Len(body.Events, 2)
	s.Equal("12.5", body.Events[0].Value)
	s.Equal("evt-1", body.Events[0].EventTypeID)
	s.Equal("2024-01-15", body.Events[0].Datetime)
	s.Empty(body.Events[1].EventTypeID)
}
