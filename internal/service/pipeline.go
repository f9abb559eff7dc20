package service

import (
	"context"
	"fmt"

	"github.com/meterflow/meterflow/internal/domain/billingterm"
	"github.com/meterflow/meterflow/internal/domain/usage"
	ierr "github.com/meterflow/meterflow/internal/errors"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/shopspring/decimal"
)

// FileInput is one uploaded input file.
type FileInput struct {
	Name    string
	Content []byte
}

// Present reports whether the optional file was supplied.
func (f FileInput) Present() bool {
	return len(f.Content) > 0
}

// RunInput bundles every file a billing run consumes.
type RunInput struct {
	PriceBook         []byte
	RawUsage          FileInput
	EnterpriseSupport FileInput
	Prepaid           FileInput
}

// RunResult is the full outcome of one billing run: the composed terms, the
// reconciled events, the report reductions and the platform push results.
// Warnings and ingest errors accumulate; only unusable input aborts a run.
type RunResult struct {
	IngestErrors []string
	Warnings     []string

	Terms  []billingterm.BillingTerm
	Events []usage.Event

	ContractsCreated int
	TermPush         *billingterm.PushResult
	EventPush        *usage.PushResult

	PrepaidTotals     map[string]decimal.Decimal
	ConsumptionTotals map[ConsumptionKey]decimal.Decimal
}

// PipelineService runs the whole billing run end to end.
type PipelineService interface {
	Run(ctx context.Context, input RunInput) (*RunResult, error)
}

type pipelineService struct {
	ServiceParams

	identity  IdentityService
	catalog   CatalogService
	priceBook PriceBookService
	inputs    InputService
	terms     BillingTermService
	reports   ReportService
}

func NewPipelineService(params ServiceParams) PipelineService {
	return &pipelineService{
		ServiceParams: params,
		identity:      NewIdentityService(params),
		catalog:       NewCatalogService(params),
		priceBook:     NewPriceBookService(params),
		inputs:        NewInputService(params),
		terms:         NewBillingTermService(params),
		reports:       NewReportService(params),
	}
}

func (s *pipelineService) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	runDate := s.Config.RunDate()
	result := &RunResult{}

	ingested, err := s.priceBook.IngestArchive(input.PriceBook)
	if err != nil {
		return nil, err
	}
	result.IngestErrors = ingested.Errors
	if len(ingested.Combined) == 0 {
		return nil, ierr.NewError("price book archive contributed no rows").
			WithHint("Every file in the archive was rejected or empty").
			Mark(ierr.ErrValidation)
	}

	identityMap, err := s.identity.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	catalogMap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	rows, warnings := s.priceBook.ResolveRows(ingested.Combined, identityMap, catalogMap)
	result.Warnings = append(result.Warnings, warnings...)

	terms := s.terms.Format(rows, runDate)

	var rawUsage []usage.Row
	if input.RawUsage.Present() {
		rawUsage, err = s.inputs.ParseUsage(input.RawUsage.Name, input.RawUsage.Content)
		if err != nil {
			return nil, err
		}
		terms = s.terms.FilterToUpload(terms, rawUsage)
	}

	var esInput *EnterpriseSupportInput
	if input.EnterpriseSupport.Present() {
		esInput, err = s.inputs.ParseEnterpriseSupport(input.EnterpriseSupport.Name, input.EnterpriseSupport.Content)
		if err != nil {
			return nil, err
		}
		terms = s.terms.AddEnterpriseSupport(terms, esInput, runDate)
	}
	if input.Prepaid.Present() {
		prepaidInput, err := s.inputs.ParsePrepaid(input.Prepaid.Name, input.Prepaid.Content)
		if err != nil {
			return nil, err
		}
		terms = s.terms.AddPrepaid(terms, prepaidInput, runDate)
	}

	result.ContractsCreated = s.assignContracts(ctx, terms, result)
	result.Terms = terms

	if !s.Config.Run.DryRun && s.TermUploader != nil {
		refs := make([]*billingterm.BillingTerm, len(terms))
		for i := range terms {
			refs[i] = &terms[i]
		}
		push, err := s.TermUploader.PushBillingTerms(ctx, refs)
		if err != nil {
			s.warnf(result, "billing term push failed: %v", err)
			push = &billingterm.PushResult{Success: false}
		}
		result.TermPush = push
	}

	esPct := map[string]decimal.Decimal{}
	if esInput != nil {
		esPct = esInput.PctByTenant
	}
	reconciler := NewReconcileService(s.ServiceParams, identityMap)
	events, reconcileWarnings := reconciler.Reconcile(rawUsage, terms, esPct, runDate)
	result.Warnings = append(result.Warnings, reconcileWarnings...)
	result.Events = events

	if !s.Config.Run.DryRun && s.EventPusher != nil && len(events) > 0 {
		refs := make([]*usage.Event, len(events))
		for i := range events {
			refs[i] = &events[i]
		}
		push, err := s.EventPusher.PushUsageEvents(ctx, refs)
		if err != nil {
			s.warnf(result, "usage event push failed: %v", err)
			push = &usage.PushResult{Success: false, Total: len(events), FailureCount: len(events)}
		}
		result.EventPush = push
	}

	result.PrepaidTotals = s.reports.PrepaidReport(events, terms)
	result.ConsumptionTotals = s.reports.ConsumptionReport(events, terms)

	s.Logger.Infow("billing run complete",
		"terms", len(result.Terms),
		"events", len(result.Events),
		"contracts_created", result.ContractsCreated,
		"warnings", len(result.Warnings),
		"ingest_errors", len(result.IngestErrors),
	)
	return result, nil
}

// assignContracts creates one contract per unique resolved customer, named
// {tenant}_{runDate}, and stamps the contract ID onto all of that customer's
// terms. Creation failure degrades: affected terms keep an empty contract ID.
func (s *pipelineService) assignContracts(ctx context.Context, terms []billingterm.BillingTerm, result *RunResult) int {
	if s.Config.Run.DryRun || s.ContractRepo == nil {
		return 0
	}

	runDate := types.FormatDate(s.Config.RunDate())
	contractByCustomer := make(map[string]string)
	var order []string
	tenantOf := make(map[string]string)
	for i := range terms {
		customerID := terms[i].CustomerID.String()
		if customerID == "" {
			continue
		}
		if _, seen := contractByCustomer[customerID]; !seen {
			contractByCustomer[customerID] = ""
			order = append(order, customerID)
			tenantOf[customerID] = terms[i].TenantID
		}
	}

	created := 0
	for _, customerID := range order {
		name := tenantOf[customerID] + "_" + runDate
		contract, err := s.ContractRepo.CreateContract(ctx, customerID, name)
		if err != nil {
			s.warnf(result, "contract creation failed for customer %s: %v", customerID, err)
			continue
		}
		contractByCustomer[customerID] = contract.ID
		created++
	}

	for i := range terms {
		customerID := terms[i].CustomerID.String()
		if id := contractByCustomer[customerID]; id != "" {
			terms[i].ContractID = id
		}
	}
	return created
}

func (s *pipelineService) warnf(result *RunResult, format string, args ...any) {
	s.Logger.Warnf(format, args...)
	result.Warnings = append(result.Warnings, fmt.Sprintf(format, args...))
}
