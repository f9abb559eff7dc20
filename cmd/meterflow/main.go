package main

import (
	"context"
	"fmt"
	"os"

	"github.com/meterflow/meterflow/internal/config"
	"github.com/meterflow/meterflow/internal/httpclient"
	"github.com/meterflow/meterflow/internal/logger"
	"github.com/meterflow/meterflow/internal/repository/platform"
	"github.com/meterflow/meterflow/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "meterflow: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	httpClient := httpclient.NewDefaultClient(httpclient.ClientConfig{
		Timeout:  cfg.Platform.Timeout(),
		RetryMax: cfg.Platform.RetryMax,
	})
	client := platform.NewClient(httpClient, cfg.Platform, log)

	params := service.ServiceParams{
		Logger:       log,
		Config:       cfg,
		CustomerRepo: client,
		CatalogRepo:  client,
		ContractRepo: client,
		TermUploader: client,
		EventPusher:  client,
	}

	input, err := loadRunInput(cfg)
	if err != nil {
		return err
	}

	pipeline := service.NewPipelineService(params)
	result, err := pipeline.Run(context.Background(), input)
	if err != nil {
		return err
	}

	exporter := service.NewExportService(params)
	if err := exporter.WriteAll(cfg.Run.OutputDir, result); err != nil {
		return err
	}

	printSummary(result, cfg)
	return nil
}

func loadRunInput(cfg *config.Configuration) (service.RunInput, error) {
	priceBook, err := os.ReadFile(cfg.Run.PriceBookPath)
	if err != nil {
		return service.RunInput{}, fmt.Errorf("reading price book archive: %w", err)
	}

	input := service.RunInput{PriceBook: priceBook}
	if input.RawUsage, err = loadOptional(cfg.Run.RawUsagePath); err != nil {
		return service.RunInput{}, err
	}
	if input.EnterpriseSupport, err = loadOptional(cfg.Run.EnterpriseSupportPath); err != nil {
		return service.RunInput{}, err
	}
	if input.Prepaid, err = loadOptional(cfg.Run.PrepaidPath); err != nil {
		return service.RunInput{}, err
	}
	return input, nil
}

func loadOptional(path string) (service.FileInput, error) {
	if path == "" {
		return service.FileInput{}, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return service.FileInput{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return service.FileInput{Name: path, Content: content}, nil
}

func printSummary(result *service.RunResult, cfg *config.Configuration) {
	fmt.Printf("billing run %s complete\n", cfg.Run.BillingRunDate)
	fmt.Printf("  billing terms: %d\n", len(result.Terms))
	fmt.Printf("  usage events:  %d\n", len(result.Events))
	fmt.Printf("  contracts:     %d created\n", result.ContractsCreated)
	if result.TermPush != nil {
		fmt.Printf("  term push:     %d created, %d failed\n", len(result.TermPush.CreatedIDs), len(result.TermPush.Failures))
	}
	if result.EventPush != nil {
		fmt.Printf("  event push:    %d succeeded, %d failed\n", result.EventPush.SuccessCount, result.EventPush.FailureCount)
	}
	for _, e := range result.IngestErrors {
		fmt.Printf("  ingest error:  %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning:       %s\n", w)
	}
	fmt.Printf("outputs written to %s\n", cfg.Run.OutputDir)
}
