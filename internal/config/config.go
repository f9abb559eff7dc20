package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/meterflow/meterflow/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Platform PlatformConfig `validate:"required"`
	Run      RunConfig      `validate:"required"`
	Resolver ResolverConfig `validate:"required"`
	Logging  LoggingConfig  `validate:"required"`
}

// PlatformConfig holds the billing platform API settings.
type PlatformConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required"`
	APIKey  string `mapstructure:"api_key" validate:"required"`
	// TimeoutSeconds bounds each API call.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// RetryMax is the transport-level retry budget. It defaults to 0:
	// a failed external call degrades the affected records instead of
	// being retried.
	RetryMax int `mapstructure:"retry_max"`
}

// RunConfig describes one billing run: the run date and the input exports.
type RunConfig struct {
	// BillingRunDate is the service period start date, YYYY-MM-DD.
	BillingRunDate string `mapstructure:"billing_run_date" validate:"required"`
	// PriceBookPath points at the price book ZIP archive.
	PriceBookPath string `mapstructure:"price_book_path" validate:"required"`
	// RawUsagePath points at the raw monthly usage export (csv/xlsx/xls).
	RawUsagePath string `mapstructure:"raw_usage_path"`
	// EnterpriseSupportPath points at the enterprise support percentage
	// file. Optional; when empty no enterprise support terms are added.
	EnterpriseSupportPath string `mapstructure:"enterprise_support_path"`
	// PrepaidPath points at the prepaid customer file. Optional.
	PrepaidPath string `mapstructure:"prepaid_path"`
	// OutputDir receives the billing term and usage event CSVs plus the
	// report files.
	OutputDir string `mapstructure:"output_dir"`
	// DryRun skips all writes to the platform (contract creation and
	// batch uploads) while still producing the output files.
	DryRun bool `mapstructure:"dry_run"`
}

// ResolverConfig names the customer custom fields that carry the external
// tenant identifier.
type ResolverConfig struct {
	// TenantIDField is the primary custom field name searched on each
	// customer record.
	TenantIDField string `mapstructure:"tenant_id_field" validate:"required"`
	// TenantIDFallbackField is searched when the primary field is absent.
	TenantIDFallbackField string `mapstructure:"tenant_id_fallback_field"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	// Load .env if present; real env vars still win.
	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/meterflow")

	v.SetEnvPrefix("METERFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("platform.timeout_seconds", 30)
	v.SetDefault("platform.retry_max", 0)
	v.SetDefault("run.output_dir", "./out")
	v.SetDefault("resolver.tenant_id_field", "Tenant ID")
	v.SetDefault("resolver.tenant_id_fallback_field", "External Tenant ID")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
}

func (c Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if !c.Logging.Level.Validate() {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	if _, err := types.ParseRunDate(c.Run.BillingRunDate); err != nil {
		return err
	}
	return nil
}

// RunDate returns the parsed billing run date. Validate guarantees it parses.
func (c Configuration) RunDate() time.Time {
	t, _ := types.ParseRunDate(c.Run.BillingRunDate)
	return t
}

// Timeout returns the platform call timeout as a duration.
func (c PlatformConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetDefaultConfig returns a configuration suitable for tests and scripts.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Platform: PlatformConfig{
			BaseURL:        "http://localhost:8080",
			APIKey:         "test-api-key",
			TimeoutSeconds: 30,
		},
		Run: RunConfig{
			BillingRunDate: "2024-01-15",
			PriceBookPath:  "price_book.zip",
			OutputDir:      "./out",
		},
		Resolver: ResolverConfig{
			TenantIDField:         "Tenant ID",
			TenantIDFallbackField: "External Tenant ID",
		},
		Logging: LoggingConfig{
			Level: types.LogLevelInfo,
		},
	}
}
