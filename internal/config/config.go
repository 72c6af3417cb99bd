package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/propbase/billing/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Cache      CacheConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// BillingConfig holds the static billing defaults. These are plain immutable
// configuration values, never mutated at runtime.
type BillingConfig struct {
	// PaymentTermDays is added to the invoice date to produce the due date
	PaymentTermDays int `mapstructure:"payment_term_days"`
	// InvoiceNumberPrefix is the default document number prefix for invoices
	InvoiceNumberPrefix string `mapstructure:"invoice_number_prefix" validate:"required"`
	// CreditNoteNumberPrefix is the default document number prefix for credit notes
	CreditNoteNumberPrefix string `mapstructure:"credit_note_number_prefix" validate:"required"`
	// DefaultProrationMethod is used when a request does not specify one
	DefaultProrationMethod types.ProrationMethod `mapstructure:"default_proration_method" validate:"required"`
	// RentChargeTypeCode resolves the charge type rent lines are attributed to
	RentChargeTypeCode string `mapstructure:"rent_charge_type_code" validate:"required"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/propbase")

	v.SetEnvPrefix("PROPBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("billing.payment_term_days", 0)
	v.SetDefault("billing.invoice_number_prefix", DefaultInvoiceNumberPrefix)
	v.SetDefault("billing.credit_note_number_prefix", DefaultCreditNoteNumberPrefix)
	v.SetDefault("billing.default_proration_method", string(types.ProrationMethodActualDaysInMonth))
	v.SetDefault("billing.rent_charge_type_code", DefaultRentChargeTypeCode)
	v.SetDefault("cache.enabled", true)
}

// Default billing constants. Kept as package constants rather than mutable
// globals so they can never drift at runtime.
const (
	DefaultInvoiceNumberPrefix    = "INV"
	DefaultCreditNoteNumberPrefix = "CN"
	DefaultRentChargeTypeCode     = "RENT"
)

func (c Configuration) Validate() error {
	if err := c.Billing.DefaultProrationMethod.Validate(); err != nil {
		return err
	}
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running tests, scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			PaymentTermDays:        0,
			InvoiceNumberPrefix:    DefaultInvoiceNumberPrefix,
			CreditNoteNumberPrefix: DefaultCreditNoteNumberPrefix,
			DefaultProrationMethod: types.ProrationMethodActualDaysInMonth,
			RentChargeTypeCode:     DefaultRentChargeTypeCode,
		},
		Cache: CacheConfig{Enabled: true},
	}
}
