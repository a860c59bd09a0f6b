// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
	"azure-bom-cost/internal/logging"
)

// DateLayout is the layout of the evaluation date
const DateLayout = "2006-01-02"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version" toml:"version"`

	// Pricing contains pricing configuration
	Pricing PricingConfig `json:"pricing" yaml:"pricing" toml:"pricing"`

	// Sources selects the price sources
	Sources SourcesConfig `json:"sources" yaml:"sources" toml:"sources"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output" toml:"output"`

	// Server configures the HTTP estimate service
	Server ServerConfig `json:"server" yaml:"server" toml:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging" toml:"logging"`
}

// PricingConfig contains pricing-related settings
type PricingConfig struct {
	// Currency is used when the BOM names none
	Currency string `json:"currency" yaml:"currency" toml:"currency"`

	// EvaluationDate selects effective prices, as YYYY-MM-DD; blank is today
	EvaluationDate string `json:"evaluation_date,omitempty" yaml:"evaluation_date,omitempty" toml:"evaluation_date,omitempty"`

	// RetailURL is the retail prices API endpoint
	RetailURL string `json:"retail_url" yaml:"retail_url" toml:"retail_url"`

	// HTTPTimeoutSeconds bounds a single price request
	HTTPTimeoutSeconds int `json:"http_timeout_seconds" yaml:"http_timeout_seconds" toml:"http_timeout_seconds"`

	// RetailCacheMB bounds the in-process retail page cache; 0 disables it
	RetailCacheMB int `json:"retail_cache_mb" yaml:"retail_cache_mb" toml:"retail_cache_mb"`

	// RetailCacheTTLSeconds is how long fetched pages stay cached
	RetailCacheTTLSeconds int `json:"retail_cache_ttl_seconds" yaml:"retail_cache_ttl_seconds" toml:"retail_cache_ttl_seconds"`

	// Parallelism bounds concurrent pricing work
	Parallelism int `json:"parallelism" yaml:"parallelism" toml:"parallelism"`

	// Discounts is the commitment discount table
	Discounts DiscountsConfig `json:"discounts" yaml:"discounts" toml:"discounts"`
}

// DiscountsConfig maps a term ("1", "3y") to a discount fraction written
// as a decimal string
type DiscountsConfig struct {
	SavingsPlan      map[string]string `json:"savings_plan" yaml:"savings_plan" toml:"savings_plan"`
	ReservedInstance map[string]string `json:"ri" yaml:"ri" toml:"ri"`
}

// SourcesConfig selects the price sources of a run
type SourcesConfig struct {
	// RetailLive queries the public retail prices API
	RetailLive bool `json:"retail_live" yaml:"retail_live" toml:"retail_live"`

	// RetailCSV is an offline retail snapshot
	RetailCSV string `json:"retail_csv,omitempty" yaml:"retail_csv,omitempty" toml:"retail_csv,omitempty"`

	// EnterpriseCSV is a local price sheet export
	EnterpriseCSV string `json:"enterprise_csv,omitempty" yaml:"enterprise_csv,omitempty" toml:"enterprise_csv,omitempty"`

	// Enterprise configures the price sheet download
	Enterprise EnterpriseConfig `json:"enterprise" yaml:"enterprise" toml:"enterprise"`
}

// EnterpriseConfig configures the price sheet download; a blank mode disables it
type EnterpriseConfig struct {
	Mode              string `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	BillingAccount    string `json:"billing_account,omitempty" yaml:"billing_account,omitempty" toml:"billing_account,omitempty"`
	EnrollmentAccount string `json:"enrollment_account,omitempty" yaml:"enrollment_account,omitempty" toml:"enrollment_account,omitempty"`
	ManagementURL     string `json:"management_url,omitempty" yaml:"management_url,omitempty" toml:"management_url,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default output format
	Format string `json:"format" yaml:"format" toml:"format"`

	// Details shows one row per charge
	Details bool `json:"details" yaml:"details" toml:"details"`

	// Color highlights unresolved lines in terminal output
	Color bool `json:"color" yaml:"color" toml:"color"`
}

// ServerConfig configures the HTTP estimate service
type ServerConfig struct {
	Address             string `json:"address" yaml:"address" toml:"address"`
	MaxBodyKB           int    `json:"max_body_kb" yaml:"max_body_kb" toml:"max_body_kb"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds" yaml:"write_timeout_seconds" toml:"write_timeout_seconds"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Currency:              string(types.DefaultCurrency),
			RetailURL:             "https://prices.azure.com/api/retail/prices",
			HTTPTimeoutSeconds:    120,
			RetailCacheMB:         64,
			RetailCacheTTLSeconds: 3600,
			Parallelism:           8,
			Discounts: DiscountsConfig{
				SavingsPlan:      map[string]string{"1": "0.18", "3": "0.33"},
				ReservedInstance: map[string]string{"1": "0.35", "3": "0.55"},
			},
		},
		Sources: SourcesConfig{
			RetailLive: true,
		},
		Output: OutputConfig{
			Format: "cli",
			Color:  true,
		},
		Server: ServerConfig{
			Address:             ":8080",
			MaxBodyKB:           4096,
			WriteTimeoutSeconds: 600,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a JSON, YAML or TOML file, chosen by
// extension. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("failed to read config file", err).WithContext("path", path)
	}

	config := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".toml":
		err = toml.Unmarshal(data, config)
	default:
		return nil, errors.Config(fmt.Sprintf("unsupported config file format %q", ext), nil).WithContext("path", path)
	}
	if err != nil {
		return nil, errors.Config("failed to parse config file", err).WithContext("path", path)
	}

	if err := config.Validate(); err != nil {
		if e, ok := errors.As(err); ok {
			return nil, e.WithContext("path", path)
		}
		return nil, err
	}
	return config, nil
}

// Save saves configuration to a file in the format its extension names
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(*c)
	default:
		return errors.Config(fmt.Sprintf("unsupported config file format %q", ext), nil).WithContext("path", path)
	}
	if err != nil {
		return errors.Config("failed to encode config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Config("failed to create config directory", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field that is parsed later
func (c *Config) Validate() error {
	if len(strings.TrimSpace(c.Pricing.Currency)) != 3 {
		return invalid("pricing.currency", "must be a three-letter currency code")
	}
	if _, err := c.EvaluationDate(); err != nil {
		return err
	}
	if _, err := c.DiscountTable(); err != nil {
		return err
	}
	if c.Pricing.HTTPTimeoutSeconds < 0 || c.Pricing.RetailCacheMB < 0 || c.Pricing.RetailCacheTTLSeconds < 0 {
		return invalid("pricing", "timeouts and cache sizes must not be negative")
	}
	if c.Server.MaxBodyKB < 0 || c.Server.WriteTimeoutSeconds < 0 {
		return invalid("server", "body limit and timeout must not be negative")
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	switch strings.ToLower(c.Sources.Enterprise.Mode) {
	case "":
	case "mca":
		if c.Sources.Enterprise.BillingAccount == "" {
			return invalid("sources.enterprise.billing_account", "is required in mca mode")
		}
	case "ea":
		if c.Sources.Enterprise.EnrollmentAccount == "" {
			return invalid("sources.enterprise.enrollment_account", "is required in ea mode")
		}
	default:
		return invalid("sources.enterprise.mode", fmt.Sprintf("must be mca or ea, got %q", c.Sources.Enterprise.Mode))
	}
	return nil
}

// Currency returns the configured currency, upper-cased
func (c *Config) Currency() types.Currency {
	return types.Currency(strings.ToUpper(strings.TrimSpace(c.Pricing.Currency)))
}

// EvaluationDate parses the evaluation date; zero when blank
func (c *Config) EvaluationDate() (time.Time, error) {
	s := strings.TrimSpace(c.Pricing.EvaluationDate)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalid("pricing.evaluation_date", "must be YYYY-MM-DD")
	}
	return t.UTC(), nil
}

// DiscountTable parses the discount table
func (c *Config) DiscountTable() (types.DiscountTable, error) {
	sp, err := parseDiscounts("pricing.discounts.savings_plan", c.Pricing.Discounts.SavingsPlan)
	if err != nil {
		return types.DiscountTable{}, err
	}
	ri, err := parseDiscounts("pricing.discounts.ri", c.Pricing.Discounts.ReservedInstance)
	if err != nil {
		return types.DiscountTable{}, err
	}
	return types.DiscountTable{SavingsPlan: sp, ReservedInstance: ri}, nil
}

// HTTPTimeout returns the request timeout
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Pricing.HTTPTimeoutSeconds) * time.Second
}

// RetailCacheTTL returns the retail page cache TTL
func (c *Config) RetailCacheTTL() time.Duration {
	return time.Duration(c.Pricing.RetailCacheTTLSeconds) * time.Second
}

// RetailCacheBytes returns the retail page cache bound in bytes
func (c *Config) RetailCacheBytes() int64 {
	return int64(c.Pricing.RetailCacheMB) << 20
}

func parseDiscounts(field string, m map[string]string) (map[int]decimal.Decimal, error) {
	out := make(map[int]decimal.Decimal, len(m))
	for k, v := range m {
		term, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(k), "y"))
		if err != nil || term <= 0 {
			return nil, invalid(field, fmt.Sprintf("term %q is not a number of years", k))
		}
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
			return nil, invalid(field+"."+k, "must be a fraction between 0 and 1")
		}
		out[term] = d
	}
	return out, nil
}

func invalid(field, msg string) *errors.Error {
	return errors.Config(field+" "+msg, nil).WithContext("field", field)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
