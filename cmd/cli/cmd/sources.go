// Package cmd - engine and price source construction shared by commands
package cmd

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"azure-bom-cost/adapters/pricing"
	"azure-bom-cost/clouds/azure"
	"azure-bom-cost/core/engine"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/config"
	"azure-bom-cost/internal/logging"
)

// newEngine builds the engine and returns the evaluation date in force
func newEngine(cfg *config.Config) (*engine.Engine, time.Time, error) {
	at, err := cfg.EvaluationDate()
	if err != nil {
		return nil, time.Time{}, err
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	discounts, err := cfg.DiscountTable()
	if err != nil {
		return nil, time.Time{}, err
	}

	engCfg := engine.DefaultConfig()
	engCfg.Currency = cfg.Currency()
	engCfg.EvaluationDate = at
	engCfg.Discounts = engCfg.Discounts.Merge(discounts)
	if cfg.Pricing.Parallelism > 0 {
		engCfg.Parallelism = cfg.Pricing.Parallelism
	}
	return engine.New(azure.NewRegistry(), engCfg, engine.WithLogger(logging.Named("engine"))), at, nil
}

// newSources builds the configured price sources. The returned func
// releases the retail client.
func newSources(cfg *config.Config, at time.Time) (pricing.Options, func(), error) {
	opts := pricing.Options{
		EvaluationDate: at,
		RetailCSV:      cfg.Sources.RetailCSV,
		EnterpriseCSV:  cfg.Sources.EnterpriseCSV,
	}
	release := func() {}
	if cfg.Sources.RetailLive {
		retail, err := newRetailClient(cfg, cfg.Currency())
		if err != nil {
			return opts, release, err
		}
		opts.Retail = retail
		release = retail.Close
	}
	ent, err := newEnterpriseClient(cfg)
	if err != nil {
		release()
		return opts, func() {}, err
	}
	opts.Enterprise = ent
	return opts, release, nil
}

func newRetailClient(cfg *config.Config, currency types.Currency) (*pricing.RetailClient, error) {
	rc := pricing.DefaultRetailConfig()
	if cfg.Pricing.RetailURL != "" {
		rc.BaseURL = cfg.Pricing.RetailURL
	}
	rc.Currency = currency
	if t := cfg.HTTPTimeout(); t > 0 {
		rc.HTTPTimeout = t
	}
	rc.CacheBytes = cfg.RetailCacheBytes()
	if ttl := cfg.RetailCacheTTL(); ttl > 0 {
		rc.CacheTTL = ttl
	}
	if cfg.Pricing.Parallelism > 0 {
		rc.Parallelism = cfg.Pricing.Parallelism
	}
	return pricing.NewRetailClient(rc, logging.Named("retail"))
}

// newEnterpriseClient returns nil when no enterprise mode is configured
func newEnterpriseClient(cfg *config.Config) (*pricing.EnterpriseClient, error) {
	ec := cfg.Sources.Enterprise
	if ec.Mode == "" {
		return nil, nil
	}
	ecfg := pricing.EnterpriseConfig{
		Mode:              pricing.EnterpriseMode(strings.ToLower(ec.Mode)),
		BillingAccount:    ec.BillingAccount,
		EnrollmentAccount: ec.EnrollmentAccount,
		BaseURL:           ec.ManagementURL,
	}
	if err := ecfg.Validate(); err != nil {
		return nil, err
	}
	cred, err := pricing.NewCredential()
	if err != nil {
		// same as a failed download: fall back to the remaining sources
		logging.Warn("enterprise price sheet disabled", zap.Error(err))
		return nil, nil
	}
	return pricing.NewEnterpriseClient(ecfg, cred, logging.Named("enterprise"))
}
