// Package security - Azure Key Vault cost handler
// Pricing model:
// - Operations, billed per 10,000
// - HSM protected keys per month (Premium only)
package security

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// KeyVaultHandler prices "key_vault" components
type KeyVaultHandler struct{}

// NewKeyVaultHandler creates a Key Vault handler
func NewKeyVaultHandler() *KeyVaultHandler {
	return &KeyVaultHandler{}
}

// Type returns the component type
func (h *KeyVaultHandler) Type() string {
	return "key_vault"
}

// Meters declares operations and, on Premium, HSM keys
func (h *KeyVaultHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	tier := clouds.Title(r.String("tier", "Standard"))
	ops := r.Decimal("operations", decimal.Zero)
	hsmKeys := r.Decimal("hsm_keys", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	meters := []clouds.Meter{
		clouds.NewMeter("operations", pricing.Query{
			Service:       "Key Vault",
			Skus:          []string{tier + " Operations", "Operations", tier},
			Unit:          "10,000",
			MeterContains: "Operations",
		}, ops),
	}
	if tier == "Premium" {
		meters = append(meters, clouds.NewMeter("hsm keys", pricing.Query{
			Service:       "Key Vault",
			Skus:          []string{"HSM Protected Keys", "HSM Protected Key", "Premium HSM Protected Keys"},
			Unit:          "1/Month",
			MeterContains: "HSM Protected Key",
		}, hsmKeys))
	}
	return clouds.Positive(meters...), nil
}

// Price sums operations and keys
func (h *KeyVaultHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Key Vault %s %s ops", clouds.Title(r.String("tier", "Standard")), r.Decimal("operations", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
