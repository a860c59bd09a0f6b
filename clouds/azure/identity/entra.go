// Package identity - Microsoft Entra External ID cost handler
// Pricing model:
// - Monthly active users beyond a free allowance (50,000 by default)
// - MFA add-on per MFA-enabled user, no free allowance
// Per-user overrides bypass price lookup.
package identity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

var (
	entraServices = []string{"Microsoft Entra External ID", "Microsoft Entra ID", "Azure Active Directory B2C", "Azure Active Directory"}
	mfaTokens     = []string{"mfa", "multi-factor"}
	one           = decimal.NewFromInt(1)
)

// DefaultFreeMAU is the monthly active user allowance billed at zero
const DefaultFreeMAU = 50000

// ExternalIDHandler prices "entra_external_id" components
type ExternalIDHandler struct{}

// NewExternalIDHandler creates an Entra External ID handler
func NewExternalIDHandler() *ExternalIDHandler {
	return &ExternalIDHandler{}
}

// Type returns the component type
func (h *ExternalIDHandler) Type() string {
	return "entra_external_id"
}

// Meters declares billable and MFA-enabled users
func (h *ExternalIDHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	mau := r.Decimal("monthly_active_users", decimal.Zero)
	free := r.Decimal("included_free_mau", decimal.NewFromInt(DefaultFreeMAU))
	mfaPct := r.Decimal("mfa_enabled_pct", decimal.Zero)
	baseOverride := r.OptionalDecimal("unit_price_override")
	mfaOverride := r.OptionalDecimal("mfa_unit_override")
	if err := r.Err(); err != nil {
		return nil, err
	}
	if mfaPct.IsNegative() || mfaPct.GreaterThan(one) {
		return nil, errors.InvalidAssumptions("mfa_enabled_pct", "entra_external_id: mfa_enabled_pct must be between 0 and 1, got %s", mfaPct)
	}

	// a negative count is passed through for validation
	billable := mau
	if mau.IsPositive() {
		billable = decimal.Max(mau.Sub(free), decimal.Zero)
	}

	return clouds.Positive(
		clouds.NewMeter("monthly active users", pricing.Query{
			Service:       entraServices[0],
			Aliases:       entraServices[1:],
			Skus:          []string{"Monthly Active Users", "MAU", "Premium P1 MAU"},
			MeterContains: "MAU",
			Exclude:       mfaTokens,
		}, billable).WithOverride(baseOverride),
		clouds.NewMeter("mfa users", pricing.Query{
			Service:       entraServices[0],
			Aliases:       entraServices[1:],
			Skus:          []string{"MFA MAU", "MFA", "Multi-Factor Authentication"},
			MeterContains: "MFA",
			RequireAny:    mfaTokens,
		}, mau.Mul(mfaPct)).WithOverride(mfaOverride),
	), nil
}

// Price sums base and MFA users
func (h *ExternalIDHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	parts := []string{fmt.Sprintf("%s MAU (first %s free)",
		r.Decimal("monthly_active_users", decimal.Zero), r.Decimal("included_free_mau", decimal.NewFromInt(DefaultFreeMAU)))}
	if pct := r.Decimal("mfa_enabled_pct", decimal.Zero); pct.IsPositive() {
		parts = append(parts, fmt.Sprintf("mfa %s%%", pct.Mul(decimal.NewFromInt(100))))
	}
	if r.Bool("premium_features", false) {
		parts = append(parts, "(premium)")
	}
	return clouds.Line("Entra External ID "+strings.Join(parts, ", "), meters, prices)
}
