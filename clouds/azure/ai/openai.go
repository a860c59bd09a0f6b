// Package ai - Azure OpenAI cost handler
// Pricing model:
// - Input and output tokens, declared in 1K units
// - Embedding tokens, declared in 1K units
// - Generated images, each
// Unit price overrides (per 1K tokens or per image) bypass price lookup.
package ai

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

var openAIServices = []string{"Azure OpenAI", "Azure AI Services", "Cognitive Services", "Foundry Models"}

var thousand = decimal.NewFromInt(1000)

type tokenKind struct {
	meter    string
	field    string
	override string
	keywords []string
	// direction tokens every matched record must carry
	tokens   []string
	unit     string
	perUnit  decimal.Decimal
}

var openAIKinds = []tokenKind{
	{
		meter:    "input tokens",
		field:    "input_tokens_1k_per_month",
		override: "input_per_1k",
		keywords: []string{"Input Tokens", "Prompt Tokens", "Tokens - Input", "Input"},
		tokens:   []string{"inp", "prompt"},
		unit:     "1K",
		perUnit:  thousand,
	},
	{
		meter:    "output tokens",
		field:    "output_tokens_1k_per_month",
		override: "output_per_1k",
		keywords: []string{"Output Tokens", "Completion Tokens", "Tokens - Output", "Output"},
		tokens:   []string{"outp", "completion"},
		unit:     "1K",
		perUnit:  thousand,
	},
	{
		meter:    "images",
		field:    "images_generated",
		override: "image_each",
		keywords: []string{"Image Generation", "Images", "Image"},
		tokens:   []string{"image", "dall"},
		unit:     "1",
		perUnit:  decimal.NewFromInt(1),
	},
	{
		meter:    "embeddings",
		field:    "embeddings_tokens_1k_per_month",
		override: "embeddings_per_1k",
		keywords: []string{"Embeddings", "Embedding Tokens", "Text Embedding"},
		tokens:   []string{"embed"},
		unit:     "1K",
		perUnit:  thousand,
	},
}

// skuCandidates returns likely sku spellings for a deployment and usage kind
func skuCandidates(deployment string, keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if deployment != "" {
			out = append(out,
				deployment+" "+k,
				deployment+" - "+k,
				k+" - "+deployment,
				fmt.Sprintf("%s (%s)", k, deployment),
			)
		}
		out = append(out, k)
	}
	return clouds.Distinct(out...)
}

// OpenAIHandler prices "ai_openai" components
type OpenAIHandler struct{}

// NewOpenAIHandler creates an Azure OpenAI handler
func NewOpenAIHandler() *OpenAIHandler {
	return &OpenAIHandler{}
}

// Type returns the component type
func (h *OpenAIHandler) Type() string {
	return "ai_openai"
}

// Meters declares token, embedding and image usage
func (h *OpenAIHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	deployment := r.String("deployment", "")
	overrides := types.Component{Type: c.Type, Fields: r.Map("unit_price_overrides")}.Reader()

	var meters []clouds.Meter
	for _, k := range openAIKinds {
		volume := r.Decimal(k.field, decimal.Zero)
		q := pricing.Query{
			Service:       openAIServices[0],
			Aliases:       openAIServices[1:],
			Skus:          skuCandidates(deployment, k.keywords),
			Unit:          k.unit,
			MeterContains: k.keywords[0],
			RequireAny:    k.tokens,
		}
		if deployment != "" {
			q.MeterContains = deployment
		}
		m := clouds.NewMeter(k.meter, q, volume.Mul(k.perUnit)).
			WithOverride(overrides.OptionalDecimal(k.override))
		meters = append(meters, m)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := overrides.Err(); err != nil {
		return nil, err
	}
	return clouds.Positive(meters...), nil
}

// Price sums all usage meters
func (h *OpenAIHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	deployment := c.Reader().String("deployment", "")
	if len(meters) == 0 {
		return clouds.Line(strings.TrimSpace("Azure OpenAI "+deployment+" (no usage provided)"), nil, nil)
	}
	parts := make([]string, 0, len(meters))
	for _, m := range meters {
		parts = append(parts, m.Name)
	}
	desc := strings.TrimSpace(fmt.Sprintf("Azure OpenAI %s %s", deployment, strings.Join(parts, ", ")))
	return clouds.Line(desc, meters, prices)
}
