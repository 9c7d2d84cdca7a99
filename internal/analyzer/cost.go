package analyzer

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/akoskomuves/promptly/internal/session"
)

// ModelPricing holds per-million-token pricing for a single model.
type ModelPricing struct {
	InputPerMillion  float64 `json:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million"`
}

// DefaultPricing maps model name fragments to their per-million-token
// pricing. A session's first model is matched against these keys.
var DefaultPricing = map[string]ModelPricing{
	"opus":             {InputPerMillion: 15.0, OutputPerMillion: 75.0},
	"sonnet":           {InputPerMillion: 3.0, OutputPerMillion: 15.0},
	"haiku":            {InputPerMillion: 0.25, OutputPerMillion: 1.25},
	"gpt-4o":           {InputPerMillion: 2.5, OutputPerMillion: 10.0},
	"o3-mini":          {InputPerMillion: 1.1, OutputPerMillion: 4.4},
	"gemini-2.0-flash": {InputPerMillion: 0.1, OutputPerMillion: 0.4},
	"gemini-2.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 10.0},
}

// PriceTable resolves model names to pricing.
type PriceTable struct {
	prices   map[string]ModelPricing
	keys     []string
	fallback string
}

// NewPriceTable builds a table from prices. fallback names the entry used
// for sessions whose model matches nothing; an empty or unknown fallback
// leaves such sessions unpriced.
func NewPriceTable(prices map[string]ModelPricing, fallback string) PriceTable {
	keys := make([]string, 0, len(prices))
	lower := make(map[string]ModelPricing, len(prices))
	for k, v := range prices {
		k = strings.ToLower(k)
		lower[k] = v
		keys = append(keys, k)
	}
	// Longest keys first so "gpt-4o-mini" wins over "gpt-4o".
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return PriceTable{prices: lower, keys: keys, fallback: strings.ToLower(fallback)}
}

// Lookup returns the pricing for model. A key matches when either string
// contains the other, case-insensitively.
func (pt PriceTable) Lookup(model string) (ModelPricing, bool) {
	m := strings.ToLower(model)
	if m != "" {
		for _, k := range pt.keys {
			if strings.Contains(m, k) || strings.Contains(k, m) {
				return pt.prices[k], true
			}
		}
	}
	p, ok := pt.prices[pt.fallback]
	return p, ok
}

var million = decimal.NewFromInt(1_000_000)

// EstimateCost prices a session's prompt and response tokens using its first
// model. Sessions without tokens or a resolvable price cost zero.
func (pt PriceTable) EstimateCost(rec session.Record) decimal.Decimal {
	if rec.PromptTokens == 0 && rec.ResponseTokens == 0 {
		return decimal.Zero
	}
	model := ""
	if len(rec.Models) > 0 {
		model = rec.Models[0]
	}
	p, ok := pt.Lookup(model)
	if !ok {
		return decimal.Zero
	}
	in := decimal.NewFromInt(int64(rec.PromptTokens)).Div(million).Mul(decimal.NewFromFloat(p.InputPerMillion))
	out := decimal.NewFromInt(int64(rec.ResponseTokens)).Div(million).Mul(decimal.NewFromFloat(p.OutputPerMillion))
	return in.Add(out)
}

// PriceSessions sets EstimatedCost on every record.
func (pt PriceTable) PriceSessions(recs []session.Record) {
	for i := range recs {
		recs[i].EstimatedCost = pt.EstimateCost(recs[i])
	}
}
