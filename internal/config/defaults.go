// Package config provides configuration loading and defaults for promptly.
package config

import (
	"sort"

	"github.com/akoskomuves/promptly/internal/analyzer"
)

// DefaultConfigDir is the default location for promptly configuration.
const DefaultConfigDir = "~/.config/promptly"

// DefaultDBPath is the default location of the session database.
const DefaultDBPath = "~/.promptly/promptly.db"

// DefaultBufferPath is where a client recorder writes the active session's
// transcript.
const DefaultBufferPath = "~/.promptly/buffer.json"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultModel is the pricing entry used for sessions whose model is unknown.
const DefaultModel = "sonnet"

// DefaultEnrichWorkers is the number of sessions enriched concurrently.
const DefaultEnrichWorkers = 4

// DefaultTrends holds the default trend window settings.
var DefaultTrends = Trends{
	PeriodCount: analyzer.DefaultTrendPeriods,
	PeriodDays:  analyzer.DefaultTrendDays,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultPricing returns the built-in price list, sorted by model fragment.
func DefaultPricing() []PricingEntry {
	entries := make([]PricingEntry, 0, len(analyzer.DefaultPricing))
	for model, p := range analyzer.DefaultPricing {
		entries = append(entries, PricingEntry{
			Model:            model,
			InputPerMillion:  p.InputPerMillion,
			OutputPerMillion: p.OutputPerMillion,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Model < entries[j].Model })
	return entries
}
