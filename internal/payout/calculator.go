// Package payout is the single source of truth for payout math. Job-creation
// estimation and the reconciliation backfill both go through it; any other
// copy of these formulas is a bug.
package payout

import (
	"strings"
)

// All amounts are integer cents.
const (
	// MinPayoutCents is the minimum dispatch-worthy payout ($35).
	MinPayoutCents int64 = 3500
	// DefaultCategoryCents applies when no category default matches ($50).
	DefaultCategoryCents int64 = 5000

	payoutRatePercent = 60
	capRatePercent    = 80
)

// EstimateCents derives the creation-time payout estimate from the order
// subtotal: 60% of the pre-promo subtotal floored to whole dollars, raised to
// the $35 minimum, then capped at 80% of subtotal. The cap wins when the two
// bounds conflict. Always feed the pre-discount subtotal so promotional
// discounts are absorbed by the business, not the pro.
func EstimateCents(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}

	base := subtotalCents * payoutRatePercent / 100
	base -= base % 100 // floor to whole dollars

	if base < MinPayoutCents {
		base = MinPayoutCents
	}

	cap := subtotalCents * capRatePercent / 100
	if base > cap {
		base = cap
	}
	return base
}

// CategoryDefaultCents returns the flat per-service-category default.
func CategoryDefaultCents(category string) int64 {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "tv") || strings.Contains(c, "mount"):
		return 6500
	case strings.Contains(c, "camera"):
		return 8500
	case strings.Contains(c, "thermostat"):
		return 5500
	case strings.Contains(c, "lock"):
		return 6000
	default:
		return DefaultCategoryCents
	}
}

type LineItem struct {
	Category       string
	ProPayoutCents int64
}

// Input carries everything the calculator may consult, in lookup order.
type Input struct {
	LineItems            []LineItem
	EstimatedPayoutCents int64
}

// Result tags the computed amount with the strategy that produced it, so the
// chosen fallback is observable rather than inferred.
type Result struct {
	AmountCents int64
	Source      string
}

// Strategy is one named payout lookup. Compute reports false when the
// strategy has nothing to say for this input.
type Strategy interface {
	Name() string
	Compute(in Input) (int64, bool)
}

type lineItemsStrategy struct{}

func (lineItemsStrategy) Name() string { return "line_items" }

func (lineItemsStrategy) Compute(in Input) (int64, bool) {
	var total int64
	for _, li := range in.LineItems {
		total += li.ProPayoutCents
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}

type metadataEstimateStrategy struct{}

func (metadataEstimateStrategy) Name() string { return "metadata_estimate" }

func (metadataEstimateStrategy) Compute(in Input) (int64, bool) {
	if in.EstimatedPayoutCents <= 0 {
		return 0, false
	}
	return in.EstimatedPayoutCents, true
}

type categoryDefaultStrategy struct{}

func (categoryDefaultStrategy) Name() string { return "category_default" }

func (categoryDefaultStrategy) Compute(in Input) (int64, bool) {
	for _, li := range in.LineItems {
		if li.Category != "" {
			return CategoryDefaultCents(li.Category), true
		}
	}
	return DefaultCategoryCents, true
}

// Calculator walks an ordered list of named strategies and returns the first
// tagged result. The category-default strategy always answers, so Compute
// never fails.
type Calculator struct {
	strategies []Strategy
}

func NewCalculator() *Calculator {
	return &Calculator{
		strategies: []Strategy{
			lineItemsStrategy{},
			metadataEstimateStrategy{},
			categoryDefaultStrategy{},
		},
	}
}

func (c *Calculator) Compute(in Input) Result {
	for _, s := range c.strategies {
		if amount, ok := s.Compute(in); ok {
			return Result{AmountCents: amount, Source: s.Name()}
		}
	}
	// unreachable while the default strategy is registered last
	return Result{AmountCents: DefaultCategoryCents, Source: "default"}
}
