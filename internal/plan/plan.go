// Package plan defines the closed plan-tier vocabulary and the catalog that
// maps each tier to its monthly price and commission. The catalog is the
// single source of truth for valid tiers; amounts are derived here and never
// recomputed retroactively.
package plan

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier is a subscription plan level.
type Tier string

const (
	TierFree  Tier = "free"
	TierStart Tier = "start"
	TierPro   Tier = "pro"
	TierGoat  Tier = "goat"
)

var ErrUnknownTier = errors.New("unknown_plan_tier")

// commissionRate is the affiliate share of a plan's monthly price.
var commissionRate = decimal.NewFromFloat(0.20)

// CommissionRateValue returns the affiliate share as a float.
func CommissionRateValue() float64 {
	return commissionRate.InexactFloat64()
}

// ParseTier validates raw input against the catalog vocabulary.
func ParseTier(raw string) (Tier, error) {
	tier := Tier(strings.ToLower(strings.TrimSpace(raw)))
	switch tier {
	case TierFree, TierStart, TierPro, TierGoat:
		return tier, nil
	default:
		return "", ErrUnknownTier
	}
}

// Entry holds the reference pricing for one tier.
type Entry struct {
	Tier         Tier
	MonthlyPrice decimal.Decimal
	Commission   decimal.Decimal
}

// MonthlyPriceValue returns the monthly price as a float for aggregation.
func (e Entry) MonthlyPriceValue() float64 {
	return e.MonthlyPrice.InexactFloat64()
}

// CommissionValue returns the commission as a float for aggregation.
func (e Entry) CommissionValue() float64 {
	return e.Commission.InexactFloat64()
}

// Catalog maps tiers to pricing entries.
type Catalog struct {
	entries map[Tier]Entry
	order   []Tier
}

// DefaultCatalog returns the reference catalog.
func DefaultCatalog() *Catalog {
	c := &Catalog{entries: make(map[Tier]Entry)}
	c.add(TierFree, "0.00")
	c.add(TierStart, "19.90")
	c.add(TierPro, "49.90")
	c.add(TierGoat, "99.90")
	return c
}

func (c *Catalog) add(tier Tier, monthlyPrice string) {
	price := decimal.RequireFromString(monthlyPrice)
	c.entries[tier] = Entry{
		Tier:         tier,
		MonthlyPrice: price,
		Commission:   price.Mul(commissionRate).Round(2),
	}
	c.order = append(c.order, tier)
}

// Entry looks up the pricing entry for a tier.
func (c *Catalog) Entry(tier Tier) (Entry, bool) {
	entry, ok := c.entries[tier]
	return entry, ok
}

// Tiers returns all tiers in catalog order.
func (c *Catalog) Tiers() []Tier {
	out := make([]Tier, len(c.order))
	copy(out, c.order)
	return out
}

// PaidTiers returns the tiers that carry a price.
func (c *Catalog) PaidTiers() []Tier {
	out := make([]Tier, 0, len(c.order))
	for _, tier := range c.order {
		if !c.entries[tier].MonthlyPrice.IsZero() {
			out = append(out, tier)
		}
	}
	return out
}
