package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("  Start ")
	assert.NoError(t, err)
	assert.Equal(t, TierStart, tier)

	_, err = ParseTier("starter")
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = ParseTier("")
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestCatalogCommissions(t *testing.T) {
	catalog := DefaultCatalog()

	cases := []struct {
		tier       Tier
		price      float64
		commission float64
	}{
		{TierFree, 0, 0},
		{TierStart, 19.90, 3.98},
		{TierPro, 49.90, 9.98},
		{TierGoat, 99.90, 19.98},
	}

	for _, tc := range cases {
		entry, ok := catalog.Entry(tc.tier)
		assert.True(t, ok, "tier %s missing", tc.tier)
		assert.InDelta(t, tc.price, entry.MonthlyPriceValue(), 0.001)
		assert.InDelta(t, tc.commission, entry.CommissionValue(), 0.001)
	}
}

func TestCatalogTierOrder(t *testing.T) {
	catalog := DefaultCatalog()
	assert.Equal(t, []Tier{TierFree, TierStart, TierPro, TierGoat}, catalog.Tiers())
	assert.Equal(t, []Tier{TierStart, TierPro, TierGoat}, catalog.PaidTiers())
}
