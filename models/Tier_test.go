package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitsForKnownTiers(t *testing.T) {
	assert.Equal(t, 1, LimitsFor(TierFree).MaxProperties)
	assert.Equal(t, 0, LimitsFor(TierFree).MaxFeatured)
	assert.Equal(t, 5, LimitsFor(TierPlus).MaxProperties)
	assert.Equal(t, 25, LimitsFor(TierAgent).MaxProperties)
	assert.Equal(t, 200, LimitsFor(TierPro).MaxProperties)
}

func TestLimitsForUnknownTierFallsBackToFree(t *testing.T) {
	limits := LimitsFor(Tier("platinum"))
	assert.Equal(t, LimitsFor(TierFree), limits)
}

func TestIsValidTier(t *testing.T) {
	assert.True(t, IsValidTier(TierFree))
	assert.True(t, IsValidTier(TierPro))
	assert.False(t, IsValidTier(Tier("")))
	assert.False(t, IsValidTier(Tier("FREE")))
}

func TestTierRankOrdering(t *testing.T) {
	assert.Less(t, TierRank(TierFree), TierRank(TierPlus))
	assert.Less(t, TierRank(TierPlus), TierRank(TierAgent))
	assert.Less(t, TierRank(TierAgent), TierRank(TierPro))
	assert.Equal(t, 0, TierRank(Tier("unknown")))
}
