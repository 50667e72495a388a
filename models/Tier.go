package models

// Tier is a subscription level. Listing, media and featured-placement caps
// all key off it.
type Tier string

const (
	TierFree  Tier = "free"
	TierPlus  Tier = "plus"
	TierAgent Tier = "agent"
	TierPro   Tier = "pro"
)

// TierLimits are the per-tier caps enforced at write time.
type TierLimits struct {
	MaxProperties        int `json:"maxProperties"`
	MaxImagesPerProperty int `json:"maxImagesPerProperty"`
	MaxVideosPerProperty int `json:"maxVideosPerProperty"`
	MaxFeatured          int `json:"maxFeatured"`
}

var tierLimits = map[Tier]TierLimits{
	TierFree:  {MaxProperties: 1, MaxImagesPerProperty: 5, MaxVideosPerProperty: 0, MaxFeatured: 0},
	TierPlus:  {MaxProperties: 5, MaxImagesPerProperty: 10, MaxVideosPerProperty: 1, MaxFeatured: 1},
	TierAgent: {MaxProperties: 25, MaxImagesPerProperty: 20, MaxVideosPerProperty: 3, MaxFeatured: 5},
	TierPro:   {MaxProperties: 200, MaxImagesPerProperty: 30, MaxVideosPerProperty: 10, MaxFeatured: 20},
}

var tierRank = map[Tier]int{
	TierFree:  0,
	TierPlus:  1,
	TierAgent: 2,
	TierPro:   3,
}

func IsValidTier(t Tier) bool {
	_, ok := tierLimits[t]
	return ok
}

// LimitsFor returns the caps for a tier. Unknown values fall back to the
// free tier so a bad row can never unlock unlimited listings.
func LimitsFor(t Tier) TierLimits {
	if limits, ok := tierLimits[t]; ok {
		return limits
	}
	return tierLimits[TierFree]
}

// TierRank orders tiers for upgrade/downgrade comparisons. Unknown tiers
// rank lowest.
func TierRank(t Tier) int {
	return tierRank[t]
}
