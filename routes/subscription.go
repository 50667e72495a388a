package routes

import (
	"estately-server/models"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// TierUsage pairs the current counts against the tier's quotas for the
// account screen.
type TierUsage struct {
	Tier       models.Tier       `json:"tier"`
	Limits     models.TierLimits `json:"limits"`
	Properties int64             `json:"properties"`
	Featured   int64             `json:"featured"`
}

// GetSubscription returns the current tier, its limits and live usage.
func GetSubscription(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(tierUsage(&user))
}

// UpgradeSubscription moves the account to a different tier and records the
// transition. Payment settles outside this service; the billing webhook
// calls this with the same payload an interactive upgrade does.
func UpgradeSubscription(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input UpgradeSubscriptionInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	target := models.Tier(input.Tier)
	if !models.IsValidTier(target) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "unknown subscription tier", ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if user.Tier == target {
		utils.CreateError(iris.StatusConflict, "Subscription Error", "account is already on this tier", ctx)
		return
	}

	event := models.SubscriptionEvent{
		UserID:   user.ID,
		FromTier: user.Tier,
		ToTier:   target,
		Source:   "self",
		Note:     input.Note,
	}

	previous := user.Tier
	user.Tier = target
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	storage.DB.Create(&event)
	utils.Audit(ctx, "subscription.change", "user", user.ID, previous, target)

	// Downgrades keep existing overage read-only rather than deleting
	// listings; new creations are blocked by the quota checks.
	ctx.JSON(tierUsage(&user))
}

// GetTierCatalog is public: the pricing page renders from it.
func GetTierCatalog(ctx iris.Context) {
	tiers := []models.Tier{models.TierFree, models.TierPlus, models.TierAgent, models.TierPro}
	catalog := make([]iris.Map, 0, len(tiers))
	for _, t := range tiers {
		catalog = append(catalog, iris.Map{
			"tier":   t,
			"rank":   models.TierRank(t),
			"limits": models.LimitsFor(t),
		})
	}
	ctx.JSON(iris.Map{"tiers": catalog})
}

func tierUsage(user *models.User) TierUsage {
	var propertyCount, featuredCount int64
	storage.DB.Model(&models.Property{}).
		Where("agent_id = ? AND status <> ?", user.ID, "archived").
		Count(&propertyCount)
	storage.DB.Model(&models.Property{}).
		Where("agent_id = ? AND is_featured = ?", user.ID, true).
		Count(&featuredCount)

	return TierUsage{
		Tier:       user.Tier,
		Limits:     models.LimitsFor(user.Tier),
		Properties: propertyCount,
		Featured:   featuredCount,
	}
}

type UpgradeSubscriptionInput struct {
	Tier string `json:"tier" validate:"required"`
	Note string `json:"note" validate:"max=512"`
}
