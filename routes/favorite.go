package routes

import (
	"estately-server/models"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm/clause"
)

// AddFavorite saves a listing for the current user. Creating the same pair
// twice is a no-op thanks to the composite unique index.
func AddFavorite(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input FavoriteInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var property models.Property
	if res := storage.DB.Find(&property, input.PropertyID); res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	favorite := models.Favorite{UserID: claims.ID, PropertyID: input.PropertyID}
	result := storage.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&favorite)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(favorite)
}

// RemoveFavorite unsaves a listing.
func RemoveFavorite(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	propertyID, err := ctx.Params().GetUint("propertyID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid property ID", ctx)
		return
	}

	result := storage.DB.
		Where("user_id = ? AND property_id = ?", claims.ID, propertyID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// GetUserFavorites lists the current user's saved listings.
func GetUserFavorites(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var favorites []models.Favorite
	if err := storage.DB.Preload("Property").Preload("Property.Images").
		Where("user_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&favorites).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(favorites)
}

// GetPropertyFavoriteCount is public: listing cards show the save count.
func GetPropertyFavoriteCount(ctx iris.Context) {
	propertyID, err := ctx.Params().GetUint("propertyID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid property ID", ctx)
		return
	}

	var count int64
	if err := storage.DB.Model(&models.Favorite{}).
		Where("property_id = ?", propertyID).
		Count(&count).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"propertyID": propertyID, "count": count})
}

type FavoriteInput struct {
	PropertyID uint `json:"propertyID" validate:"required"`
}
