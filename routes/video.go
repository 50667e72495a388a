package routes

import (
	"fmt"

	"estately-server/logger"
	"estately-server/models"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// CreatePropertyVideo attaches a walkthrough video to a listing, limited by
// the agent's tier.
func CreatePropertyVideo(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateVideoInput
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
	if !canMutateProperty(&property, claims) {
		utils.CreateForbidden(ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, property.AgentID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	limits := models.LimitsFor(user.Tier)

	var videoCount int64
	storage.DB.Model(&models.PropertyVideo{}).
		Where("property_id = ?", property.ID).
		Count(&videoCount)
	if videoCount >= int64(limits.MaxVideosPerProperty) {
		utils.CreateUpgradeRequired(ctx, "videosPerProperty", limits.MaxVideosPerProperty)
		return
	}

	publicID := fmt.Sprintf("property/%d/video/%s", property.ID, uuid.NewString())
	url, uploadErr := storage.UploadBase64Video(input.Data, publicID, input.Mime)
	if uploadErr != nil {
		logger.S().Warnw("video upload failed", "propertyID", property.ID, "error", uploadErr)
		utils.CreateError(iris.StatusBadRequest, "Upload Error", "video upload failed", ctx)
		return
	}

	video := models.PropertyVideo{
		PropertyID: property.ID,
		URL:        url,
		PublicID:   publicID,
		Mime:       input.Mime,
		Caption:    utils.SanitizeText(input.Caption),
	}
	if err := storage.DB.Create(&video).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(video)
}

// DeletePropertyVideo removes a walkthrough video.
func DeletePropertyVideo(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid video ID", ctx)
		return
	}

	var video models.PropertyVideo
	if res := storage.DB.Find(&video, id); res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, video.PropertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if !canMutateProperty(&property, claims) {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Delete(&video).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if err := storage.DeleteMedia(video.PublicID, "video"); err != nil {
		logger.S().Warnw("cloudinary destroy failed", "publicID", video.PublicID, "error", err)
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// ListPropertyVideos is public.
func ListPropertyVideos(ctx iris.Context) {
	propertyID, err := ctx.Params().GetUint("propertyID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid property ID", ctx)
		return
	}

	var videos []models.PropertyVideo
	if err := storage.DB.Where("property_id = ?", propertyID).
		Order("created_at ASC").
		Find(&videos).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(videos)
}

type CreateVideoInput struct {
	PropertyID uint   `json:"propertyID" validate:"required"`
	Data       string `json:"data" validate:"required"`
	Mime       string `json:"mime" validate:"max=64"`
	Caption    string `json:"caption" validate:"max=256"`
}
