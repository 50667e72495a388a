package routes

import (
	"encoding/json"
	"fmt"
	"time"

	"estately-server/logger"
	"estately-server/models"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/shopspring/decimal"
)

func CreateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	limits := models.LimitsFor(user.Tier)

	var propertyCount int64
	storage.DB.Model(&models.Property{}).
		Where("agent_id = ? AND status <> ?", claims.ID, "archived").
		Count(&propertyCount)
	if propertyCount >= int64(limits.MaxProperties) {
		utils.CreateUpgradeRequired(ctx, "properties", limits.MaxProperties)
		return
	}

	if len(input.Images) > limits.MaxImagesPerProperty {
		utils.CreateUpgradeRequired(ctx, "imagesPerProperty", limits.MaxImagesPerProperty)
		return
	}

	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	price, priceErr := decimal.NewFromString(input.Price)
	if priceErr != nil || price.IsNegative() {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "price must be a non-negative decimal string", ctx)
		return
	}

	livingArea := decimal.Zero
	if input.LivingArea != "" {
		livingArea, err = decimal.NewFromString(input.LivingArea)
		if err != nil || livingArea.IsNegative() {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "livingArea must be a non-negative decimal string", ctx)
			return
		}
	}

	property := models.Property{
		AgentID:      claims.ID,
		Title:        utils.SanitizeText(input.Title),
		Description:  utils.SanitizeListingHTML(input.Description),
		ListingType:  input.ListingType,
		PropertyType: input.PropertyType,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		Zip:          input.Zip,
		Country:      input.Country,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Price:        price,
		Currency:     input.Currency,
		LivingArea:   livingArea,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		YearBuilt:    input.YearBuilt,
		Amenities:    amenitiesJSON,
		Status:       "active",
	}

	if input.LotArea != "" {
		lotArea, lotErr := decimal.NewFromString(input.LotArea)
		if lotErr != nil || lotArea.IsNegative() {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "lotArea must be a non-negative decimal string", ctx)
			return
		}
		property.LotArea = &lotArea
	}

	result := storage.DB.Create(&property)
	if result.Error != nil {
		logger.S().Errorw("create property failed", "agentID", claims.ID, "error", result.Error)
		utils.CreateInternalServerError(ctx)
		return
	}

	insertPropertyImages(property.ID, input.Images)

	storage.DB.Preload("Images").First(&property, property.ID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(property)
}

func GetProperty(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	property := getPropertyAndAssociationsByID(id, ctx)
	if property == nil {
		return
	}

	ctx.JSON(property)
}

func GetPropertiesByAgentID(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var properties []models.Property
	propertiesExist := storage.DB.Preload("Images").Preload("Videos").
		Where("agent_id = ?", id).Order("created_at DESC").Find(&properties)

	if propertiesExist.Error != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", propertiesExist.Error.Error(), ctx)
		return
	}

	ctx.JSON(properties)
}

func UpdateProperty(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	property := getPropertyAndAssociationsByID(id, ctx)
	if property == nil {
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canMutateProperty(property, claims) {
		utils.CreateForbidden(ctx)
		return
	}

	var input UpdateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	price, priceErr := decimal.NewFromString(input.Price)
	if priceErr != nil || price.IsNegative() {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "price must be a non-negative decimal string", ctx)
		return
	}

	livingArea := decimal.Zero
	if input.LivingArea != "" {
		var areaErr error
		livingArea, areaErr = decimal.NewFromString(input.LivingArea)
		if areaErr != nil || livingArea.IsNegative() {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "livingArea must be a non-negative decimal string", ctx)
			return
		}
	}

	var lotArea *decimal.Decimal
	if input.LotArea != "" {
		parsed, lotErr := decimal.NewFromString(input.LotArea)
		if lotErr != nil || parsed.IsNegative() {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "lotArea must be a non-negative decimal string", ctx)
			return
		}
		lotArea = &parsed
	}

	amenities, _ := json.Marshal(input.Amenities)

	property.Title = utils.SanitizeText(input.Title)
	property.Description = utils.SanitizeListingHTML(input.Description)
	property.ListingType = input.ListingType
	property.PropertyType = input.PropertyType
	property.AddressLine1 = input.AddressLine1
	property.AddressLine2 = input.AddressLine2
	property.City = input.City
	property.State = input.State
	property.Zip = input.Zip
	property.Country = input.Country
	property.Lat = input.Lat
	property.Lng = input.Lng
	property.Price = price
	property.Currency = input.Currency
	property.LivingArea = livingArea
	property.LotArea = lotArea
	property.Bedrooms = input.Bedrooms
	property.Bathrooms = input.Bathrooms
	property.YearBuilt = input.YearBuilt
	property.Amenities = amenities
	if input.Status != "" {
		property.Status = input.Status
	}

	if err := storage.DB.Save(property).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

func DeleteProperty(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var property models.Property
	propertyExists := storage.DB.Find(&property, id)

	if propertyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canMutateProperty(&property, claims) {
		utils.CreateForbidden(ctx)
		return
	}

	// Hosted media first: orphaned Cloudinary assets are invisible leaks.
	var images []models.PropertyImage
	storage.DB.Where("property_id = ?", property.ID).Find(&images)
	for _, img := range images {
		if err := storage.DeleteMedia(img.PublicID, "image"); err != nil {
			logger.S().Warnw("image cleanup failed", "publicID", img.PublicID, "error", err)
		}
	}

	propertyDeleted := storage.DB.Delete(&models.Property{}, id)
	if propertyDeleted.Error != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", propertyDeleted.Error.Error(), ctx)
		return
	}

	storage.DB.Where("property_id = ?", id).Delete(&models.PropertyImage{})
	storage.DB.Where("property_id = ?", id).Delete(&models.PropertyVideo{})
	storage.DB.Where("property_id = ?", id).Delete(&models.Favorite{})
	storage.DB.Model(&models.Appointment{}).
		Where("property_id = ? AND status IN (?)", id, []string{"pending", "confirmed"}).
		Update("status", "cancelled")

	ctx.StatusCode(iris.StatusNoContent)
}

// AddPropertyImages uploads additional photos to an existing listing,
// enforcing the per-tier image cap.
func AddPropertyImages(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	property := getPropertyAndAssociationsByID(id, ctx)
	if property == nil {
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canMutateProperty(property, claims) {
		utils.CreateForbidden(ctx)
		return
	}

	var input AddImagesInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, property.AgentID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	limits := models.LimitsFor(user.Tier)

	var existing int64
	storage.DB.Model(&models.PropertyImage{}).Where("property_id = ?", property.ID).Count(&existing)
	if existing+int64(len(input.Images)) > int64(limits.MaxImagesPerProperty) {
		utils.CreateUpgradeRequired(ctx, "imagesPerProperty", limits.MaxImagesPerProperty)
		return
	}

	created := insertPropertyImages(property.ID, input.Images)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(created)
}

// DeletePropertyImage removes one photo from a listing and destroys the
// hosted asset.
func DeletePropertyImage(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	imageID, err := ctx.Params().GetUint("imageID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid image ID", ctx)
		return
	}

	var image models.PropertyImage
	if err := storage.DB.First(&image, imageID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, image.PropertyID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if property.AgentID != userID && claims.Role != "admin" && claims.Role != "super_admin" {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Delete(&image).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DeleteMedia(image.PublicID, "image"); err != nil {
		// The DB row is gone; the request still succeeds.
		logger.S().Warnw("cloudinary destroy failed", "publicID", image.PublicID, "error", err)
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// SetFeatured toggles featured placement for a listing, limited per tier.
func SetFeatured(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	property := getPropertyAndAssociationsByID(id, ctx)
	if property == nil {
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if !canMutateProperty(property, claims) {
		utils.CreateForbidden(ctx)
		return
	}

	var input SetFeaturedInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Featured {
		var user models.User
		if err := storage.DB.First(&user, property.AgentID).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		limits := models.LimitsFor(user.Tier)

		var featuredCount int64
		storage.DB.Model(&models.Property{}).
			Where("agent_id = ? AND is_featured = ? AND id <> ?", property.AgentID, true, property.ID).
			Count(&featuredCount)
		if featuredCount >= int64(limits.MaxFeatured) {
			utils.CreateUpgradeRequired(ctx, "featured", limits.MaxFeatured)
			return
		}

		days := input.Days
		if days <= 0 || days > 90 {
			days = 30
		}
		until := time.Now().AddDate(0, 0, days)
		property.IsFeatured = true
		property.FeaturedUntil = &until
	} else {
		property.IsFeatured = false
		property.FeaturedUntil = nil
	}

	if err := storage.DB.Save(property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(property)
}

func GetPropertiesByBoundingBox(ctx iris.Context) {
	var boundingBox BoundingBoxInput
	err := ctx.ReadJSON(&boundingBox)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if boundingBox.LatLow > boundingBox.LatHigh || boundingBox.LngLow > boundingBox.LngHigh {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "bounding box bounds are inverted", ctx)
		return
	}

	var properties []models.Property
	result := storage.DB.Preload("Images").
		Where("lat >= ? AND lat <= ? AND lng >= ? AND lng <= ? AND status = ? AND moderation_status = ?",
			boundingBox.LatLow, boundingBox.LatHigh, boundingBox.LngLow, boundingBox.LngHigh,
			"active", "approved").
		Order("is_featured DESC, created_at DESC").
		Limit(500).
		Find(&properties)

	if result.Error != nil {
		logger.S().Errorw("bounding box search failed", "error", result.Error)
		utils.CreateInternalServerError(ctx)
		return
	}

	if properties == nil {
		properties = []models.Property{}
	}

	ctx.JSON(properties)
}

func getPropertyAndAssociationsByID(id string, ctx iris.Context) *models.Property {
	var property models.Property
	propertyExists := storage.DB.Preload("Agent").
		Preload("Images").
		Preload("Videos").
		Find(&property, id)

	if propertyExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}

	if propertyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &property
}

// canMutateProperty implements owner-or-admin authorization on listings.
func canMutateProperty(property *models.Property, claims *utils.AccessToken) bool {
	if property.AgentID == claims.ID {
		return true
	}
	return claims.Role == "admin" || claims.Role == "super_admin"
}

func insertPropertyImages(propertyID uint, images []string) []models.PropertyImage {
	var created []models.PropertyImage

	var position int64
	storage.DB.Model(&models.PropertyImage{}).Where("property_id = ?", propertyID).Count(&position)

	for i, image := range images {
		if image == "" {
			continue
		}

		publicID := fmt.Sprintf("property/%d/%s", propertyID, uuid.NewString())
		url, err := storage.UploadBase64Image(image, publicID)
		if err != nil {
			logger.S().Warnw("image upload failed", "propertyID", propertyID, "error", err)
			continue
		}

		row := models.PropertyImage{
			PropertyID: propertyID,
			URL:        url,
			PublicID:   publicID,
			Position:   int(position) + i,
			IsCover:    position == 0 && i == 0,
		}
		if err := storage.DB.Create(&row).Error; err != nil {
			logger.S().Warnw("image row create failed", "propertyID", propertyID, "error", err)
			continue
		}
		created = append(created, row)
	}

	if created == nil {
		created = []models.PropertyImage{}
	}
	return created
}

type CreateListingInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=20000"`
	ListingType  string   `json:"listingType" validate:"required,oneof=sale rent"`
	PropertyType string   `json:"propertyType" validate:"required,oneof=house apartment condo land commercial"`
	AddressLine1 string   `json:"addressLine1" validate:"required,max=512"`
	AddressLine2 string   `json:"addressLine2" validate:"max=512"`
	City         string   `json:"city" validate:"required,max=256"`
	State        string   `json:"state" validate:"max=256"`
	Zip          string   `json:"zip" validate:"max=32"`
	Country      string   `json:"country" validate:"required,max=128"`
	Lat          *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng          *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Price        string   `json:"price" validate:"required"`
	Currency     string   `json:"currency" validate:"required,max=8"`
	LivingArea   string   `json:"livingArea"`
	LotArea      string   `json:"lotArea"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms    float32  `json:"bathrooms" validate:"gte=0,lte=50"`
	YearBuilt    *int     `json:"yearBuilt" validate:"omitempty,gte=1800,lte=2100"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
}

type UpdateListingInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=20000"`
	ListingType  string   `json:"listingType" validate:"required,oneof=sale rent"`
	PropertyType string   `json:"propertyType" validate:"required,oneof=house apartment condo land commercial"`
	AddressLine1 string   `json:"addressLine1" validate:"required,max=512"`
	AddressLine2 string   `json:"addressLine2" validate:"max=512"`
	City         string   `json:"city" validate:"required,max=256"`
	State        string   `json:"state" validate:"max=256"`
	Zip          string   `json:"zip" validate:"max=32"`
	Country      string   `json:"country" validate:"required,max=128"`
	Lat          *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng          *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Price        string   `json:"price" validate:"required"`
	Currency     string   `json:"currency" validate:"required,max=8"`
	LivingArea   string   `json:"livingArea"`
	LotArea      string   `json:"lotArea"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0,lte=50"`
	Bathrooms    float32  `json:"bathrooms" validate:"gte=0,lte=50"`
	YearBuilt    *int     `json:"yearBuilt" validate:"omitempty,gte=1800,lte=2100"`
	Amenities    []string `json:"amenities"`
	Status       string   `json:"status" validate:"omitempty,oneof=draft active sold rented archived"`
}

type AddImagesInput struct {
	Images []string `json:"images" validate:"required,min=1"`
}

type SetFeaturedInput struct {
	Featured bool `json:"featured"`
	Days     int  `json:"days" validate:"gte=0,lte=90"`
}

type BoundingBoxInput struct {
	LatLow  float64 `json:"latLow" validate:"gte=-90,lte=90"`
	LatHigh float64 `json:"latHigh" validate:"gte=-90,lte=90"`
	LngLow  float64 `json:"lngLow" validate:"gte=-180,lte=180"`
	LngHigh float64 `json:"lngHigh" validate:"gte=-180,lte=180"`
}
