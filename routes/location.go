package routes

import (
	"estately-server/models"
	"estately-server/services"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/kataras/iris/v12"
)

// AutocompleteLocations proxies the search-box autocomplete to the geocoding
// provider. The request context flows through so a client abort cancels the
// upstream call.
func AutocompleteLocations(ctx iris.Context) {
	query := ctx.URLParam("q")
	limit := ctx.URLParamIntDefault("limit", 5)

	places, err := services.Autocomplete(ctx.Request().Context(), query, limit)
	if err != nil {
		utils.CreateError(iris.StatusBadGateway, "Geocoding Error", "location lookup failed", ctx)
		return
	}

	ctx.JSON(iris.Map{"results": places})
}

// GetAvailableCities lists the distinct cities that currently have live
// listings, for the browse-by-city strip.
func GetAvailableCities(ctx iris.Context) {
	var cities []string
	if err := storage.DB.Model(&models.Property{}).
		Where("status = ? AND moderation_status = ?", "active", "approved").
		Distinct().
		Order("city ASC").
		Pluck("city", &cities).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"cities": cities})
}
