package routes

import (
	"math"
	"strings"

	"estately-server/models"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
)

// SearchProperties handles listing search with multiple filters and
// paginated output.
func SearchProperties(ctx iris.Context) {
	q := storage.DB.Model(&models.Property{})

	// Text/location filters
	if city := strings.TrimSpace(ctx.URLParam("city")); city != "" {
		q = q.Where("LOWER(city) = LOWER(?)", city)
	}
	if state := strings.TrimSpace(ctx.URLParam("state")); state != "" {
		q = q.Where("LOWER(state) = LOWER(?)", state)
	}
	if country := strings.TrimSpace(ctx.URLParam("country")); country != "" {
		q = q.Where("LOWER(country) = LOWER(?)", country)
	}

	// Listing attributes
	if lType := strings.TrimSpace(ctx.URLParam("listingType")); lType == "sale" || lType == "rent" {
		q = q.Where("listing_type = ?", lType)
	}
	if pType := strings.TrimSpace(ctx.URLParam("propertyType")); pType != "" {
		q = q.Where("property_type = ?", pType)
	}
	if minPrice, err := decimal.NewFromString(ctx.URLParam("minPrice")); err == nil && minPrice.IsPositive() {
		q = q.Where("price >= ?", minPrice)
	}
	if maxPrice, err := decimal.NewFromString(ctx.URLParam("maxPrice")); err == nil && maxPrice.IsPositive() {
		q = q.Where("price <= ?", maxPrice)
	}
	if minBeds, err := ctx.URLParamInt("minBedrooms"); err == nil && minBeds > 0 {
		q = q.Where("bedrooms >= ?", minBeds)
	}
	if minBaths, err := ctx.URLParamInt("minBathrooms"); err == nil && minBaths > 0 {
		q = q.Where("bathrooms >= ?", minBaths)
	}
	if featured, err := ctx.URLParamBool("featured"); err == nil && featured {
		q = q.Where("is_featured = ?", true)
	}

	// Only live, approved listings are searchable.
	q = q.Where("status = ? AND moderation_status = ?", "active", "approved")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to search properties"})
		return
	}

	// Sorting
	sort := strings.ToLower(strings.TrimSpace(ctx.URLParam("sort")))
	switch sort {
	case "price_low":
		q = q.Order("price ASC").Order("id DESC")
	case "price_high":
		q = q.Order("price DESC").Order("id DESC")
	default:
		q = q.Order("is_featured DESC").Order("created_at DESC")
	}

	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var properties []models.Property
	if err := q.Preload("Images").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&properties).Error; err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to search properties"})
		return
	}

	utils.JSONPage(ctx, properties, page, perPage, total)
}

// PriceDistribution buckets the prices of live listings inside a bounding
// box into equal-width bands for the map histogram.
func PriceDistribution(ctx iris.Context) {
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

	buckets := ctx.URLParamIntDefault("buckets", 10)
	if buckets < 2 || buckets > 50 {
		buckets = 10
	}

	var prices []float64
	result := storage.DB.Model(&models.Property{}).
		Where("lat >= ? AND lat <= ? AND lng >= ? AND lng <= ? AND status = ? AND moderation_status = ?",
			boundingBox.LatLow, boundingBox.LatHigh, boundingBox.LngLow, boundingBox.LngHigh,
			"active", "approved").
		Pluck("price", &prices)

	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"buckets": bucketPrices(prices, buckets)})
}

// PriceBucket is one band of the listing price histogram.
type PriceBucket struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// bucketPrices splits prices into n equal-width bands between the observed
// minimum and maximum. Non-finite values are skipped; a single distinct
// price collapses to one bucket.
func bucketPrices(prices []float64, n int) []PriceBucket {
	finite := prices[:0:0]
	for _, p := range prices {
		if !math.IsNaN(p) && !math.IsInf(p, 0) {
			finite = append(finite, p)
		}
	}
	if len(finite) == 0 {
		return []PriceBucket{}
	}

	min, max := finite[0], finite[0]
	for _, p := range finite[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}

	if min == max {
		return []PriceBucket{{Min: min, Max: max, Count: len(finite)}}
	}

	width := (max - min) / float64(n)
	buckets := make([]PriceBucket, n)
	for i := range buckets {
		buckets[i].Min = min + width*float64(i)
		buckets[i].Max = min + width*float64(i+1)
	}
	buckets[n-1].Max = max

	for _, p := range finite {
		idx := int((p - min) / width)
		if idx >= n {
			idx = n - 1
		}
		buckets[idx].Count++
	}
	return buckets
}
