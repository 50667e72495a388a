package routes

import (
	"strings"
	"sync"
	"time"

	"estately-server/models"
	"estately-server/services"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
)

// AdminListUsers - GET /admin/users?role=&tier=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))
	tier := strings.TrimSpace(ctx.URLParamDefault("tier", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if tier != "" {
		query = query.Where("tier = ?", tier)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Offset((page - 1) * perPage).Limit(perPage).
		Order("created_at DESC").Find(&users).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// AdminGetUser - GET /admin/users/:id with verification and subscription history.
func AdminGetUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid id", ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var verifs []models.AgentVerification
	storage.DB.Where("user_id = ?", id).Order("created_at DESC").Find(&verifs)

	var subEvents []models.SubscriptionEvent
	storage.DB.Where("user_id = ?", id).Order("created_at DESC").Limit(50).Find(&subEvents)

	var listingCount int64
	storage.DB.Model(&models.Property{}).Where("agent_id = ?", id).Count(&listingCount)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"user":               user,
			"verifications":      verifs,
			"subscriptionEvents": subEvents,
			"listingCount":       listingCount,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// AdminChangeUserRole - PATCH /admin/users/:id/role. Super admin only,
// enforced by middleware on the route party.
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid id", ctx)
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil || !validRole(body.Role) {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid Payload", "role must be user/agent/admin/super_admin", ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user)
	ctx.JSON(iris.Map{"data": user})
}

// AdminSetUserTier - PATCH /admin/users/:id/tier { tier, note }
func AdminSetUserTier(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid id", ctx)
		return
	}

	var body struct {
		Tier string `json:"tier"`
		Note string `json:"note"`
	}
	if err := ctx.ReadJSON(&body); err != nil || !models.IsValidTier(models.Tier(body.Tier)) {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid Payload", "tier must be free/plus/agent/pro", ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := user
	from := user.Tier
	user.Tier = models.Tier(body.Tier)
	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	event := models.SubscriptionEvent{
		UserID:   user.ID,
		FromTier: from,
		ToTier:   user.Tier,
		Source:   "admin",
		Note:     body.Note,
	}
	storage.DB.Create(&event)

	utils.Audit(ctx, "subscription.admin_change", "user", user.ID, before, user)
	ctx.JSON(iris.Map{"data": iris.Map{"user": user, "event": event}})
}

// AdminReviewVerification - POST /admin/verifications/:id/review { status, notes }
func AdminReviewVerification(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid id", ctx)
		return
	}

	var body struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := ctx.ReadJSON(&body); err != nil || (body.Status != "verified" && body.Status != "rejected") {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid Payload", "status must be verified or rejected", ctx)
		return
	}

	var verif models.AgentVerification
	if err := storage.DB.First(&verif, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if verif.Status != "pending" {
		utils.CreateError(iris.StatusConflict, "Conflict", "verification already reviewed", ctx)
		return
	}

	before := verif
	now := time.Now()
	verif.Status = body.Status
	verif.Notes = body.Notes
	verif.ReviewedBy = &claims.ID
	verif.ReviewedAt = &now
	if err := storage.DB.Save(&verif).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if verif.Status == "verified" {
		var user models.User
		if err := storage.DB.First(&user, verif.UserID).Error; err == nil {
			v := true
			user.IsVerified = &v
			if user.Role == "user" {
				user.Role = "agent"
			}
			storage.DB.Save(&user)
		}
	}

	utils.Audit(ctx, "verification.review", "agent_verification", verif.ID, before, verif)
	ctx.JSON(iris.Map{"data": verif})
}

// AdminListVerifications - GET /admin/verifications?status=
func AdminListVerifications(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}
	status := ctx.URLParamDefault("status", "pending")

	query := storage.DB.Model(&models.AgentVerification{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var verifs []models.AgentVerification
	if err := query.Offset((page - 1) * perPage).Limit(perPage).
		Order("created_at ASC").Find(&verifs).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, verifs, page, perPage, total)
}

// AdminListProperties - GET /admin/properties with moderation filters.
func AdminListProperties(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := ctx.URLParamDefault("status", "")
	moderation := ctx.URLParamDefault("moderation", "")
	agentID := ctx.URLParamDefault("agent_id", "")
	search := strings.TrimSpace(ctx.URLParamDefault("search", ""))
	flagged := ctx.URLParamDefault("flagged", "")

	q := storage.DB.Model(&models.Property{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if moderation != "" {
		q = q.Where("moderation_status = ?", moderation)
	}
	if agentID != "" {
		q = q.Where("agent_id = ?", agentID)
	}
	if flagged == "true" {
		q = q.Where("is_flagged = ?", true)
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("lower(title) LIKE ? OR lower(description) LIKE ? OR lower(city) LIKE ?", like, like, like)
	}

	var total int64
	q.Count(&total)

	var props []models.Property
	if err := q.Preload("Agent").Offset((page - 1) * perPage).Limit(perPage).
		Order("created_at DESC").Find(&props).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, props, page, perPage, total)
}

// AdminGetProperty - GET /admin/properties/:id?include=agent,media,appointments
func AdminGetProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid id", ctx)
		return
	}
	include := strings.Split(ctx.URLParamDefault("include", ""), ",")
	for i := range include {
		include[i] = strings.TrimSpace(include[i])
	}

	q := storage.DB.Model(&models.Property{})
	for _, inc := range include {
		switch inc {
		case "agent":
			q = q.Preload("Agent")
		case "media":
			q = q.Preload("Images").Preload("Videos")
		}
	}

	var prop models.Property
	if err := q.First(&prop, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	payload := iris.Map{"property": &prop}
	if slices.Contains(include, "appointments") {
		var appointments []models.Appointment
		storage.DB.Where("property_id = ?", id).Order("date ASC, hour ASC").Find(&appointments)
		payload["appointments"] = appointments
	}

	ctx.JSON(iris.Map{"data": payload, "meta": iris.Map{}, "links": iris.Map{}})
}

// AdminModerateProperty - PATCH /admin/properties/:id/moderation { status, note }
func AdminModerateProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid id", ctx)
		return
	}

	var body struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := ctx.ReadJSON(&body); err != nil || (body.Status != "approved" && body.Status != "rejected" && body.Status != "pending") {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid Payload", "status must be pending/approved/rejected", ctx)
		return
	}

	var prop models.Property
	if err := storage.DB.First(&prop, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := prop
	prop.ModerationStatus = body.Status
	prop.ReviewNotes = body.Note
	if err := storage.DB.Save(&prop).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "property.moderation", "property", prop.ID, before, prop)

	if before.ModerationStatus != prop.ModerationStatus {
		notificationService := services.NewNotificationService()
		go notificationService.SendModerationResultToAgent(prop.AgentID, prop.ID, prop.Title, prop.ModerationStatus)
	}

	ctx.JSON(iris.Map{"data": &prop})
}

// AdminFlagProperty - POST /admin/properties/:id/flag { reason }
func AdminFlagProperty(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid id", ctx)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Reason == "" {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid Payload", "reason required", ctx)
		return
	}

	var prop models.Property
	if err := storage.DB.First(&prop, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := prop
	prop.IsFlagged = true
	prop.FlagReason = body.Reason
	if err := storage.DB.Save(&prop).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "property.flag", "property", prop.ID, before, prop)
	ctx.JSON(iris.Map{"data": &prop})
}

// AdminStats - GET /admin/stats
func AdminStats(ctx iris.Context) {
	var pendingProperties int64
	storage.DB.Model(&models.Property{}).Where("moderation_status = ?", "pending").Count(&pendingProperties)
	var pendingVerifications int64
	storage.DB.Model(&models.AgentVerification{}).Where("status = ?", "pending").Count(&pendingVerifications)
	var flaggedProperties int64
	storage.DB.Model(&models.Property{}).Where("is_flagged = ?", true).Count(&flaggedProperties)

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var newApts7, newApts30 int64
	storage.DB.Model(&models.Appointment{}).Where("created_at >= ?", since7).Count(&newApts7)
	storage.DB.Model(&models.Appointment{}).Where("created_at >= ?", since30).Count(&newApts30)
	var newUsers7 int64
	storage.DB.Model(&models.User{}).Where("created_at >= ?", since7).Count(&newUsers7)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"pending_properties":    pendingProperties,
			"pending_verifications": pendingVerifications,
			"flagged_properties":    flaggedProperties,
			"new_appointments_7d":   newApts7,
			"new_appointments_30d":  newApts30,
			"new_users_7d":          newUsers7,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// AdminActivity - GET /admin/activity
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}

// AdminListFeedback - GET /admin/feedback
func AdminListFeedback(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	query := storage.DB.Model(&models.Feedback{})

	var total int64
	query.Count(&total)

	var feedback []models.Feedback
	if err := query.Preload("User").Offset((page - 1) * perPage).Limit(perPage).
		Order("created_at DESC").Find(&feedback).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, feedback, page, perPage, total)
}

type exportJob struct {
	ID        string `json:"id"`
	Resource  string `json:"resource"`
	Status    string `json:"status"` // pending, processing, done, failed
	CreatedAt int64  `json:"created_at"`
}

var (
	exportJobs   = map[string]*exportJob{}
	exportJobsMu sync.Mutex
)

// AdminCreateExport - POST /admin/export { resource, filters }
func AdminCreateExport(ctx iris.Context) {
	var body struct {
		Resource string                 `json:"resource"`
		Filters  map[string]interface{} `json:"filters"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Resource == "" {
		utils.CreateError(iris.StatusUnprocessableEntity, "Invalid Payload", "resource required", ctx)
		return
	}

	id := uuid.NewString()
	job := &exportJob{ID: id, Resource: body.Resource, Status: "pending", CreatedAt: time.Now().Unix()}
	exportJobsMu.Lock()
	exportJobs[id] = job
	exportJobsMu.Unlock()

	go func(j *exportJob) {
		exportJobsMu.Lock()
		j.Status = "processing"
		exportJobsMu.Unlock()
		time.Sleep(500 * time.Millisecond)
		exportJobsMu.Lock()
		j.Status = "done"
		exportJobsMu.Unlock()
	}(job)

	ctx.StatusCode(iris.StatusAccepted)
	ctx.JSON(iris.Map{"data": iris.Map{"id": id, "status": "pending"}})
}

// AdminGetExport - GET /admin/export/:id
func AdminGetExport(ctx iris.Context) {
	id := ctx.Params().GetString("id")
	exportJobsMu.Lock()
	job, ok := exportJobs[id]
	exportJobsMu.Unlock()
	if !ok {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(iris.Map{"data": job})
}

func validRole(role string) bool {
	switch role {
	case "user", "agent", "admin", "super_admin":
		return true
	}
	return false
}
