package routes

import (
	"errors"
	"strings"
	"time"

	"estately-server/models"
	"estately-server/services"
	"estately-server/storage"
	"estately-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Viewings happen on the hour inside fixed business hours. The last slot
// starts at 16:00 and ends at 17:00.
const (
	businessDayStart = 9
	businessDayEnd   = 17
)

func businessHours() []int {
	hours := make([]int, 0, businessDayEnd-businessDayStart)
	for h := businessDayStart; h < businessDayEnd; h++ {
		hours = append(hours, h)
	}
	return hours
}

// isDuplicateKey reports whether err is a unique-constraint violation, as
// opposed to some other database failure.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// availableHours is the set difference between business hours and the hours
// already taken for the day.
func availableHours(booked []int) []int {
	available := make([]int, 0, businessDayEnd-businessDayStart)
	for _, h := range businessHours() {
		if !slices.Contains(booked, h) {
			available = append(available, h)
		}
	}
	return available
}

func isBusinessHour(hour int) bool {
	return hour >= businessDayStart && hour < businessDayEnd
}

// GetPropertyAvailability returns the free viewing slots for one property
// and date.
func GetPropertyAvailability(ctx iris.Context) {
	propertyID, err := ctx.Params().GetUint("propertyID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid property ID", ctx)
		return
	}

	dateStr := ctx.URLParam("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD", ctx)
		return
	}

	var property models.Property
	if res := storage.DB.Find(&property, propertyID); res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	booked, err := bookedHours(propertyID, date)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"propertyID":     propertyID,
		"date":           date.Format("2006-01-02"),
		"availableHours": availableHours(booked),
	})
}

// CreateAppointment books a viewing slot for the current user.
func CreateAppointment(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateAppointmentInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD", ctx)
		return
	}

	if !isBusinessHour(input.Hour) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "hour is outside business hours", ctx)
		return
	}

	slotStart := time.Date(date.Year(), date.Month(), date.Day(), input.Hour, 0, 0, 0, time.Local)
	if slotStart.Before(time.Now()) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "appointment must be in the future", ctx)
		return
	}

	var property models.Property
	if res := storage.DB.Find(&property, input.PropertyID); res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if property.AgentID == claims.ID {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "you cannot book a viewing of your own listing", ctx)
		return
	}

	booked, err := bookedHours(input.PropertyID, date)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if slices.Contains(booked, input.Hour) {
		utils.CreateError(iris.StatusConflict, "Slot Taken", "that viewing slot is already booked", ctx)
		return
	}

	appointment := models.Appointment{
		PropertyID: input.PropertyID,
		AgentID:    property.AgentID,
		VisitorID:  claims.ID,
		Date:       date,
		Hour:       input.Hour,
		Status:     "pending",
		Notes:      utils.SanitizeText(input.Notes),
	}

	// The partial unique index backstops the check above under races.
	if err := storage.DB.Create(&appointment).Error; err != nil {
		if isDuplicateKey(err) {
			utils.CreateError(iris.StatusConflict, "Slot Taken", "that viewing slot is already booked", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	var visitor models.User
	storage.DB.First(&visitor, claims.ID)
	services.NewNotificationService().
		SendAppointmentRequestToAgent(&appointment, visitor.FirstName+" "+visitor.LastName, property.Title)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(appointment)
}

// UpdateAppointmentStatus lets the listing agent (or an admin) confirm or
// decline a pending request.
func UpdateAppointmentStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid appointment ID", ctx)
		return
	}

	var input UpdateAppointmentStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var appointment models.Appointment
	if res := storage.DB.Preload("Property").Preload("Visitor").Find(&appointment, id); res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	isAdmin := claims.Role == "admin" || claims.Role == "super_admin"
	if appointment.AgentID != claims.ID && !isAdmin {
		utils.CreateForbidden(ctx)
		return
	}

	if appointment.Status != "pending" {
		utils.CreateError(iris.StatusConflict, "Status Error", "only pending appointments can be confirmed or declined", ctx)
		return
	}

	appointment.Status = input.Status
	if err := storage.DB.Save(&appointment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewNotificationService().SendAppointmentStatusToVisitor(&appointment, appointment.Property.Title)
	if input.Status == "confirmed" {
		var agent models.User
		storage.DB.First(&agent, appointment.AgentID)
		services.NewMailer().SendAppointmentConfirmation(
			&appointment, appointment.Visitor.Email, agent.Email, appointment.Property.Title)
	}

	ctx.JSON(appointment)
}

// CancelAppointment cancels a booking. Visitor, agent, and admins may cancel.
func CancelAppointment(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid appointment ID", ctx)
		return
	}

	var appointment models.Appointment
	if res := storage.DB.Preload("Property").Find(&appointment, id); res.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	isAdmin := claims.Role == "admin" || claims.Role == "super_admin"
	if appointment.VisitorID != userID && appointment.AgentID != userID && !isAdmin {
		utils.CreateForbidden(ctx)
		return
	}

	if appointment.Status == "cancelled" || appointment.Status == "completed" {
		utils.CreateError(iris.StatusConflict, "Status Error", "appointment is already closed", ctx)
		return
	}

	appointment.Status = "cancelled"
	if err := storage.DB.Save(&appointment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewNotificationService().SendAppointmentStatusToVisitor(&appointment, appointment.Property.Title)
	ctx.StatusCode(iris.StatusNoContent)
}

// GetVisitorAppointments lists the current user's bookings.
func GetVisitorAppointments(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var appointments []models.Appointment
	if err := storage.DB.Preload("Property").Preload("Property.Images").
		Where("visitor_id = ?", userID).
		Order("date DESC, hour DESC").
		Find(&appointments).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(appointments)
}

// GetAgentAppointments lists viewing requests across the agent's listings.
func GetAgentAppointments(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	q := storage.DB.Preload("Property").Preload("Visitor").
		Where("agent_id = ?", userID)
	if status := ctx.URLParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := q.Order("date ASC, hour ASC").Find(&appointments).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(appointments)
}

func bookedHours(propertyID uint, date time.Time) ([]int, error) {
	var hours []int
	err := storage.DB.Model(&models.Appointment{}).
		Where("property_id = ? AND date = ? AND status NOT IN (?)",
			propertyID, date.Format("2006-01-02"), []string{"cancelled", "declined"}).
		Pluck("hour", &hours).Error
	return hours, err
}

type CreateAppointmentInput struct {
	PropertyID uint   `json:"propertyID" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Hour       int    `json:"hour" validate:"gte=0,lte=23"`
	Notes      string `json:"notes" validate:"max=1024"`
}

type UpdateAppointmentStatusInput struct {
	Status string `json:"status" validate:"required,oneof=confirmed declined"`
}
