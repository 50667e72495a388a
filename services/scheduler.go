package services

import (
	"time"

	"estately-server/logger"
	"estately-server/models"
	"estately-server/storage"

	"github.com/robfig/cron/v3"
)

// StartScheduler wires the recurring maintenance jobs and returns the
// running cron so main can stop it on shutdown.
func StartScheduler() *cron.Cron {
	c := cron.New()

	// Next-day viewing reminders, every morning.
	c.AddFunc("0 8 * * *", remindUpcomingAppointments)

	// Requests the agent never answered go stale after two days.
	c.AddFunc("30 * * * *", expireStaleAppointments)

	// Featured placement lapses when its paid window ends.
	c.AddFunc("15 0 * * *", expireFeaturedListings)

	c.Start()
	logger.S().Info("scheduler started")
	return c
}

func remindUpcomingAppointments() {
	ns := NewNotificationService()
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	var appointments []models.Appointment
	if err := storage.DB.Preload("Property").
		Where("date = ? AND status = ?", tomorrow, "confirmed").
		Find(&appointments).Error; err != nil {
		logger.S().Errorw("reminder sweep failed", "error", err)
		return
	}

	for i := range appointments {
		apt := &appointments[i]
		ns.SendAppointmentReminder(apt, apt.Property.Title)
	}
	logger.S().Infow("reminder sweep done", "count", len(appointments))
}

func expireStaleAppointments() {
	cutoff := time.Now().AddDate(0, 0, -2)
	res := storage.DB.Model(&models.Appointment{}).
		Where("status = ? AND created_at < ?", "pending", cutoff).
		Update("status", "declined")
	if res.Error != nil {
		logger.S().Errorw("stale appointment sweep failed", "error", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		logger.S().Infow("stale appointments declined", "count", res.RowsAffected)
	}
}

func expireFeaturedListings() {
	res := storage.DB.Model(&models.Property{}).
		Where("is_featured = ? AND featured_until IS NOT NULL AND featured_until < ?", true, time.Now()).
		Updates(map[string]interface{}{"is_featured": false, "featured_until": nil})
	if res.Error != nil {
		logger.S().Errorw("featured expiry sweep failed", "error", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		logger.S().Infow("featured listings expired", "count", res.RowsAffected)
	}
}
