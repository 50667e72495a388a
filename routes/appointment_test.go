package routes

import (
	"errors"
	"testing"
	"time"

	"estately-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessHours(t *testing.T) {
	hours := businessHours()
	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16}, hours)
}

func TestAvailableHoursNothingBooked(t *testing.T) {
	assert.Equal(t, businessHours(), availableHours(nil))
}

func TestAvailableHoursExcludesBooked(t *testing.T) {
	available := availableHours([]int{9, 12, 16})
	assert.Equal(t, []int{10, 11, 13, 14, 15}, available)
}

func TestAvailableHoursFullyBooked(t *testing.T) {
	available := availableHours(businessHours())
	assert.Empty(t, available)
}

func TestAvailableHoursIgnoresOutOfRangeBookings(t *testing.T) {
	// Rows predating a business-hours change should not widen the day.
	available := availableHours([]int{7, 20})
	assert.Equal(t, businessHours(), available)
}

func TestIsBusinessHour(t *testing.T) {
	assert.False(t, isBusinessHour(8))
	assert.True(t, isBusinessHour(9))
	assert.True(t, isBusinessHour(16))
	assert.False(t, isBusinessHour(17))
	assert.False(t, isBusinessHour(-1))
}

func TestIsDuplicateKey(t *testing.T) {
	db := openRoutesTestDB(t)
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX idx_appointment_slot ON appointments (property_id, date, hour)").Error)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	first := models.Appointment{PropertyID: 1, AgentID: 1, VisitorID: 2, Date: date, Hour: 10, Status: "pending"}
	require.NoError(t, db.Create(&first).Error)

	second := models.Appointment{PropertyID: 1, AgentID: 1, VisitorID: 3, Date: date, Hour: 10, Status: "pending"}
	err := db.Create(&second).Error
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))

	// Other database failures must not be reported as slot conflicts.
	assert.False(t, isDuplicateKey(errors.New("driver: bad connection")))
}
