package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment is a property viewing booked for one business-hour slot.
// Slot exclusivity (one non-cancelled appointment per property/date/hour)
// is enforced by a partial unique index created during migration.
type Appointment struct {
	gorm.Model
	PropertyID uint      `json:"propertyID" gorm:"not null;index"`
	AgentID    uint      `json:"agentID" gorm:"not null;index"`
	VisitorID  uint      `json:"visitorID" gorm:"not null;index"`
	Date       time.Time `json:"date" gorm:"type:date;not null;index"`
	Hour       int       `json:"hour" gorm:"not null"`                                   // 24h clock, start of the slot
	Status     string    `json:"status" gorm:"type:varchar(20);default:'pending';index"` // pending, confirmed, declined, cancelled, completed
	Notes      string    `json:"notes" gorm:"type:text"`
	Property   Property  `json:"property" gorm:"foreignKey:PropertyID"`
	Visitor    User      `json:"visitor" gorm:"foreignKey:VisitorID"`
}
