package models

import "gorm.io/gorm"

// SubscriptionEvent records a tier change. Charging happens outside this
// service; the row is the audit trail the billing side reconciles against.
type SubscriptionEvent struct {
	gorm.Model
	UserID   uint   `json:"userID" gorm:"not null;index"`
	FromTier Tier   `json:"fromTier" gorm:"type:varchar(20);not null"`
	ToTier   Tier   `json:"toTier" gorm:"type:varchar(20);not null"`
	Source   string `json:"source" gorm:"type:varchar(20);default:'self'"` // self, admin
	Note     string `json:"note" gorm:"size:512"`
}
