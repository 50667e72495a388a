package models

import (
	"time"
)

// AgentVerification is a license/ID review request an agent submits before
// their listings may go live without moderation holds.
type AgentVerification struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"userID" gorm:"not null;index"`
	DocumentType string     `json:"documentType" gorm:"size:50;not null"` // license, national_id, passport
	DocumentURL  string     `json:"documentURL" gorm:"size:512;not null"`
	Status       string     `json:"status" gorm:"size:20;default:'pending';index"` // pending, verified, rejected
	ReviewedBy   *uint      `json:"reviewedBy" gorm:"index"`
	ReviewedAt   *time.Time `json:"reviewedAt"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
