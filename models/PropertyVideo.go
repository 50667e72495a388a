package models

import "gorm.io/gorm"

type PropertyVideo struct {
	gorm.Model
	PropertyID uint   `json:"propertyID" gorm:"not null;index"`
	URL        string `json:"url" gorm:"size:512;not null"`
	PublicID   string `json:"publicID" gorm:"size:256;index"`
	Mime       string `json:"mime" gorm:"size:64"`
	Caption    string `json:"caption" gorm:"size:256"`
}
