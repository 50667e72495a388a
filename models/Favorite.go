package models

import "gorm.io/gorm"

// Favorite links a user to a saved listing. The composite unique index keeps
// the pair single even under concurrent double-taps.
type Favorite struct {
	gorm.Model
	UserID     uint     `json:"userID" gorm:"not null;uniqueIndex:idx_favorite_user_property"`
	PropertyID uint     `json:"propertyID" gorm:"not null;uniqueIndex:idx_favorite_user_property"`
	Property   Property `json:"property" gorm:"foreignKey:PropertyID"`
}
