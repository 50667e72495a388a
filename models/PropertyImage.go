package models

import "gorm.io/gorm"

// PropertyImage is one uploaded photo of a listing. Ordering is explicit so
// the client carousel is stable; exactly one image per property should carry
// the cover flag.
type PropertyImage struct {
	gorm.Model
	PropertyID uint   `json:"propertyID" gorm:"not null;index"`
	URL        string `json:"url" gorm:"size:512;not null"`
	PublicID   string `json:"publicID" gorm:"size:256;index"`
	Position   int    `json:"position" gorm:"default:0"`
	IsCover    bool   `json:"isCover" gorm:"default:false"`
}
