package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	AgentID      uint             `json:"agentID" gorm:"index"`
	Title        string           `json:"title"`
	Description  string           `json:"description" gorm:"type:text"`
	ListingType  string           `json:"listingType" gorm:"type:varchar(10);index"` // sale, rent
	PropertyType string           `json:"propertyType"`                              // house, apartment, condo, land, commercial
	AddressLine1 string           `json:"addressLine1"`
	AddressLine2 string           `json:"addressLine2"`
	City         string           `json:"city" gorm:"index"`
	State        string           `json:"state"`
	Zip          string           `json:"zip"`
	Country      string           `json:"country"`
	Lat          *float64         `json:"lat" gorm:"index"`
	Lng          *float64         `json:"lng" gorm:"index"`
	Price        decimal.Decimal  `json:"price" gorm:"type:numeric(14,2)"`
	Currency     string           `json:"currency" gorm:"type:varchar(8);default:'USD'"`
	LivingArea   decimal.Decimal  `json:"livingArea" gorm:"type:numeric(10,1)"` // square meters
	LotArea      *decimal.Decimal `json:"lotArea" gorm:"type:numeric(12,1)"`
	Bedrooms     int              `json:"bedrooms"`
	Bathrooms    float32          `json:"bathrooms"`
	YearBuilt    *int             `json:"yearBuilt"`
	Amenities    datatypes.JSON   `json:"amenities"`
	Images       []PropertyImage  `json:"images" gorm:"foreignKey:PropertyID;references:ID"`
	Videos       []PropertyVideo  `json:"videos" gorm:"foreignKey:PropertyID;references:ID"`
	Agent        User             `json:"agent" gorm:"foreignKey:AgentID;references:ID"`

	// Lifecycle the agent controls.
	Status string `json:"status" gorm:"type:varchar(20);default:'active';index"` // draft, active, sold, rented, archived

	// Featured placement, tier-limited.
	IsFeatured    bool       `json:"isFeatured" gorm:"default:false;index"`
	FeaturedUntil *time.Time `json:"featuredUntil"`

	// Admin moderation fields.
	ModerationStatus string `json:"moderationStatus" gorm:"type:varchar(20);default:'pending';index"` // pending, approved, rejected
	ReviewNotes      string `json:"reviewNotes" gorm:"type:text"`
	IsFlagged        bool   `json:"isFlagged" gorm:"default:false;index"`
	FlagReason       string `json:"flagReason" gorm:"type:text"`
}

// MarshalJSON converts the exact numeric columns into JSON-safe floats,
// expands the amenities JSON column into an array and trims the agent
// back-reference.
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Price      *float64 `json:"price"`
		LivingArea *float64 `json:"livingArea"`
		LotArea    *float64 `json:"lotArea,omitempty"`
		Amenities  []string `json:"amenities"`
		Agent      *User    `json:"agent,omitempty"`
		*Alias
	}{
		Price:      DecimalToFloat(p.Price, "price"),
		LivingArea: DecimalToFloat(p.LivingArea, "livingArea"),
		Amenities:  []string{},
		Alias:      (*Alias)(p),
	}

	if p.LotArea != nil {
		aux.LotArea = DecimalToFloat(*p.LotArea, "lotArea")
	}

	if p.Amenities != nil {
		var amenities []string
		if err := json.Unmarshal(p.Amenities, &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	// Only include the agent when the row is preloaded, and break the
	// properties back-reference before encoding.
	if p.Agent.ID > 0 {
		agentCopy := p.Agent
		agentCopy.Properties = nil
		aux.Agent = &agentCopy
	}

	return json.Marshal(aux)
}
