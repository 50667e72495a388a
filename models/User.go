package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	PhoneNumber         string         `json:"phoneNumber"`
	Password            string         `json:"-"`
	SocialLogin         bool           `json:"socialLogin"`
	SocialProvider      string         `json:"socialProvider"`
	AvatarURL           string         `json:"avatarURL"`
	Bio                 string         `json:"bio"`
	AgencyName          string         `json:"agencyName"`
	LicenseNumber       string         `json:"licenseNumber"`
	Properties          []Property     `json:"properties" gorm:"foreignKey:AgentID;references:ID"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
	IsVerified          *bool          `json:"isVerified"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:'user';index"` // user, agent, admin, super_admin
	Tier                Tier           `json:"tier" gorm:"type:varchar(20);default:'free';index"`
}

// MarshalJSON expands the raw JSON columns into arrays and drops the
// Properties back-reference to avoid a circular payload.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string   `json:"pushTokens,omitempty"`
		Properties []Property `json:"properties,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var pushTokens []string
		if err := json.Unmarshal(u.PushTokens, &pushTokens); err == nil {
			aux.PushTokens = pushTokens
		}
	}

	return json.Marshal(aux)
}
