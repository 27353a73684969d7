package models

import "time"

// Profile is the dietary profile row written after a successful sign up.
// ID is the identifier of the owning AuthUser.
type Profile struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	FullName  string    `json:"full_name"`
	Diet      Diet      `json:"diet"`
	Allergies []string  `gorm:"serializer:json;type:text" json:"allergies"`
	Goal      string    `json:"goal"`
	CreatedAt time.Time `json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}
