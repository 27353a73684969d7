package models

import "time"

// AuthUser is what an identity provider hands back after sign up.
// Only ID is consumed by the registration workflow.
type AuthUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

// Identity is a user account held by the self-hosted identity provider.
type Identity struct {
	ID              string `gorm:"primaryKey;size:36"`
	Email           string `gorm:"uniqueIndex;not null"`
	PasswordHash    string `gorm:"not null"`
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Identity) TableName() string {
	return "identities"
}

// AuthUser projects the stored identity onto the provider-neutral shape.
func (i Identity) AuthUser() *AuthUser {
	return &AuthUser{
		ID:             i.ID,
		Email:          i.Email,
		EmailConfirmed: i.EmailVerifiedAt != nil,
	}
}
