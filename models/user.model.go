package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email            string `json:"email" gorm:"uniqueIndex;not null"`
	Password         string `json:"-" gorm:"not null"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Role             string `json:"role" gorm:"default:'STUDENT'"` // STUDENT, INSTRUCTOR, ADMIN
	Bio              string `json:"bio"`
	AvatarURL        string `json:"avatar_url"`
	StripeCustomerID string `json:"-"` // lazily provisioned on first purchase
}
