package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Referrer is a partner (typically a financial advisor) who refers
// applicants into the system and gets credited on the applications they
// bring in.
type Referrer struct {
	gorm.Model
	ReferrerID  string `json:"referrer_id" gorm:"uniqueIndex"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number" gorm:"uniqueIndex"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
}

// BeforeCreate assigns the public referrer ID.
func (r *Referrer) BeforeCreate(tx *gorm.DB) error {
	if r.ReferrerID == "" {
		r.ReferrerID = uuid.NewString()
	}
	return nil
}
