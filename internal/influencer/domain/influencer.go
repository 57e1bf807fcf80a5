package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Influencer struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID       string       `gorm:"not null;uniqueIndex" json:"user_id"`
	Name         string       `gorm:"not null" json:"name"`
	Email        string       `gorm:"not null" json:"email"`
	ReferralCode string       `gorm:"not null;uniqueIndex" json:"referral_code"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
