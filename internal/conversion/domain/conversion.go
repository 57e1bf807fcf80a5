package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Conversion is one referred user, attributed to an influencer at signup
// and updated by lifecycle events from the main platform.
type Conversion struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	InfluencerID     snowflake.ID `gorm:"not null;index;uniqueIndex:idx_conversions_attribution" json:"influencer_id"`
	UserID           string       `gorm:"not null;index;uniqueIndex:idx_conversions_attribution" json:"user_id"`
	UserName         string       `json:"user_name,omitempty"`
	Status           Status       `gorm:"not null;default:pending" json:"status"`
	PlanType         string       `gorm:"not null;default:free" json:"plan_type"`
	PreviousPlan     *string      `json:"previous_plan,omitempty"`
	Amount           float64      `gorm:"not null;default:0" json:"amount"`
	CommissionAmount float64      `gorm:"not null;default:0" json:"commission_amount"`
	MonthlyValue     float64      `gorm:"not null;default:0" json:"monthly_value"`
	ConvertedAt      time.Time    `gorm:"not null" json:"converted_at"`
	PaidAt           *time.Time   `json:"paid_at,omitempty"`
	PlanUpgradedAt   *time.Time   `json:"plan_upgraded_at,omitempty"`
	LastActivityAt   *time.Time   `gorm:"index" json:"last_activity_at,omitempty"`
	IsActive         bool         `gorm:"not null;default:true" json:"is_active"`
	ChurnedAt        *time.Time   `json:"churned_at,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
