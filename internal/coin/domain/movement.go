package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MovementType string

const (
	MovementEarned    MovementType = "earned"
	MovementSpent     MovementType = "spent"
	MovementPurchased MovementType = "purchased"
	MovementWon       MovementType = "won"
	MovementLost      MovementType = "lost"
)

// ParseMovementType validates raw input against the movement vocabulary.
func ParseMovementType(raw string) (MovementType, bool) {
	switch MovementType(raw) {
	case MovementEarned, MovementSpent, MovementPurchased, MovementWon, MovementLost:
		return MovementType(raw), true
	default:
		return "", false
	}
}

// CoinMovement is one CHC coin event attributed to an influencer's
// referred user. Amounts are whole coins; the real value is derived at
// 1000 coins per real.
type CoinMovement struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	InfluencerID snowflake.ID `gorm:"not null;index" json:"influencer_id"`
	UserID       string       `gorm:"not null;index" json:"user_id"`
	Type         MovementType `gorm:"not null;index" json:"type"`
	Amount       int64        `gorm:"not null" json:"amount"`
	RealValue    float64      `gorm:"not null;default:0" json:"real_value"`
	Description  string       `json:"description,omitempty"`
	OccurredAt   time.Time    `gorm:"not null;index" json:"occurred_at"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CoinMovement) TableName() string { return "coin_movements" }
