package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type RecordMovementRequest struct {
	UserID      string     `json:"user_id"`
	Type        string     `json:"type"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description,omitempty"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

// RecordMovementResponse reports whether the event was attributed. Events
// for users outside the referral program are acknowledged but skipped.
type RecordMovementResponse struct {
	Skipped  bool          `json:"skipped"`
	Movement *CoinMovement `json:"movement,omitempty"`
}

type ListMovementsRequest struct {
	pagination.Pagination
	Type string `form:"type"`
}

type ListMovementsResponse struct {
	pagination.PageInfo
	Movements []CoinMovement `json:"movements"`
}

type ListFilter struct {
	Type MovementType
}

type Service interface {
	RecordMovement(context.Context, RecordMovementRequest) (RecordMovementResponse, error)
	List(context.Context, ListMovementsRequest) (ListMovementsResponse, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, movement *CoinMovement) error
	ListByInfluencer(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*CoinMovement, error)
	CountByInfluencer(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, filter ListFilter) (int64, error)
}

var (
	ErrInvalidInfluencer   = errors.New("invalid_influencer")
	ErrInvalidUserID       = errors.New("invalid_user_id")
	ErrInvalidMovementType = errors.New("invalid_movement_type")
	ErrInvalidAmount       = errors.New("invalid_amount")
)
