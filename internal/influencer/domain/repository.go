package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, influencer *Influencer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Influencer, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*Influencer, error)
	FindByReferralCode(ctx context.Context, db *gorm.DB, code string) (*Influencer, error)
	ReferralCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error)
	UpdateReferralCode(ctx context.Context, db *gorm.DB, id snowflake.ID, code string) error
}
