package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type ListFilter struct {
	Status   Status
	PlanType string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, conversion *Conversion) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*Conversion, error)
	FindByInfluencerAndUser(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, userID string) (*Conversion, error)
	ListPendingByUser(ctx context.Context, db *gorm.DB, userID string) ([]*Conversion, error)
	Update(ctx context.Context, db *gorm.DB, conversion *Conversion) error
	ListByInfluencer(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Conversion, error)
	CountByInfluencer(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, filter ListFilter) (int64, error)
}
