package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, movement *domain.CoinMovement) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO coin_movements
		 (id, influencer_id, user_id, type, amount, real_value, description, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movement.ID,
		movement.InfluencerID,
		movement.UserID,
		movement.Type,
		movement.Amount,
		movement.RealValue,
		movement.Description,
		movement.OccurredAt,
		movement.CreatedAt,
	).Error
}

func (r *repo) ListByInfluencer(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.CoinMovement, error) {
	var movements []*domain.CoinMovement
	stmt := r.filtered(db.WithContext(ctx), influencerID, filter)
	err := stmt.
		Order("occurred_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Normalize().Limit).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repo) CountByInfluencer(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, filter domain.ListFilter) (int64, error) {
	var count int64
	err := r.filtered(db.WithContext(ctx), influencerID, filter).Count(&count).Error
	return count, err
}

func (r *repo) filtered(db *gorm.DB, influencerID snowflake.ID, filter domain.ListFilter) *gorm.DB {
	stmt := db.Model(&domain.CoinMovement{}).Where("influencer_id = ?", influencerID)
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	return stmt
}
