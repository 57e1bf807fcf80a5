package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, conversion *domain.Conversion) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO conversions
		 (id, influencer_id, user_id, user_name, status, plan_type, previous_plan, amount,
		  commission_amount, monthly_value, converted_at, paid_at, plan_upgraded_at,
		  last_activity_at, is_active, churned_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conversion.ID,
		conversion.InfluencerID,
		conversion.UserID,
		conversion.UserName,
		conversion.Status,
		conversion.PlanType,
		conversion.PreviousPlan,
		conversion.Amount,
		conversion.CommissionAmount,
		conversion.MonthlyValue,
		conversion.ConvertedAt,
		conversion.PaidAt,
		conversion.PlanUpgradedAt,
		conversion.LastActivityAt,
		conversion.IsActive,
		conversion.ChurnedAt,
		conversion.CreatedAt,
		conversion.UpdatedAt,
	).Error
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.Conversion, error) {
	var conversion domain.Conversion
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("converted_at desc, id desc").
		Limit(1).
		Find(&conversion).Error
	if err != nil {
		return nil, err
	}
	if conversion.ID == 0 {
		return nil, nil
	}
	return &conversion, nil
}

func (r *repo) FindByInfluencerAndUser(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, userID string) (*domain.Conversion, error) {
	var conversion domain.Conversion
	err := db.WithContext(ctx).
		Where("influencer_id = ? AND user_id = ?", influencerID, userID).
		Limit(1).
		Find(&conversion).Error
	if err != nil {
		return nil, err
	}
	if conversion.ID == 0 {
		return nil, nil
	}
	return &conversion, nil
}

func (r *repo) ListPendingByUser(ctx context.Context, db *gorm.DB, userID string) ([]*domain.Conversion, error) {
	var conversions []*domain.Conversion
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusPending).
		Order("converted_at desc, id desc").
		Find(&conversions).Error
	if err != nil {
		return nil, err
	}
	return conversions, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, conversion *domain.Conversion) error {
	return db.WithContext(ctx).Exec(
		`UPDATE conversions SET
		   status = ?, plan_type = ?, previous_plan = ?, amount = ?, commission_amount = ?,
		   monthly_value = ?, paid_at = ?, plan_upgraded_at = ?, last_activity_at = ?,
		   is_active = ?, churned_at = ?, updated_at = ?
		 WHERE id = ?`,
		conversion.Status,
		conversion.PlanType,
		conversion.PreviousPlan,
		conversion.Amount,
		conversion.CommissionAmount,
		conversion.MonthlyValue,
		conversion.PaidAt,
		conversion.PlanUpgradedAt,
		conversion.LastActivityAt,
		conversion.IsActive,
		conversion.ChurnedAt,
		conversion.UpdatedAt,
		conversion.ID,
	).Error
}

func (r *repo) ListByInfluencer(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Conversion, error) {
	var conversions []*domain.Conversion
	stmt := r.filtered(db.WithContext(ctx), influencerID, filter)
	err := stmt.
		Order("converted_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Normalize().Limit).
		Find(&conversions).Error
	if err != nil {
		return nil, err
	}
	return conversions, nil
}

func (r *repo) CountByInfluencer(ctx context.Context, db *gorm.DB, influencerID snowflake.ID, filter domain.ListFilter) (int64, error) {
	var count int64
	err := r.filtered(db.WithContext(ctx), influencerID, filter).Count(&count).Error
	return count, err
}

func (r *repo) filtered(db *gorm.DB, influencerID snowflake.ID, filter domain.ListFilter) *gorm.DB {
	stmt := db.Model(&domain.Conversion{}).Where("influencer_id = ?", influencerID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.PlanType != "" {
		stmt = stmt.Where("plan_type = ?", filter.PlanType)
	}
	return stmt
}
