package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, influencer *domain.Influencer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO influencers (id, user_id, name, email, referral_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		influencer.ID,
		influencer.UserID,
		influencer.Name,
		influencer.Email,
		influencer.ReferralCode,
		influencer.CreatedAt,
		influencer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Influencer, error) {
	var influencer domain.Influencer
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, email, referral_code, created_at, updated_at
		 FROM influencers WHERE id = ?`,
		id,
	).Scan(&influencer).Error
	if err != nil {
		return nil, err
	}
	if influencer.ID == 0 {
		return nil, nil
	}
	return &influencer, nil
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.Influencer, error) {
	var influencer domain.Influencer
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, email, referral_code, created_at, updated_at
		 FROM influencers WHERE user_id = ?`,
		userID,
	).Scan(&influencer).Error
	if err != nil {
		return nil, err
	}
	if influencer.ID == 0 {
		return nil, nil
	}
	return &influencer, nil
}

func (r *repo) FindByReferralCode(ctx context.Context, db *gorm.DB, code string) (*domain.Influencer, error) {
	var influencer domain.Influencer
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, email, referral_code, created_at, updated_at
		 FROM influencers WHERE referral_code = ?`,
		code,
	).Scan(&influencer).Error
	if err != nil {
		return nil, err
	}
	if influencer.ID == 0 {
		return nil, nil
	}
	return &influencer, nil
}

func (r *repo) ReferralCodeExists(ctx context.Context, db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM influencers WHERE referral_code = ?`,
		code,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) UpdateReferralCode(ctx context.Context, db *gorm.DB, id snowflake.ID, code string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE influencers SET referral_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		code,
		id,
	).Error
}
