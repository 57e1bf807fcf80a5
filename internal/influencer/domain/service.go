package domain

import (
	"context"
	"errors"
)

type CreateInfluencerRequest struct {
	UserID string
	Name   string
	Email  string
}

type ReferralCodeResponse struct {
	ReferralCode string `json:"referral_code"`
	ReferralLink string `json:"referral_link"`
}

type ValidateCodeResponse struct {
	Valid          bool   `json:"valid"`
	InfluencerID   string `json:"influencer_id,omitempty"`
	InfluencerName string `json:"influencer_name,omitempty"`
}

type Service interface {
	Create(context.Context, CreateInfluencerRequest) (Influencer, error)
	Get(context.Context) (Influencer, error)
	GetReferralCode(context.Context) (ReferralCodeResponse, error)
	RegenerateReferralCode(context.Context) (ReferralCodeResponse, error)
	ValidateReferralCode(ctx context.Context, code string) (ValidateCodeResponse, error)
}

var (
	ErrInvalidInfluencer = errors.New("invalid_influencer")
	ErrInvalidUserID     = errors.New("invalid_user_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrDuplicateUser     = errors.New("duplicate_user")
	ErrNotFound          = errors.New("not_found")
	ErrCodeGeneration    = errors.New("code_generation_failed")
)
