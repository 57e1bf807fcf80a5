package domain

import (
	"context"
	"errors"

	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type RecordConversionRequest struct {
	ReferralCode string `json:"referral_code"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name,omitempty"`
	PlanType     string `json:"plan_type,omitempty"`
}

type ConfirmPaymentRequest struct {
	UserID   string   `json:"user_id"`
	PlanType string   `json:"plan_type"`
	Amount   *float64 `json:"amount,omitempty"`
}

type RecordUpgradeRequest struct {
	UserID  string `json:"user_id"`
	NewPlan string `json:"new_plan"`
}

type ListConversionsRequest struct {
	pagination.Pagination
	Status   string `form:"status"`
	PlanType string `form:"plan_type"`
}

type ListConversionsResponse struct {
	pagination.PageInfo
	Conversions []Conversion `json:"conversions"`
}

type Service interface {
	RecordConversion(context.Context, RecordConversionRequest) (Conversion, error)
	ConfirmPayment(context.Context, ConfirmPaymentRequest) (Conversion, error)
	RecordUpgrade(context.Context, RecordUpgradeRequest) (Conversion, error)
	RecordActivity(ctx context.Context, userID string) error
	RecordChurn(ctx context.Context, userID string) error
	List(context.Context, ListConversionsRequest) (ListConversionsResponse, error)
}

var (
	ErrInvalidInfluencer    = errors.New("invalid_influencer")
	ErrInvalidUserID        = errors.New("invalid_user_id")
	ErrInvalidReferralCode  = errors.New("invalid_referral_code")
	ErrUnknownReferralCode  = errors.New("unknown_referral_code")
	ErrInvalidPlan          = errors.New("invalid_plan")
	ErrNoPendingConversions = errors.New("no_pending_conversions")
	ErrNoPaidConversion     = errors.New("no_paid_conversion")
	ErrConversionNotFound   = errors.New("conversion_not_found")
	ErrInvalidPaymentAmount = errors.New("invalid_payment_amount")
)
