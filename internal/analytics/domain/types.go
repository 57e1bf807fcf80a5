package domain

import (
	"context"
	"errors"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type PlanBreakdown struct {
	PlanType    string  `json:"plan_type"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	Commission  float64 `json:"commission"`
	Percentage  float64 `json:"percentage"`
}

type UpgradePath struct {
	FromPlan string `json:"from_plan"`
	ToPlan   string `json:"to_plan"`
	Count    int64  `json:"count"`
}

type ConversionTotals struct {
	TotalConversions int64           `json:"total_conversions"`
	TotalAmount      float64         `json:"total_amount"`
	TotalCommission  float64         `json:"total_commission"`
	ByPlan           []PlanBreakdown `json:"by_plan"`
	UpgradePaths     []UpgradePath   `json:"upgrade_paths"`
}

type PlanCommission struct {
	PlanType string  `json:"plan_type"`
	Paid     float64 `json:"paid"`
	Pending  float64 `json:"pending"`
}

type CommissionBreakdown struct {
	TotalPaid         float64          `json:"total_paid"`
	TotalPending      float64          `json:"total_pending"`
	UpgradeCommission float64          `json:"upgrade_commission"`
	ByPlan            []PlanCommission `json:"by_plan"`
}

type PlanShare struct {
	PlanType   string  `json:"plan_type"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type PlanDistribution struct {
	Total  int64       `json:"total"`
	ByPlan []PlanShare `json:"by_plan"`
}

type TypeBreakdown struct {
	Type       string  `json:"type"`
	Total      int64   `json:"total"`
	RealValue  float64 `json:"real_value"`
	Percentage float64 `json:"percentage"`
}

type UserVolume struct {
	UserID    string  `json:"user_id"`
	Total     int64   `json:"total"`
	RealValue float64 `json:"real_value"`
}

type DailyPoint struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

type CoinSummary struct {
	TotalCHCMoved  int64           `json:"total_chc_moved"`
	TotalRealValue float64         `json:"total_real_value"`
	AvgPerUser     float64         `json:"avg_per_user"`
	ByType         []TypeBreakdown `json:"by_type"`
	TopUsers       []UserVolume    `json:"top_users"`
	DailyTrend     []DailyPoint    `json:"daily_trend"`
}

type DashboardMetrics struct {
	CurrentMonthEarnings float64 `json:"current_month_earnings"`
	TotalPayingUsers     int64   `json:"total_paying_users"`
	ConversionsToday     int64   `json:"conversions_today"`
	ConversionsThisWeek  int64   `json:"conversions_this_week"`
	ConversionsThisMonth int64   `json:"conversions_this_month"`
	ConversionRate       float64 `json:"conversion_rate"`
	AvgOrderValue        float64 `json:"avg_order_value"`
	PendingEarnings      float64 `json:"pending_earnings"`
}

type UpgradedUsersRequest struct {
	pagination.Pagination
}

type UpgradedUsersResponse struct {
	pagination.PageInfo
	Users []domain.Conversion `json:"users"`
}

type Service interface {
	Dashboard(context.Context) (DashboardMetrics, error)
	ConversionsByPlan(context.Context, Window) (ConversionTotals, error)
	Commissions(context.Context, Window) (CommissionBreakdown, error)
	Distribution(context.Context, Window) (PlanDistribution, error)
	CoinSummary(context.Context, Window) (CoinSummary, error)
	UpgradedUsers(context.Context, UpgradedUsersRequest) (UpgradedUsersResponse, error)
}

var ErrInvalidInfluencer = errors.New("invalid_influencer")
