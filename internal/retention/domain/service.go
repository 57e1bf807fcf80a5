package domain

import (
	"context"
	"errors"
	"time"

	analytics "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type RetentionRates struct {
	Rate7d  int `json:"rate_7d"`
	Rate30d int `json:"rate_30d"`
	Rate60d int `json:"rate_60d"`
}

type PlanRetention struct {
	PlanType    string `json:"plan_type"`
	TotalUsers  int64  `json:"total_users"`
	ActiveUsers int64  `json:"active_users"`
	Rate30d     int    `json:"rate_30d"`
}

type UpgradePath struct {
	FromPlan string `json:"from_plan"`
	ToPlan   string `json:"to_plan"`
	Count    int64  `json:"count"`
}

type ActivityPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type Overview struct {
	TotalPaidUsers  int64           `json:"total_paid_users"`
	ActiveUsers     int64           `json:"active_users"`
	InactiveUsers   int64           `json:"inactive_users"`
	ChurnedUsers    int64           `json:"churned_users"`
	Rates           RetentionRates  `json:"rates"`
	ByPlan          []PlanRetention `json:"by_plan"`
	UpgradeRate     int             `json:"upgrade_rate"`
	UpgradePaths    []UpgradePath   `json:"upgrade_paths"`
	AvgLifetimeDays int             `json:"avg_lifetime_days"`
	ActivityTrend   []ActivityPoint `json:"activity_trend"`
}

type UserActivity struct {
	UserID            string         `json:"user_id"`
	UserName          string         `json:"user_name,omitempty"`
	PlanType          string         `json:"plan_type"`
	ConvertedAt       time.Time      `json:"converted_at"`
	LastActivityAt    *time.Time     `json:"last_activity_at,omitempty"`
	Status            ActivityStatus `json:"status"`
	DaysSinceActivity *int           `json:"days_since_activity,omitempty"`
}

const (
	SortByLastActivity = "last_activity"
	SortByConvertedAt  = "converted_at"
)

type ListUsersRequest struct {
	pagination.Pagination
	SortBy string `form:"sort_by"`
	Order  string `form:"order"`
}

type ListUsersResponse struct {
	pagination.PageInfo
	Users []UserActivity `json:"users"`
}

type Service interface {
	Overview(context.Context, analytics.Window) (Overview, error)
	Users(context.Context, ListUsersRequest) (ListUsersResponse, error)
}

var (
	ErrInvalidInfluencer = errors.New("invalid_influencer")
	ErrInvalidSort       = errors.New("invalid_sort")
)
