package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	analytics "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/cache"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/clock"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

const topUserLimit = 10

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Cache cache.QueryCache
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	cache cache.QueryCache
}

func NewService(p Params) analytics.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		clock: p.Clock,
		cache: p.Cache,
	}
}

func (s *Service) Dashboard(ctx context.Context) (analytics.DashboardMetrics, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return analytics.DashboardMetrics{}, analytics.ErrInvalidInfluencer
	}

	key := cache.Key("dashboard", influencerID.String())
	return cached(ctx, s.cache, key, func() (analytics.DashboardMetrics, error) {
		return s.dashboard(ctx, influencerID)
	})
}

func (s *Service) dashboard(ctx context.Context, influencerID snowflake.ID) (analytics.DashboardMetrics, error) {
	now := s.clock.Now()

	monthStart, _, _ := analytics.MonthToDate().Bounds(now)
	weekStart, _, _ := analytics.WeekToDate().Bounds(now)
	dayStart, _, _ := analytics.Today().Bounds(now)
	periodStart, periodEnd, _ := analytics.LastNDays(30).Bounds(now)

	var metrics analytics.DashboardMetrics

	if err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(commission_amount), 0)
		 FROM conversions
		 WHERE influencer_id = ? AND status = 'paid' AND paid_at >= ? AND paid_at <= ?`,
		influencerID, monthStart, now,
	).Scan(&metrics.CurrentMonthEarnings).Error; err != nil {
		return analytics.DashboardMetrics{}, err
	}

	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT user_id) FROM conversions
		 WHERE influencer_id = ? AND status = 'paid'`,
		influencerID,
	).Scan(&metrics.TotalPayingUsers).Error; err != nil {
		return analytics.DashboardMetrics{}, err
	}

	calendarCounts := []struct {
		start time.Time
		dest  *int64
	}{
		{dayStart, &metrics.ConversionsToday},
		{weekStart, &metrics.ConversionsThisWeek},
		{monthStart, &metrics.ConversionsThisMonth},
	}
	for _, window := range calendarCounts {
		if err := s.db.WithContext(ctx).Raw(
			`SELECT COUNT(*) FROM conversions
			 WHERE influencer_id = ? AND converted_at >= ? AND converted_at <= ?`,
			influencerID, window.start, now,
		).Scan(window.dest).Error; err != nil {
			return analytics.DashboardMetrics{}, err
		}
	}

	var period struct {
		Total      int64
		Paid       int64
		PaidAmount float64
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total,
		        COALESCE(SUM(CASE WHEN status = 'paid' THEN 1 ELSE 0 END), 0) AS paid,
		        COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0) AS paid_amount
		 FROM conversions
		 WHERE influencer_id = ? AND converted_at >= ? AND converted_at <= ?`,
		influencerID, periodStart, periodEnd,
	).Scan(&period).Error; err != nil {
		return analytics.DashboardMetrics{}, err
	}
	metrics.ConversionRate = percentage(float64(period.Paid), float64(period.Total))
	if period.Paid > 0 {
		metrics.AvgOrderValue = round2(period.PaidAmount / float64(period.Paid))
	}

	if err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(commission_amount), 0) FROM conversions
		 WHERE influencer_id = ? AND status = 'pending'`,
		influencerID,
	).Scan(&metrics.PendingEarnings).Error; err != nil {
		return analytics.DashboardMetrics{}, err
	}
	metrics.CurrentMonthEarnings = round2(metrics.CurrentMonthEarnings)
	metrics.PendingEarnings = round2(metrics.PendingEarnings)

	return metrics, nil
}

func (s *Service) ConversionsByPlan(ctx context.Context, window analytics.Window) (analytics.ConversionTotals, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return analytics.ConversionTotals{}, analytics.ErrInvalidInfluencer
	}

	key := cache.Key("conversions_by_plan", influencerID.String(), window.CacheKey())
	return cached(ctx, s.cache, key, func() (analytics.ConversionTotals, error) {
		return s.conversionsByPlan(ctx, influencerID, window)
	})
}

type planRow struct {
	PlanType    string
	Count       int64
	TotalAmount float64
	Commission  float64
}

func (s *Service) conversionsByPlan(ctx context.Context, influencerID snowflake.ID, window analytics.Window) (analytics.ConversionTotals, error) {
	start, end, bounded := window.Bounds(s.clock.Now())

	query := `SELECT plan_type,
	                 COUNT(*) AS count,
	                 COALESCE(SUM(amount), 0) AS total_amount,
	                 COALESCE(SUM(commission_amount), 0) AS commission
	          FROM conversions
	          WHERE influencer_id = ? AND status = 'paid'`
	args := []any{influencerID}
	if bounded {
		query += ` AND converted_at >= ? AND converted_at <= ?`
		args = append(args, start, end)
	}
	query += ` GROUP BY plan_type ORDER BY count DESC, plan_type ASC`

	var rows []planRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return analytics.ConversionTotals{}, err
	}

	totals := analytics.ConversionTotals{
		ByPlan:       make([]analytics.PlanBreakdown, 0, len(rows)),
		UpgradePaths: []analytics.UpgradePath{},
	}
	for _, row := range rows {
		totals.TotalConversions += row.Count
		totals.TotalAmount += row.TotalAmount
		totals.TotalCommission += row.Commission
	}
	for _, row := range rows {
		totals.ByPlan = append(totals.ByPlan, analytics.PlanBreakdown{
			PlanType:    row.PlanType,
			Count:       row.Count,
			TotalAmount: round2(row.TotalAmount),
			Commission:  round2(row.Commission),
			Percentage:  percentage(float64(row.Count), float64(totals.TotalConversions)),
		})
	}
	totals.TotalAmount = round2(totals.TotalAmount)
	totals.TotalCommission = round2(totals.TotalCommission)

	paths, err := s.upgradePaths(ctx, influencerID, start, end, bounded)
	if err != nil {
		return analytics.ConversionTotals{}, err
	}
	totals.UpgradePaths = paths

	return totals, nil
}

type upgradePathRow struct {
	PreviousPlan string
	PlanType     string
	Count        int64
}

func (s *Service) upgradePaths(ctx context.Context, influencerID snowflake.ID, start, end time.Time, bounded bool) ([]analytics.UpgradePath, error) {
	query := `SELECT previous_plan, plan_type, COUNT(*) AS count
	          FROM conversions
	          WHERE influencer_id = ? AND previous_plan IS NOT NULL`
	args := []any{influencerID}
	if bounded {
		query += ` AND plan_upgraded_at >= ? AND plan_upgraded_at <= ?`
		args = append(args, start, end)
	}
	query += ` GROUP BY previous_plan, plan_type ORDER BY count DESC, previous_plan ASC, plan_type ASC`

	var rows []upgradePathRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	paths := make([]analytics.UpgradePath, 0, len(rows))
	for _, row := range rows {
		paths = append(paths, analytics.UpgradePath{
			FromPlan: row.PreviousPlan,
			ToPlan:   row.PlanType,
			Count:    row.Count,
		})
	}
	return paths, nil
}

func (s *Service) Commissions(ctx context.Context, window analytics.Window) (analytics.CommissionBreakdown, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return analytics.CommissionBreakdown{}, analytics.ErrInvalidInfluencer
	}

	key := cache.Key("commissions", influencerID.String(), window.CacheKey())
	return cached(ctx, s.cache, key, func() (analytics.CommissionBreakdown, error) {
		return s.commissions(ctx, influencerID, window)
	})
}

type commissionRow struct {
	PlanType string
	Paid     float64
	Pending  float64
}

func (s *Service) commissions(ctx context.Context, influencerID snowflake.ID, window analytics.Window) (analytics.CommissionBreakdown, error) {
	start, end, bounded := window.Bounds(s.clock.Now())

	query := `SELECT plan_type,
	                 COALESCE(SUM(CASE WHEN status = 'paid' THEN commission_amount ELSE 0 END), 0) AS paid,
	                 COALESCE(SUM(CASE WHEN status = 'pending' THEN commission_amount ELSE 0 END), 0) AS pending
	          FROM conversions
	          WHERE influencer_id = ?`
	args := []any{influencerID}
	if bounded {
		query += ` AND converted_at >= ? AND converted_at <= ?`
		args = append(args, start, end)
	}
	query += ` GROUP BY plan_type ORDER BY plan_type ASC`

	var rows []commissionRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return analytics.CommissionBreakdown{}, err
	}

	breakdown := analytics.CommissionBreakdown{
		ByPlan: make([]analytics.PlanCommission, 0, len(rows)),
	}
	for _, row := range rows {
		breakdown.TotalPaid += row.Paid
		breakdown.TotalPending += row.Pending
		breakdown.ByPlan = append(breakdown.ByPlan, analytics.PlanCommission{
			PlanType: row.PlanType,
			Paid:     round2(row.Paid),
			Pending:  round2(row.Pending),
		})
	}
	breakdown.TotalPaid = round2(breakdown.TotalPaid)
	breakdown.TotalPending = round2(breakdown.TotalPending)

	upgradeQuery := `SELECT COALESCE(SUM(commission_amount), 0)
	                 FROM conversions
	                 WHERE influencer_id = ? AND status = 'paid' AND previous_plan IS NOT NULL`
	upgradeArgs := []any{influencerID}
	if bounded {
		upgradeQuery += ` AND plan_upgraded_at >= ? AND plan_upgraded_at <= ?`
		upgradeArgs = append(upgradeArgs, start, end)
	}
	if err := s.db.WithContext(ctx).Raw(upgradeQuery, upgradeArgs...).Scan(&breakdown.UpgradeCommission).Error; err != nil {
		return analytics.CommissionBreakdown{}, err
	}
	breakdown.UpgradeCommission = round2(breakdown.UpgradeCommission)

	return breakdown, nil
}

func (s *Service) Distribution(ctx context.Context, window analytics.Window) (analytics.PlanDistribution, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return analytics.PlanDistribution{}, analytics.ErrInvalidInfluencer
	}

	key := cache.Key("distribution", influencerID.String(), window.CacheKey())
	return cached(ctx, s.cache, key, func() (analytics.PlanDistribution, error) {
		return s.distribution(ctx, influencerID, window)
	})
}

func (s *Service) distribution(ctx context.Context, influencerID snowflake.ID, window analytics.Window) (analytics.PlanDistribution, error) {
	start, end, bounded := window.Bounds(s.clock.Now())

	query := `SELECT plan_type, COUNT(*) AS count
	          FROM conversions
	          WHERE influencer_id = ? AND status = 'paid'`
	args := []any{influencerID}
	if bounded {
		query += ` AND converted_at >= ? AND converted_at <= ?`
		args = append(args, start, end)
	}
	query += ` GROUP BY plan_type ORDER BY count DESC, plan_type ASC`

	var rows []planRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return analytics.PlanDistribution{}, err
	}

	distribution := analytics.PlanDistribution{
		ByPlan: make([]analytics.PlanShare, 0, len(rows)),
	}
	for _, row := range rows {
		distribution.Total += row.Count
	}
	for _, row := range rows {
		distribution.ByPlan = append(distribution.ByPlan, analytics.PlanShare{
			PlanType:   row.PlanType,
			Count:      row.Count,
			Percentage: percentage(float64(row.Count), float64(distribution.Total)),
		})
	}
	return distribution, nil
}

func (s *Service) CoinSummary(ctx context.Context, window analytics.Window) (analytics.CoinSummary, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return analytics.CoinSummary{}, analytics.ErrInvalidInfluencer
	}

	key := cache.Key("coin_summary", influencerID.String(), window.CacheKey())
	return cached(ctx, s.cache, key, func() (analytics.CoinSummary, error) {
		return s.coinSummary(ctx, influencerID, window)
	})
}

type coinTypeRow struct {
	Type      string
	Total     int64
	RealValue float64
}

type coinUserRow struct {
	UserID    string
	Total     int64
	RealValue float64
}

type coinTimeRow struct {
	OccurredAt time.Time
	Amount     int64
}

func (s *Service) coinSummary(ctx context.Context, influencerID snowflake.ID, window analytics.Window) (analytics.CoinSummary, error) {
	start, end, bounded := window.Bounds(s.clock.Now())

	typeQuery := `SELECT type,
	                     COALESCE(SUM(amount), 0) AS total,
	                     COALESCE(SUM(real_value), 0) AS real_value
	              FROM coin_movements
	              WHERE influencer_id = ?`
	args := []any{influencerID}
	if bounded {
		typeQuery += ` AND occurred_at >= ? AND occurred_at <= ?`
		args = append(args, start, end)
	}
	typeQuery += ` GROUP BY type ORDER BY total DESC, type ASC`

	var typeRows []coinTypeRow
	if err := s.db.WithContext(ctx).Raw(typeQuery, args...).Scan(&typeRows).Error; err != nil {
		return analytics.CoinSummary{}, err
	}

	summary := analytics.CoinSummary{
		ByType:     make([]analytics.TypeBreakdown, 0, len(typeRows)),
		TopUsers:   []analytics.UserVolume{},
		DailyTrend: []analytics.DailyPoint{},
	}
	for _, row := range typeRows {
		summary.TotalCHCMoved += row.Total
		summary.TotalRealValue += row.RealValue
	}
	for _, row := range typeRows {
		summary.ByType = append(summary.ByType, analytics.TypeBreakdown{
			Type:       row.Type,
			Total:      row.Total,
			RealValue:  round2(row.RealValue),
			Percentage: percentage(float64(row.Total), float64(summary.TotalCHCMoved)),
		})
	}
	summary.TotalRealValue = round2(summary.TotalRealValue)

	userQuery := `SELECT user_id,
	                     COALESCE(SUM(amount), 0) AS total,
	                     COALESCE(SUM(real_value), 0) AS real_value
	              FROM coin_movements
	              WHERE influencer_id = ?`
	userArgs := []any{influencerID}
	if bounded {
		userQuery += ` AND occurred_at >= ? AND occurred_at <= ?`
		userArgs = append(userArgs, start, end)
	}
	userQuery += ` GROUP BY user_id ORDER BY total DESC, user_id ASC LIMIT ?`
	userArgs = append(userArgs, topUserLimit)

	var userRows []coinUserRow
	if err := s.db.WithContext(ctx).Raw(userQuery, userArgs...).Scan(&userRows).Error; err != nil {
		return analytics.CoinSummary{}, err
	}
	for _, row := range userRows {
		summary.TopUsers = append(summary.TopUsers, analytics.UserVolume{
			UserID:    row.UserID,
			Total:     row.Total,
			RealValue: round2(row.RealValue),
		})
	}

	var userCount int64
	countQuery := `SELECT COUNT(DISTINCT user_id) FROM coin_movements WHERE influencer_id = ?`
	countArgs := []any{influencerID}
	if bounded {
		countQuery += ` AND occurred_at >= ? AND occurred_at <= ?`
		countArgs = append(countArgs, start, end)
	}
	if err := s.db.WithContext(ctx).Raw(countQuery, countArgs...).Scan(&userCount).Error; err != nil {
		return analytics.CoinSummary{}, err
	}
	if userCount > 0 {
		summary.AvgPerUser = round2(float64(summary.TotalCHCMoved) / float64(userCount))
	}

	trend, err := s.dailyTrend(ctx, influencerID, start, end, bounded)
	if err != nil {
		return analytics.CoinSummary{}, err
	}
	summary.DailyTrend = trend

	return summary, nil
}

// dailyTrend buckets movement rows by calendar day in Go. Days without
// movements are omitted, not zero-filled.
func (s *Service) dailyTrend(ctx context.Context, influencerID snowflake.ID, start, end time.Time, bounded bool) ([]analytics.DailyPoint, error) {
	query := `SELECT occurred_at, amount FROM coin_movements WHERE influencer_id = ?`
	args := []any{influencerID}
	if bounded {
		query += ` AND occurred_at >= ? AND occurred_at <= ?`
		args = append(args, start, end)
	}

	var rows []coinTimeRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := make(map[string]int64, len(rows))
	for _, row := range rows {
		day := row.OccurredAt.UTC().Format("2006-01-02")
		buckets[day] += row.Amount
	}

	points := make([]analytics.DailyPoint, 0, len(buckets))
	for day, total := range buckets {
		points = append(points, analytics.DailyPoint{Date: day, Total: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func (s *Service) UpgradedUsers(ctx context.Context, req analytics.UpgradedUsersRequest) (analytics.UpgradedUsersResponse, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return analytics.UpgradedUsersResponse{}, analytics.ErrInvalidInfluencer
	}

	page := req.Pagination.Normalize()

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&conversiondomain.Conversion{}).
		Where("influencer_id = ? AND previous_plan IS NOT NULL", influencerID).
		Count(&total).Error; err != nil {
		return analytics.UpgradedUsersResponse{}, err
	}

	var users []conversiondomain.Conversion
	if err := s.db.WithContext(ctx).
		Model(&conversiondomain.Conversion{}).
		Where("influencer_id = ? AND previous_plan IS NOT NULL", influencerID).
		Order("plan_upgraded_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error; err != nil {
		return analytics.UpgradedUsersResponse{}, err
	}

	return analytics.UpgradedUsersResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Users:    users,
	}, nil
}

// cached memoizes a query result as JSON under the given key.
func cached[T any](ctx context.Context, qc cache.QueryCache, key string, compute func() (T, error)) (T, error) {
	if payload, ok := qc.Get(ctx, key); ok {
		var out T
		if err := json.Unmarshal(payload, &out); err == nil {
			return out, nil
		}
	}

	out, err := compute()
	if err != nil {
		return out, err
	}

	if payload, err := json.Marshal(out); err == nil {
		qc.Set(ctx, key, payload)
	}
	return out, nil
}

// percentage returns part/total as a percentage rounded to one decimal,
// or 0 when the denominator is 0.
func percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	f, _ := decimal.NewFromFloat(part / total * 100).Round(1).Float64()
	return f
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
