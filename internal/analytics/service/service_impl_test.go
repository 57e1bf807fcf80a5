package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	analytics "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/cache"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/clock"
	coindomain "github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type harness struct {
	svc          *Service
	db           *gorm.DB
	node         *snowflake.Node
	fake         *clock.FakeClock
	influencerID snowflake.ID
	ctx          context.Context
}

func setupHarness(t *testing.T) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&conversiondomain.Conversion{}, &coindomain.CoinMovement{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	influencerID := node.Generate()

	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		clock: fake,
		cache: cache.NewNoopQueryCache(),
	}

	return &harness{
		svc:          svc,
		db:           db,
		node:         node,
		fake:         fake,
		influencerID: influencerID,
		ctx:          influencerctx.WithInfluencerID(context.Background(), influencerID.Int64()),
	}
}

type seedConversion struct {
	userID       string
	status       conversiondomain.Status
	planType     string
	previousPlan string
	amount       float64
	commission   float64
	convertedAgo time.Duration
	paidAgo      *time.Duration
	upgradedAgo  *time.Duration
}

func (h *harness) seed(t *testing.T, rows ...seedConversion) {
	t.Helper()
	now := h.fake.Now()
	for _, row := range rows {
		conv := conversiondomain.Conversion{
			ID:               h.node.Generate(),
			InfluencerID:     h.influencerID,
			UserID:           row.userID,
			Status:           row.status,
			PlanType:         row.planType,
			Amount:           row.amount,
			CommissionAmount: row.commission,
			MonthlyValue:     row.amount,
			ConvertedAt:      now.Add(-row.convertedAgo),
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if row.previousPlan != "" {
			prev := row.previousPlan
			conv.PreviousPlan = &prev
		}
		if row.paidAgo != nil {
			paidAt := now.Add(-*row.paidAgo)
			conv.PaidAt = &paidAt
		}
		if row.upgradedAgo != nil {
			upgradedAt := now.Add(-*row.upgradedAgo)
			conv.PlanUpgradedAt = &upgradedAt
		}
		require.NoError(t, h.db.Create(&conv).Error)
	}
}

func (h *harness) seedMovement(t *testing.T, userID, movementType string, amount int64, realValue float64, occurredAgo time.Duration) {
	t.Helper()
	movement := coindomain.CoinMovement{
		ID:           h.node.Generate(),
		InfluencerID: h.influencerID,
		UserID:       userID,
		Type:         coindomain.MovementType(movementType),
		Amount:       amount,
		RealValue:    realValue,
		OccurredAt:   h.fake.Now().Add(-occurredAgo),
		CreatedAt:    h.fake.Now(),
	}
	require.NoError(t, h.db.Create(&movement).Error)
}

func dur(d time.Duration) *time.Duration { return &d }

func day(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func TestConversionsByPlanPercentagesSumTo100(t *testing.T) {
	h := setupHarness(t)
	h.seed(t,
		seedConversion{userID: "u1", status: "paid", planType: "start", amount: 19.90, commission: 3.98, convertedAgo: day(1), paidAgo: dur(day(1))},
		seedConversion{userID: "u2", status: "paid", planType: "start", amount: 19.90, commission: 3.98, convertedAgo: day(2), paidAgo: dur(day(2))},
		seedConversion{userID: "u3", status: "paid", planType: "pro", amount: 49.90, commission: 9.98, convertedAgo: day(3), paidAgo: dur(day(3))},
		seedConversion{userID: "u4", status: "pending", planType: "free", convertedAgo: day(4)},
	)

	totals, err := h.svc.ConversionsByPlan(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)

	assert.Equal(t, int64(3), totals.TotalConversions)
	assert.InDelta(t, 89.70, totals.TotalAmount, 0.001)
	assert.InDelta(t, 17.94, totals.TotalCommission, 0.001)

	var countSum int64
	var pctSum float64
	for _, plan := range totals.ByPlan {
		countSum += plan.Count
		pctSum += plan.Percentage
	}
	assert.Equal(t, totals.TotalConversions, countSum)
	assert.InDelta(t, 100.0, pctSum, 0.2)
}

func TestConversionsByPlanEmptyWindow(t *testing.T) {
	h := setupHarness(t)

	totals, err := h.svc.ConversionsByPlan(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)

	assert.Zero(t, totals.TotalConversions)
	assert.Zero(t, totals.TotalAmount)
	assert.Empty(t, totals.ByPlan)
	assert.Empty(t, totals.UpgradePaths)
}

func TestUpgradeScenario(t *testing.T) {
	h := setupHarness(t)
	// u1 upgraded start -> pro; counts under pro only.
	h.seed(t,
		seedConversion{userID: "u1", status: "paid", planType: "pro", previousPlan: "start", amount: 49.90, commission: 9.98, convertedAgo: day(10), paidAgo: dur(day(10)), upgradedAgo: dur(day(2))},
	)

	totals, err := h.svc.ConversionsByPlan(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)

	require.Len(t, totals.ByPlan, 1)
	assert.Equal(t, "pro", totals.ByPlan[0].PlanType)
	assert.Equal(t, int64(1), totals.ByPlan[0].Count)

	require.Len(t, totals.UpgradePaths, 1)
	assert.Equal(t, "start", totals.UpgradePaths[0].FromPlan)
	assert.Equal(t, "pro", totals.UpgradePaths[0].ToPlan)
	assert.Equal(t, int64(1), totals.UpgradePaths[0].Count)
}

func TestCommissions(t *testing.T) {
	h := setupHarness(t)
	h.seed(t,
		seedConversion{userID: "u1", status: "paid", planType: "start", amount: 19.90, commission: 3.98, convertedAgo: day(1), paidAgo: dur(day(1))},
		seedConversion{userID: "u2", status: "pending", planType: "start", commission: 3.98, convertedAgo: day(2)},
		seedConversion{userID: "u3", status: "paid", planType: "pro", previousPlan: "start", amount: 49.90, commission: 9.98, convertedAgo: day(5), paidAgo: dur(day(5)), upgradedAgo: dur(day(3))},
	)

	breakdown, err := h.svc.Commissions(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)

	assert.InDelta(t, 13.96, breakdown.TotalPaid, 0.001)
	assert.InDelta(t, 3.98, breakdown.TotalPending, 0.001)
	assert.InDelta(t, 9.98, breakdown.UpgradeCommission, 0.001)
	assert.Len(t, breakdown.ByPlan, 2)
}

func TestDistributionZeroGuard(t *testing.T) {
	h := setupHarness(t)

	distribution, err := h.svc.Distribution(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)
	assert.Zero(t, distribution.Total)
	assert.Empty(t, distribution.ByPlan)
}

func TestCoinSummaryTypeSplit(t *testing.T) {
	h := setupHarness(t)
	h.seedMovement(t, "u1", "earned", 500, 0.50, day(1))
	h.seedMovement(t, "u1", "spent", 300, 0.30, day(2))

	summary, err := h.svc.CoinSummary(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)

	assert.Equal(t, int64(800), summary.TotalCHCMoved)
	assert.InDelta(t, 0.80, summary.TotalRealValue, 0.001)

	byType := map[string]analytics.TypeBreakdown{}
	for _, entry := range summary.ByType {
		byType[entry.Type] = entry
	}
	assert.InDelta(t, 62.5, byType["earned"].Percentage, 0.001)
	assert.InDelta(t, 37.5, byType["spent"].Percentage, 0.001)
}

func TestCoinSummaryTopUsersAndAvg(t *testing.T) {
	h := setupHarness(t)
	h.seedMovement(t, "u1", "earned", 1000, 1.00, day(1))
	h.seedMovement(t, "u2", "earned", 3000, 3.00, day(1))
	h.seedMovement(t, "u3", "earned", 2000, 2.00, day(1))

	summary, err := h.svc.CoinSummary(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)

	require.Len(t, summary.TopUsers, 3)
	assert.Equal(t, "u2", summary.TopUsers[0].UserID)
	assert.Equal(t, "u3", summary.TopUsers[1].UserID)
	assert.Equal(t, "u1", summary.TopUsers[2].UserID)
	assert.InDelta(t, 2000.0, summary.AvgPerUser, 0.001)
}

func TestCoinSummaryDailyTrendOmitsEmptyDays(t *testing.T) {
	h := setupHarness(t)
	h.seedMovement(t, "u1", "earned", 100, 0.10, day(1))
	h.seedMovement(t, "u1", "earned", 200, 0.20, day(1))
	h.seedMovement(t, "u1", "spent", 50, 0.05, day(5))

	summary, err := h.svc.CoinSummary(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)

	require.Len(t, summary.DailyTrend, 2)
	// Ascending by date; gap days are absent.
	assert.Equal(t, "2025-06-10", summary.DailyTrend[0].Date)
	assert.Equal(t, int64(50), summary.DailyTrend[0].Total)
	assert.Equal(t, "2025-06-14", summary.DailyTrend[1].Date)
	assert.Equal(t, int64(300), summary.DailyTrend[1].Total)
}

func TestCoinSummaryWindowExcludesOldMovements(t *testing.T) {
	h := setupHarness(t)
	h.seedMovement(t, "u1", "earned", 100, 0.10, day(2))
	h.seedMovement(t, "u1", "earned", 900, 0.90, day(40))

	summary, err := h.svc.CoinSummary(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)
	assert.Equal(t, int64(100), summary.TotalCHCMoved)

	all, err := h.svc.CoinSummary(h.ctx, analytics.AllTime())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), all.TotalCHCMoved)
}

func TestDashboardMetrics(t *testing.T) {
	h := setupHarness(t)
	// Evaluation time is Sunday 2025-06-15; week starts Monday 2025-06-09.
	h.seed(t,
		seedConversion{userID: "u1", status: "paid", planType: "start", amount: 19.90, commission: 3.98, convertedAgo: 2 * time.Hour, paidAgo: dur(2 * time.Hour)},
		seedConversion{userID: "u2", status: "paid", planType: "pro", amount: 49.90, commission: 9.98, convertedAgo: day(3), paidAgo: dur(day(3))},
		seedConversion{userID: "u3", status: "pending", planType: "free", convertedAgo: day(10)},
		seedConversion{userID: "u4", status: "paid", planType: "start", amount: 19.90, commission: 3.98, convertedAgo: day(45), paidAgo: dur(day(45))},
	)

	metrics, err := h.svc.Dashboard(h.ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), metrics.ConversionsToday)
	assert.Equal(t, int64(2), metrics.ConversionsThisWeek)
	assert.Equal(t, int64(3), metrics.ConversionsThisMonth)
	assert.Equal(t, int64(3), metrics.TotalPayingUsers)
	// Month-to-date commission: 3.98 + 9.98.
	assert.InDelta(t, 13.96, metrics.CurrentMonthEarnings, 0.001)
	// 30d window: u1, u2 paid out of u1, u2, u3.
	assert.InDelta(t, 66.7, metrics.ConversionRate, 0.05)
	assert.InDelta(t, 34.90, metrics.AvgOrderValue, 0.001)
	assert.InDelta(t, 0.0, metrics.PendingEarnings, 0.001)
}

func TestDashboardZeroGuards(t *testing.T) {
	h := setupHarness(t)

	metrics, err := h.svc.Dashboard(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, metrics.ConversionRate)
	assert.Zero(t, metrics.AvgOrderValue)
	assert.Zero(t, metrics.CurrentMonthEarnings)
}

func TestUpgradedUsersNewestFirst(t *testing.T) {
	h := setupHarness(t)
	h.seed(t,
		seedConversion{userID: "u1", status: "paid", planType: "pro", previousPlan: "start", amount: 49.90, commission: 9.98, convertedAgo: day(20), paidAgo: dur(day(20)), upgradedAgo: dur(day(10))},
		seedConversion{userID: "u2", status: "paid", planType: "goat", previousPlan: "pro", amount: 99.90, commission: 19.98, convertedAgo: day(15), paidAgo: dur(day(15)), upgradedAgo: dur(day(2))},
		seedConversion{userID: "u3", status: "paid", planType: "start", amount: 19.90, commission: 3.98, convertedAgo: day(5), paidAgo: dur(day(5))},
	)

	resp, err := h.svc.UpgradedUsers(h.ctx, analytics.UpgradedUsersRequest{
		Pagination: pagination.Pagination{Page: 1, Limit: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "u2", resp.Users[0].UserID)
	assert.Equal(t, "u1", resp.Users[1].UserID)
}

func TestQueryCacheMemoizesWithinTTL(t *testing.T) {
	h := setupHarness(t)
	h.svc.cache = cache.NewMemoryQueryCache(10 * time.Minute)

	h.seed(t,
		seedConversion{userID: "u1", status: "paid", planType: "start", amount: 19.90, commission: 3.98, convertedAgo: day(1), paidAgo: dur(day(1))},
	)

	first, err := h.svc.ConversionsByPlan(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalConversions)

	// New rows are invisible until the TTL lapses.
	h.seed(t,
		seedConversion{userID: "u2", status: "paid", planType: "start", amount: 19.90, commission: 3.98, convertedAgo: day(2), paidAgo: dur(day(2))},
	)

	second, err := h.svc.ConversionsByPlan(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.TotalConversions)

	// A different window has its own key and sees the new row.
	other, err := h.svc.ConversionsByPlan(h.ctx, analytics.LastNDays(7))
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.TotalConversions)
}

func TestRequiresInfluencerContext(t *testing.T) {
	h := setupHarness(t)
	bare := context.Background()

	_, err := h.svc.Dashboard(bare)
	assert.ErrorIs(t, err, analytics.ErrInvalidInfluencer)

	_, err = h.svc.ConversionsByPlan(bare, analytics.LastNDays(30))
	assert.ErrorIs(t, err, analytics.ErrInvalidInfluencer)

	_, err = h.svc.CoinSummary(bare, analytics.LastNDays(30))
	assert.ErrorIs(t, err, analytics.ErrInvalidInfluencer)
}
