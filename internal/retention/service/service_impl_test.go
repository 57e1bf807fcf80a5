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
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/retention/domain"
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
	require.NoError(t, db.AutoMigrate(&conversiondomain.Conversion{}))

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

func (h *harness) seedPaidUser(t *testing.T, userID, planType, previousPlan string, convertedDaysAgo int, activityDaysAgo *int) {
	t.Helper()
	now := h.fake.Now()
	convertedAt := now.AddDate(0, 0, -convertedDaysAgo)
	conv := conversiondomain.Conversion{
		ID:           h.node.Generate(),
		InfluencerID: h.influencerID,
		UserID:       userID,
		Status:       conversiondomain.StatusPaid,
		PlanType:     planType,
		ConvertedAt:  convertedAt,
		PaidAt:       &convertedAt,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if previousPlan != "" {
		conv.PreviousPlan = &previousPlan
	}
	if activityDaysAgo != nil {
		activityAt := now.AddDate(0, 0, -*activityDaysAgo)
		conv.LastActivityAt = &activityAt
	}
	require.NoError(t, h.db.Create(&conv).Error)
}

func days(n int) *int { return &n }

func TestOverviewEmptyCohort(t *testing.T) {
	h := setupHarness(t)

	overview, err := h.svc.Overview(h.ctx, analytics.AllTime())
	require.NoError(t, err)

	assert.Zero(t, overview.TotalPaidUsers)
	assert.Zero(t, overview.Rates.Rate7d)
	assert.Zero(t, overview.UpgradeRate)
	assert.Zero(t, overview.AvgLifetimeDays)
	assert.Empty(t, overview.ByPlan)
}

func TestOverviewClassifiesCohort(t *testing.T) {
	h := setupHarness(t)
	h.seedPaidUser(t, "u1", "start", "", 90, days(2))    // active
	h.seedPaidUser(t, "u2", "start", "", 90, days(15))   // inactive
	h.seedPaidUser(t, "u3", "pro", "", 90, days(45))     // churned
	h.seedPaidUser(t, "u4", "pro", "start", 90, days(1)) // active, upgraded

	overview, err := h.svc.Overview(h.ctx, analytics.AllTime())
	require.NoError(t, err)

	assert.Equal(t, int64(4), overview.TotalPaidUsers)
	assert.Equal(t, int64(2), overview.ActiveUsers)
	assert.Equal(t, int64(1), overview.InactiveUsers)
	assert.Equal(t, int64(1), overview.ChurnedUsers)

	// Activity within horizons: 7d -> u1,u4; 30d -> u1,u2,u4; 60d -> all but none past 60.
	assert.Equal(t, 50, overview.Rates.Rate7d)
	assert.Equal(t, 75, overview.Rates.Rate30d)
	assert.Equal(t, 100, overview.Rates.Rate60d)

	assert.Equal(t, 25, overview.UpgradeRate)
	require.Len(t, overview.UpgradePaths, 1)
	assert.Equal(t, domain.UpgradePath{FromPlan: "start", ToPlan: "pro", Count: 1}, overview.UpgradePaths[0])

	assert.Equal(t, 90, overview.AvgLifetimeDays)

	require.Len(t, overview.ByPlan, 2)
	for _, plan := range overview.ByPlan {
		switch plan.PlanType {
		case "start":
			assert.Equal(t, int64(2), plan.TotalUsers)
			assert.Equal(t, int64(1), plan.ActiveUsers)
			assert.Equal(t, 100, plan.Rate30d)
		case "pro":
			assert.Equal(t, int64(2), plan.TotalUsers)
			assert.Equal(t, int64(1), plan.ActiveUsers)
			assert.Equal(t, 50, plan.Rate30d)
		}
	}
}

func TestRetentionRatesDecayMonotonically(t *testing.T) {
	h := setupHarness(t)
	// Activity only decays; no reactivation between evaluations.
	h.seedPaidUser(t, "u1", "start", "", 120, days(3))
	h.seedPaidUser(t, "u2", "start", "", 120, days(20))
	h.seedPaidUser(t, "u3", "start", "", 120, days(50))
	h.seedPaidUser(t, "u4", "start", "", 120, days(90))

	overview, err := h.svc.Overview(h.ctx, analytics.AllTime())
	require.NoError(t, err)

	assert.LessOrEqual(t, overview.Rates.Rate7d, overview.Rates.Rate30d)
	assert.LessOrEqual(t, overview.Rates.Rate30d, overview.Rates.Rate60d)
}

func TestOverviewExcludesChurned35dUserFromRates(t *testing.T) {
	h := setupHarness(t)
	h.seedPaidUser(t, "u1", "start", "", 40, nil) // no activity, conversion 40d old

	overview, err := h.svc.Overview(h.ctx, analytics.AllTime())
	require.NoError(t, err)

	assert.Equal(t, int64(1), overview.ChurnedUsers)
	assert.Zero(t, overview.Rates.Rate7d)
	assert.Zero(t, overview.Rates.Rate30d)
}

func TestOverviewWindowBoundsCohort(t *testing.T) {
	h := setupHarness(t)
	h.seedPaidUser(t, "u1", "start", "", 10, days(1))
	h.seedPaidUser(t, "u2", "start", "", 50, days(1))

	windowed, err := h.svc.Overview(h.ctx, analytics.LastNDays(30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), windowed.TotalPaidUsers)

	all, err := h.svc.Overview(h.ctx, analytics.AllTime())
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalPaidUsers)
}

func TestOverviewActivityTrend(t *testing.T) {
	h := setupHarness(t)
	h.seedPaidUser(t, "u1", "start", "", 30, days(1))
	h.seedPaidUser(t, "u2", "start", "", 30, days(1))
	h.seedPaidUser(t, "u3", "start", "", 30, days(4))

	overview, err := h.svc.Overview(h.ctx, analytics.AllTime())
	require.NoError(t, err)

	require.Len(t, overview.ActivityTrend, 2)
	assert.Equal(t, "2025-06-11", overview.ActivityTrend[0].Date)
	assert.Equal(t, int64(1), overview.ActivityTrend[0].Count)
	assert.Equal(t, "2025-06-14", overview.ActivityTrend[1].Date)
	assert.Equal(t, int64(2), overview.ActivityTrend[1].Count)
}

func TestUsersSortsNullActivityLast(t *testing.T) {
	h := setupHarness(t)
	h.seedPaidUser(t, "u1", "start", "", 10, days(2))
	h.seedPaidUser(t, "u2", "start", "", 10, nil)
	h.seedPaidUser(t, "u3", "start", "", 10, days(1))

	resp, err := h.svc.Users(h.ctx, domain.ListUsersRequest{
		Pagination: pagination.Pagination{Page: 1, Limit: 10},
	})
	require.NoError(t, err)

	require.Len(t, resp.Users, 3)
	assert.Equal(t, "u3", resp.Users[0].UserID)
	assert.Equal(t, "u1", resp.Users[1].UserID)
	assert.Equal(t, "u2", resp.Users[2].UserID)
	assert.Nil(t, resp.Users[2].DaysSinceActivity)
	require.NotNil(t, resp.Users[0].DaysSinceActivity)
	assert.Equal(t, 1, *resp.Users[0].DaysSinceActivity)
}

func TestUsersSortByConvertedAt(t *testing.T) {
	h := setupHarness(t)
	h.seedPaidUser(t, "u1", "start", "", 30, nil)
	h.seedPaidUser(t, "u2", "start", "", 5, nil)

	resp, err := h.svc.Users(h.ctx, domain.ListUsersRequest{
		Pagination: pagination.Pagination{Page: 1, Limit: 10},
		SortBy:     domain.SortByConvertedAt,
		Order:      "asc",
	})
	require.NoError(t, err)

	require.Len(t, resp.Users, 2)
	assert.Equal(t, "u1", resp.Users[0].UserID)

	_, err = h.svc.Users(h.ctx, domain.ListUsersRequest{SortBy: "amount"})
	assert.ErrorIs(t, err, domain.ErrInvalidSort)
}

func TestUsersPagination(t *testing.T) {
	h := setupHarness(t)
	for i := 0; i < 5; i++ {
		h.seedPaidUser(t, "u"+string(rune('a'+i)), "start", "", 10, days(i+1))
	}

	resp, err := h.svc.Users(h.ctx, domain.ListUsersRequest{
		Pagination: pagination.Pagination{Page: 2, Limit: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Users, 2)
}
