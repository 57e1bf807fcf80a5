package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	analytics "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/cache"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/clock"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/retention/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

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

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("retention.service"),
		clock: p.Clock,
		cache: p.Cache,
	}
}

// cohortRow is one paid conversion; all retention math happens in Go over
// these rows, never in SQL.
type cohortRow struct {
	UserID         string
	UserName       string
	PlanType       string
	PreviousPlan   *string
	ConvertedAt    time.Time
	LastActivityAt *time.Time
}

func (s *Service) Overview(ctx context.Context, window analytics.Window) (domain.Overview, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return domain.Overview{}, domain.ErrInvalidInfluencer
	}

	key := cache.Key("retention_overview", influencerID.String(), window.CacheKey())
	return cached(ctx, s.cache, key, func() (domain.Overview, error) {
		return s.overview(ctx, influencerID, window)
	})
}

func (s *Service) overview(ctx context.Context, influencerID snowflake.ID, window analytics.Window) (domain.Overview, error) {
	now := s.clock.Now()
	rows, err := s.cohort(ctx, influencerID, window, now)
	if err != nil {
		return domain.Overview{}, err
	}

	overview := domain.Overview{
		ByPlan:        []domain.PlanRetention{},
		UpgradePaths:  []domain.UpgradePath{},
		ActivityTrend: []domain.ActivityPoint{},
	}
	overview.TotalPaidUsers = int64(len(rows))
	if len(rows) == 0 {
		return overview, nil
	}

	type planBucket struct {
		total  int64
		active int64
		in30d  int64
	}
	plans := map[string]*planBucket{}
	pathCounts := map[domain.UpgradePath]int64{}
	trend := map[string]int64{}

	var within7, within30, within60 int64
	var upgraded int64
	var lifetimeDays float64

	for _, row := range rows {
		status := domain.Classify(row.ConvertedAt, row.LastActivityAt, now)
		switch status {
		case domain.StatusActive:
			overview.ActiveUsers++
		case domain.StatusInactive:
			overview.InactiveUsers++
		default:
			overview.ChurnedUsers++
		}

		bucket := plans[row.PlanType]
		if bucket == nil {
			bucket = &planBucket{}
			plans[row.PlanType] = bucket
		}
		bucket.total++
		if status == domain.StatusActive {
			bucket.active++
		}

		if row.LastActivityAt != nil {
			age := now.Sub(*row.LastActivityAt)
			if age <= 7*24*time.Hour {
				within7++
			}
			if age <= 30*24*time.Hour {
				within30++
				bucket.in30d++
			}
			if age <= 60*24*time.Hour {
				within60++
			}
			day := row.LastActivityAt.UTC().Format("2006-01-02")
			trend[day]++
		}

		if row.PreviousPlan != nil {
			upgraded++
			pathCounts[domain.UpgradePath{FromPlan: *row.PreviousPlan, ToPlan: row.PlanType}]++
		}

		lifetimeDays += now.Sub(row.ConvertedAt).Hours() / 24
	}

	total := overview.TotalPaidUsers
	overview.Rates = domain.RetentionRates{
		Rate7d:  ratePct(within7, total),
		Rate30d: ratePct(within30, total),
		Rate60d: ratePct(within60, total),
	}
	overview.UpgradeRate = ratePct(upgraded, total)
	overview.AvgLifetimeDays = int(math.Round(lifetimeDays / float64(total)))

	for planType, bucket := range plans {
		overview.ByPlan = append(overview.ByPlan, domain.PlanRetention{
			PlanType:    planType,
			TotalUsers:  bucket.total,
			ActiveUsers: bucket.active,
			Rate30d:     ratePct(bucket.in30d, bucket.total),
		})
	}
	sort.Slice(overview.ByPlan, func(i, j int) bool {
		if overview.ByPlan[i].TotalUsers != overview.ByPlan[j].TotalUsers {
			return overview.ByPlan[i].TotalUsers > overview.ByPlan[j].TotalUsers
		}
		return overview.ByPlan[i].PlanType < overview.ByPlan[j].PlanType
	})

	for path, count := range pathCounts {
		path.Count = count
		overview.UpgradePaths = append(overview.UpgradePaths, path)
	}
	sort.Slice(overview.UpgradePaths, func(i, j int) bool {
		if overview.UpgradePaths[i].Count != overview.UpgradePaths[j].Count {
			return overview.UpgradePaths[i].Count > overview.UpgradePaths[j].Count
		}
		if overview.UpgradePaths[i].FromPlan != overview.UpgradePaths[j].FromPlan {
			return overview.UpgradePaths[i].FromPlan < overview.UpgradePaths[j].FromPlan
		}
		return overview.UpgradePaths[i].ToPlan < overview.UpgradePaths[j].ToPlan
	})

	for day, count := range trend {
		overview.ActivityTrend = append(overview.ActivityTrend, domain.ActivityPoint{Date: day, Count: count})
	}
	sort.Slice(overview.ActivityTrend, func(i, j int) bool {
		return overview.ActivityTrend[i].Date < overview.ActivityTrend[j].Date
	})

	return overview, nil
}

func (s *Service) cohort(ctx context.Context, influencerID snowflake.ID, window analytics.Window, now time.Time) ([]cohortRow, error) {
	start, end, bounded := window.Bounds(now)

	query := `SELECT user_id, user_name, plan_type, previous_plan, converted_at, last_activity_at
	          FROM conversions
	          WHERE influencer_id = ? AND status = 'paid'`
	args := []any{influencerID}
	if bounded {
		query += ` AND converted_at >= ? AND converted_at <= ?`
		args = append(args, start, end)
	}

	var rows []cohortRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) Users(ctx context.Context, req domain.ListUsersRequest) (domain.ListUsersResponse, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return domain.ListUsersResponse{}, domain.ErrInvalidInfluencer
	}

	orderBy, err := orderClause(req.SortBy, req.Order)
	if err != nil {
		return domain.ListUsersResponse{}, err
	}

	page := req.Pagination.Normalize()

	var total int64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM conversions WHERE influencer_id = ? AND status = 'paid'`,
		influencerID,
	).Scan(&total).Error; err != nil {
		return domain.ListUsersResponse{}, err
	}

	var rows []cohortRow
	if err := s.db.WithContext(ctx).Raw(
		`SELECT user_id, user_name, plan_type, previous_plan, converted_at, last_activity_at
		 FROM conversions
		 WHERE influencer_id = ? AND status = 'paid'
		 ORDER BY `+orderBy+`
		 LIMIT ? OFFSET ?`,
		influencerID, page.Limit, page.Offset(),
	).Scan(&rows).Error; err != nil {
		return domain.ListUsersResponse{}, err
	}

	now := s.clock.Now()
	users := make([]domain.UserActivity, 0, len(rows))
	for _, row := range rows {
		user := domain.UserActivity{
			UserID:         row.UserID,
			UserName:       row.UserName,
			PlanType:       row.PlanType,
			ConvertedAt:    row.ConvertedAt,
			LastActivityAt: row.LastActivityAt,
			Status:         domain.Classify(row.ConvertedAt, row.LastActivityAt, now),
		}
		if row.LastActivityAt != nil {
			days := int(now.Sub(*row.LastActivityAt).Hours() / 24)
			user.DaysSinceActivity = &days
		}
		users = append(users, user)
	}

	return domain.ListUsersResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Users:    users,
	}, nil
}

// orderClause maps the sort parameters to SQL. Users without activity sort
// last regardless of direction; the expression is portable across sqlite,
// postgres and mysql.
func orderClause(sortBy, order string) (string, error) {
	direction := "DESC"
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "desc":
	case "asc":
		direction = "ASC"
	default:
		return "", domain.ErrInvalidSort
	}

	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "", domain.SortByLastActivity:
		return "(last_activity_at IS NULL) ASC, last_activity_at " + direction + ", id DESC", nil
	case domain.SortByConvertedAt:
		return "converted_at " + direction + ", id DESC", nil
	default:
		return "", domain.ErrInvalidSort
	}
}

func ratePct(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

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
