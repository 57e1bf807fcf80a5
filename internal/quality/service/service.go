package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	analytics "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/quality/domain"
	retentiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/retention/domain"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Analytics analytics.Service
	Retention retentiondomain.Service
}

type Service struct {
	log       *zap.Logger
	analytics analytics.Service
	retention retentiondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("quality.service"),
		analytics: p.Analytics,
		retention: p.Retention,
	}
}

// GetScore recomputes the composite score from the latest aggregation
// outputs on every call. Nothing is persisted; the underlying queries
// carry their own caching.
func (s *Service) GetScore(ctx context.Context, window analytics.Window) (domain.ScoreResponse, error) {
	if _, ok := influencerctx.InfluencerIDFromContext(ctx); !ok {
		return domain.ScoreResponse{}, domain.ErrInvalidInfluencer
	}

	overview, err := s.retention.Overview(ctx, window)
	if err != nil {
		return domain.ScoreResponse{}, err
	}

	coins, err := s.analytics.CoinSummary(ctx, window)
	if err != nil {
		return domain.ScoreResponse{}, err
	}

	totals, err := s.analytics.ConversionsByPlan(ctx, window)
	if err != nil {
		return domain.ScoreResponse{}, err
	}

	avgOrderValue := 0.0
	if totals.TotalConversions > 0 {
		avgOrderValue = totals.TotalAmount / float64(totals.TotalConversions)
	}

	inputs := domain.Inputs{
		Retention30d:  float64(overview.Rates.Rate30d),
		UpgradeRate:   float64(overview.UpgradeRate),
		AvgCoinVolume: coins.AvgPerUser,
		AvgOrderValue: avgOrderValue,
		Retention60d:  float64(overview.Rates.Rate60d),
	}

	return domain.ScoreResponse{
		Score:  domain.Calculate(inputs),
		Inputs: inputs,
		Period: window.CacheKey(),
	}, nil
}
