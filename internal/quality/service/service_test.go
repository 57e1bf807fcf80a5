package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	analytics "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/quality/domain"
	retentiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/retention/domain"
)

type stubAnalytics struct {
	analytics.Service
	coins  analytics.CoinSummary
	totals analytics.ConversionTotals
}

func (s *stubAnalytics) CoinSummary(context.Context, analytics.Window) (analytics.CoinSummary, error) {
	return s.coins, nil
}

func (s *stubAnalytics) ConversionsByPlan(context.Context, analytics.Window) (analytics.ConversionTotals, error) {
	return s.totals, nil
}

type stubRetention struct {
	retentiondomain.Service
	overview retentiondomain.Overview
}

func (s *stubRetention) Overview(context.Context, analytics.Window) (retentiondomain.Overview, error) {
	return s.overview, nil
}

func TestGetScoreAssemblesInputs(t *testing.T) {
	svc := &Service{
		log: zaptest.NewLogger(t),
		analytics: &stubAnalytics{
			coins:  analytics.CoinSummary{AvgPerUser: 2500},
			totals: analytics.ConversionTotals{TotalConversions: 2, TotalAmount: 200},
		},
		retention: &stubRetention{
			overview: retentiondomain.Overview{
				Rates:       retentiondomain.RetentionRates{Rate30d: 50, Rate60d: 50},
				UpgradeRate: 15,
			},
		},
	}

	ctx := influencerctx.WithInfluencerID(context.Background(), 1)

	resp, err := svc.GetScore(ctx, analytics.LastNDays(30))
	require.NoError(t, err)

	assert.Equal(t, domain.Inputs{
		Retention30d:  50,
		UpgradeRate:   15,
		AvgCoinVolume: 2500,
		AvgOrderValue: 100,
		Retention60d:  50,
	}, resp.Inputs)
	assert.InDelta(t, 5.0, resp.Score.Score, 0.001)
	assert.Equal(t, "30d", resp.Period)
}

func TestGetScoreZeroConversions(t *testing.T) {
	svc := &Service{
		log:       zaptest.NewLogger(t),
		analytics: &stubAnalytics{},
		retention: &stubRetention{},
	}

	ctx := influencerctx.WithInfluencerID(context.Background(), 1)

	resp, err := svc.GetScore(ctx, analytics.LastNDays(30))
	require.NoError(t, err)
	assert.Zero(t, resp.Inputs.AvgOrderValue)
	assert.Zero(t, resp.Score.Score)
}

func TestGetScoreRequiresContext(t *testing.T) {
	svc := &Service{
		log:       zaptest.NewLogger(t),
		analytics: &stubAnalytics{},
		retention: &stubRetention{},
	}

	_, err := svc.GetScore(context.Background(), analytics.LastNDays(30))
	assert.ErrorIs(t, err, domain.ErrInvalidInfluencer)
}
