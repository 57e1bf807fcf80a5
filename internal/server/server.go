package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/analytics"
	analyticsdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/cache"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/coin"
	coindomain "github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/config"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/conversion"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencer"
	influencerdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/observability"
	obsmiddleware "github.com/oguilhermeleite/Chico-Afiliado/internal/observability/logger"
	obsmetrics "github.com/oguilhermeleite/Chico-Afiliado/internal/observability/metrics"
	obstracing "github.com/oguilhermeleite/Chico-Afiliado/internal/observability/tracing"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/plan"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/quality"
	qualitydomain "github.com/oguilhermeleite/Chico-Afiliado/internal/quality/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/retention"
	retentiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/retention/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	cache.Module,
	plan.Module,
	influencer.Module,
	conversion.Module,
	coin.Module,
	analytics.Module,
	retention.Module,
	quality.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(obsCfg, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	influencerSvc influencerdomain.Service
	conversionSvc conversiondomain.Service
	coinSvc       coindomain.Service
	analyticsSvc  analyticsdomain.Service
	retentionSvc  retentiondomain.Service
	qualitySvc    qualitydomain.Service
	metrics       *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	InfluencerSvc influencerdomain.Service
	ConversionSvc conversiondomain.Service
	CoinSvc       coindomain.Service
	AnalyticsSvc  analyticsdomain.Service
	RetentionSvc  retentiondomain.Service
	QualitySvc    qualitydomain.Service
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		influencerSvc: p.InfluencerSvc,
		conversionSvc: p.ConversionSvc,
		coinSvc:       p.CoinSvc,
		analyticsSvc:  p.AnalyticsSvc,
		retentionSvc:  p.RetentionSvc,
		qualitySvc:    p.QualitySvc,
		metrics:       p.Metrics,
	}

	svc.registerAPIRoutes()
	svc.registerInternalRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// Referral code validation is public so the signup flow can check
	// codes before an account exists.
	api.GET("/referral/validate/:code", s.ValidateReferralCode)

	authed := api.Group("", s.AuthRequired())

	authed.GET("/dashboard", s.GetDashboard)

	// -------- Referral --------
	authed.GET("/referral/code", s.GetReferralCode)
	authed.POST("/referral/code/regenerate", s.RegenerateReferralCode)

	// -------- Conversions --------
	authed.GET("/conversions", s.ListConversions)

	// -------- Analytics --------
	authed.GET("/analytics/conversions-by-plan", s.GetConversionsByPlan)
	authed.GET("/analytics/commissions", s.GetCommissions)
	authed.GET("/analytics/distribution", s.GetPlanDistribution)
	authed.GET("/analytics/upgraded-users", s.ListUpgradedUsers)

	// -------- Coins --------
	authed.GET("/coins/summary", s.GetCoinSummary)
	authed.GET("/coins/movements", s.ListCoinMovements)

	// -------- Retention --------
	authed.GET("/retention/overview", s.GetRetentionOverview)
	authed.GET("/retention/users", s.ListRetentionUsers)

	// -------- Quality --------
	authed.GET("/quality/score", s.GetQualityScore)
}

// registerInternalRoutes exposes the event ingestion surface used by the
// main product backend. Callers authenticate with a shared service token.
func (s *Server) registerInternalRoutes() {
	internal := s.engine.Group("/internal", s.ServiceAuthRequired())

	internal.POST("/influencers", s.CreateInfluencer)

	events := internal.Group("/events")
	{
		events.POST("/conversion", s.RecordConversionEvent)
		events.POST("/payment", s.ConfirmPaymentEvent)
		events.POST("/upgrade", s.RecordUpgradeEvent)
		events.POST("/activity", s.RecordActivityEvent)
		events.POST("/churn", s.RecordChurnEvent)
		events.POST("/coins", s.RecordCoinMovementEvent)
	}
}
