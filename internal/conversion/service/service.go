package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/clock"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	influencerdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/plan"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Catalog        *plan.Catalog
	Repo           domain.Repository
	InfluencerRepo influencerdomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	catalog        *plan.Catalog
	repo           domain.Repository
	influencerRepo influencerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("conversion.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		catalog:        p.Catalog,
		repo:           p.Repo,
		influencerRepo: p.InfluencerRepo,
	}
}

// RecordConversion attributes a signup to the influencer owning the referral
// code. Repeated calls for the same influencer/user pair return the existing
// conversion; a different influencer's code creates a separate row.
func (s *Service) RecordConversion(ctx context.Context, req domain.RecordConversionRequest) (domain.Conversion, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.Conversion{}, domain.ErrInvalidUserID
	}

	code := strings.ToUpper(strings.TrimSpace(req.ReferralCode))
	if code == "" {
		return domain.Conversion{}, domain.ErrInvalidReferralCode
	}

	influencer, err := s.influencerRepo.FindByReferralCode(ctx, s.db, code)
	if err != nil {
		return domain.Conversion{}, err
	}
	if influencer == nil {
		return domain.Conversion{}, domain.ErrUnknownReferralCode
	}

	existing, err := s.repo.FindByInfluencerAndUser(ctx, s.db, influencer.ID, userID)
	if err != nil {
		return domain.Conversion{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	initialTier := plan.TierFree
	if raw := strings.TrimSpace(req.PlanType); raw != "" {
		tier, parseErr := plan.ParseTier(raw)
		if parseErr != nil {
			return domain.Conversion{}, domain.ErrInvalidPlan
		}
		initialTier = tier
	}

	now := s.clock.Now()
	conversion := domain.Conversion{
		ID:             s.genID.Generate(),
		InfluencerID:   influencer.ID,
		UserID:         userID,
		UserName:       strings.TrimSpace(req.UserName),
		Status:         domain.StatusPending,
		PlanType:       string(initialTier),
		ConvertedAt:    now,
		LastActivityAt: &now,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &conversion); err != nil {
		if db.IsDuplicateKeyErr(err) {
			raced, findErr := s.repo.FindByInfluencerAndUser(ctx, s.db, influencer.ID, userID)
			if findErr == nil && raced != nil {
				return *raced, nil
			}
		}
		return domain.Conversion{}, err
	}

	s.log.Info("conversion recorded",
		zap.String("influencer_id", influencer.ID.String()),
		zap.String("user_id", userID),
	)

	return conversion, nil
}

// ConfirmPayment marks every pending conversion for the user as paid. Plan
// defaults to start; an explicit amount overrides the catalog price and
// commission is recomputed from it.
func (s *Service) ConfirmPayment(ctx context.Context, req domain.ConfirmPaymentRequest) (domain.Conversion, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.Conversion{}, domain.ErrInvalidUserID
	}

	pending, err := s.repo.ListPendingByUser(ctx, s.db, userID)
	if err != nil {
		return domain.Conversion{}, err
	}
	if len(pending) == 0 {
		return domain.Conversion{}, domain.ErrNoPendingConversions
	}

	rawPlan := strings.TrimSpace(req.PlanType)
	if rawPlan == "" {
		rawPlan = string(plan.TierStart)
	}
	tier, err := plan.ParseTier(rawPlan)
	if err != nil || tier == plan.TierFree {
		return domain.Conversion{}, domain.ErrInvalidPlan
	}

	entry, ok := s.catalog.Entry(tier)
	if !ok {
		return domain.Conversion{}, domain.ErrInvalidPlan
	}

	amount := entry.MonthlyPriceValue()
	commission := entry.CommissionValue()
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return domain.Conversion{}, domain.ErrInvalidPaymentAmount
		}
		amount = round2(*req.Amount)
		commission = round2(amount * plan.CommissionRateValue())
	}

	now := s.clock.Now()
	for _, conversion := range pending {
		conversion.Status = domain.StatusPaid
		conversion.PlanType = string(tier)
		conversion.Amount = amount
		conversion.CommissionAmount = commission
		conversion.MonthlyValue = entry.MonthlyPriceValue()
		conversion.PaidAt = &now
		conversion.UpdatedAt = now
		if err := s.repo.Update(ctx, s.db, conversion); err != nil {
			return domain.Conversion{}, err
		}
	}

	s.log.Info("payment confirmed",
		zap.String("user_id", userID),
		zap.String("plan_type", string(tier)),
		zap.Float64("amount", amount),
		zap.Float64("commission", commission),
		zap.Int("conversions_updated", len(pending)),
	)

	return *pending[0], nil
}

// RecordUpgrade moves a paid conversion to a new plan, remembering the
// previous one. Upgrading to the plan the user already has is a no-op.
func (s *Service) RecordUpgrade(ctx context.Context, req domain.RecordUpgradeRequest) (domain.Conversion, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.Conversion{}, domain.ErrInvalidUserID
	}

	tier, err := plan.ParseTier(req.NewPlan)
	if err != nil || tier == plan.TierFree {
		return domain.Conversion{}, domain.ErrInvalidPlan
	}

	conversion, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.Conversion{}, err
	}
	if conversion == nil || conversion.Status != domain.StatusPaid {
		return domain.Conversion{}, domain.ErrNoPaidConversion
	}

	if conversion.PlanType == string(tier) {
		return *conversion, nil
	}

	entry, ok := s.catalog.Entry(tier)
	if !ok {
		return domain.Conversion{}, domain.ErrInvalidPlan
	}

	now := s.clock.Now()
	previous := conversion.PlanType
	conversion.PreviousPlan = &previous
	conversion.PlanType = string(tier)
	conversion.Amount = entry.MonthlyPriceValue()
	conversion.CommissionAmount = entry.CommissionValue()
	conversion.MonthlyValue = entry.MonthlyPriceValue()
	conversion.PlanUpgradedAt = &now
	conversion.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, conversion); err != nil {
		return domain.Conversion{}, err
	}

	s.log.Info("plan upgraded",
		zap.String("user_id", userID),
		zap.String("from", previous),
		zap.String("to", string(tier)),
	)

	return *conversion, nil
}

func (s *Service) RecordActivity(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrInvalidUserID
	}

	conversion, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if conversion == nil {
		return domain.ErrConversionNotFound
	}

	now := s.clock.Now()
	conversion.LastActivityAt = &now
	conversion.IsActive = true
	conversion.ChurnedAt = nil
	conversion.UpdatedAt = now

	return s.repo.Update(ctx, s.db, conversion)
}

func (s *Service) RecordChurn(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrInvalidUserID
	}

	conversion, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if conversion == nil {
		return domain.ErrConversionNotFound
	}

	now := s.clock.Now()
	conversion.IsActive = false
	conversion.ChurnedAt = &now
	conversion.UpdatedAt = now

	return s.repo.Update(ctx, s.db, conversion)
}

func (s *Service) List(ctx context.Context, req domain.ListConversionsRequest) (domain.ListConversionsResponse, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return domain.ListConversionsResponse{}, domain.ErrInvalidInfluencer
	}

	filter := domain.ListFilter{
		Status:   domain.Status(strings.ToLower(strings.TrimSpace(req.Status))),
		PlanType: strings.ToLower(strings.TrimSpace(req.PlanType)),
	}
	page := req.Pagination.Normalize()

	total, err := s.repo.CountByInfluencer(ctx, s.db, influencerID, filter)
	if err != nil {
		return domain.ListConversionsResponse{}, err
	}

	items, err := s.repo.ListByInfluencer(ctx, s.db, influencerID, filter, page)
	if err != nil {
		return domain.ListConversionsResponse{}, err
	}

	conversions := make([]domain.Conversion, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		conversions = append(conversions, *item)
	}

	return domain.ListConversionsResponse{
		PageInfo:    pagination.BuildPageInfo(page, total),
		Conversions: conversions,
	}, nil
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
