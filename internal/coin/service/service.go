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
	"github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

// coinsPerReal converts CHC coins to currency: 1000 coins = R$ 1.00.
var coinsPerReal = decimal.NewFromInt(1000)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	ConversionRepo conversiondomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	conversionRepo conversiondomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("coin.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		conversionRepo: p.ConversionRepo,
	}
}

func (s *Service) RecordMovement(ctx context.Context, req domain.RecordMovementRequest) (domain.RecordMovementResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.RecordMovementResponse{}, domain.ErrInvalidUserID
	}

	movementType, ok := domain.ParseMovementType(strings.ToLower(strings.TrimSpace(req.Type)))
	if !ok {
		return domain.RecordMovementResponse{}, domain.ErrInvalidMovementType
	}

	if req.Amount <= 0 {
		return domain.RecordMovementResponse{}, domain.ErrInvalidAmount
	}

	conversion, err := s.conversionRepo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.RecordMovementResponse{}, err
	}
	if conversion == nil {
		// User was not referred; nothing to attribute.
		return domain.RecordMovementResponse{Skipped: true}, nil
	}

	occurredAt := s.clock.Now()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	movement := domain.CoinMovement{
		ID:           s.genID.Generate(),
		InfluencerID: conversion.InfluencerID,
		UserID:       userID,
		Type:         movementType,
		Amount:       req.Amount,
		RealValue:    realValue(req.Amount),
		Description:  strings.TrimSpace(req.Description),
		OccurredAt:   occurredAt,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &movement); err != nil {
		return domain.RecordMovementResponse{}, err
	}

	s.log.Debug("coin movement recorded",
		zap.String("influencer_id", movement.InfluencerID.String()),
		zap.String("user_id", userID),
		zap.String("type", string(movementType)),
		zap.Int64("amount", req.Amount),
	)

	return domain.RecordMovementResponse{Movement: &movement}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMovementsRequest) (domain.ListMovementsResponse, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return domain.ListMovementsResponse{}, domain.ErrInvalidInfluencer
	}

	filter := domain.ListFilter{}
	if raw := strings.ToLower(strings.TrimSpace(req.Type)); raw != "" {
		movementType, ok := domain.ParseMovementType(raw)
		if !ok {
			return domain.ListMovementsResponse{}, domain.ErrInvalidMovementType
		}
		filter.Type = movementType
	}

	page := req.Pagination.Normalize()

	total, err := s.repo.CountByInfluencer(ctx, s.db, influencerID, filter)
	if err != nil {
		return domain.ListMovementsResponse{}, err
	}

	items, err := s.repo.ListByInfluencer(ctx, s.db, influencerID, filter, page)
	if err != nil {
		return domain.ListMovementsResponse{}, err
	}

	movements := make([]domain.CoinMovement, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		movements = append(movements, *item)
	}

	return domain.ListMovementsResponse{
		PageInfo:  pagination.BuildPageInfo(page, total),
		Movements: movements,
	}, nil
}

func realValue(coins int64) float64 {
	f, _ := decimal.NewFromInt(coins).Div(coinsPerReal).Round(2).Float64()
	return f
}
