package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/clock"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/config"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
)

const (
	codePrefix      = "CHICO_"
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeSuffixLen   = 9
	maxCodeAttempts = 10
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
}

type Service struct {
	baseURL string
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	codeFn  func() string
}

func New(p Params) domain.Service {
	return &Service{
		baseURL: p.Config.BaseURL,
		db:      p.DB,
		log:     p.Log.Named("influencer.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		codeFn:  randomCode,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInfluencerRequest) (domain.Influencer, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.Influencer{}, domain.ErrInvalidUserID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Influencer{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Influencer{}, domain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.Influencer{}, err
	}
	if existing != nil {
		return domain.Influencer{}, domain.ErrDuplicateUser
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return domain.Influencer{}, err
	}

	now := s.clock.Now()
	influencer := domain.Influencer{
		ID:           s.genID.Generate(),
		UserID:       userID,
		Name:         name,
		Email:        email,
		ReferralCode: code,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &influencer); err != nil {
		return domain.Influencer{}, err
	}

	s.log.Info("influencer created",
		zap.String("influencer_id", influencer.ID.String()),
		zap.String("referral_code", influencer.ReferralCode),
	)

	return influencer, nil
}

func (s *Service) Get(ctx context.Context) (domain.Influencer, error) {
	influencerID, ok := influencerctx.InfluencerIDFromContext(ctx)
	if !ok || influencerID == 0 {
		return domain.Influencer{}, domain.ErrInvalidInfluencer
	}

	item, err := s.repo.FindByID(ctx, s.db, influencerID)
	if err != nil {
		return domain.Influencer{}, err
	}
	if item == nil {
		return domain.Influencer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetReferralCode(ctx context.Context) (domain.ReferralCodeResponse, error) {
	influencer, err := s.Get(ctx)
	if err != nil {
		return domain.ReferralCodeResponse{}, err
	}
	return s.codeResponse(influencer.ReferralCode), nil
}

func (s *Service) RegenerateReferralCode(ctx context.Context) (domain.ReferralCodeResponse, error) {
	influencer, err := s.Get(ctx)
	if err != nil {
		return domain.ReferralCodeResponse{}, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return domain.ReferralCodeResponse{}, err
	}

	if err := s.repo.UpdateReferralCode(ctx, s.db, influencer.ID, code); err != nil {
		return domain.ReferralCodeResponse{}, err
	}

	s.log.Info("referral code regenerated",
		zap.String("influencer_id", influencer.ID.String()),
		zap.String("old_code", influencer.ReferralCode),
		zap.String("new_code", code),
	)

	return s.codeResponse(code), nil
}

func (s *Service) ValidateReferralCode(ctx context.Context, code string) (domain.ValidateCodeResponse, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return domain.ValidateCodeResponse{Valid: false}, nil
	}

	item, err := s.repo.FindByReferralCode(ctx, s.db, normalized)
	if err != nil {
		return domain.ValidateCodeResponse{}, err
	}
	if item == nil {
		return domain.ValidateCodeResponse{Valid: false}, nil
	}

	return domain.ValidateCodeResponse{
		Valid:          true,
		InfluencerID:   item.ID.String(),
		InfluencerName: item.Name,
	}, nil
}

func (s *Service) codeResponse(code string) domain.ReferralCodeResponse {
	return domain.ReferralCodeResponse{
		ReferralCode: code,
		ReferralLink: fmt.Sprintf("%s?ref=%s", s.baseURL, code),
	}
}

func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.codeFn()
		exists, err := s.repo.ReferralCodeExists(ctx, s.db, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", domain.ErrCodeGeneration
}

func randomCode() string {
	// Rejection sampling keeps the alphabet uniform: 252 is the largest
	// multiple of len(codeAlphabet) below 256.
	const sampleLimit = 256 - 256%len(codeAlphabet)

	buf := make([]byte, 0, codeSuffixLen)
	raw := make([]byte, codeSuffixLen)
	for len(buf) < codeSuffixLen {
		if _, err := rand.Read(raw); err != nil {
			panic(err)
		}
		for _, b := range raw {
			if int(b) >= sampleLimit {
				continue
			}
			buf = append(buf, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(buf) == codeSuffixLen {
				break
			}
		}
	}
	return codePrefix + string(buf)
}
