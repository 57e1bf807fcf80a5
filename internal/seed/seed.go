package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	coindomain "github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	influencerdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
	"gorm.io/gorm"
)

const (
	demoUserID       = "demo-user-chico"
	demoName         = "Chico Demo"
	demoEmail        = "demo@chicoai.com.br"
	demoReferralCode = "CHICO_TESTE001"
)

// EnsureDemoInfluencer seeds a demo influencer with a realistic mix of
// conversions and coin movements. Safe to call on every startup.
func EnsureDemoInfluencer(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing influencerdomain.Influencer
		err := tx.WithContext(ctx).
			Where("referral_code = ?", demoReferralCode).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		influencer := influencerdomain.Influencer{
			ID:           node.Generate(),
			UserID:       demoUserID,
			Name:         demoName,
			Email:        demoEmail,
			ReferralCode: demoReferralCode,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(&influencer).Error; err != nil {
			return err
		}

		if err := seedConversions(ctx, tx, node, influencer.ID, now); err != nil {
			return err
		}
		return seedCoinMovements(ctx, tx, node, influencer.ID, now)
	})
}

type demoConversion struct {
	status       conversiondomain.Status
	planType     string
	previousPlan string
	amount       float64
	commission   float64
	convertedAgo time.Duration
	activityAgo  time.Duration
	hasActivity  bool
	upgraded     bool
	churned      bool
}

func seedConversions(ctx context.Context, tx *gorm.DB, node *snowflake.Node, influencerID snowflake.ID, now time.Time) error {
	day := 24 * time.Hour
	rows := []demoConversion{
		{status: conversiondomain.StatusPaid, planType: "start", amount: 19.90, commission: 3.98, convertedAgo: 45 * day, activityAgo: 2 * day, hasActivity: true},
		{status: conversiondomain.StatusPaid, planType: "pro", previousPlan: "start", amount: 49.90, commission: 9.98, convertedAgo: 60 * day, activityAgo: 12 * day, hasActivity: true, upgraded: true},
		{status: conversiondomain.StatusPaid, planType: "goat", amount: 99.90, commission: 19.98, convertedAgo: 20 * day, activityAgo: 1 * day, hasActivity: true},
		{status: conversiondomain.StatusPaid, planType: "start", amount: 19.90, commission: 3.98, convertedAgo: 90 * day, activityAgo: 50 * day, hasActivity: true, churned: true},
		{status: conversiondomain.StatusPending, planType: "free", convertedAgo: 3 * day},
	}

	for _, row := range rows {
		convertedAt := now.Add(-row.convertedAgo)
		conv := conversiondomain.Conversion{
			ID:               node.Generate(),
			InfluencerID:     influencerID,
			UserID:           uuid.NewString(),
			Status:           row.status,
			PlanType:         row.planType,
			Amount:           row.amount,
			CommissionAmount: row.commission,
			MonthlyValue:     row.amount,
			ConvertedAt:      convertedAt,
			IsActive:         !row.churned,
			CreatedAt:        convertedAt,
			UpdatedAt:        now,
		}
		if row.previousPlan != "" {
			previous := row.previousPlan
			conv.PreviousPlan = &previous
		}
		if row.status == conversiondomain.StatusPaid {
			paidAt := convertedAt.Add(time.Hour)
			conv.PaidAt = &paidAt
		}
		if row.upgraded {
			upgradedAt := convertedAt.Add(15 * day)
			conv.PlanUpgradedAt = &upgradedAt
		}
		if row.hasActivity {
			activityAt := now.Add(-row.activityAgo)
			conv.LastActivityAt = &activityAt
		}
		if row.churned {
			churnedAt := now.Add(-40 * day)
			conv.ChurnedAt = &churnedAt
		}

		if err := tx.WithContext(ctx).Create(&conv).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedCoinMovements(ctx context.Context, tx *gorm.DB, node *snowflake.Node, influencerID snowflake.ID, now time.Time) error {
	var users []conversiondomain.Conversion
	if err := tx.WithContext(ctx).
		Where("influencer_id = ? AND status = ?", influencerID, conversiondomain.StatusPaid).
		Order("converted_at asc").
		Find(&users).Error; err != nil {
		return err
	}

	types := []coindomain.MovementType{
		coindomain.MovementEarned,
		coindomain.MovementSpent,
		coindomain.MovementWon,
	}
	amounts := []int64{2500, 1000, 5000}

	for i, user := range users {
		for j, movementType := range types {
			occurredAt := now.Add(-time.Duration(i*3+j+1) * 24 * time.Hour)
			amount := amounts[j]
			movement := coindomain.CoinMovement{
				ID:           node.Generate(),
				InfluencerID: influencerID,
				UserID:       user.UserID,
				Type:         movementType,
				Amount:       amount,
				RealValue:    float64(amount) / 1000,
				Description:  "demo movement",
				OccurredAt:   occurredAt,
				CreatedAt:    occurredAt,
			}
			if err := tx.WithContext(ctx).Create(&movement).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
