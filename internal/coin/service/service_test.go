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

	"github.com/oguilhermeleite/Chico-Afiliado/internal/clock"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/coin/repository"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	conversionrepo "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/repository"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
	"github.com/oguilhermeleite/Chico-Afiliado/pkg/db/pagination"
)

func setupCoinService(t *testing.T) (*Service, snowflake.ID, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&conversiondomain.Conversion{}, &domain.CoinMovement{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	convRepo := conversionrepo.Provide()

	influencerID := node.Generate()
	now := fake.Now()
	conversion := conversiondomain.Conversion{
		ID:           node.Generate(),
		InfluencerID: influencerID,
		UserID:       "user-42",
		Status:       conversiondomain.StatusPaid,
		PlanType:     "start",
		ConvertedAt:  now,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, convRepo.Insert(context.Background(), db, &conversion))

	svc := &Service{
		db:             db,
		log:            zaptest.NewLogger(t),
		genID:          node,
		clock:          fake,
		repo:           repository.Provide(),
		conversionRepo: convRepo,
	}
	return svc, influencerID, fake
}

func TestRecordMovementAttributesAndConverts(t *testing.T) {
	svc, influencerID, fake := setupCoinService(t)

	resp, err := svc.RecordMovement(context.Background(), domain.RecordMovementRequest{
		UserID: "user-42",
		Type:   "earned",
		Amount: 2500,
	})
	require.NoError(t, err)

	assert.False(t, resp.Skipped)
	require.NotNil(t, resp.Movement)
	assert.Equal(t, influencerID, resp.Movement.InfluencerID)
	assert.Equal(t, domain.MovementEarned, resp.Movement.Type)
	assert.InDelta(t, 2.50, resp.Movement.RealValue, 0.001)
	assert.Equal(t, fake.Now(), resp.Movement.OccurredAt)
}

func TestRecordMovementRealValueRounding(t *testing.T) {
	svc, _, _ := setupCoinService(t)

	cases := []struct {
		coins int64
		value float64
	}{
		{1000, 1.00},
		{1, 0.00},
		{1500, 1.50},
		{1234, 1.23},
		{1235, 1.24},
	}
	for _, tc := range cases {
		resp, err := svc.RecordMovement(context.Background(), domain.RecordMovementRequest{
			UserID: "user-42",
			Type:   "purchased",
			Amount: tc.coins,
		})
		require.NoError(t, err)
		assert.InDelta(t, tc.value, resp.Movement.RealValue, 0.0001, "coins=%d", tc.coins)
	}
}

func TestRecordMovementSkipsUnattributedUsers(t *testing.T) {
	svc, _, _ := setupCoinService(t)

	resp, err := svc.RecordMovement(context.Background(), domain.RecordMovementRequest{
		UserID: "stranger",
		Type:   "earned",
		Amount: 100,
	})
	require.NoError(t, err)
	assert.True(t, resp.Skipped)
	assert.Nil(t, resp.Movement)
}

func TestRecordMovementValidation(t *testing.T) {
	svc, _, _ := setupCoinService(t)
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, domain.RecordMovementRequest{Type: "earned", Amount: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)

	_, err = svc.RecordMovement(ctx, domain.RecordMovementRequest{UserID: "u", Type: "minted", Amount: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidMovementType)

	_, err = svc.RecordMovement(ctx, domain.RecordMovementRequest{UserID: "u", Type: "earned", Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RecordMovement(ctx, domain.RecordMovementRequest{UserID: "u", Type: "earned", Amount: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListMovements(t *testing.T) {
	svc, influencerID, fake := setupCoinService(t)
	ctx := context.Background()

	for _, movementType := range []string{"earned", "spent", "earned"} {
		_, err := svc.RecordMovement(ctx, domain.RecordMovementRequest{
			UserID: "user-42",
			Type:   movementType,
			Amount: 1000,
		})
		require.NoError(t, err)
		fake.Advance(time.Minute)
	}

	authed := influencerctx.WithInfluencerID(ctx, influencerID.Int64())

	resp, err := svc.List(authed, domain.ListMovementsRequest{
		Pagination: pagination.Pagination{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Movements, 3)
	// Newest first.
	assert.True(t, resp.Movements[0].OccurredAt.After(resp.Movements[2].OccurredAt))

	earned, err := svc.List(authed, domain.ListMovementsRequest{Type: "earned"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), earned.Total)

	_, err = svc.List(authed, domain.ListMovementsRequest{Type: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidMovementType)

	_, err = svc.List(ctx, domain.ListMovementsRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInfluencer)
}
