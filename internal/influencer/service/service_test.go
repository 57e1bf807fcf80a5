package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/oguilhermeleite/Chico-Afiliado/internal/clock"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/repository"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Influencer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	svc := &Service{
		baseURL: "https://chicoai.com.br",
		db:      db,
		log:     zaptest.NewLogger(t),
		genID:   node,
		clock:   fake,
		repo:    repository.Provide(),
		codeFn:  randomCode,
	}
	return svc, db
}

func TestCreateGeneratesPrefixedCode(t *testing.T) {
	svc, _ := setupService(t)

	inf, err := svc.Create(context.Background(), domain.CreateInfluencerRequest{
		UserID: "user-1",
		Name:   "Maria",
		Email:  "maria@example.com",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(inf.ReferralCode, "CHICO_"))
	assert.Len(t, inf.ReferralCode, len("CHICO_")+9)
	for _, r := range strings.TrimPrefix(inf.ReferralCode, "CHICO_") {
		assert.Contains(t, codeAlphabet, string(r))
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateInfluencerRequest{Name: "A", Email: "a@b.c"})
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)

	_, err = svc.Create(ctx, domain.CreateInfluencerRequest{UserID: "u", Email: "a@b.c"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateInfluencerRequest{UserID: "u", Name: "A", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestCreateDuplicateUser(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateInfluencerRequest{UserID: "u1", Name: "A", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateInfluencerRequest{UserID: "u1", Name: "B", Email: "b@b.c"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestCodeRetriesOnCollision(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateInfluencerRequest{UserID: "u1", Name: "A", Email: "a@b.c"})
	require.NoError(t, err)

	// First candidate collides with the existing code, second does not.
	calls := 0
	svc.codeFn = func() string {
		calls++
		if calls == 1 {
			return first.ReferralCode
		}
		return "CHICO_UNIQUE001"
	}

	second, err := svc.Create(ctx, domain.CreateInfluencerRequest{UserID: "u2", Name: "B", Email: "b@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "CHICO_UNIQUE001", second.ReferralCode)
	assert.Equal(t, 2, calls)
}

func TestCodeGenerationExhausted(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateInfluencerRequest{UserID: "u1", Name: "A", Email: "a@b.c"})
	require.NoError(t, err)

	svc.codeFn = func() string { return first.ReferralCode }

	_, err = svc.Create(ctx, domain.CreateInfluencerRequest{UserID: "u2", Name: "B", Email: "b@b.c"})
	assert.ErrorIs(t, err, domain.ErrCodeGeneration)
}

func TestRandomCodeUniformAlphabet(t *testing.T) {
	const samples = 40000
	counts := make(map[rune]int, len(codeAlphabet))
	for i := 0; i < samples; i++ {
		code := randomCode()
		require.Len(t, code, len(codePrefix)+codeSuffixLen)
		for _, r := range strings.TrimPrefix(code, codePrefix) {
			require.GreaterOrEqual(t, strings.IndexRune(codeAlphabet, r), 0)
			counts[r]++
		}
	}

	// 10000 expected per character; a 5% band is far outside sampling
	// noise but well inside what a byte-modulo skew would produce.
	expected := samples * codeSuffixLen / len(codeAlphabet)
	for _, r := range codeAlphabet {
		assert.Greater(t, counts[r], expected*95/100, string(r))
		assert.Less(t, counts[r], expected*105/100, string(r))
	}
}

func TestRegenerateReferralCode(t *testing.T) {
	svc, _ := setupService(t)

	inf, err := svc.Create(context.Background(), domain.CreateInfluencerRequest{UserID: "u1", Name: "A", Email: "a@b.c"})
	require.NoError(t, err)

	ctx := influencerctx.WithInfluencerID(context.Background(), inf.ID.Int64())

	resp, err := svc.RegenerateReferralCode(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, inf.ReferralCode, resp.ReferralCode)
	assert.Equal(t, "https://chicoai.com.br?ref="+resp.ReferralCode, resp.ReferralLink)

	// Old code no longer resolves, new one does.
	old, err := svc.ValidateReferralCode(context.Background(), inf.ReferralCode)
	require.NoError(t, err)
	assert.False(t, old.Valid)

	current, err := svc.ValidateReferralCode(context.Background(), resp.ReferralCode)
	require.NoError(t, err)
	assert.True(t, current.Valid)
	assert.Equal(t, inf.ID.String(), current.InfluencerID)
}

func TestValidateReferralCodeNormalizes(t *testing.T) {
	svc, _ := setupService(t)

	inf, err := svc.Create(context.Background(), domain.CreateInfluencerRequest{UserID: "u1", Name: "A", Email: "a@b.c"})
	require.NoError(t, err)

	resp, err := svc.ValidateReferralCode(context.Background(), "  "+strings.ToLower(inf.ReferralCode)+"  ")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "A", resp.InfluencerName)

	missing, err := svc.ValidateReferralCode(context.Background(), "CHICO_DOESNOTEXIST")
	require.NoError(t, err)
	assert.False(t, missing.Valid)
}

func TestGetRequiresContext(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInfluencer)

	ctx := influencerctx.WithInfluencerID(context.Background(), 999)
	_, err = svc.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
