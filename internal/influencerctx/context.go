package influencerctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// InfluencerContextKey is the request context key for the authenticated influencer ID.
type InfluencerContextKey struct{}

// WithInfluencerID stores the influencer ID in the context.
func WithInfluencerID(ctx context.Context, influencerID int64) context.Context {
	return context.WithValue(ctx, InfluencerContextKey{}, influencerID)
}

// InfluencerIDFromContext returns the influencer ID from context, if set.
func InfluencerIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(InfluencerContextKey{})
	if value == nil {
		return 0, false
	}
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
