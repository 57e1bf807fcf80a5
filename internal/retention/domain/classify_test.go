package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	at := func(daysAgo float64) *time.Time {
		ts := now.Add(-time.Duration(daysAgo * 24 * float64(time.Hour)))
		return &ts
	}

	cases := []struct {
		name           string
		convertedAt    time.Time
		lastActivityAt *time.Time
		want           ActivityStatus
	}{
		{"activity today", now.AddDate(0, 0, -60), at(0), StatusActive},
		{"activity exactly 7d is active", now.AddDate(0, 0, -60), at(7), StatusActive},
		{"activity just past 7d is inactive", now.AddDate(0, 0, -60), at(7.01), StatusInactive},
		{"activity exactly 30d is inactive", now.AddDate(0, 0, -60), at(30), StatusInactive},
		{"activity past 30d is churned", now.AddDate(0, 0, -60), at(30.01), StatusChurned},
		{"no activity, fresh conversion is active", now.AddDate(0, 0, -1), nil, StatusActive},
		{"no activity, conversion exactly 30d is active", now.Add(-30 * 24 * time.Hour), nil, StatusActive},
		{"no activity, conversion 35d old is churned", now.AddDate(0, 0, -35), nil, StatusChurned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.convertedAt, tc.lastActivityAt, now))
		})
	}
}
