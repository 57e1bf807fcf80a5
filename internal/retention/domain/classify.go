package domain

import "time"

type ActivityStatus string

const (
	StatusActive   ActivityStatus = "active"
	StatusInactive ActivityStatus = "inactive"
	StatusChurned  ActivityStatus = "churned"
)

const (
	activeHorizon = 7 * 24 * time.Hour
	churnHorizon  = 30 * 24 * time.Hour
)

// Classify derives a user's activity state from stored timestamps. A user
// with no recorded activity is active right after conversion and churned
// once the conversion itself is older than thirty days. Boundaries are
// inclusive: activity exactly seven days old is still active.
func Classify(convertedAt time.Time, lastActivityAt *time.Time, now time.Time) ActivityStatus {
	if lastActivityAt == nil {
		if now.Sub(convertedAt) > churnHorizon {
			return StatusChurned
		}
		return StatusActive
	}

	age := now.Sub(*lastActivityAt)
	switch {
	case age <= activeHorizon:
		return StatusActive
	case age <= churnHorizon:
		return StatusInactive
	default:
		return StatusChurned
	}
}
