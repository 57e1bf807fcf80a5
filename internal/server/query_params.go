package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
)

const defaultPeriodDays = 30

// parsePeriod resolves the ?period query parameter into an analytics window.
// Accepts a number of days ("7", "30", "90"), "all", or empty for the
// default 30 day window.
func parsePeriod(c *gin.Context) (analyticsdomain.Window, error) {
	value := strings.ToLower(strings.TrimSpace(c.Query("period")))
	if value == "" {
		return analyticsdomain.LastNDays(defaultPeriodDays), nil
	}
	if value == "all" {
		return analyticsdomain.AllTime(), nil
	}

	value = strings.TrimSuffix(value, "d")
	days, err := strconv.Atoi(value)
	if err != nil || days <= 0 {
		return analyticsdomain.Window{}, newValidationError("period", "invalid_period", "invalid period")
	}
	return analyticsdomain.LastNDays(days), nil
}
