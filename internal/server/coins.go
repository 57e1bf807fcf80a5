package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	coindomain "github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
)

func (s *Server) GetCoinSummary(c *gin.Context) {
	if s.analyticsSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	window, err := parsePeriod(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.CoinSummary(c.Request.Context(), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListCoinMovements(c *gin.Context) {
	if s.coinSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req coindomain.ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	resp, err := s.coinSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
