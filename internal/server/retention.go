package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	retentiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/retention/domain"
)

func (s *Server) GetRetentionOverview(c *gin.Context) {
	if s.retentionSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	window, err := parsePeriod(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.retentionSvc.Overview(c.Request.Context(), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListRetentionUsers(c *gin.Context) {
	if s.retentionSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req retentiondomain.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	resp, err := s.retentionSvc.Users(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetQualityScore(c *gin.Context) {
	if s.qualitySvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	window, err := parsePeriod(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.qualitySvc.GetScore(c.Request.Context(), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
