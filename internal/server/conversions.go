package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
)

func (s *Server) ListConversions(c *gin.Context) {
	if s.conversionSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req conversiondomain.ListConversionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	resp, err := s.conversionSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
