package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetReferralCode(c *gin.Context) {
	if s.influencerSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	resp, err := s.influencerSvc.GetReferralCode(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) RegenerateReferralCode(c *gin.Context) {
	if s.influencerSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	resp, err := s.influencerSvc.RegenerateReferralCode(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ValidateReferralCode(c *gin.Context) {
	if s.influencerSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	resp, err := s.influencerSvc.ValidateReferralCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
