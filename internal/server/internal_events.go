package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	coindomain "github.com/oguilhermeleite/Chico-Afiliado/internal/coin/domain"
	conversiondomain "github.com/oguilhermeleite/Chico-Afiliado/internal/conversion/domain"
	influencerdomain "github.com/oguilhermeleite/Chico-Afiliado/internal/influencer/domain"
)

type createInfluencerBody struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (s *Server) CreateInfluencer(c *gin.Context) {
	if s.influencerSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var body createInfluencerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.influencerSvc.Create(c.Request.Context(), influencerdomain.CreateInfluencerRequest{
		UserID: body.UserID,
		Name:   body.Name,
		Email:  body.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) RecordConversionEvent(c *gin.Context) {
	if s.conversionSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req conversiondomain.RecordConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.conversionSvc.RecordConversion(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.observeConversionEvent("recorded")
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ConfirmPaymentEvent(c *gin.Context) {
	if s.conversionSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req conversiondomain.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.conversionSvc.ConfirmPayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.observeConversionEvent("payment_confirmed")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) RecordUpgradeEvent(c *gin.Context) {
	if s.conversionSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req conversiondomain.RecordUpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.conversionSvc.RecordUpgrade(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.observeConversionEvent("upgraded")
	c.JSON(http.StatusOK, resp)
}

type userEventBody struct {
	UserID string `json:"user_id"`
}

func (s *Server) RecordActivityEvent(c *gin.Context) {
	if s.conversionSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var body userEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	if err := s.conversionSvc.RecordActivity(c.Request.Context(), body.UserID); err != nil {
		AbortWithError(c, err)
		return
	}

	s.observeConversionEvent("activity")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) RecordChurnEvent(c *gin.Context) {
	if s.conversionSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var body userEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	if err := s.conversionSvc.RecordChurn(c.Request.Context(), body.UserID); err != nil {
		AbortWithError(c, err)
		return
	}

	s.observeConversionEvent("churn")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) RecordCoinMovementEvent(c *gin.Context) {
	if s.coinSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req coindomain.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	resp, err := s.coinSvc.RecordMovement(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !resp.Skipped && resp.Movement != nil && s.metrics != nil {
		s.metrics.ObserveCoinMovement(string(resp.Movement.Type))
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) observeConversionEvent(event string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveConversionEvent(event)
}
