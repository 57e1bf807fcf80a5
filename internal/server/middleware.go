package server

import (
	"crypto/subtle"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oguilhermeleite/Chico-Afiliado/internal/influencerctx"
)

const (
	headerServiceToken = "X-Service-Token"
	bearerPrefix       = "Bearer "
)

// AuthRequired authenticates dashboard requests with a bearer JWT issued by
// the main product backend. The subject claim carries the influencer ID.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, bearerPrefix) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		tokenValue := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if tokenValue == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims := jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenValue, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.cfg.AuthJWTSecret), nil
		})
		if err != nil || !token.Valid {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		influencerID, err := snowflake.ParseString(strings.TrimSpace(claims.Subject))
		if err != nil || influencerID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := influencerctx.WithInfluencerID(c.Request.Context(), int64(influencerID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ServiceAuthRequired gates the internal event routes behind the shared
// service token.
func (s *Server) ServiceAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := s.cfg.ServiceToken
		if expected == "" {
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		provided := strings.TrimSpace(c.GetHeader(headerServiceToken))
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
