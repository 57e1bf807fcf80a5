package domain

import (
	"context"
	"errors"

	analytics "github.com/oguilhermeleite/Chico-Afiliado/internal/analytics/domain"
)

type ScoreResponse struct {
	Score
	Inputs Inputs `json:"inputs"`
	Period string `json:"period"`
}

type Service interface {
	GetScore(context.Context, analytics.Window) (ScoreResponse, error)
}

var ErrInvalidInfluencer = errors.New("invalid_influencer")
