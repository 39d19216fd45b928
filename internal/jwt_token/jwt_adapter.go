package jwttoken

import (
	"github.com/marcelarangelrhellorh/rhelloflow/internal/platform/middleware"
)

// JWTServiceAdapter bridges JWTService to the middleware's TokenValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID:      claims.UserID,
		DisplayName: claims.DisplayName,
		Admin:       claims.Admin,
	}, nil
}
