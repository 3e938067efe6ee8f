package http

import (
	"github.com/connecthub/connecthub/internal/application/user/usecases"
	"github.com/connecthub/connecthub/internal/infrastructure/auth"
	"github.com/connecthub/connecthub/internal/shared/authorization"
)

// jwtServiceAdapter adapts JWTService to the usecases.JWTService interface.
type jwtServiceAdapter struct {
	*auth.JWTService
}

func (a *jwtServiceAdapter) Generate(userSID string, role authorization.UserRole) (*usecases.TokenPair, error) {
	pair, err := a.JWTService.Generate(userSID, role)
	if err != nil {
		return nil, err
	}
	return &usecases.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (a *jwtServiceAdapter) ParseRefresh(refreshToken string) (string, error) {
	claims, err := a.JWTService.ParseRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	return claims.UserSID, nil
}
