package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/counseldesk/counseldesk/internal/common/apperrors"
	"github.com/counseldesk/counseldesk/internal/counselsrv/config"
	"github.com/counseldesk/counseldesk/internal/counselsrv/tenancy"
	"github.com/counseldesk/counseldesk/pkg/types"
)

// CreateToken issues a signed token for a principal. Platform
// administrators carry an empty tenant_id and the elevated claim.
func CreateToken(ctx context.Context, userID types.UserId, tenantID types.TenantId, elevated bool) (string, time.Time, apperrors.Error) {
	km := getKeyManager()
	if km == nil {
		return "", time.Time{}, ErrTokenGeneration
	}

	validity, err := config.ParseTokenDuration(config.Config().Auth.TokenValidity)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("invalid token validity in config")
		return "", time.Time{}, ErrTokenGeneration.Err(err)
	}

	now := time.Now()
	expiresAt := now.Add(validity)
	claims := jwt.MapClaims{
		"iss":       config.Config().Auth.Issuer,
		"aud":       config.Config().Auth.Audience,
		"sub":       string(userID),
		"tenant_id": string(tenantID),
		"elevated":  elevated,
		"jti":       uuid.NewString(),
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(km.private)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to sign token")
		return "", time.Time{}, ErrTokenGeneration.Err(err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies a bearer token and returns the principal it
// asserts. The asserted tenant is validated against the resolved
// tenant later, by the resolver's mismatch check.
func ValidateToken(ctx context.Context, tokenString string) (*tenancy.Principal, apperrors.Error) {
	km := getKeyManager()
	if km == nil {
		return nil, ErrInvalidToken
	}

	token, parseErr := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return km.public, nil
	},
		jwt.WithIssuer(config.Config().Auth.Issuer),
		jwt.WithAudience(config.Config().Auth.Audience),
		jwt.WithExpirationRequired(),
	)
	if parseErr != nil {
		log.Ctx(ctx).Debug().Err(parseErr).Msg("token validation failed")
		return nil, ErrInvalidToken.Err(parseErr)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	for _, claim := range []string{"sub", "tenant_id", "jti"} {
		if _, ok := claims[claim]; !ok {
			return nil, ErrInvalidToken
		}
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	tenantID, _ := claims["tenant_id"].(string)
	elevated, _ := claims["elevated"].(bool)

	// Reject tokens issued too far in the past even if unexpired.
	if iat, ok := claims["iat"].(float64); ok {
		if time.Unix(int64(iat), 0).Before(time.Now().Add(-24 * time.Hour)) {
			return nil, ErrInvalidToken
		}
	}

	// Elevated principals belong to no tenant; a token claiming both
	// is malformed.
	if elevated && tenantID != "" {
		return nil, ErrInvalidToken
	}
	if !elevated && tenantID == "" {
		return nil, ErrInvalidToken
	}

	return &tenancy.Principal{
		UserID:   types.UserId(sub),
		TenantID: types.TenantId(tenantID),
		Elevated: elevated,
	}, nil
}
