// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
)

// TokenClaims holds the claims extracted from a validated access token.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// TokenService validates bearer tokens issued by the account service.
type TokenService interface {
	// ValidateAccessToken verifies the token signature and expiry and
	// returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)
}
