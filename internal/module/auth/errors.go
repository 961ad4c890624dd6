package auth

import "errors"

// Auth module errors.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
	ErrMissingSecret      = errors.New("jwt secret is not configured")

	// Returned by an IdentityResolver.
	ErrIdentityNotFound = errors.New("identity not found")
	ErrAccountDisabled  = errors.New("account disabled")
)
