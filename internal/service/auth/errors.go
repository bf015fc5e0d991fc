// Package auth provides token issuance/verification and password hashing.
package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or carries invalid claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's NotBefore is in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrInvalidCredentials is returned on login for both an unknown email
	// and a wrong password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
