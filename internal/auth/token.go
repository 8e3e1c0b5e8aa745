package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload the account service issues.
type Claims struct {
	jwt.RegisteredClaims
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// TokenExpiry reads exp without verifying the signature; only the account
// service holds the key. ok is false when the token is not a JWT or has
// no exp claim.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether token carries an exp at or before now.
// Opaque tokens are never considered expired here.
func Expired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	return ok && !now.Before(exp)
}
