// Package token decodes catalog backend access tokens without verifying
// their signature. The signing key lives on the backend only; the web client
// just needs the expiry instant and the identity claims for rendering
// decisions, so every check here fails safe toward "expired".
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const RoleAdmin = "admin"

// Claims is the subset of backend token claims the client cares about.
// Subject carries the user id, matching the backend's identity claim.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

var parser = jwt.NewParser()

// Decode extracts claims from the token payload segment. No signature or
// expiry validation is performed.
func Decode(raw string) (*Claims, error) {
	claims := new(Claims)
	_, _, err := parser.ParseUnverified(raw, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpirationTime returns the token expiry instant. The second return is
// false when the token cannot be decoded or carries no exp claim.
func ExpirationTime(raw string) (time.Time, bool) {
	claims, err := Decode(raw)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsExpired reports whether the token expiry is in the past. A token that
// cannot be decoded counts as expired; a decodable token without an exp
// claim does not expire.
func IsExpired(raw string) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(time.Now())
}

// ExpiringSoon reports whether the token expires within the given window.
// Undecodable tokens count as expiring; tokens without an exp claim never do.
func ExpiringSoon(raw string, within time.Duration) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) <= within
}
