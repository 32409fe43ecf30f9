// Package tokeninfo reads claims from bearer tokens without verifying them.
// The tracker only forwards tokens it was given; it inspects JWT claims for
// log context and to warn before sending a token that has already expired.
package tokeninfo

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info is what could be learned from a token.
type Info struct {
	// IsJWT is false for opaque tokens; the other fields are then zero.
	IsJWT     bool
	Subject   string
	Issuer    string
	ExpiresAt time.Time
}

// Inspect parses tok as a JWT without checking its signature. Opaque or
// malformed tokens yield an Info with IsJWT false.
func Inspect(tok string) Info {
	tok = strings.TrimSpace(tok)
	if strings.Count(tok, ".") != 2 {
		return Info{}
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return Info{}
	}

	info := Info{IsJWT: true, Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// Expired reports whether the token carries an expiry at or before now.
func (i Info) Expired(now time.Time) bool {
	return i.IsJWT && !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
