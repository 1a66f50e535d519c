package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

type tokenClaims struct {
	Exp int64 `json:"exp"`
}

func parseTokenClaims(token string) tokenClaims {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return tokenClaims{}
	}

	decoded, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return tokenClaims{}
	}

	var claims tokenClaims
	if err := json.Unmarshal(decoded, &claims); err != nil {
		return tokenClaims{}
	}

	return claims
}

// tokenExpired treats absent, malformed, and elapsed expiry claims all as
// expired. It never fails.
func tokenExpired(token string, now time.Time) bool {
	claims := parseTokenClaims(token)
	if claims.Exp <= 0 {
		return true
	}
	return !time.Unix(claims.Exp, 0).After(now)
}
