package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// TokenIssuer generates single-use invitation tokens. Tokens carry 256 bits
// of entropy and are hex-encoded, so they are safe to embed in a URL query
// parameter.
type TokenIssuer struct {
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer creates a token issuer with the given time-to-live
func NewTokenIssuer(ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{ttl: ttl, now: time.Now}
}

// Issue returns a fresh token and its expiry timestamp. The only failure
// mode is entropy-source exhaustion, which the caller should treat as
// fatal.
func (t *TokenIssuer) Issue() (string, time.Time, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), t.now().Add(t.ttl), nil
}

// TTL returns the configured time-to-live
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}
