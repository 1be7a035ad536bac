// Package token resolves the GitHub credential used for API calls and
// authenticated clones.
//
// Resolution order:
//  1. An explicit value (normally the --token flag)
//  2. The GITHUB_TOKEN environment variable (plain token string)
//  3. The GIT_TOKEN_GITHUB environment variable (JSON-encoded token with
//     metadata, for environments that store scoped tokens)
//
// A missing token is legal: unauthenticated API calls work but are far more
// likely to be rate limited, so callers should warn rather than fail.
package token

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	// EnvToken is the plain token environment variable
	EnvToken = "GITHUB_TOKEN"

	// EnvStoredToken holds a JSON-encoded token with metadata
	EnvStoredToken = "GIT_TOKEN_GITHUB"
)

// Token represents an authentication token with metadata
type Token struct {
	// Value is the actual token string
	Value string `json:"Value"`

	// ExpiresAt indicates when the token will expire.
	// Zero value means the token does not expire.
	ExpiresAt time.Time `json:"ExpiresAt"`

	// Scope defines the permissions granted to this token
	Scope string `json:"Scope"`
}

// String implements fmt.Stringer with the value redacted so a token can
// never leak through log output.
func (t Token) String() string {
	if t.Value == "" {
		return "(none)"
	}
	return "[redacted]"
}

// IsExpired checks if a token has expired
func (t Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt)
}

// Resolve returns the token value to use, preferring the explicit value
// over the environment. An empty result with a nil error means no token
// is configured.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if v := os.Getenv(EnvToken); v != "" {
		return v, nil
	}

	data := os.Getenv(EnvStoredToken)
	if data == "" {
		return "", nil
	}

	var t Token
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", EnvStoredToken, err)
	}
	if t.IsExpired() {
		return "", fmt.Errorf("token in %s has expired", EnvStoredToken)
	}
	return t.Value, nil
}
