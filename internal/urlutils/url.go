// Package urlutils provides utilities for handling GitHub repository URLs,
// including embedding credentials for authenticated clones and redacting
// them again before anything is logged.
package urlutils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL indicates that the provided URL is not valid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidPath indicates that the URL path is not a valid repository path
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrEmptyToken indicates that an empty token was provided
	ErrEmptyToken = errors.New("empty token provided")

	// ErrNotHTTPS indicates that the URL does not use HTTPS protocol
	ErrNotHTTPS = errors.New("URL must use HTTPS protocol")
)

// ParseHTTPSURL parses and validates a repository HTTPS URL.
// It accepts URLs in the following formats:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo.git
func ParseHTTPSURL(rawURL string) (*url.URL, error) {
	if strings.HasPrefix(rawURL, "git@") {
		return nil, ErrNotHTTPS
	}
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, ErrInvalidURL
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return nil, fmt.Errorf("%w: URL must include owner and repository", ErrInvalidPath)
	}

	return parsedURL, nil
}

// FormatTokenURL returns a copy of the clone URL with the token embedded as
// the userinfo component. The result must never be logged; use Redact when
// a URL needs to appear in output.
func FormatTokenURL(rawURL, token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}

	parsedURL, err := ParseHTTPSURL(rawURL)
	if err != nil {
		return "", err
	}

	tokenURL := *parsedURL
	tokenURL.User = url.User(token)
	return tokenURL.String(), nil
}

// Redact strips any userinfo component from a URL so it is safe to log.
// Malformed input is returned unchanged.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.User = nil
	return u.String()
}
