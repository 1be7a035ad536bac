package urlutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHTTPSURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{
			name: "valid repository URL",
			url:  "https://github.com/owner/repo",
		},
		{
			name: "valid URL with .git suffix",
			url:  "https://github.com/owner/repo.git",
		},
		{
			name:    "SSH URL rejected",
			url:     "git@github.com:owner/repo.git",
			wantErr: ErrNotHTTPS,
		},
		{
			name:    "plain HTTP rejected",
			url:     "http://github.com/owner/repo",
			wantErr: ErrInvalidURL,
		},
		{
			name:    "missing repository component",
			url:     "https://github.com/owner",
			wantErr: ErrInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHTTPSURL(tt.url)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFormatTokenURL(t *testing.T) {
	got, err := FormatTokenURL("https://github.com/owner/repo.git", "ghp_secret")
	require.NoError(t, err)
	assert.Equal(t, "https://ghp_secret@github.com/owner/repo.git", got)
}

func TestFormatTokenURLEmptyToken(t *testing.T) {
	_, err := FormatTokenURL("https://github.com/owner/repo.git", "")
	assert.True(t, errors.Is(err, ErrEmptyToken))
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "token stripped",
			url:  "https://ghp_secret@github.com/owner/repo.git",
			want: "https://github.com/owner/repo.git",
		},
		{
			name: "clean URL unchanged",
			url:  "https://github.com/owner/repo.git",
			want: "https://github.com/owner/repo.git",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.url))
		})
	}
}
