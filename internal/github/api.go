// Package github implements the small slice of the GitHub REST API the
// ripper needs: paged repository listing and fork-ancestry lookup.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kaganisildak/gitripper/internal/errors"
)

const (
	apiBaseURL = "https://api.github.com"
	userAgent  = "gitripper/1.0"
	pageSize   = 100
)

// RepoKind selects which repository set to list for a user.
type RepoKind string

const (
	KindOwned   RepoKind = "owned"
	KindStarred RepoKind = "starred"
)

// Repository represents one remote repository as returned by the API.
type Repository struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	CloneURL        string `json:"clone_url"`
	APIURL          string `json:"url"`
	Fork            bool   `json:"fork"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	DefaultBranch   string `json:"default_branch"`
}

// Client handles GitHub API operations
type Client struct {
	httpClient *http.Client
	token      string
	baseURL    string // Allow custom base URL for testing
}

// NewClient creates a new GitHub API client. An empty token is legal and
// results in unauthenticated requests.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		baseURL:    apiBaseURL,
	}
}

// ListRepositories fetches the complete repository set for a user, paging
// until the API returns an empty page. Any non-success page fails the whole
// listing with a RemoteError carrying the status and page number.
func (c *Client) ListRepositories(ctx context.Context, owner string, kind RepoKind) ([]Repository, error) {
	var all []Repository

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/users/%s/repos?page=%d&per_page=%d", c.baseURL, owner, page, pageSize)
		if kind == KindStarred {
			url = fmt.Sprintf("%s/users/%s/starred?page=%d&per_page=%d", c.baseURL, owner, page, pageSize)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.sendRequest(req)
		if err != nil {
			return nil, errors.New("listing", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, errors.New("listing", &errors.RemoteError{Status: resp.StatusCode, Page: page})
		}

		var repos []Repository
		err = json.NewDecoder(resp.Body).Decode(&repos)
		resp.Body.Close()
		if err != nil {
			return nil, errors.New("listing", fmt.Errorf("failed to decode page %d: %w", page, err))
		}

		if len(repos) == 0 {
			break
		}
		all = append(all, repos...)
	}

	return all, nil
}

// GetSource looks up the upstream ("source") repository of a fork via the
// descriptor's canonical API URL. A non-success status is a soft failure:
// the origin is reported as absent, not as an error.
func (c *Client) GetSource(ctx context.Context, repo Repository) (*Repository, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", repo.APIURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, errors.New("resolve-origin", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var full struct {
		Source *Repository `json:"source"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&full); err != nil {
		return nil, errors.New("resolve-origin", fmt.Errorf("failed to decode response: %w", err))
	}

	return full.Source, nil
}

// sendRequest sends an HTTP request with the necessary headers
func (c *Client) sendRequest(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)

	return c.httpClient.Do(req)
}
