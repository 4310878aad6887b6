// Package ghapi is a minimal GitHub REST client used by backfill ingestion.
package ghapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
)

const (
	defaultBaseURL = "https://api.github.com"

	perPage     = 100
	maxPages    = 10 // cap per endpoint to stay within rate limits
	pageDelay   = 500 * time.Millisecond
	httpTimeout = 30 * time.Second
)

// Client is a simple client for the GitHub REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client

	// APICalls counts requests issued, for backfill reporting.
	APICalls int
}

// NewClient creates a new Client. The token may be empty for anonymous
// access, which has a far lower rate limit.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// get performs a REST GET against the GitHub API and decodes the body into v.
func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "workpulse-backfill/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	c.APICalls++

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden, http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusUnauthorized:
		return errors.New("GitHub token invalid or expired")
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("GitHub API error: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// Repo is the subset of the repository payload the backfill needs.
type Repo struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Stars    int    `json:"stargazers_count"`
	Forks    int    `json:"forks_count"`
	Language string `json:"language"`
}

// User is an author reference inside other payloads.
type User struct {
	Login string `json:"login"`
}

// Pull is the subset of the pull request payload the backfill needs.
type Pull struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	State     string     `json:"state"`
	Draft     bool       `json:"draft"`
	User      User       `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

// Issue is the subset of the issue payload the backfill needs. The issues
// endpoint also returns pull requests; PullRequest marks those for skipping.
type Issue struct {
	ID          int64           `json:"id"`
	Number      int             `json:"number"`
	State       string          `json:"state"`
	User        User            `json:"user"`
	CreatedAt   time.Time       `json:"created_at"`
	ClosedAt    *time.Time      `json:"closed_at"`
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
}

// Event is the subset of the repository events payload the backfill needs.
type Event struct {
	Type      string    `json:"type"`
	Actor     User      `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
	Payload   struct {
		Commits []struct {
			SHA string `json:"sha"`
		} `json:"commits"`
	} `json:"payload"`
}

// GetRepository fetches repository metadata by owner and name.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*Repo, error) {
	var repo Repo
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", owner, name), &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListPulls fetches pull requests in any state, newest first, stopping at the
// cutoff date or the page cap.
func (c *Client) ListPulls(ctx context.Context, owner, name string, cutoff time.Time) ([]Pull, error) {
	var all []Pull
	for page := 1; page <= maxPages; page++ {
		var pulls []Pull
		path := fmt.Sprintf("/repos/%s/%s/pulls?state=all&sort=created&direction=desc&per_page=%d&page=%d", owner, name, perPage, page)
		if err := c.get(ctx, path, &pulls); err != nil {
			return all, err
		}
		if len(pulls) == 0 {
			break
		}
		for _, pr := range pulls {
			if pr.CreatedAt.Before(cutoff) {
				// Results are ordered by creation date, so we can stop
				return all, nil
			}
			all = append(all, pr)
		}
		if len(pulls) < perPage {
			break
		}
		time.Sleep(pageDelay)
	}
	return all, nil
}

// ListIssues fetches issues in any state created since the cutoff date.
// Pull requests returned by the issues endpoint are filtered out.
func (c *Client) ListIssues(ctx context.Context, owner, name string, cutoff time.Time) ([]Issue, error) {
	var all []Issue
	for page := 1; page <= maxPages; page++ {
		var issues []Issue
		path := fmt.Sprintf("/repos/%s/%s/issues?state=all&since=%s&per_page=%d&page=%d",
			owner, name, cutoff.UTC().Format(time.RFC3339), perPage, page)
		if err := c.get(ctx, path, &issues); err != nil {
			return all, err
		}
		if len(issues) == 0 {
			break
		}
		for _, issue := range issues {
			if issue.PullRequest != nil {
				continue
			}
			if issue.CreatedAt.Before(cutoff) {
				continue
			}
			all = append(all, issue)
		}
		if len(issues) < perPage {
			break
		}
		time.Sleep(pageDelay)
	}
	return all, nil
}

// ListEvents fetches recent repository events newer than the cutoff date.
func (c *Client) ListEvents(ctx context.Context, owner, name string, cutoff time.Time) ([]Event, error) {
	var all []Event
	for page := 1; page <= maxPages; page++ {
		var events []Event
		path := fmt.Sprintf("/repos/%s/%s/events?per_page=%d&page=%d", owner, name, perPage, page)
		if err := c.get(ctx, path, &events); err != nil {
			return all, err
		}
		if len(events) == 0 {
			break
		}
		for _, ev := range events {
			if ev.CreatedAt.Before(cutoff) {
				// Events are ordered by date, so we can stop
				return all, nil
			}
			all = append(all, ev)
		}
		if len(events) < perPage {
			break
		}
		time.Sleep(pageDelay)
	}
	return all, nil
}
