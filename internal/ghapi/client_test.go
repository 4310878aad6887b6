package ghapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a client at a local test server.
func newTestClient(srv *httptest.Server, token string) *Client {
	return &Client{token: token, baseURL: srv.URL, httpClient: srv.Client()}
}

func TestGetRepository(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		assert.Equal(t, "/repos/acme/api", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Repo{
			ID: 42, FullName: "acme/api", Stars: 100, Forks: 10, Language: "Go",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, "tok123")
	repo, err := client.GetRepository(context.Background(), "acme", "api")
	require.NoError(t, err)
	assert.Equal(t, "acme/api", repo.FullName)
	assert.Equal(t, 100, repo.Stars)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
	assert.Equal(t, 1, client.APICalls)
}

func TestGetRepositoryAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(Repo{FullName: "acme/api"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "").GetRepository(context.Background(), "acme", "api")
	require.NoError(t, err)
}

func TestClientStatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr error
		errText string
	}{
		{"not found", http.StatusNotFound, ErrNotFound, ""},
		{"forbidden maps to rate limited", http.StatusForbidden, ErrRateLimited, ""},
		{"too many requests", http.StatusTooManyRequests, ErrRateLimited, ""},
		{"unauthorized", http.StatusUnauthorized, nil, "token invalid or expired"},
		{"server error", http.StatusInternalServerError, nil, "GitHub API error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			_, err := newTestClient(srv, "").GetRepository(context.Background(), "acme", "api")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.Contains(t, err.Error(), tt.errText)
			}
		})
	}
}

func TestListPullsStopsAtCutoff(t *testing.T) {
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		// Newest first, with the last one older than the cutoff.
		_ = json.NewEncoder(w).Encode([]Pull{
			{ID: 3, Number: 3, State: "open", CreatedAt: cutoff.AddDate(0, 0, 10)},
			{ID: 2, Number: 2, State: "closed", CreatedAt: cutoff.AddDate(0, 0, 5)},
			{ID: 1, Number: 1, State: "closed", CreatedAt: cutoff.AddDate(0, 0, -1)},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, "")
	pulls, err := client.ListPulls(context.Background(), "acme", "api", cutoff)
	require.NoError(t, err)
	require.Len(t, pulls, 2, "stops at the first pull older than the cutoff")
	assert.Equal(t, int64(3), pulls[0].ID)
	assert.Equal(t, 1, client.APICalls, "no second page requested after the cutoff")
}

func TestListPullsEmptyRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	pulls, err := newTestClient(srv, "").ListPulls(context.Background(), "acme", "api", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, pulls)
}

func TestListIssuesFiltersPullRequests(t *testing.T) {
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, cutoff.Format(time.RFC3339), r.URL.Query().Get("since"))
		_ = json.NewEncoder(w).Encode([]Issue{
			{ID: 1, Number: 1, State: "open", CreatedAt: cutoff.AddDate(0, 0, 2)},
			{ID: 2, Number: 2, State: "open", CreatedAt: cutoff.AddDate(0, 0, 3),
				PullRequest: json.RawMessage(`{"url":"x"}`)},
			{ID: 3, Number: 3, State: "closed", CreatedAt: cutoff.AddDate(0, 0, -2)},
		})
	}))
	defer srv.Close()

	issues, err := newTestClient(srv, "").ListIssues(context.Background(), "acme", "api", cutoff)
	require.NoError(t, err)
	require.Len(t, issues, 1, "pull requests and pre-cutoff issues are dropped")
	assert.Equal(t, int64(1), issues[0].ID)
}

func TestListEventsStopsAtCutoff(t *testing.T) {
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Event{
			{Type: "PushEvent", Actor: User{Login: "alice"}, CreatedAt: cutoff.AddDate(0, 0, 3)},
			{Type: "IssuesEvent", Actor: User{Login: "bob"}, CreatedAt: cutoff.AddDate(0, 0, -1)},
		})
	}))
	defer srv.Close()

	events, err := newTestClient(srv, "").ListEvents(context.Background(), "acme", "api", cutoff)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].Actor.Login)
}

func TestListPullsPartialResultOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	pulls, err := newTestClient(srv, "").ListPulls(context.Background(), "acme", "api", time.Time{})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, pulls)
}
