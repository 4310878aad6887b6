package ghapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/internal/iostore"
	"github.com/workpulse/workpulse/schema"
)

func TestSplitFullName(t *testing.T) {
	owner, name, err := splitFullName("acme/api")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "api", name)

	for _, bad := range []string{"", "acme", "acme/", "/api"} {
		_, _, err := splitFullName(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewBackfillDefaultsDays(t *testing.T) {
	b := NewBackfill(NewClient(""), &iostore.MockSourceStore{}, 0)
	assert.Equal(t, contract.DefaultBackfillDays, b.days)

	b = NewBackfill(NewClient(""), &iostore.MockSourceStore{}, 14)
	assert.Equal(t, 14, b.days)
}

func TestConvertPulls(t *testing.T) {
	merged := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	created := time.Date(2026, 8, 19, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	rows := convertPulls("r1", []Pull{
		{ID: 101, Number: 7, State: "closed", Draft: false, User: User{Login: "alice"},
			CreatedAt: created, MergedAt: &merged},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "101", rows[0].ID)
	assert.Equal(t, "r1", rows[0].RepositoryID)
	assert.Equal(t, "alice", rows[0].Author)
	assert.Equal(t, time.UTC, rows[0].CreatedAt.Location())
	assert.Equal(t, &merged, rows[0].MergedAt)
	assert.Nil(t, rows[0].ClosedAt)
}

func TestConvertEvents(t *testing.T) {
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	push := Event{Type: "PushEvent", Actor: User{Login: "alice"}, CreatedAt: at}
	push.Payload.Commits = []struct {
		SHA string `json:"sha"`
	}{{SHA: "a1"}, {SHA: "b2"}, {SHA: "c3"}}

	events := convertEvents("r1", []Event{
		push,
		{Type: "PullRequestReviewEvent", Actor: User{Login: "bob"}, CreatedAt: at},
		{Type: "WatchEvent", Actor: User{Login: "carol"}, CreatedAt: at},
	})

	require.Len(t, events, 4, "one commit event per pushed commit plus the review")
	for i := 0; i < 3; i++ {
		assert.Equal(t, schema.CommitEvent, events[i].Kind)
		assert.Equal(t, "alice", events[i].Username)
	}
	assert.Equal(t, schema.ReviewEvent, events[3].Kind)
	assert.Equal(t, "bob", events[3].Username)
}

func TestBackfillRunNoRepositories(t *testing.T) {
	store := &iostore.MockSourceStore{}
	store.On("ListWorkspaceRepositories", mock.Anything, "ghost").Return([]schema.Repository{}, nil)

	_, err := NewBackfill(NewClient(""), store, 7).Run(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repositories found")
}

// newBackfillServer serves a minimal but complete repository API surface.
func newBackfillServer(t *testing.T, pullsStatus int) *httptest.Server {
	t.Helper()
	now := time.Now().UTC()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Repo{ID: 1, FullName: "acme/api", Stars: 50, Forks: 5, Language: "Go"})
	})
	mux.HandleFunc("/repos/acme/api/pulls", func(w http.ResponseWriter, r *http.Request) {
		if pullsStatus != http.StatusOK {
			w.WriteHeader(pullsStatus)
			return
		}
		_ = json.NewEncoder(w).Encode([]Pull{
			{ID: 11, Number: 1, State: "open", User: User{Login: "alice"}, CreatedAt: now.AddDate(0, 0, -1)},
			{ID: 12, Number: 2, State: "closed", User: User{Login: "bob"}, CreatedAt: now.AddDate(0, 0, -2)},
		})
	})
	mux.HandleFunc("/repos/acme/api/issues", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Issue{
			{ID: 21, Number: 3, State: "open", User: User{Login: "carol"}, CreatedAt: now.AddDate(0, 0, -1)},
		})
	})
	mux.HandleFunc("/repos/acme/api/events", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Event{
			{Type: "PullRequestReviewEvent", Actor: User{Login: "dave"}, CreatedAt: now.Add(-time.Hour)},
		})
	})
	return httptest.NewServer(mux)
}

func TestBackfillRun(t *testing.T) {
	srv := newBackfillServer(t, http.StatusOK)
	defer srv.Close()

	store := &iostore.MockSourceStore{}
	store.On("ListWorkspaceRepositories", mock.Anything, "acme-ws").
		Return([]schema.Repository{{ID: "r1", FullName: "acme/api"}}, nil)
	store.On("UpsertRepository", mock.Anything, "acme-ws", mock.MatchedBy(func(repo schema.Repository) bool {
		return repo.ID == "r1" && repo.Stars == 50 && repo.PrimaryLanguage == "Go"
	})).Return(nil)
	store.On("InsertPullRequests", mock.Anything, mock.Anything).Return(2, nil)
	store.On("InsertIssues", mock.Anything, mock.Anything).Return(1, nil)
	store.On("InsertEvents", mock.Anything, mock.Anything).Return(1, nil)

	client := newTestClient(srv, "")
	stats, err := NewBackfill(client, store, 7).Run(context.Background(), "acme-ws")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ReposProcessed)
	assert.Equal(t, 2, stats.PullsFetched)
	assert.Equal(t, 1, stats.IssuesFetched)
	assert.Equal(t, 1, stats.EventsFetched)
	assert.Equal(t, 4, stats.RowsInserted)
	assert.Equal(t, 4, stats.APICalls)
	assert.Zero(t, stats.Errors)
	store.AssertExpectations(t)
}

func TestBackfillRunPartialFetchFailure(t *testing.T) {
	srv := newBackfillServer(t, http.StatusInternalServerError)
	defer srv.Close()

	store := &iostore.MockSourceStore{}
	store.On("ListWorkspaceRepositories", mock.Anything, "acme-ws").
		Return([]schema.Repository{{ID: "r1", FullName: "acme/api"}}, nil)
	store.On("UpsertRepository", mock.Anything, "acme-ws", mock.Anything).Return(nil)
	store.On("InsertPullRequests", mock.Anything, mock.Anything).Return(0, nil)
	store.On("InsertIssues", mock.Anything, mock.Anything).Return(1, nil)
	store.On("InsertEvents", mock.Anything, mock.Anything).Return(1, nil)

	stats, err := NewBackfill(newTestClient(srv, ""), store, 7).Run(context.Background(), "acme-ws")
	require.NoError(t, err, "a partial fetch failure does not abort the run")

	assert.Equal(t, 1, stats.ReposProcessed)
	assert.Equal(t, 1, stats.Errors)
	assert.Zero(t, stats.PullsFetched)
	assert.Equal(t, 1, stats.IssuesFetched)
	assert.Equal(t, 2, stats.RowsInserted)
}

func TestBackfillRunBadFullName(t *testing.T) {
	store := &iostore.MockSourceStore{}
	store.On("ListWorkspaceRepositories", mock.Anything, "acme-ws").
		Return([]schema.Repository{{ID: "r1", FullName: "not-a-full-name"}}, nil)

	stats, err := NewBackfill(NewClient(""), store, 7).Run(context.Background(), "acme-ws")
	require.NoError(t, err)
	assert.Zero(t, stats.ReposProcessed)
	assert.Equal(t, 1, stats.Errors)
}
