package ghapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// interRepoDelay spaces out repositories to be nice to the GitHub API.
const interRepoDelay = 2 * time.Second

// Backfill ingests pull requests, issues and contributor events for every
// repository in a workspace into the source store.
type Backfill struct {
	client *Client
	store  contract.SourceStore
	days   int
}

// NewBackfill wires a backfill run to its client and store.
func NewBackfill(client *Client, store contract.SourceStore, days int) *Backfill {
	if days < 1 {
		days = contract.DefaultBackfillDays
	}
	return &Backfill{client: client, store: store, days: days}
}

// Run backfills every repository tracked by the workspace. Per-repository
// failures are logged and counted; the run continues with the next one.
func (b *Backfill) Run(ctx context.Context, workspaceID string) (schema.BackfillStats, error) {
	var stats schema.BackfillStats

	repos, err := b.store.ListWorkspaceRepositories(ctx, workspaceID)
	if err != nil {
		return stats, fmt.Errorf("failed to list workspace repositories: %w", err)
	}
	if len(repos) == 0 {
		return stats, fmt.Errorf("no repositories found for workspace %s", workspaceID)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -b.days)

	for i, repo := range repos {
		fmt.Printf("[%d/%d] Backfilling %s\n", i+1, len(repos), repo.FullName)

		if err := b.backfillRepository(ctx, workspaceID, repo, cutoff, &stats); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to backfill %s", repo.FullName), err)
			stats.Errors++
			continue
		}
		stats.ReposProcessed++

		if i < len(repos)-1 {
			time.Sleep(interRepoDelay)
		}
	}

	stats.APICalls = b.client.APICalls
	return stats, nil
}

// backfillRepository refreshes one repository's metadata and ingests its
// pull requests, issues and events since the cutoff date.
func (b *Backfill) backfillRepository(ctx context.Context, workspaceID string, repo schema.Repository, cutoff time.Time, stats *schema.BackfillStats) error {
	owner, name, err := splitFullName(repo.FullName)
	if err != nil {
		return err
	}

	meta, err := b.client.GetRepository(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("failed to fetch repository metadata: %w", err)
	}
	refreshed := schema.Repository{
		ID:              repo.ID,
		FullName:        meta.FullName,
		Stars:           meta.Stars,
		Forks:           meta.Forks,
		PrimaryLanguage: meta.Language,
	}
	if err := b.store.UpsertRepository(ctx, workspaceID, refreshed); err != nil {
		return err
	}

	pulls, err := b.client.ListPulls(ctx, owner, name, cutoff)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Partial pull request fetch for %s", repo.FullName), err)
		stats.Errors++
	}
	stats.PullsFetched += len(pulls)
	inserted, err := b.store.InsertPullRequests(ctx, convertPulls(repo.ID, pulls))
	if err != nil {
		return err
	}
	stats.RowsInserted += inserted

	issues, err := b.client.ListIssues(ctx, owner, name, cutoff)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Partial issue fetch for %s", repo.FullName), err)
		stats.Errors++
	}
	stats.IssuesFetched += len(issues)
	inserted, err = b.store.InsertIssues(ctx, convertIssues(repo.ID, issues))
	if err != nil {
		return err
	}
	stats.RowsInserted += inserted

	events, err := b.client.ListEvents(ctx, owner, name, cutoff)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Partial event fetch for %s", repo.FullName), err)
		stats.Errors++
	}
	stats.EventsFetched += len(events)
	inserted, err = b.store.InsertEvents(ctx, convertEvents(repo.ID, events))
	if err != nil {
		return err
	}
	stats.RowsInserted += inserted

	return nil
}

// splitFullName splits "owner/name" into its parts.
func splitFullName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository full name %q, expected owner/name", fullName)
	}
	return owner, name, nil
}

// convertPulls maps API pull requests onto source rows.
func convertPulls(repositoryID string, pulls []Pull) []schema.PullRequest {
	out := make([]schema.PullRequest, 0, len(pulls))
	for _, pr := range pulls {
		out = append(out, schema.PullRequest{
			ID:           strconv.FormatInt(pr.ID, 10),
			RepositoryID: repositoryID,
			Number:       pr.Number,
			State:        pr.State,
			Draft:        pr.Draft,
			Author:       pr.User.Login,
			CreatedAt:    pr.CreatedAt.UTC(),
			MergedAt:     pr.MergedAt,
			ClosedAt:     pr.ClosedAt,
		})
	}
	return out
}

// convertIssues maps API issues onto source rows.
func convertIssues(repositoryID string, issues []Issue) []schema.Issue {
	out := make([]schema.Issue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, schema.Issue{
			ID:           strconv.FormatInt(issue.ID, 10),
			RepositoryID: repositoryID,
			Number:       issue.Number,
			State:        issue.State,
			Author:       issue.User.Login,
			CreatedAt:    issue.CreatedAt.UTC(),
			ClosedAt:     issue.ClosedAt,
		})
	}
	return out
}

// convertEvents maps API events onto contributor event rows. Push events
// yield one commit event per embedded commit; review events yield one review
// event. Everything else is dropped.
func convertEvents(repositoryID string, events []Event) []schema.ContributorEvent {
	var out []schema.ContributorEvent
	for _, ev := range events {
		switch ev.Type {
		case "PushEvent":
			for range ev.Payload.Commits {
				out = append(out, schema.ContributorEvent{
					RepositoryID: repositoryID,
					Username:     ev.Actor.Login,
					Kind:         schema.CommitEvent,
					OccurredAt:   ev.CreatedAt.UTC(),
				})
			}
		case "PullRequestReviewEvent":
			out = append(out, schema.ContributorEvent{
				RepositoryID: repositoryID,
				Username:     ev.Actor.Login,
				Kind:         schema.ReviewEvent,
				OccurredAt:   ev.CreatedAt.UTC(),
			})
		}
	}
	return out
}
