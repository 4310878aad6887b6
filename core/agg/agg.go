// Package agg has aggregation logic for workspace activity data.
package agg

import (
	"context"
	"sync"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// Accumulator collects running totals across every repository in a
// workspace for one aggregation call. It is created and discarded per call
// and is never written concurrently: repository results are merged in
// sequentially after each batch resolves.
type Accumulator struct {
	TotalPRs  int
	MergedPRs int
	OpenPRs   int
	DraftPRs  int

	TotalIssues  int
	ClosedIssues int
	OpenIssues   int

	TotalStars   int
	TotalForks   int
	TotalCommits int

	MergeDurations []float64 // hours
	CloseDurations []float64 // hours

	Contributors map[string]*schema.ContributorStat
	Languages    map[string]int
	Daily        map[string]*schema.ActivityPoint
	RepoStats    []schema.RepositoryStat
}

// NewAccumulator returns an empty accumulator ready for merging.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		Contributors: make(map[string]*schema.ContributorStat),
		Languages:    make(map[string]int),
		Daily:        make(map[string]*schema.ActivityPoint),
	}
}

// RepoResult holds one repository's contribution to the workspace totals.
type RepoResult struct {
	Repo schema.Repository

	TotalPRs  int
	MergedPRs int
	OpenPRs   int
	DraftPRs  int

	TotalIssues  int
	ClosedIssues int
	OpenIssues   int

	Commits int

	MergeDurations []float64
	CloseDurations []float64

	Contributors map[string]*schema.ContributorStat
	Daily        map[string]*schema.ActivityPoint
}

// AggregateRepositories folds every repository's activity for the period
// into a single accumulator. Repositories are processed in fixed-size
// batches to bound concurrent outbound queries; within a batch each
// repository runs in parallel. Merging happens after the batch resolves, so
// the accumulator never sees concurrent writers.
func AggregateRepositories(ctx context.Context, store contract.SourceStore, repos []schema.Repository, start, end time.Time, batchSize int, includeStats bool) *Accumulator {
	if batchSize < 1 {
		batchSize = schema.AggregationBatchSize
	}

	acc := NewAccumulator()
	for i := 0; i < len(repos); i += batchSize {
		batch := repos[i:min(i+batchSize, len(repos))]
		results := make([]*RepoResult, len(batch))

		var wg sync.WaitGroup
		for j, repo := range batch {
			wg.Go(func() {
				results[j] = aggregateRepository(ctx, store, repo, start, end)
			})
		}
		wg.Wait()

		for _, r := range results {
			acc.merge(r, includeStats)
		}
	}
	return acc
}

// aggregateRepository fetches the three data kinds for one repository in
// parallel and folds them into a RepoResult. A failed fetch of one kind is
// logged and degrades to zero counts for that kind; it never aborts the
// repository's remaining contribution.
func aggregateRepository(ctx context.Context, store contract.SourceStore, repo schema.Repository, start, end time.Time) *RepoResult {
	var (
		prs    []schema.PullRequest
		issues []schema.Issue
		events []schema.ContributorEvent
	)

	var wg sync.WaitGroup
	wg.Go(func() {
		var err error
		prs, err = store.ListPullRequests(ctx, repo.ID, start, end)
		if err != nil {
			contract.LogWarn("Failed to fetch pull requests for "+repo.FullName, err)
			prs = nil
		}
	})
	wg.Go(func() {
		var err error
		issues, err = store.ListIssues(ctx, repo.ID, start, end)
		if err != nil {
			contract.LogWarn("Failed to fetch issues for "+repo.FullName, err)
			issues = nil
		}
	})
	wg.Go(func() {
		var err error
		events, err = store.ListContributorEvents(ctx, repo.ID, start, end)
		if err != nil {
			contract.LogWarn("Failed to fetch contributor events for "+repo.FullName, err)
			events = nil
		}
	})
	wg.Wait()

	result := &RepoResult{
		Repo:         repo,
		Contributors: make(map[string]*schema.ContributorStat),
		Daily:        make(map[string]*schema.ActivityPoint),
	}
	foldPullRequests(result, prs)
	foldIssues(result, issues)
	foldEvents(result, events)
	return result
}

// foldPullRequests accumulates PR counts, merge durations and author activity.
func foldPullRequests(r *RepoResult, prs []schema.PullRequest) {
	for _, pr := range prs {
		r.TotalPRs++
		if pr.MergedAt != nil {
			r.MergedPRs++
			// Timing statistics only cover rows with both timestamps; rows
			// missing either are excluded, not counted as zero.
			if !pr.CreatedAt.IsZero() {
				r.MergeDurations = append(r.MergeDurations, pr.MergedAt.Sub(pr.CreatedAt).Hours())
			}
		} else if pr.State == "open" {
			r.OpenPRs++
			if pr.Draft {
				r.DraftPRs++
			}
		}

		if pr.Author != "" {
			contributorFor(r.Contributors, pr.Author).PullRequests++
		}
		dailyFor(r.Daily, pr.CreatedAt).PullRequests++
	}
}

// foldIssues accumulates issue counts, close durations and author activity.
func foldIssues(r *RepoResult, issues []schema.Issue) {
	for _, issue := range issues {
		r.TotalIssues++
		if issue.State == "closed" {
			r.ClosedIssues++
		} else {
			r.OpenIssues++
		}
		if issue.ClosedAt != nil && !issue.CreatedAt.IsZero() {
			r.CloseDurations = append(r.CloseDurations, issue.ClosedAt.Sub(issue.CreatedAt).Hours())
		}

		if issue.Author != "" {
			contributorFor(r.Contributors, issue.Author).Issues++
		}
		dailyFor(r.Daily, issue.CreatedAt).Issues++
	}
}

// foldEvents accumulates commit and review counts per contributor.
func foldEvents(r *RepoResult, events []schema.ContributorEvent) {
	for _, ev := range events {
		if ev.Username == "" {
			continue
		}
		c := contributorFor(r.Contributors, ev.Username)
		switch ev.Kind {
		case schema.CommitEvent:
			c.Commits++
			r.Commits++
			dailyFor(r.Daily, ev.OccurredAt).Commits++
		case schema.ReviewEvent:
			c.Reviews++
		}
	}
}

// merge folds one repository's result into the workspace accumulator.
func (a *Accumulator) merge(r *RepoResult, includeStats bool) {
	a.TotalPRs += r.TotalPRs
	a.MergedPRs += r.MergedPRs
	a.OpenPRs += r.OpenPRs
	a.DraftPRs += r.DraftPRs

	a.TotalIssues += r.TotalIssues
	a.ClosedIssues += r.ClosedIssues
	a.OpenIssues += r.OpenIssues

	a.TotalStars += r.Repo.Stars
	a.TotalForks += r.Repo.Forks
	a.TotalCommits += r.Commits

	a.MergeDurations = append(a.MergeDurations, r.MergeDurations...)
	a.CloseDurations = append(a.CloseDurations, r.CloseDurations...)

	for name, c := range r.Contributors {
		dst := contributorFor(a.Contributors, name)
		dst.PullRequests += c.PullRequests
		dst.Issues += c.Issues
		dst.Commits += c.Commits
		dst.Reviews += c.Reviews
	}

	for date, day := range r.Daily {
		dst, ok := a.Daily[date]
		if !ok {
			dst = &schema.ActivityPoint{Date: date}
			a.Daily[date] = dst
		}
		dst.PullRequests += day.PullRequests
		dst.Issues += day.Issues
		dst.Commits += day.Commits
	}

	if r.Repo.PrimaryLanguage != "" {
		a.Languages[r.Repo.PrimaryLanguage]++
	}

	if includeStats {
		a.RepoStats = append(a.RepoStats, schema.RepositoryStat{
			RepositoryID: r.Repo.ID,
			FullName:     r.Repo.FullName,
			Stars:        r.Repo.Stars,
			Forks:        r.Repo.Forks,
			Language:     r.Repo.PrimaryLanguage,
			PullRequests: r.TotalPRs,
			MergedPRs:    r.MergedPRs,
			Issues:       r.TotalIssues,
		})
	}
}

// contributorFor returns the stat entry for a username, creating it on demand.
func contributorFor(m map[string]*schema.ContributorStat, username string) *schema.ContributorStat {
	c, ok := m[username]
	if !ok {
		c = &schema.ContributorStat{Username: username}
		m[username] = c
	}
	return c
}

// dailyFor returns the activity point for a timestamp's calendar day,
// creating it on demand.
func dailyFor(m map[string]*schema.ActivityPoint, ts time.Time) *schema.ActivityPoint {
	date := ts.UTC().Format(contract.DateOnlyFormat)
	p, ok := m[date]
	if !ok {
		p = &schema.ActivityPoint{Date: date}
		m[date] = p
	}
	return p
}
