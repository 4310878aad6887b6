package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeRangeDuration(t *testing.T) {
	tests := []struct {
		timeRange TimeRange
		want      time.Duration
	}{
		{Range7d, 7 * 24 * time.Hour},
		{Range30d, 30 * 24 * time.Hour},
		{Range90d, 90 * 24 * time.Hour},
		{Range1y, 365 * 24 * time.Hour},
		{RangeAll, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.timeRange), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.timeRange.Duration())
		})
	}
}

func TestTimeRangeCacheTTL(t *testing.T) {
	tests := []struct {
		timeRange TimeRange
		want      time.Duration
	}{
		{Range7d, 5 * time.Minute},
		{Range30d, 10 * time.Minute},
		{Range90d, 30 * time.Minute},
		{Range1y, time.Hour},
		{RangeAll, 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(string(tt.timeRange), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.timeRange.CacheTTL())
		})
	}
}

func TestCacheTTLOrderedByVolatility(t *testing.T) {
	// Shorter windows must expire sooner than longer ones.
	for i := 1; i < len(AllTimeRanges); i++ {
		assert.Less(t, AllTimeRanges[i-1].CacheTTL(), AllTimeRanges[i].CacheTTL())
	}
}

func TestCachedMetricsExpired(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	cm := &CachedMetrics{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, cm.Expired(now))
	assert.False(t, cm.Expired(now.Add(time.Minute)), "the expiry instant itself is still fresh")
	assert.True(t, cm.Expired(now.Add(2*time.Minute)))
}

func TestActivityTotalExcludesReviews(t *testing.T) {
	c := ContributorStat{PullRequests: 2, Issues: 3, Commits: 4, Reviews: 99}
	assert.Equal(t, 9, c.ActivityTotal())
}

func TestGitHubEpoch(t *testing.T) {
	assert.Equal(t, 2008, GitHubEpoch.Year())
	assert.Equal(t, time.UTC, GitHubEpoch.Location())
}
