package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/workpulse/workpulse/schema"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		previous int
		want     int
	}{
		{"growth", 150, 100, 50},
		{"decline", 50, 100, -50},
		{"flat", 100, 100, 0},
		{"rounding up", 101, 3, 3267}, // 3266.67 rounds up
		{"rounding half", 5, 2, 150},
		{"from zero to something", 7, 0, 100},
		{"stayed at zero", 0, 0, 0},
		{"collapsed to zero", 0, 25, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentChange(tt.current, tt.previous))
		})
	}
}

func TestCalculateTrendsWithBaseline(t *testing.T) {
	m := &schema.WorkspaceMetrics{
		TotalStars:         120,
		TotalPRs:           30,
		UniqueContributors: 6,
		TotalCommits:       90,
		TotalIssues:        10,
	}
	baseline := &schema.HistoryBaseline{
		Stars:        100,
		PullRequests: 20,
		Contributors: 6,
		Commits:      100,
		Issues:       0,
	}

	trends := calculateTrends(m, baseline)

	assert.Equal(t, 20, trends.Stars)
	assert.Equal(t, 50, trends.PullRequests)
	assert.Equal(t, 0, trends.Contributors)
	assert.Equal(t, -10, trends.Commits)
	assert.Equal(t, 100, trends.Issues, "zero baseline with activity is a full positive trend")
}

func TestCalculateTrendsNilBaseline(t *testing.T) {
	m := &schema.WorkspaceMetrics{
		TotalStars: 42,
		TotalPRs:   0,
	}

	trends := calculateTrends(m, nil)

	assert.Equal(t, 100, trends.Stars)
	assert.Equal(t, 0, trends.PullRequests)
	assert.Equal(t, 0, trends.Commits)
}
