package contract

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainTrendLabel(t *testing.T) {
	assert.Equal(t, RisingValue, GetPlainTrendLabel(12))
	assert.Equal(t, FallingValue, GetPlainTrendLabel(-3))
	assert.Equal(t, FlatValue, GetPlainTrendLabel(0))
}

func TestGetColorTrendLabel(t *testing.T) {
	// Colored output may include ANSI codes, but the label text survives.
	assert.Contains(t, GetColorTrendLabel(12), RisingValue)
	assert.Contains(t, GetColorTrendLabel(-3), FallingValue)
	assert.Contains(t, GetColorTrendLabel(0), FlatValue)
}

func TestFormatTrendPercent(t *testing.T) {
	assert.Equal(t, "+15%", FormatTrendPercent(15))
	assert.Equal(t, "-8%", FormatTrendPercent(-8))
	assert.Equal(t, "0%", FormatTrendPercent(0))
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"short name untouched", "alice", 10, "alice"},
		{"exact width untouched", "alice", 5, "alice"},
		{"long name truncated", "a-very-long-contributor-name", 10, "a-very-..."},
		{"tiny width untouched", "alice-bob", 3, "alice-bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateName(tt.input, tt.maxWidth)
			assert.Equal(t, tt.want, got)
			if len(tt.input) > tt.maxWidth && tt.maxWidth > 3 {
				assert.Len(t, got, tt.maxWidth)
				assert.True(t, strings.HasSuffix(got, "..."))
			}
		})
	}
}

func TestParseBoolString(t *testing.T) {
	truthy := []string{"yes", "YES", "true", "True", "1"}
	for _, s := range truthy {
		got, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, got, s)
	}

	falsy := []string{"no", "NO", "false", "False", "0"}
	for _, s := range falsy {
		got, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, got, s)
	}

	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Same(t, os.Stdout, f)

	path := t.TempDir() + "/out.txt"
	f2, err := SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f2.Close() }()
	assert.Equal(t, path, f2.Name())
}

func TestDBFilePaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetCacheDBFilePath(), ".workpulse_cache.db"))
	assert.True(t, strings.HasSuffix(GetSourceDBFilePath(), ".workpulse_source.db"))
	assert.True(t, strings.HasSuffix(GetHistoryDBFilePath(), ".workpulse_history.db"))
}
