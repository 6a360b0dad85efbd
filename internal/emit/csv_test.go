package emit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamgauge/internal/core/domain"
)

func sampleSummary() *domain.SourceSummary {
	return &domain.SourceSummary{
		ID:              "s1",
		Address:         "rtsp://admin@camera.local:554/cam",
		Strategy:        domain.StrategyTCP,
		MeasuredAt:      time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		HasData:         true,
		MeanBps:         820500,
		StddevBps:       1500,
		MinBps:          800000,
		MaxBps:          840000,
		SampleCount:     4,
		Series:          []int64{810000, 820000, 825000, 827000},
		IntervalSeconds: 11,
	}
}

func TestWriteSummaries(t *testing.T) {
	var sb strings.Builder
	noData := &domain.SourceSummary{Address: "rtsp://dead.local/cam"}

	require.NoError(t, WriteSummaries(&sb, []*domain.SourceSummary{sampleSummary(), noData}))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2) // header plus one populated row

	assert.Equal(t, "address,mean_kbps,stddev_kbps,min_kbps,max_kbps,samples,measured_at", lines[0])
	assert.Equal(t, "rtsp://admin@camera.local:554/cam,820.50,1.50,800.00,840.00,4,2026-08-30T12:00:00Z", lines[1])
}

func TestWriteSummaryFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, WriteSummaryFile(dir, "bitrate_data.csv", []*domain.SourceSummary{sampleSummary()}))

	data, err := os.ReadFile(filepath.Join(dir, "bitrate_data.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "820.50")
}

func TestWriteSeries(t *testing.T) {
	var sb strings.Builder

	require.NoError(t, WriteSeries(&sb, sampleSummary()))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "offset_s,bitrate_bps", lines[0])
	assert.Equal(t, "0.0,810000", lines[1])
	assert.Equal(t, "11.0,820000", lines[2])
	assert.Equal(t, "33.0,827000", lines[4])
}

func TestWriteSeriesFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSeriesFile(dir, sampleSummary())
	require.NoError(t, err)
	require.NotEmpty(t, path)

	// File name is derived from the address with unsafe characters mapped.
	assert.True(t, strings.HasPrefix(filepath.Base(path), "series_"))
	assert.NotContains(t, filepath.Base(path), "/cam")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "810000")
}

func TestWriteSeriesFileSkipsNoData(t *testing.T) {
	path, err := WriteSeriesFile(t.TempDir(), &domain.SourceSummary{Address: "rtsp://dead.local/cam"})
	require.NoError(t, err)
	assert.Empty(t, path)
}
