package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamgauge/internal/core/domain"
)

func TestSaveAndGetByID(t *testing.T) {
	repo := NewMemorySummaryRepository()
	ctx := context.Background()

	summary := &domain.SourceSummary{ID: "a", Address: "rtsp://camera.local/cam", HasData: true, MeanBps: 800000}
	require.NoError(t, repo.Save(ctx, summary))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, summary, got)
}

func TestGetByIDMissing(t *testing.T) {
	repo := NewMemorySummaryRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSummaryNotFound)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	repo := NewMemorySummaryRepository()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Save(ctx, &domain.SourceSummary{ID: id}))
	}

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "c", listed[0].ID)
	assert.Equal(t, "a", listed[1].ID)
	assert.Equal(t, "b", listed[2].ID)
}

func TestSaveUpdatesInPlace(t *testing.T) {
	repo := NewMemorySummaryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.SourceSummary{ID: "a", MeanBps: 1}))
	require.NoError(t, repo.Save(ctx, &domain.SourceSummary{ID: "a", MeanBps: 2}))

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 2.0, listed[0].MeanBps)
}
