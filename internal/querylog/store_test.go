package querylog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/court-fetcher/backend/internal/models"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "query_log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	for i, status := range []string{"ok", "not_found", "ok"} {
		require.NoError(t, store.Insert(ctx, models.QueryLog{
			CaseType:   "Civil",
			CaseNumber: 1000 + i,
			Year:       2020,
			CourtLevel: "High Court",
			Status:     status,
			MatchedVia: "dataset",
			SourceURL:  "https://ndap.niti.gov.in",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	logs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// Newest first.
	assert.Equal(t, 1002, logs[0].CaseNumber)
	assert.Equal(t, 1000, logs[2].CaseNumber)
	assert.Equal(t, "not_found", logs[1].Status)
	assert.NotEmpty(t, logs[0].ID)
	assert.Equal(t, base.Add(2*time.Minute), logs[0].CreatedAt.UTC())
}

func TestRecentLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Insert(ctx, models.QueryLog{
			CaseType: "Civil", CaseNumber: i + 1, Year: 2020, CourtLevel: "High Court", Status: "ok",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	logs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	// Zero limit falls back to the default.
	logs, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 5)
}

func TestRecentEmpty(t *testing.T) {
	store := openStore(t)
	logs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
