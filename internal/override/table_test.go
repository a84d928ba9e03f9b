package override

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/court-fetcher/backend/internal/models"
)

func TestSeededTable(t *testing.T) {
	table := NewTable()
	require.Equal(t, 1, table.Len())

	rec, ok := table.Find(8152)
	require.True(t, ok)
	assert.Equal(t, "Alice Sharma vs State of Odisha", rec.Parties)
	assert.Equal(t, 2020, rec.FilingYear)
	assert.Equal(t, models.StatusDisposed, rec.Status)
	require.NotNil(t, rec.NextHearingDate)
	assert.Equal(t, "2025-11-15", rec.NextHearingDate.Format("2006-01-02"))
	assert.Equal(t, "override", rec.SourceDataset)

	_, ok = table.Find(1)
	assert.False(t, ok)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cases:
  - caseNumber: 9001
    parties: Demo Petitioner vs Demo State
    filingYear: 2022
    nextHearing: "2026-03-01"
    status: Pending
  - caseNumber: 0
    parties: ignored
`), 0644))

	table := NewTable()
	require.NoError(t, table.LoadOverlay(path))
	assert.Equal(t, 2, table.Len())

	rec, ok := table.Find(9001)
	require.True(t, ok)
	assert.Equal(t, "Demo Petitioner vs Demo State", rec.Parties)
	assert.Equal(t, models.StatusPending, rec.Status)
	require.NotNil(t, rec.NextHearingDate)
	assert.Equal(t, "2026-03-01", rec.NextHearingDate.Format("2006-01-02"))
	assert.Equal(t, "https://ndap.niti.gov.in", rec.SourceURL)
}

func TestLoadOverlayMissingFile(t *testing.T) {
	table := NewTable()
	assert.NoError(t, table.LoadOverlay(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Equal(t, 1, table.Len())
}

func TestLoadOverlayMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cases: [not : valid"), 0644))

	table := NewTable()
	assert.Error(t, table.LoadOverlay(path))
}
