package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/court-fetcher/backend/internal/models"
)

func resolvedFixture(parties string, status models.CaseStatus, hearing *time.Time) *models.ResolvedCase {
	return &models.ResolvedCase{
		Record: models.DatasetRecord{
			CaseNumber:      8152,
			RowIndex:        3,
			FilingYear:      2020,
			NextHearingDate: hearing,
			Status:          status,
			Parties:         parties,
			SourceURL:       "https://ndap.niti.gov.in",
			SourceDataset:   "NDAP_REPORT_8152",
		},
		MatchedVia:           models.MatchDataset,
		CandidatesConsidered: 1,
	}
}

func TestRenderJudgment(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	hearing := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
	q := models.CaseQuery{CaseType: "Civil", CaseNumber: 8152, Year: 2020, CourtLevel: "High Court"}

	name, err := r.RenderJudgment(q, resolvedFixture("NDAP 8152 • Row 3", models.StatusDisposed, &hearing))
	require.NoError(t, err)
	assert.Equal(t, "judgment_8152.pdf", name)

	data, err := os.ReadFile(r.FilePath(name))
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderJudgmentOverwrites(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	q := models.CaseQuery{CaseType: "Civil", CaseNumber: 8152, Year: 2020, CourtLevel: "High Court"}
	_, err = r.RenderJudgment(q, resolvedFixture("First vs Render", models.StatusPending, nil))
	require.NoError(t, err)
	first, err := os.ReadFile(r.FilePath("judgment_8152.pdf"))
	require.NoError(t, err)

	_, err = r.RenderJudgment(q, resolvedFixture("A much longer second set of parties vs An even longer respondent name", models.StatusDisposed, nil))
	require.NoError(t, err)
	second, err := os.ReadFile(r.FilePath("judgment_8152.pdf"))
	require.NoError(t, err)

	// Latest wins: one file, new content.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.NotEqual(t, first, second)
}

func TestRenderJudgmentUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	q := models.CaseQuery{CaseType: "Civil", CaseNumber: 1, Year: 2020, CourtLevel: "High Court"}
	_, err = r.RenderJudgment(q, resolvedFixture("A vs B", models.StatusPending, nil))
	assert.Error(t, err)
}

func TestNewRendererPathIsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "occupied")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := NewRenderer(path)
	assert.Error(t, err)
}

func TestEnsureCauseListDemo(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRenderer(dir)
	require.NoError(t, err)

	name, err := r.EnsureCauseListDemo()
	require.NoError(t, err)
	assert.Equal(t, CauseListFileName, name)

	info, err := os.Stat(r.FilePath(name))
	require.NoError(t, err)

	// Second call leaves the existing file alone.
	_, err = r.EnsureCauseListDemo()
	require.NoError(t, err)
	again, err := os.Stat(r.FilePath(name))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())
}

func TestJudgmentFileName(t *testing.T) {
	assert.Equal(t, "judgment_8152.pdf", JudgmentFileName(8152))
}
