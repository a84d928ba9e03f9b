// Package dataset loads court-case records from tabular dataset files and
// serves lookups against an immutable in-memory snapshot.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/court-fetcher/backend/internal/models"
)

// ErrReloadInProgress is returned when a reload is requested while another
// reload is still running. The new request is rejected, not queued.
var ErrReloadInProgress = errors.New("dataset reload already in progress")

// snapshot is an immutable point-in-time view of all loaded records.
// It is built off to the side during a load and swapped in atomically,
// so readers never observe a half-loaded state.
type snapshot struct {
	byCase   map[int][]models.DatasetRecord
	records  []models.DatasetRecord // file-then-row order
	datasets []models.DatasetInfo
	stats    models.LoadStats
	loadedAt time.Time
}

// Store discovers dataset files in the configured directories, parses them
// into records and answers lookup-by-case-number against the current snapshot.
type Store struct {
	dirs []string

	snap     atomic.Pointer[snapshot]
	reloadMu sync.Mutex // held for the duration of one LoadAll
}

// NewStore creates a Store scanning the given directories in order.
// No data is loaded until LoadAll is called.
func NewStore(dirs []string) *Store {
	return &Store{dirs: dirs}
}

// LoadAll scans the dataset directories, parses every recognized file and
// atomically replaces the record index. Missing directories are skipped;
// an unreadable existing directory aborts the load. A second concurrent
// call fails with ErrReloadInProgress.
func (s *Store) LoadAll() (models.LoadStats, error) {
	if !s.reloadMu.TryLock() {
		return models.LoadStats{}, ErrReloadInProgress
	}
	defer s.reloadMu.Unlock()

	next := &snapshot{
		byCase:   make(map[int][]models.DatasetRecord),
		loadedAt: time.Now(),
	}
	seen := make(map[string]bool)

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return models.LoadStats{}, fmt.Errorf("reading dataset directory %s: %w", dir, err)
		}

		// os.ReadDir sorts by name, which fixes the file order and with
		// it the resolver's tie-break order.
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			records, skipped, err := parseFile(path)
			if err != nil {
				// A single bad file degrades to zero rows, never aborts the load.
				fmt.Printf("[Dataset] failed to read %s: %v\n", path, err)
				continue
			}

			id := DatasetID(path)
			if seen[id] {
				// The same file name in another scanned directory must not
				// share an identifier, or row indexes stop being unique
				// within a dataset. Suffix later copies with their directory.
				base := id + "@" + filepath.Base(dir)
				id = base
				for n := 2; seen[id]; n++ {
					id = fmt.Sprintf("%s-%d", base, n)
				}
				for i := range records {
					records[i].SourceDataset = id
				}
			}
			seen[id] = true
			next.datasets = append(next.datasets, models.DatasetInfo{
				ID:       id,
				Path:     path,
				RowCount: len(records),
				Skipped:  skipped,
			})
			next.records = append(next.records, records...)
			for _, rec := range records {
				next.byCase[rec.CaseNumber] = append(next.byCase[rec.CaseNumber], rec)
			}
			next.stats.FilesLoaded++
			next.stats.RowsLoaded += len(records)
			next.stats.RowsSkipped += skipped
		}
	}

	s.snap.Store(next)
	fmt.Printf("[Dataset] loaded files=%d rows=%d skipped=%d dirs=%v\n",
		next.stats.FilesLoaded, next.stats.RowsLoaded, next.stats.RowsSkipped, s.dirs)
	return next.stats, nil
}

func (s *Store) current() *snapshot {
	if snap := s.snap.Load(); snap != nil {
		return snap
	}
	return &snapshot{byCase: map[int][]models.DatasetRecord{}}
}

// FindByCaseNumber returns all records with the given case number in
// file-then-row order. Never errors; empty when nothing matches.
func (s *Store) FindByCaseNumber(n int) []models.DatasetRecord {
	return s.current().byCase[n]
}

// ListDatasets returns the currently loaded dataset identifiers with row counts.
func (s *Store) ListDatasets() []models.DatasetInfo {
	return s.current().datasets
}

// Records returns every loaded record in file-then-row order.
func (s *Store) Records() []models.DatasetRecord {
	return s.current().records
}

// DatasetRows returns one page of a single dataset's rows plus the total
// row count. ok is false when the dataset identifier is unknown.
func (s *Store) DatasetRows(id string, page, pageSize int) (rows []models.DatasetRecord, total int, ok bool) {
	snap := s.current()

	found := false
	for _, info := range snap.datasets {
		if info.ID == id {
			found = true
			total = info.RowCount
			break
		}
	}
	if !found {
		return nil, 0, false
	}

	all := make([]models.DatasetRecord, 0, total)
	for _, rec := range snap.records {
		if rec.SourceDataset == id {
			all = append(all, rec)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].RowIndex < all[j].RowIndex })

	start := (page - 1) * pageSize
	if start >= len(all) {
		return []models.DatasetRecord{}, total, true
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, true
}

// Stats returns the counts of the last completed load.
func (s *Store) Stats() models.LoadStats {
	return s.current().stats
}

// RowCount returns the number of loaded records.
func (s *Store) RowCount() int {
	return len(s.current().records)
}

// LoadedAt returns when the current snapshot was built; zero before the
// first load.
func (s *Store) LoadedAt() time.Time {
	return s.current().loadedAt
}
