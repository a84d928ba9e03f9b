package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/court-fetcher/backend/internal/models"
)

// DefaultSourceURL is the attribution used for rows that carry no source column.
const DefaultSourceURL = "https://ndap.niti.gov.in"

var datasetCodeRegex = regexp.MustCompile(`_(\d+)$`)

// columnMap resolves the heterogeneous headers seen across dataset files
// into the handful of columns the record schema cares about.
type columnMap struct {
	caseNumber int
	year       int
	hearing    int
	status     int
	source     int

	// party-name candidates, tried in order
	title      int
	petitioner int
	respondent int
	plaintiff  int
	defendant  int
}

func newColumnMap(header []string) columnMap {
	m := columnMap{
		caseNumber: -1, year: -1, hearing: -1, status: -1, source: -1,
		title: -1, petitioner: -1, respondent: -1, plaintiff: -1, defendant: -1,
	}
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case m.caseNumber < 0 && strings.Contains(name, "case") &&
			(strings.Contains(name, "number") || strings.Contains(name, "no")):
			m.caseNumber = i
		case m.year < 0 && strings.Contains(name, "year"):
			m.year = i
		case m.hearing < 0 && strings.Contains(name, "hearing"):
			m.hearing = i
		case m.status < 0 && strings.Contains(name, "status"):
			m.status = i
		case m.source < 0 && (name == "source" || strings.Contains(name, "url")):
			m.source = i
		case m.title < 0 && (name == "case_title" || name == "title" ||
			name == "parties" || name == "case name" || name == "case_name"):
			m.title = i
		case m.petitioner < 0 && strings.Contains(name, "petitioner"):
			m.petitioner = i
		case m.respondent < 0 && strings.Contains(name, "respondent"):
			m.respondent = i
		case m.plaintiff < 0 && strings.Contains(name, "plaintiff"):
			m.plaintiff = i
		case m.defendant < 0 && strings.Contains(name, "defendant"):
			m.defendant = i
		}
	}
	return m
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parties derives a readable party-names string from a row, falling back
// through title, petitioner/respondent and plaintiff/defendant columns.
func (m columnMap) parties(row []string) string {
	if v := field(row, m.title); v != "" {
		return v
	}
	pet, res := field(row, m.petitioner), field(row, m.respondent)
	if pet != "" || res != "" {
		if pet == "" {
			pet = "Petitioner"
		}
		if res == "" {
			res = "Respondent"
		}
		return pet + " vs " + res
	}
	pl, df := field(row, m.plaintiff), field(row, m.defendant)
	if pl != "" || df != "" {
		if pl == "" {
			pl = "Plaintiff"
		}
		if df == "" {
			df = "Defendant"
		}
		return pl + " vs " + df
	}
	return ""
}

// DatasetID returns the stable identifier for a dataset file: its base
// name without extension, e.g. "NDAP_REPORT_8152".
func DatasetID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// datasetCode extracts the numeric report code from a dataset identifier
// (the trailing digits of NDAP_REPORT_8152). Rows without an explicit
// case-number column are addressed as code+rowIndex, so row 0 answers to
// the code itself. Returns -1 when the name carries no code.
func datasetCode(id string) int {
	m := datasetCodeRegex.FindStringSubmatch(id)
	if m == nil {
		return -1
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return code
}

var hearingLayouts = []string{"2006-01-02", "02-01-2006", "2006/01/02", "02/01/2006"}

func parseHearingDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range hearingLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// parseFile reads one dataset file into records, skipping malformed rows.
// Parsing is best-effort: a bad row is counted, never fatal. Only opening
// or reading the file itself can return an error.
func parseFile(path string) ([]models.DatasetRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	id := DatasetID(path)
	code := datasetCode(id)

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading header of %s: %w", id, err)
	}
	cols := newColumnMap(header)

	// Without a case-number column the code+rowIndex addressing is the
	// only way to reach rows; a file with neither yields nothing.
	if cols.caseNumber < 0 && code < 0 {
		fmt.Printf("[Dataset] %s: no case number column and no report code, all rows skipped\n", id)
	}

	var records []models.DatasetRecord
	skipped := 0
	rowIndex := -1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed CSV line: skip and keep going.
			skipped++
			continue
		}
		rowIndex++

		caseNumber := -1
		if cols.caseNumber >= 0 {
			n, convErr := strconv.Atoi(field(row, cols.caseNumber))
			if convErr != nil || n <= 0 {
				skipped++
				continue
			}
			caseNumber = n
		} else if code >= 0 {
			caseNumber = code + rowIndex
		} else {
			skipped++
			continue
		}

		filingYear := 0
		if y, convErr := strconv.Atoi(field(row, cols.year)); convErr == nil {
			filingYear = y
		}

		parties := cols.parties(row)
		if parties == "" {
			parties = fmt.Sprintf("Case %s-%d", id, rowIndex)
		}

		sourceURL := field(row, cols.source)
		if sourceURL == "" {
			sourceURL = DefaultSourceURL
		}

		records = append(records, models.DatasetRecord{
			CaseNumber:      caseNumber,
			RowIndex:        rowIndex,
			FilingYear:      filingYear,
			NextHearingDate: parseHearingDate(field(row, cols.hearing)),
			Status:          models.NormalizeStatus(field(row, cols.status)),
			Parties:         parties,
			SourceURL:       sourceURL,
			SourceDataset:   id,
		})
	}

	return records, skipped, nil
}
