// Package render produces printable case documents.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/court-fetcher/backend/internal/models"
)

// CauseListFileName is the fixed name of the demo cause-list document.
const CauseListFileName = "cause_list_demo.pdf"

// JudgmentFileName returns the deterministic output name for a case.
// Repeated renders for the same case number overwrite the prior file;
// latest wins.
func JudgmentFileName(caseNumber int) string {
	return fmt.Sprintf("judgment_%d.pdf", caseNumber)
}

// Renderer writes fixed-layout PDF documents into an output directory.
type Renderer struct {
	outputDir string
}

// NewRenderer creates a Renderer, creating the output directory if needed.
func NewRenderer(outputDir string) (*Renderer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating downloads directory: %w", err)
	}
	return &Renderer{outputDir: outputDir}, nil
}

// OutputDir returns the directory rendered documents are written to.
func (r *Renderer) OutputDir() string {
	return r.outputDir
}

// FilePath returns the absolute path a named document lives at.
func (r *Renderer) FilePath(name string) string {
	return filepath.Join(r.outputDir, name)
}

// RenderJudgment writes the judgment document for a resolved case and
// returns its file name. The title echoes the query as supplied, not the
// matched record's own fields. An unwritable output directory is a fatal
// I/O error for the call.
func (r *Renderer) RenderJudgment(q models.CaseQuery, resolved *models.ResolvedCase) (string, error) {
	rec := resolved.Record

	title := fmt.Sprintf("Judgment for %d", q.CaseNumber)
	if q.CaseType != "" && q.Year > 0 {
		title = fmt.Sprintf("Judgment for %s %d/%d", q.CaseType, q.CaseNumber, q.Year)
	}

	filingDate := "N/A"
	if rec.FilingYear > 0 {
		filingDate = fmt.Sprintf("%d", rec.FilingYear)
	}
	nextHearing := "Not scheduled"
	if rec.NextHearingDate != nil {
		nextHearing = rec.NextHearingDate.Format("2006-01-02")
	}

	doc := newDocument(title)
	doc.kv("Parties", rec.Parties)
	doc.kv("Filing Date", filingDate)
	doc.kv("Next Hearing", nextHearing)
	doc.kv("Status", string(rec.Status))
	if rec.SourceURL != "" {
		doc.kv("Source", rec.SourceURL)
	}
	if q.CourtLevel != "" {
		doc.kv("Court Level", q.CourtLevel)
	}
	if rec.SourceDataset != "" {
		doc.kv("Dataset", fmt.Sprintf("%s (row %d)", rec.SourceDataset, rec.RowIndex))
	}
	doc.kv("Matched Via", string(resolved.MatchedVia))

	name := JudgmentFileName(q.CaseNumber)
	if err := doc.write(r.FilePath(name)); err != nil {
		return "", fmt.Errorf("writing judgment document: %w", err)
	}
	return name, nil
}

// EnsureCauseListDemo creates the demo cause-list document once. Existing
// files are left alone.
func (r *Renderer) EnsureCauseListDemo() (string, error) {
	path := r.FilePath(CauseListFileName)
	if _, err := os.Stat(path); err == nil {
		return CauseListFileName, nil
	}

	doc := newDocument("Cause List Demo")
	doc.kv("Status", "Generated")
	doc.kv("Source", "https://example.invalid")
	if err := doc.write(path); err != nil {
		return "", fmt.Errorf("writing cause list document: %w", err)
	}
	return CauseListFileName, nil
}

// document wraps gofpdf with the fixed key/value layout all case
// documents share.
type document struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string // party names may contain non-ASCII text
}

func newDocument(title string) *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, tr(title), "", "L", false)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	return &document{pdf: pdf, tr: tr}
}

func (d *document) kv(label, value string) {
	if value == "" {
		value = "N/A"
	}
	d.pdf.MultiCell(0, 6, d.tr(fmt.Sprintf("%s: %s", label, value)), "", "L", false)
}

func (d *document) write(path string) error {
	return d.pdf.OutputFileAndClose(path)
}
