// Package models contains domain types for the Court Case Fetcher.
package models

import (
	"strings"
	"time"
)

// CaseStatus represents the lifecycle state of a court case.
type CaseStatus string

const (
	StatusPending  CaseStatus = "Pending"
	StatusDisposed CaseStatus = "Disposed"
	StatusUnknown  CaseStatus = "Unknown"
)

// NormalizeStatus coerces free-form dataset status text into a CaseStatus.
func NormalizeStatus(raw string) CaseStatus {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case lower == "":
		return StatusUnknown
	case strings.Contains(lower, "dispos"):
		return StatusDisposed
	case strings.Contains(lower, "pend"), strings.Contains(lower, "listed"):
		return StatusPending
	default:
		return StatusUnknown
	}
}

// CaseQuery is the request shape for a case lookup.
// Transient, constructed per request, never persisted as-is.
type CaseQuery struct {
	CaseType   string `json:"caseType"`
	CaseNumber int    `json:"caseNumber"`
	Year       int    `json:"year"`
	CourtLevel string `json:"courtLevel"`
}

// DatasetRecord is one row sourced from a dataset file.
// RowIndex is unique within a SourceDataset; CaseNumber is not unique
// across the whole store.
type DatasetRecord struct {
	CaseNumber      int        `json:"caseNumber"`
	RowIndex        int        `json:"rowIndex"`
	FilingYear      int        `json:"filingYear"`
	NextHearingDate *time.Time `json:"nextHearingDate,omitempty"`
	Status          CaseStatus `json:"status"`
	Parties         string     `json:"parties"`
	SourceURL       string     `json:"sourceUrl"`
	SourceDataset   string     `json:"sourceDataset"`
}

// MatchSource tags where a resolved record came from.
type MatchSource string

const (
	MatchOverride MatchSource = "override"
	MatchDataset  MatchSource = "dataset"
)

// ResolvedCase is the outcome of resolving a CaseQuery: the chosen record
// plus provenance metadata.
type ResolvedCase struct {
	Record               DatasetRecord `json:"record"`
	MatchedVia           MatchSource   `json:"matchedVia"`
	CandidatesConsidered int           `json:"candidatesConsidered"`
}

// DatasetInfo describes one loaded dataset source.
type DatasetInfo struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	RowCount int    `json:"rowCount"`
	Skipped  int    `json:"skipped"`
}

// LoadStats summarizes one full dataset load.
type LoadStats struct {
	FilesLoaded int `json:"filesLoaded"`
	RowsLoaded  int `json:"rowsLoaded"`
	RowsSkipped int `json:"rowsSkipped"`
}
