package models

import "time"

// QueryLog is one persisted lookup, successful or not.
type QueryLog struct {
	ID         string    `json:"id"`
	CaseType   string    `json:"caseType"`
	CaseNumber int       `json:"caseNumber"`
	Year       int       `json:"year"`
	CourtLevel string    `json:"courtLevel"`
	Status     string    `json:"status"` // "ok", "not_found", "error"
	MatchedVia string    `json:"matchedVia,omitempty"`
	SourceURL  string    `json:"sourceUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
