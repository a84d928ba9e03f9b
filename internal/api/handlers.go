package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/court-fetcher/backend/internal/analytics"
	"github.com/court-fetcher/backend/internal/dataset"
	"github.com/court-fetcher/backend/internal/models"
	"github.com/court-fetcher/backend/internal/override"
	"github.com/court-fetcher/backend/internal/querylog"
	"github.com/court-fetcher/backend/internal/render"
	"github.com/court-fetcher/backend/internal/resolver"
)

// Handler handles API requests.
type Handler struct {
	store     *dataset.Store
	overrides *override.Table
	resolver  *resolver.Resolver
	renderer  *render.Renderer
	logs      *querylog.Store
	analytics *analytics.Store // optional; stats endpoint is 503 without it
}

// NewHandler creates a new API handler. logs and stats may be nil.
func NewHandler(store *dataset.Store, overrides *override.Table, res *resolver.Resolver,
	renderer *render.Renderer, logs *querylog.Store, stats *analytics.Store) *Handler {
	return &Handler{
		store:     store,
		overrides: overrides,
		resolver:  res,
		renderer:  renderer,
		logs:      logs,
		analytics: stats,
	}
}

// HandleHealth returns server health status plus store counters.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"rows":      h.store.RowCount(),
		"datasets":  len(h.store.ListDatasets()),
		"overrides": h.overrides.Len(),
		"loadedAt":  h.store.LoadedAt(),
	})
}

type caseSummary struct {
	Parties     string  `json:"parties"`
	FilingYear  int     `json:"filingYear"`
	NextHearing *string `json:"nextHearing"`
	Status      string  `json:"status"`
	SourceURL   string  `json:"sourceUrl"`
}

type documentRef struct {
	Kind        string `json:"kind"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
}

func summarize(rec models.DatasetRecord) caseSummary {
	var nextHearing *string
	if rec.NextHearingDate != nil {
		s := rec.NextHearingDate.Format("2006-01-02")
		nextHearing = &s
	}
	return caseSummary{
		Parties:     rec.Parties,
		FilingYear:  rec.FilingYear,
		NextHearing: nextHearing,
		Status:      string(rec.Status),
		SourceURL:   rec.SourceURL,
	}
}

// HandleLookup resolves a case query, renders its judgment document and
// logs the query.
func (h *Handler) HandleLookup(c echo.Context) error {
	var q models.CaseQuery
	if err := c.Bind(&q); err != nil {
		return RespondWithError(c, NewBadRequestError("invalid JSON body", err))
	}
	if strings.TrimSpace(q.CaseType) == "" {
		return RespondWithError(c, NewValidationError("caseType"))
	}
	if q.CaseNumber <= 0 {
		return RespondWithError(c, NewValidationError("caseNumber"))
	}
	if q.Year < 1950 || q.Year > 2100 {
		return RespondWithError(c, NewValidationError("year"))
	}
	if strings.TrimSpace(q.CourtLevel) == "" {
		return RespondWithError(c, NewValidationError("courtLevel"))
	}

	resolved, err := h.resolver.Resolve(q)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			h.logQuery(c, q, "not_found", "", "")
			return RespondWithError(c, NewNotFoundError("case", strconv.Itoa(q.CaseNumber)))
		}
		h.logQuery(c, q, "error", "", "")
		return RespondWithError(c, NewInternalError("case resolution failed", err))
	}

	judgment, err := h.renderer.RenderJudgment(q, resolved)
	if err != nil {
		h.logQuery(c, q, "error", string(resolved.MatchedVia), resolved.Record.SourceURL)
		return RespondWithError(c, NewInternalError("failed to render judgment document", err))
	}

	causeList, err := h.renderer.EnsureCauseListDemo()
	if err != nil {
		fmt.Printf("[API] failed to create cause list demo: %v\n", err)
	}

	h.logQuery(c, q, "ok", string(resolved.MatchedVia), resolved.Record.SourceURL)

	docs := []documentRef{
		{Kind: "judgment", FileName: judgment, DownloadURL: "/api/dl/file/" + judgment},
	}
	if causeList != "" {
		docs = append(docs, documentRef{Kind: "causeList", FileName: causeList, DownloadURL: "/api/dl/file/" + causeList})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"input":                q,
		"case":                 summarize(resolved.Record),
		"matchedVia":           resolved.MatchedVia,
		"candidatesConsidered": resolved.CandidatesConsidered,
		"documents":            docs,
	})
}

func (h *Handler) logQuery(c echo.Context, q models.CaseQuery, status, matchedVia, sourceURL string) {
	if h.logs == nil {
		return
	}
	err := h.logs.Insert(c.Request().Context(), models.QueryLog{
		CaseType:   q.CaseType,
		CaseNumber: q.CaseNumber,
		Year:       q.Year,
		CourtLevel: q.CourtLevel,
		Status:     status,
		MatchedVia: matchedVia,
		SourceURL:  sourceURL,
	})
	if err != nil {
		fmt.Printf("[API] failed to log query for case %d: %v\n", q.CaseNumber, err)
	}
}

// HandleReload rebuilds the dataset store from a fresh file scan.
func (h *Handler) HandleReload(c echo.Context) error {
	stats, err := h.store.LoadAll()
	if errors.Is(err, dataset.ErrReloadInProgress) {
		return RespondWithError(c, NewReloadInProgressError())
	}
	if err != nil {
		return RespondWithError(c, NewInternalError("dataset reload failed", err))
	}

	if h.analytics != nil {
		if err := h.analytics.Rebuild(h.store.Records()); err != nil {
			fmt.Printf("[API] failed to rebuild analytics: %v\n", err)
		}
	}

	return c.JSON(http.StatusOK, stats)
}

// HandleListDatasets returns the loaded dataset identifiers with row counts.
func (h *Handler) HandleListDatasets(c echo.Context) error {
	datasets := h.store.ListDatasets()
	if datasets == nil {
		datasets = []models.DatasetInfo{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"datasets": datasets,
		"stats":    h.store.Stats(),
	})
}

func paging(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	return page, pageSize
}

// HandleDatasetRows returns paginated rows of one dataset.
func (h *Handler) HandleDatasetRows(c echo.Context) error {
	id := c.Param("id")
	page, pageSize := paging(c)

	rows, total, ok := h.store.DatasetRows(id, page, pageSize)
	if !ok {
		return RespondWithError(c, NewNotFoundError("dataset", id))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rows":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// HandleDatasetRowsMsgpack returns paginated rows in MessagePack format,
// noticeably smaller than JSON for bulk row export.
func (h *Handler) HandleDatasetRowsMsgpack(c echo.Context) error {
	id := c.Param("id")
	page, pageSize := paging(c)

	rows, total, ok := h.store.DatasetRows(id, page, pageSize)
	if !ok {
		return RespondWithError(c, NewNotFoundError("dataset", id))
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"rows":     rows,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to encode msgpack", err))
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleDatasetStats returns per-dataset filing-year counts and the
// overall status breakdown.
func (h *Handler) HandleDatasetStats(c echo.Context) error {
	if h.analytics == nil {
		return RespondWithError(c, NewServiceUnavailableError("analytics store not available"))
	}

	ctx := c.Request().Context()
	yearCounts, err := h.analytics.DatasetYearCounts(ctx)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to query year counts", err))
	}
	statusCounts, err := h.analytics.StatusBreakdown(ctx)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to query status breakdown", err))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"yearCounts":      yearCounts,
		"statusBreakdown": statusCounts,
	})
}

// HandleDownload serves a rendered document as an attachment. Judgment
// documents are regenerated from current data first so a download never
// returns a stale file.
func (h *Handler) HandleDownload(c echo.Context) error {
	name := c.Param("name")
	if name == "" || name != filepath.Base(name) {
		return RespondWithError(c, NewBadRequestError("bad file name", nil))
	}

	switch {
	case strings.HasPrefix(name, "judgment_") && strings.HasSuffix(name, ".pdf"):
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, "judgment_"), ".pdf")
		num, err := strconv.Atoi(numStr)
		if err != nil {
			return RespondWithError(c, NewBadRequestError("bad judgment file name", err))
		}
		resolved, rerr := h.resolver.Resolve(models.CaseQuery{CaseNumber: num})
		if rerr != nil {
			// A judgment left on disk from before a reload must not be
			// served once its case no longer resolves.
			return RespondWithError(c, NewNotFoundError("case", numStr))
		}
		if _, werr := h.renderer.RenderJudgment(models.CaseQuery{CaseNumber: num}, resolved); werr != nil {
			return RespondWithError(c, NewInternalError("failed to regenerate judgment document", werr))
		}
	case name == render.CauseListFileName:
		if _, err := h.renderer.EnsureCauseListDemo(); err != nil {
			return RespondWithError(c, NewInternalError("failed to create cause list demo", err))
		}
	}

	path := h.renderer.FilePath(name)
	if _, err := os.Stat(path); err != nil {
		return RespondWithError(c, NewNotFoundError("file", name))
	}

	c.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Response().Header().Set("Pragma", "no-cache")
	c.Response().Header().Set("Expires", "0")
	return c.Attachment(path, name)
}

// HandleRecentQueries returns the most recent query-log rows.
func (h *Handler) HandleRecentQueries(c echo.Context) error {
	if h.logs == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"queries": []models.QueryLog{}})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	logs, err := h.logs.Recent(c.Request().Context(), limit)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to list recent queries", err))
	}
	if logs == nil {
		logs = []models.QueryLog{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"queries": logs})
}
