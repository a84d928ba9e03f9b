package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/court-fetcher/backend/internal/analytics"
	"github.com/court-fetcher/backend/internal/api"
	"github.com/court-fetcher/backend/internal/config"
	"github.com/court-fetcher/backend/internal/dataset"
	"github.com/court-fetcher/backend/internal/override"
	"github.com/court-fetcher/backend/internal/querylog"
	"github.com/court-fetcher/backend/internal/render"
	"github.com/court-fetcher/backend/internal/resolver"
	"github.com/court-fetcher/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "CourtFetcher.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Query log persistence
	logs, err := querylog.Open(cfg.Storage.QueryLogPath)
	if err != nil {
		fmt.Printf("Failed to open query log: %v\n", err)
		os.Exit(1)
	}
	defer logs.Close()

	// Override table: built-in seed plus optional overlay file
	overrides := override.NewTable()
	if err := overrides.LoadOverlay(cfg.OverrideOverlayPath()); err != nil {
		fmt.Printf("Warning: failed to load override overlay: %v\n", err)
	}

	// Dataset store, loaded once at startup
	store := dataset.NewStore(cfg.DatasetDirs())
	stats, err := store.LoadAll()
	if err != nil {
		fmt.Printf("Failed to load datasets: %v\n", err)
		os.Exit(1)
	}

	// Analytics is optional; without DuckDB the stats endpoint degrades to 503
	var analyticsStore *analytics.Store
	if s, err := analytics.NewStore(); err != nil {
		fmt.Printf("Warning: analytics store unavailable: %v\n", err)
	} else {
		analyticsStore = s
		defer analyticsStore.Close()
		if err := analyticsStore.Rebuild(store.Records()); err != nil {
			fmt.Printf("Warning: failed to build analytics: %v\n", err)
		}
	}

	renderer, err := render.NewRenderer(cfg.GetDownloadsDir())
	if err != nil {
		fmt.Printf("Failed to initialize renderer: %v\n", err)
		os.Exit(1)
	}

	res := resolver.New(overrides, store)
	h := api.NewHandler(store, overrides, res, renderer, logs, analyticsStore)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "/dl/file/")
		},
		ErrorMessage: "Request timeout - query took too long",
	}))

	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API Routes
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", h.HandleHealth)

	apiGroup.POST("/cases/lookup", h.HandleLookup)

	apiGroup.GET("/datasets/list", h.HandleListDatasets)
	apiGroup.GET("/datasets/stats", h.HandleDatasetStats)
	apiGroup.GET("/datasets/:id/rows", h.HandleDatasetRows)
	apiGroup.GET("/datasets/:id/rows/msgpack", h.HandleDatasetRowsMsgpack)

	apiGroup.POST("/admin/dataset/reload", h.HandleReload)

	apiGroup.GET("/dl/file/:name", h.HandleDownload)

	apiGroup.GET("/queries/recent", h.HandleRecentQueries)

	if web.HasEmbeddedFiles() {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Court Case Fetcher Server                       ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Datasets:  %-46s║\n", fmt.Sprintf("%d files / %d rows (%d skipped)", stats.FilesLoaded, stats.RowsLoaded, stats.RowsSkipped))
	fmt.Printf("║  Downloads: %-46s║\n", cfg.GetDownloadsDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
