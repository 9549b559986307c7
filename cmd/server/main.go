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

	"github.com/fsd-console/backend/internal/analyzer"
	"github.com/fsd-console/backend/internal/api"
	"github.com/fsd-console/backend/internal/archive"
	"github.com/fsd-console/backend/internal/catalog"
	"github.com/fsd-console/backend/internal/config"
	"github.com/fsd-console/backend/internal/generator"
	"github.com/fsd-console/backend/internal/registry"
	"github.com/fsd-console/backend/internal/session"
	"github.com/fsd-console/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Resolve config next to the executable
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "fsd-console.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	embeddedMode := web.HasEmbeddedFiles()

	// File registry
	store, err := registry.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize file registry: %v\n", err)
		os.Exit(1)
	}

	// Template catalog with optional YAML overrides
	cat := catalog.NewCatalog()
	if err := cat.LoadOverrides(cfg.Processing.TemplateOverridesPath); err != nil {
		fmt.Printf("Warning: failed to load template overrides: %v\n", err)
	}

	// Keyword knowledge base with optional CSV extension
	keywords := catalog.NewKeywordIndex()
	if err := keywords.LoadCSV(cfg.Processing.KeywordCSVPath); err != nil {
		fmt.Printf("Warning: failed to load keyword CSV: %v\n", err)
	}

	// Requirement list workbook is optional
	requirements, err := analyzer.LoadRequirementList(cfg.Processing.RequirementListPath)
	if err != nil {
		fmt.Printf("Warning: failed to load requirement list: %v\n", err)
		requirements = nil
	} else if requirements.Len() > 0 {
		fmt.Printf("Loaded %d requirement list entries\n", requirements.Len())
	}

	gen, err := generator.New(cfg.GetOutputDir(), cat)
	if err != nil {
		fmt.Printf("Failed to initialize generator: %v\n", err)
		os.Exit(1)
	}

	// Processing history
	var history *archive.History
	if cfg.Advanced.EnableHistory {
		history, err = archive.Open(cfg.GetDataDir())
		if err != nil {
			fmt.Printf("Warning: history disabled: %v\n", err)
		} else {
			defer history.Close()
		}
	}

	a := analyzer.New(cfg.Processing.ProjectName, requirements)
	jobs := session.NewManager(store, a, gen, history)

	// Background job cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			jobs.CleanupOldJobs(time.Duration(cfg.Processing.JobTimeoutMinutes) * time.Minute)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/stream") || path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

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
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.SetupMiddleware(e)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:    store,
		Jobs:     jobs,
		Gen:      gen,
		Catalog:  cat,
		Keywords: keywords,
		History:  history,
		Version:  Version,
	}))

	// Register embedded console if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded console from binary")
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	mode := "Development"
	if embeddedMode {
		mode = "Embedded"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           FSD Console Server                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
