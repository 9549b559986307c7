// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/fsd-console/backend/internal/archive"
	"github.com/fsd-console/backend/internal/catalog"
	"github.com/fsd-console/backend/internal/generator"
	"github.com/fsd-console/backend/internal/registry"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store    registry.Store
	Jobs     JobManager
	Gen      *generator.Generator
	Catalog  *catalog.Catalog
	Keywords *catalog.KeywordIndex
	History  *archive.History
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Files    FileHandler
	Process  ProcessHandler
	Document DocumentHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Files:    NewFileHandler(deps.Store),
		Process:  NewProcessHandler(deps.Store, deps.Jobs),
		Document: NewDocumentHandler(deps.Gen, deps.Catalog, deps.Keywords, deps.History),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	api := e.Group("/api")

	// Health check
	api.GET("/health", handlers.Health.HandleHealth)

	// File registry routes
	api.POST("/store-file", handlers.Files.HandleStoreFile)
	api.GET("/list-files", handlers.Files.HandleListFiles)
	api.GET("/files/:id", handlers.Files.HandleGetFile)
	api.GET("/files/:id/content", handlers.Files.HandleGetFileContent)
	api.DELETE("/files/:id", handlers.Files.HandleDeleteFile)
	api.PUT("/files/:id", handlers.Files.HandleRenameFile)
	api.DELETE("/clear-files", handlers.Files.HandleClearFiles)

	// Processing routes
	api.POST("/process-html", handlers.Process.HandleProcessHTML)
	api.POST("/process/:id", handlers.Process.HandleStartProcess)
	api.GET("/jobs/:id", handlers.Process.HandleJobStatus)
	api.GET("/jobs/:id/stream", handlers.Process.HandleJobStream)
	api.POST("/jobs/:id/keepalive", handlers.Process.HandleJobKeepAlive)

	// Document and catalog routes
	api.POST("/generate-document", handlers.Document.HandleGenerateDocument)
	api.GET("/download-file", handlers.Document.HandleDownloadFile)
	api.GET("/keywords", handlers.Document.HandleKeywords)
	api.GET("/templates", handlers.Document.HandleListTemplates)
	api.GET("/templates/:section", handlers.Document.HandleTemplateForSection)
	api.GET("/history", handlers.Document.HandleHistory)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
