// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/fsd-console/backend/internal/models"
)

// FileHandler handles file registry operations
type FileHandler interface {
	HandleStoreFile(c echo.Context) error
	HandleListFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleGetFileContent(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleClearFiles(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}

// ProcessHandler handles document processing operations
type ProcessHandler interface {
	HandleProcessHTML(c echo.Context) error
	HandleStartProcess(c echo.Context) error
	HandleJobStatus(c echo.Context) error
	HandleJobStream(c echo.Context) error
	HandleJobKeepAlive(c echo.Context) error
}

// DocumentHandler handles template, keyword and download operations
type DocumentHandler interface {
	HandleGenerateDocument(c echo.Context) error
	HandleDownloadFile(c echo.Context) error
	HandleKeywords(c echo.Context) error
	HandleListTemplates(c echo.Context) error
	HandleTemplateForSection(c echo.Context) error
	HandleHistory(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// JobManager defines the interface for job management
// This allows mocking in tests
type JobManager interface {
	StartJob(fileID string, templateType models.TemplateType) (*models.ProcessJob, error)
	Process(fileID string, templateType models.TemplateType) (*models.ProcessResult, error)
	GetJob(id string) (*models.ProcessJob, bool)
	TouchJob(id string) bool
}
