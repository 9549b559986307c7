// handlers_process.go - Document processing operation handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fsd-console/backend/internal/models"
	"github.com/fsd-console/backend/internal/registry"
)

// ProcessHandlerImpl implements the ProcessHandler interface
type ProcessHandlerImpl struct {
	store registry.Store
	jobs  JobManager
}

// NewProcessHandler creates a new process handler instance
func NewProcessHandler(store registry.Store, jobs JobManager) ProcessHandler {
	return &ProcessHandlerImpl{
		store: store,
		jobs:  jobs,
	}
}

// parseTemplateType validates the template_type value, defaulting to the
// functional template.
func parseTemplateType(s string) (models.TemplateType, error) {
	switch models.TemplateType(s) {
	case "":
		return models.TemplateFunctional, nil
	case models.TemplateFunctional, models.TemplateTechnical, models.TemplateTestCases:
		return models.TemplateType(s), nil
	}
	return "", fmt.Errorf("unknown template type %q", s)
}

// HandleProcessHTML stores an upload and processes it synchronously
func (h *ProcessHandlerImpl) HandleProcessHTML(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}
	if !isHTMLUpload(file.Filename) {
		return NewUnsupportedFileError(file.Filename)
	}

	templateType, err := parseTemplateType(c.FormValue("template_type"))
	if err != nil {
		return NewBadRequestError("invalid template_type", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open upload", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, "text/html", src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	result, err := h.jobs.Process(info.ID, templateType)
	if err != nil {
		return NewInternalError("processing failed", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":          true,
		"file_id":          info.ID,
		"fsd_analysis":     result.FSDAnalysis,
		"markdown_content": result.MarkdownContent,
		"statistics":       result.Statistics,
		"output_files":     result.OutputFiles,
	})
}

// HandleStartProcess starts a background job for a stored file
func (h *ProcessHandlerImpl) HandleStartProcess(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	templateType, err := parseTemplateType(c.QueryParam("template_type"))
	if err != nil {
		return NewBadRequestError("invalid template_type", err)
	}

	job, err := h.jobs.StartJob(id, templateType)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusAccepted, job)
}

// HandleJobStatus returns the current status of a processing job
func (h *ProcessHandlerImpl) HandleJobStatus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	job, ok := h.jobs.GetJob(id)
	if !ok {
		return NewNotFoundError("job", id)
	}

	// Touch job to prevent cleanup while being polled
	h.jobs.TouchJob(id)

	return c.JSON(http.StatusOK, job)
}

// HandleJobKeepAlive extends job lifetime for active viewing
func (h *ProcessHandlerImpl) HandleJobKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if ok := h.jobs.TouchJob(id); !ok {
		return NewNotFoundError("job", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleJobStream streams job progress via SSE
func (h *ProcessHandlerImpl) HandleJobStream(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	job, ok := h.jobs.GetJob(id)
	if !ok {
		h.sendSSEError(c, "job not found")
		return nil
	}

	// Send initial status
	h.sendSSEData(c, job)

	// Stream updates until complete or error
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-ticker.C:
			job, ok := h.jobs.GetJob(id)
			if !ok {
				h.sendSSEError(c, "job not found")
				return nil
			}

			h.sendSSEData(c, job)

			if job.Status == models.JobStatusComplete ||
				job.Status == models.JobStatusError {
				return nil
			}

		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil

		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func (h *ProcessHandlerImpl) sendSSEData(c echo.Context, data interface{}) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(c.Response(), "data: %s\n\n", jsonData)
	c.Response().Flush()
}

func (h *ProcessHandlerImpl) sendSSEError(c echo.Context, message string) {
	h.sendSSEData(c, map[string]string{"error": message})
}
