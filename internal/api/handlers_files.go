// handlers_files.go - File registry operation handlers
package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fsd-console/backend/internal/registry"
)

// FileHandlerImpl implements the FileHandler interface
type FileHandlerImpl struct {
	store registry.Store
}

// NewFileHandler creates a new file handler instance
func NewFileHandler(store registry.Store) FileHandler {
	return &FileHandlerImpl{store: store}
}

// isHTMLUpload reports whether the upload name carries an accepted extension.
func isHTMLUpload(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// HandleStoreFile accepts a multipart HTML upload and saves it to the registry
func (h *FileHandlerImpl) HandleStoreFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	if !isHTMLUpload(file.Filename) {
		return NewUnsupportedFileError(file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open upload", err)
	}
	defer src.Close()

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "text/html"
	}

	info, err := h.store.Save(file.Filename, mimeType, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleListFiles returns stored files, most recent first
func (h *FileHandlerImpl) HandleListFiles(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// HandleGetFile returns metadata for a stored file
func (h *FileHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	file, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, file)
}

// HandleGetFileContent returns the raw stored HTML
func (h *FileHandlerImpl) HandleGetFileContent(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	file, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	content, err := h.store.Content(id)
	if err != nil {
		return NewInternalError("failed to read file content", err)
	}

	mimeType := file.Type
	if mimeType == "" {
		mimeType = "text/html"
	}
	return c.Blob(http.StatusOK, mimeType, content)
}

// HandleDeleteFile removes a stored file. A repeat delete is a 404.
func (h *FileHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleClearFiles empties the registry
func (h *FileHandlerImpl) HandleClearFiles(c echo.Context) error {
	if err := h.store.Clear(); err != nil {
		return NewInternalError("failed to clear files", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleRenameFile updates a stored file's display name
func (h *FileHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return NewValidationError("name")
	}

	file, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, file)
}
