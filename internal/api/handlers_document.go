// handlers_document.go - Template, keyword and download handlers
package api

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fsd-console/backend/internal/archive"
	"github.com/fsd-console/backend/internal/catalog"
	"github.com/fsd-console/backend/internal/generator"
)

// DocumentHandlerImpl implements the DocumentHandler interface
type DocumentHandlerImpl struct {
	gen      *generator.Generator
	catalog  *catalog.Catalog
	keywords *catalog.KeywordIndex
	history  *archive.History
}

// NewDocumentHandler creates a new document handler instance. history may
// be nil when run recording is disabled.
func NewDocumentHandler(gen *generator.Generator, cat *catalog.Catalog, keywords *catalog.KeywordIndex, history *archive.History) DocumentHandler {
	return &DocumentHandlerImpl{
		gen:      gen,
		catalog:  cat,
		keywords: keywords,
		history:  history,
	}
}

// HandleGenerateDocument fills a template from markdown content
func (h *DocumentHandlerImpl) HandleGenerateDocument(c echo.Context) error {
	var req struct {
		Markdown     string `json:"markdown"`
		TemplateType string `json:"template_type"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Markdown == "" {
		return NewValidationError("markdown")
	}

	templateType, err := parseTemplateType(req.TemplateType)
	if err != nil {
		return NewBadRequestError("invalid template_type", err)
	}

	document, path, err := h.gen.GenerateDocument(req.Markdown, templateType, nil)
	if err != nil {
		return NewInternalError("failed to generate document", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"document":  document,
		"file_path": path,
	})
}

// HandleDownloadFile serves a generated artifact from the output directory
func (h *DocumentHandlerImpl) HandleDownloadFile(c echo.Context) error {
	requested := c.QueryParam("file_path")
	if requested == "" {
		return NewValidationError("file_path")
	}

	path, err := h.gen.ResolveDownloadPath(requested)
	if err != nil {
		return NewNotFoundError("file", requested)
	}

	return c.Attachment(path, filepath.Base(path))
}

// HandleKeywords searches the knowledge base
func (h *DocumentHandlerImpl) HandleKeywords(c echo.Context) error {
	records := h.keywords.Search(c.QueryParam("q"), c.QueryParam("category"))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// HandleListTemplates returns the template catalog
func (h *DocumentHandlerImpl) HandleListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"templates": h.catalog.List(),
	})
}

// HandleTemplateForSection resolves the template bound to a console section
func (h *DocumentHandlerImpl) HandleTemplateForSection(c echo.Context) error {
	section := c.Param("section")
	if section == "" {
		return NewValidationError("section")
	}

	tmpl, ok := h.catalog.ForSection(section)
	if !ok {
		return NewNotFoundError("template for section", section)
	}
	return c.JSON(http.StatusOK, tmpl)
}

// HandleHistory returns recent processing runs
func (h *DocumentHandlerImpl) HandleHistory(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	if h.history == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"runs":  []archive.Entry{},
			"count": 0,
		})
	}

	runs, err := h.history.List(limit)
	if err != nil {
		return NewInternalError("failed to read history", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
