// handlers_files_test.go - Tests for file registry handlers
package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fsd-console/backend/internal/models"
	"github.com/fsd-console/backend/internal/testutil"
)

// multipartUpload builds a multipart body carrying one file field.
func multipartUpload(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return body, writer.FormDataContentType()
}

func TestFileHandler_HandleStoreFile(t *testing.T) {
	tests := []struct {
		name       string
		fieldName  string
		fileName   string
		wantStatus int
		wantErr    bool
		errCode    string
	}{
		{
			name:       "valid html upload",
			fieldName:  "file",
			fileName:   "spec.html",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "htm extension accepted",
			fieldName:  "file",
			fileName:   "spec.htm",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "extension check is case insensitive",
			fieldName:  "file",
			fileName:   "SPEC.HTML",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "non-html rejected",
			fieldName:  "file",
			fileName:   "notes.txt",
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "UNSUPPORTED_FILE_TYPE",
		},
		{
			name:       "wrong field name",
			fieldName:  "upload",
			fileName:   "spec.html",
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockRegistry()
			handler := NewFileHandler(store)

			e := echo.New()
			body, contentType := multipartUpload(t, tt.fieldName, tt.fileName, "<html></html>")
			req := httptest.NewRequest(http.MethodPost, "/api/store-file", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler.HandleStoreFile(c)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected error code %s, got %s", tt.errCode, apiErr.Code)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var file models.StoredFile
			if err := json.Unmarshal(rec.Body.Bytes(), &file); err != nil {
				t.Fatalf("invalid response body: %v", err)
			}
			if file.Name != tt.fileName {
				t.Errorf("stored name = %s, want %s", file.Name, tt.fileName)
			}
			if file.ID == "" {
				t.Error("stored file missing ID")
			}
		})
	}
}

func TestFileHandler_HandleListFiles(t *testing.T) {
	store := testutil.NewMockRegistry()
	store.SaveBytes("a.html", "text/html", []byte("<html>a</html>"))
	store.SaveBytes("b.html", "text/html", []byte("<html>b</html>"))

	handler := NewFileHandler(store)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/list-files", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleListFiles(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var response struct {
		Files []models.StoredFile `json:"files"`
		Count int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if response.Count != 2 || len(response.Files) != 2 {
		t.Errorf("count = %d, files = %d, want 2", response.Count, len(response.Files))
	}
}

func TestFileHandler_HandleGetFileContent(t *testing.T) {
	store := testutil.NewMockRegistry()
	file, _ := store.SaveBytes("spec.html", "text/html", []byte("<html>body</html>"))

	handler := NewFileHandler(store)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(file.ID)

	if err := handler.HandleGetFileContent(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<html>body</html>") {
		t.Error("content body not returned")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %s", ct)
	}
}

func TestFileHandler_HandleDeleteFile(t *testing.T) {
	store := testutil.NewMockRegistry()
	file, _ := store.SaveBytes("spec.html", "text/html", []byte("<html></html>"))

	handler := NewFileHandler(store)
	e := echo.New()

	del := func() (int, error) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(file.ID)
		err := handler.HandleDeleteFile(c)
		return rec.Code, err
	}

	code, err := del()
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if code != http.StatusNoContent {
		t.Errorf("first delete status = %d, want 204", code)
	}

	// Second delete of the same id is a 404
	_, err = del()
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusNotFound {
		t.Errorf("second delete should be 404, got %v", err)
	}
}

func TestFileHandler_HandleClearFiles(t *testing.T) {
	store := testutil.NewMockRegistry()
	store.SaveBytes("a.html", "text/html", []byte("<html></html>"))
	store.SaveBytes("b.html", "text/html", []byte("<html></html>"))

	handler := NewFileHandler(store)
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/clear-files", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleClearFiles(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("registry not emptied: %d files left", store.Count())
	}
}

func TestFileHandler_HandleRenameFile(t *testing.T) {
	store := testutil.NewMockRegistry()
	file, _ := store.SaveBytes("old.html", "text/html", []byte("<html></html>"))

	handler := NewFileHandler(store)
	e := echo.New()
	body, _ := json.Marshal(map[string]string{"name": "new.html"})
	req := httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(file.ID)

	if err := handler.HandleRenameFile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var updated models.StoredFile
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Name != "new.html" {
		t.Errorf("name = %s, want new.html", updated.Name)
	}
}
