// handlers_process_test.go - Tests for processing handlers
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fsd-console/backend/internal/models"
	"github.com/fsd-console/backend/internal/testutil"
)

// mockJobManager implements JobManager for handler tests
type mockJobManager struct {
	jobs       map[string]*models.ProcessJob
	processErr error
	started    []string
}

func newMockJobManager() *mockJobManager {
	return &mockJobManager{jobs: make(map[string]*models.ProcessJob)}
}

func (m *mockJobManager) StartJob(fileID string, tt models.TemplateType) (*models.ProcessJob, error) {
	if fileID == "missing" {
		return nil, errors.New("file not found")
	}
	m.started = append(m.started, fileID)
	job := models.NewProcessJob("job-"+fileID, fileID, "spec.html", tt)
	m.jobs[job.ID] = job
	return job, nil
}

func (m *mockJobManager) Process(fileID string, tt models.TemplateType) (*models.ProcessResult, error) {
	if m.processErr != nil {
		return nil, m.processErr
	}
	return &models.ProcessResult{
		FSDAnalysis:     &models.FSDDocument{ProgramName: "ZTEST_REPORT"},
		MarkdownContent: "# Functional Specification Design (FSD)\n## ZTEST_REPORT",
		Statistics:      models.Stats{Sections: 3},
	}, nil
}

func (m *mockJobManager) GetJob(id string) (*models.ProcessJob, bool) {
	job, ok := m.jobs[id]
	return job, ok
}

func (m *mockJobManager) TouchJob(id string) bool {
	_, ok := m.jobs[id]
	return ok
}

func TestProcessHandler_HandleProcessHTML(t *testing.T) {
	tests := []struct {
		name         string
		fileName     string
		templateType string
		processErr   error
		wantStatus   int
		wantErr      bool
		errCode      string
	}{
		{
			name:       "valid upload processed",
			fileName:   "spec.html",
			wantStatus: http.StatusOK,
		},
		{
			name:         "explicit template type",
			fileName:     "spec.html",
			templateType: "technical",
			wantStatus:   http.StatusOK,
		},
		{
			name:         "unknown template type",
			fileName:     "spec.html",
			templateType: "word-doc",
			wantStatus:   http.StatusBadRequest,
			wantErr:      true,
			errCode:      "BAD_REQUEST",
		},
		{
			name:       "non-html upload",
			fileName:   "spec.pdf",
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "UNSUPPORTED_FILE_TYPE",
		},
		{
			name:       "processing failure",
			fileName:   "spec.html",
			processErr: errors.New("analyze failed"),
			wantStatus: http.StatusInternalServerError,
			wantErr:    true,
			errCode:    "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockRegistry()
			jobs := newMockJobManager()
			jobs.processErr = tt.processErr
			handler := NewProcessHandler(store, jobs)

			e := echo.New()
			body, contentType := multipartUpload(t, "file", tt.fileName, "<html></html>")
			target := "/api/process-html"
			if tt.templateType != "" {
				target += "?template_type=" + tt.templateType
			}
			req := httptest.NewRequest(http.MethodPost, target, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler.HandleProcessHTML(c)

			if tt.wantErr {
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Status != tt.wantStatus || apiErr.Code != tt.errCode {
					t.Errorf("got %d/%s, want %d/%s", apiErr.Status, apiErr.Code, tt.wantStatus, tt.errCode)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var response map[string]json.RawMessage
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatal(err)
			}
			for _, key := range []string{"success", "fsd_analysis", "markdown_content", "statistics", "output_files"} {
				if _, ok := response[key]; !ok {
					t.Errorf("response missing key %q", key)
				}
			}
		})
	}
}

func TestProcessHandler_HandleStartProcess(t *testing.T) {
	store := testutil.NewMockRegistry()
	jobs := newMockJobManager()
	handler := NewProcessHandler(store, jobs)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("file-1")

	if err := handler.HandleStartProcess(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}

	var job models.ProcessJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatal(err)
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("job status = %s, want pending", job.Status)
	}
	if len(jobs.started) != 1 || jobs.started[0] != "file-1" {
		t.Errorf("started jobs = %v", jobs.started)
	}
}

func TestProcessHandler_HandleStartProcess_UnknownFile(t *testing.T) {
	handler := NewProcessHandler(testutil.NewMockRegistry(), newMockJobManager())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := handler.HandleStartProcess(c)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestProcessHandler_HandleJobStatus(t *testing.T) {
	jobs := newMockJobManager()
	job, _ := jobs.StartJob("file-1", models.TemplateFunctional)
	handler := NewProcessHandler(testutil.NewMockRegistry(), jobs)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID)

	if err := handler.HandleJobStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got models.ProcessJob
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != job.ID {
		t.Errorf("job id = %s, want %s", got.ID, job.ID)
	}
}

func TestProcessHandler_HandleJobKeepAlive(t *testing.T) {
	jobs := newMockJobManager()
	job, _ := jobs.StartJob("file-1", models.TemplateFunctional)
	handler := NewProcessHandler(testutil.NewMockRegistry(), jobs)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID)

	if err := handler.HandleJobKeepAlive(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("gone")

	err := handler.HandleJobKeepAlive(c)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestProcessHandler_HandleJobStream_CompletedJob(t *testing.T) {
	jobs := newMockJobManager()
	job, _ := jobs.StartJob("file-1", models.TemplateFunctional)
	job.Status = models.JobStatusComplete
	job.Progress = 100
	handler := NewProcessHandler(testutil.NewMockRegistry(), jobs)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID)

	if err := handler.HandleJobStream(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %s", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "data: ") || !strings.Contains(body, `"status":"complete"`) {
		t.Errorf("stream missing completion event: %s", body)
	}
}
