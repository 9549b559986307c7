// Package client provides a typed HTTP client for the console backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fsd-console/backend/internal/models"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// Result wraps every client call. Success is false when the backend
// returned a non-2xx status or the transport failed; Error then carries
// the reason.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func failure[T any](err error) Result[T] {
	return Result[T]{Success: false, Error: err.Error()}
}

func success[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// ProcessResponse is the payload of a synchronous processing call.
type ProcessResponse struct {
	FileID          string              `json:"file_id"`
	FSDAnalysis     *models.FSDDocument `json:"fsd_analysis"`
	MarkdownContent string              `json:"markdown_content"`
	Statistics      models.Stats        `json:"statistics"`
	OutputFiles     models.OutputFiles  `json:"output_files"`
}

// GenerateResponse is the payload of a document generation call.
type GenerateResponse struct {
	Document string `json:"document"`
	FilePath string `json:"file_path"`
}

// HealthResponse reports backend availability.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// Client talks to the console backend. Calls are single-shot: a failed
// request is reported, never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ProcessHTML uploads an HTML specification and runs the full pipeline.
func (c *Client) ProcessHTML(ctx context.Context, name string, content []byte, templateType models.TemplateType) Result[ProcessResponse] {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return failure[ProcessResponse](err)
	}
	if _, err := part.Write(content); err != nil {
		return failure[ProcessResponse](err)
	}
	if templateType != "" {
		if err := writer.WriteField("template_type", string(templateType)); err != nil {
			return failure[ProcessResponse](err)
		}
	}
	if err := writer.Close(); err != nil {
		return failure[ProcessResponse](err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process-html", body)
	if err != nil {
		return failure[ProcessResponse](err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return do[ProcessResponse](c, req)
}

// GenerateDocument fills a template from already-rendered markdown.
func (c *Client) GenerateDocument(ctx context.Context, markdown string, templateType models.TemplateType) Result[GenerateResponse] {
	payload, err := json.Marshal(map[string]string{
		"markdown":      markdown,
		"template_type": string(templateType),
	})
	if err != nil {
		return failure[GenerateResponse](err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate-document", bytes.NewReader(payload))
	if err != nil {
		return failure[GenerateResponse](err)
	}
	req.Header.Set("Content-Type", "application/json")

	return do[GenerateResponse](c, req)
}

// Health checks backend availability.
func (c *Client) Health(ctx context.Context) Result[HealthResponse] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return failure[HealthResponse](err)
	}
	return do[HealthResponse](c, req)
}

// keywordsResponse matches the backend keyword search envelope.
type keywordsResponse struct {
	Records []models.KnowledgeRecord `json:"records"`
	Count   int                      `json:"count"`
}

// SearchKeywords queries the knowledge base.
func (c *Client) SearchKeywords(ctx context.Context, query, category string) Result[[]models.KnowledgeRecord] {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if category != "" {
		params.Set("category", category)
	}

	target := c.baseURL + "/api/keywords"
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failure[[]models.KnowledgeRecord](err)
	}

	res := do[keywordsResponse](c, req)
	if !res.Success {
		return Result[[]models.KnowledgeRecord]{Success: false, Error: res.Error}
	}
	return success(res.Data.Records)
}

// do executes the request and decodes either the payload or the backend's
// structured error body.
func do[T any](c *Client, req *http.Request) Result[T] {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure[T](err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure[T](err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure[T](decodeError(resp.StatusCode, data))
	}

	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return failure[T](fmt.Errorf("decoding response: %w", err))
	}
	return success(payload)
}

// decodeError turns a backend error body into a readable error. Bodies
// follow the APIError shape {code, message, details}.
func decodeError(status int, data []byte) error {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		if apiErr.Code != "" {
			return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%s", apiErr.Message)
	}
	return fmt.Errorf("backend returned status %d", status)
}
