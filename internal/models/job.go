package models

// JobStatus represents the status of a document processing job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusError      JobStatus = "error"
)

// ProcessJob represents one upload's document generation run.
type ProcessJob struct {
	ID               string        `json:"id"`
	FileID           string        `json:"fileId"`
	FileName         string        `json:"fileName"`
	TemplateType     TemplateType  `json:"templateType"`
	Status           JobStatus     `json:"status"`
	Progress         float64       `json:"progress"` // 0-100
	Stage            string        `json:"stage,omitempty"`
	Result           *ProcessResult `json:"result,omitempty"`
	Errors           []JobError    `json:"errors,omitempty"`
	ProcessingTimeMs int64         `json:"processingTimeMs,omitempty"`
}

// JobError records a failure encountered while processing.
type JobError struct {
	Stage  string `json:"stage,omitempty"`
	Reason string `json:"reason"`
}

// OutputFiles holds the server-side paths of the generated artifacts.
type OutputFiles struct {
	Markdown string `json:"markdown,omitempty"`
	JSON     string `json:"json,omitempty"`
	Document string `json:"document,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// ProcessResult is the payload of a completed processing run. Field names
// follow the console wire format.
type ProcessResult struct {
	FSDAnalysis     *FSDDocument `json:"fsd_analysis"`
	MarkdownContent string       `json:"markdown_content"`
	Statistics      Stats        `json:"statistics"`
	OutputFiles     OutputFiles  `json:"output_files"`
}

// NewProcessJob creates a job in pending status.
func NewProcessJob(id, fileID, fileName string, templateType TemplateType) *ProcessJob {
	return &ProcessJob{
		ID:           id,
		FileID:       fileID,
		FileName:     fileName,
		TemplateType: templateType,
		Status:       JobStatusPending,
		Progress:     0,
		Errors:       make([]JobError, 0),
	}
}
