// Package session tracks document processing jobs and runs them in the
// background.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fsd-console/backend/internal/analyzer"
	"github.com/fsd-console/backend/internal/archive"
	"github.com/fsd-console/backend/internal/generator"
	"github.com/fsd-console/backend/internal/models"
	"github.com/fsd-console/backend/internal/registry"
)

// MaxJobs limits concurrent tracked jobs to prevent memory exhaustion
const MaxJobs = 20

// JobMaxAge is how long to keep finished jobs before cleanup
const JobMaxAge = 30 * time.Minute

// JobKeepAliveWindow is how long to keep jobs that are actively being polled
const JobKeepAliveWindow = 5 * time.Minute

// Manager runs document processing jobs against the file registry.
type Manager struct {
	jobs     map[string]*jobState
	mu       sync.RWMutex
	store    registry.Store
	analyzer *analyzer.Analyzer
	gen      *generator.Generator
	history  *archive.History
}

type jobState struct {
	Job          *models.ProcessJob
	LastAccessed time.Time
}

// NewManager creates a job manager. history may be nil when run recording
// is disabled.
func NewManager(store registry.Store, a *analyzer.Analyzer, gen *generator.Generator, history *archive.History) *Manager {
	return &Manager{
		jobs:     make(map[string]*jobState),
		store:    store,
		analyzer: a,
		gen:      gen,
		history:  history,
	}
}

// StartJob begins processing a stored file in the background.
func (m *Manager) StartJob(fileID string, templateType models.TemplateType) (*models.ProcessJob, error) {
	file, err := m.store.Get(fileID)
	if err != nil {
		return nil, err
	}

	// Clean up old jobs if at limit
	m.cleanupOldJobsIfNeeded()

	jobID := uuid.New().String()
	job := models.NewProcessJob(jobID, file.ID, file.Name, templateType)

	m.mu.Lock()
	m.jobs[jobID] = &jobState{Job: job, LastAccessed: time.Now()}
	m.mu.Unlock()

	go m.runJob(jobID, fileID, templateType)

	snapshot := *job
	return &snapshot, nil
}

func (m *Manager) runJob(jobID, fileID string, templateType models.TemplateType) {
	// Recover from panics to prevent backend crash
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Process %s] PANIC recovered: %v\n", jobID[:8], r)
			m.failJob(jobID, fileID, "process", fmt.Sprintf("processing panicked: %v", r))
		}
	}()

	start := time.Now()
	fmt.Printf("[Process %s] Starting processing of file %s\n", jobID[:8], fileID[:8])

	m.setStage(jobID, models.JobStatusProcessing, "extract", 10)
	m.store.SetStatus(fileID, "processing")

	result, err := m.runPipeline(fileID, templateType, func(stage string, progress float64) {
		m.setStage(jobID, models.JobStatusProcessing, stage, progress)
	})
	if err != nil {
		fmt.Printf("[Process %s] ERROR: %v\n", jobID[:8], err)
		m.failJob(jobID, fileID, m.stageOf(jobID), err.Error())
		return
	}

	elapsed := time.Since(start).Milliseconds()
	fmt.Printf("[Process %s] Complete in %dms: %d sections, %d field mappings\n",
		jobID[:8], elapsed, result.Statistics.Sections, result.Statistics.FieldMappings)

	m.store.SetStatus(fileID, "completed")

	m.mu.Lock()
	state, ok := m.jobs[jobID]
	if ok {
		state.Job.Status = models.JobStatusComplete
		state.Job.Progress = 100
		state.Job.Stage = "finalize"
		state.Job.Result = result
		state.Job.ProcessingTimeMs = elapsed
	}
	m.mu.Unlock()

	if ok {
		m.history.Append(state.Job)
	}
}

// Process runs the pipeline synchronously without job tracking. Used by
// the single-shot processing endpoint.
func (m *Manager) Process(fileID string, templateType models.TemplateType) (*models.ProcessResult, error) {
	m.store.SetStatus(fileID, "processing")
	result, err := m.runPipeline(fileID, templateType, nil)
	if err != nil {
		m.store.SetStatus(fileID, "error")
		return nil, err
	}
	m.store.SetStatus(fileID, "completed")
	return result, nil
}

// runPipeline executes extract, analyze, render and finalize for one file.
func (m *Manager) runPipeline(fileID string, templateType models.TemplateType, progress func(stage string, pct float64)) (*models.ProcessResult, error) {
	report := func(stage string, pct float64) {
		if progress != nil {
			progress(stage, pct)
		}
	}

	report("extract", 10)
	file, err := m.store.Get(fileID)
	if err != nil {
		return nil, err
	}
	content, err := m.store.Content(fileID)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	report("extract", 50)

	report("analyze", 50)
	fsd, err := m.analyzer.Analyze(content)
	if err != nil {
		return nil, fmt.Errorf("analyzing document: %w", err)
	}
	report("analyze", 80)

	report("render", 80)
	outputs, markdown, err := m.gen.WriteOutputs(file.Name, fsd, templateType)
	if err != nil {
		return nil, fmt.Errorf("writing outputs: %w", err)
	}
	report("render", 95)

	report("finalize", 95)
	result := &models.ProcessResult{
		FSDAnalysis:     fsd,
		MarkdownContent: markdown,
		Statistics:      analyzer.Statistics(fsd, markdown),
		OutputFiles:     outputs,
	}
	report("finalize", 100)

	return result, nil
}

func (m *Manager) setStage(jobID string, status models.JobStatus, stage string, progress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[jobID]
	if !ok {
		return
	}
	state.Job.Status = status
	state.Job.Stage = stage
	state.Job.Progress = progress
}

func (m *Manager) stageOf(jobID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, ok := m.jobs[jobID]; ok {
		return state.Job.Stage
	}
	return ""
}

func (m *Manager) failJob(jobID, fileID, stage, reason string) {
	m.store.SetStatus(fileID, "error")

	m.mu.Lock()
	state, ok := m.jobs[jobID]
	if ok {
		state.Job.Status = models.JobStatusError
		state.Job.Errors = append(state.Job.Errors, models.JobError{Stage: stage, Reason: reason})
	}
	m.mu.Unlock()

	if ok {
		m.history.Append(state.Job)
	}
}

// GetJob returns a snapshot of a job by ID. The copy keeps callers from
// reading fields the background goroutine is still mutating.
func (m *Manager) GetJob(id string) (*models.ProcessJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	job := *state.Job
	return &job, true
}

// TouchJob updates the LastAccessed timestamp for a job so active polling
// keeps it from being cleaned up.
func (m *Manager) TouchJob(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.jobs[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// cleanupOldJobsIfNeeded removes oldest finished jobs if at capacity
func (m *Manager) cleanupOldJobsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.jobs) < MaxJobs {
		return
	}

	toFree := len(m.jobs) - MaxJobs + 1
	deleted := 0
	for id, state := range m.jobs {
		if deleted >= toFree {
			break
		}
		if state.Job.Status == models.JobStatusComplete || state.Job.Status == models.JobStatusError {
			delete(m.jobs, id)
			deleted++
			fmt.Printf("[Manager] Cleaned up old job %s to free memory\n", id[:8])
		}
	}
}

// CleanupOldJobs removes finished jobs older than maxAge, keeping jobs
// accessed within JobKeepAliveWindow.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-JobKeepAliveWindow)

	for id, state := range m.jobs {
		if state.Job.Status != models.JobStatusComplete && state.Job.Status != models.JobStatusError {
			continue
		}
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.jobs, id)
			fmt.Printf("[Manager] Cleaned up aged job %s (last accessed: %s ago)\n",
				id[:8], time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}

// JobCount returns the number of tracked jobs.
func (m *Manager) JobCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.jobs)
}
