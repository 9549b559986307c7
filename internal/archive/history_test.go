package archive

import (
	"testing"
	"time"

	"github.com/fsd-console/backend/internal/models"
)

func newHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func completedJob(fileName string, tt models.TemplateType) *models.ProcessJob {
	job := models.NewProcessJob("job-1", "file-1", fileName, tt)
	job.Status = models.JobStatusComplete
	job.ProcessingTimeMs = 120
	job.Result = &models.ProcessResult{
		Statistics: models.Stats{Sections: 6, Tables: 4, Parameters: 2, FieldMappings: 5},
	}
	return job
}

func TestAppendAndList(t *testing.T) {
	h := newHistory(t)

	h.Append(completedJob("first.html", models.TemplateFunctional))
	time.Sleep(2 * time.Millisecond)
	h.Append(completedJob("second.html", models.TemplateTechnical))

	entries, err := h.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].FileName != "second.html" {
		t.Errorf("entries[0] = %s, want second.html (newest first)", entries[0].FileName)
	}

	e := entries[1]
	if e.FileName != "first.html" || e.TemplateType != models.TemplateFunctional ||
		e.Status != models.JobStatusComplete {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Sections != 6 || e.Tables != 4 || e.Parameters != 2 || e.FieldMappings != 5 {
		t.Errorf("statistics not recorded: %+v", e)
	}
	if e.ProcessingTimeMs != 120 {
		t.Errorf("duration = %d, want 120", e.ProcessingTimeMs)
	}
}

func TestListLimit(t *testing.T) {
	h := newHistory(t)
	for i := 0; i < 5; i++ {
		h.Append(completedJob("run.html", models.TemplateFunctional))
	}

	entries, err := h.List(3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3", len(entries))
	}
}

func TestCountByTemplate(t *testing.T) {
	h := newHistory(t)
	h.Append(completedJob("a.html", models.TemplateFunctional))
	h.Append(completedJob("b.html", models.TemplateFunctional))
	h.Append(completedJob("c.html", models.TemplateTestCases))

	counts, err := h.CountByTemplate()
	if err != nil {
		t.Fatalf("CountByTemplate: %v", err)
	}

	got := make(map[models.TemplateType]int)
	for _, c := range counts {
		got[c.TemplateType] = c.Runs
	}
	if got[models.TemplateFunctional] != 2 || got[models.TemplateTestCases] != 1 {
		t.Errorf("unexpected counts: %v", got)
	}
}

func TestAppendSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	h, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	h.Append(completedJob("persist.html", models.TemplateFunctional))
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	h2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer h2.Close()

	entries, err := h2.List(10)
	if err != nil {
		t.Fatalf("List after reopen: %v", err)
	}
	if len(entries) != 1 || entries[0].FileName != "persist.html" {
		t.Errorf("history not persisted: %+v", entries)
	}
}
