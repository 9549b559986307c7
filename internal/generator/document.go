package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsd-console/backend/internal/catalog"
	"github.com/fsd-console/backend/internal/models"
)

// Generator writes processing artifacts into the output directory.
type Generator struct {
	outputDir string
	catalog   *catalog.Catalog
}

// New creates a Generator writing into outputDir.
func New(outputDir string, cat *catalog.Catalog) (*Generator, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Generator{outputDir: outputDir, catalog: cat}, nil
}

// OutputDir returns the directory artifacts are written into.
func (g *Generator) OutputDir() string {
	return g.outputDir
}

// WriteOutputs renders markdown, JSON, summary and the filled document for
// an analyzed specification, returning the artifact paths.
func (g *Generator) WriteOutputs(baseName string, fsd *models.FSDDocument, tt models.TemplateType) (models.OutputFiles, string, error) {
	var out models.OutputFiles

	markdown := Markdown(fsd)
	base := sanitizeBase(baseName)

	mdPath := filepath.Join(g.outputDir, base+".md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return out, "", fmt.Errorf("writing markdown: %w", err)
	}
	out.Markdown = mdPath

	jsonData, err := json.MarshalIndent(fsd, "", "  ")
	if err != nil {
		return out, "", fmt.Errorf("encoding json: %w", err)
	}
	jsonPath := filepath.Join(g.outputDir, base+".json")
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return out, "", fmt.Errorf("writing json: %w", err)
	}
	out.JSON = jsonPath

	summaryPath := filepath.Join(g.outputDir, base+"_summary.txt")
	if err := os.WriteFile(summaryPath, []byte(Summary(fsd)), 0644); err != nil {
		return out, "", fmt.Errorf("writing summary: %w", err)
	}
	out.Summary = summaryPath

	_, docPath, err := g.GenerateDocument(markdown, tt, fsd)
	if err != nil {
		return out, "", err
	}
	out.Document = docPath

	return out, markdown, nil
}

// GenerateDocument fills the template for the given type from markdown
// content and writes the artifact. fsd may be nil when only raw markdown
// is available (the generate-document endpoint); template values are then
// derived from the markdown itself.
func (g *Generator) GenerateDocument(markdown string, tt models.TemplateType, fsd *models.FSDDocument) (string, string, error) {
	tmpl, ok := g.catalog.ForType(tt)
	if !ok {
		return "", "", fmt.Errorf("no template for type %q", tt)
	}

	values := templateValues(markdown, fsd)
	document := catalog.Fill(tmpl, values)

	name := fmt.Sprintf("%s_%s.md", tmpl.ID, time.Now().Format("20060102_150405"))
	path := filepath.Join(g.outputDir, name)
	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		return "", "", fmt.Errorf("writing document: %w", err)
	}

	return document, path, nil
}

// ResolveDownloadPath validates a requested download path against the
// output directory so only generated artifacts are served.
func (g *Generator) ResolveDownloadPath(requested string) (string, error) {
	abs, err := filepath.Abs(requested)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	outAbs, err := filepath.Abs(g.outputDir)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, outAbs+string(os.PathSeparator)) && abs != outAbs {
		return "", fmt.Errorf("path outside output directory")
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("file not found")
	}
	return abs, nil
}

func templateValues(markdown string, fsd *models.FSDDocument) map[string]string {
	values := map[string]string{
		"generated_at": time.Now().Format("2006-01-02 15:04:05"),
		"body":         markdown,
	}

	if fsd != nil {
		values["program_name"] = fsd.ProgramName
		values["project_name"] = fsd.ProjectName
		values["description"] = fsd.ReportDescription
		values["transaction_code"] = fsd.TransactionCode
		values["parameter_count"] = strconv.Itoa(len(fsd.SelectionParameters))
		values["field_count"] = strconv.Itoa(len(fsd.FieldMappings))
		values["test_count"] = strconv.Itoa(len(fsd.TestScenarios))
		values["error_section"] = sectionOf(markdown, "## 5. PENANGANAN ERROR")
		values["test_section"] = sectionOf(markdown, "## 6. PERSYARATAN PENGUJIAN")
		return values
	}

	// Raw markdown only: recover what the title block carries.
	values["program_name"] = markdownSubtitle(markdown)
	values["project_name"] = ""
	values["description"] = ""
	values["transaction_code"] = ""
	values["parameter_count"] = "0"
	values["field_count"] = "0"
	values["test_count"] = "0"
	values["error_section"] = sectionOf(markdown, "## 5. PENANGANAN ERROR")
	values["test_section"] = sectionOf(markdown, "## 6. PERSYARATAN PENGUJIAN")
	return values
}

// sectionOf returns the body of a top-level markdown section, heading
// excluded, up to the next "## " heading.
func sectionOf(markdown, heading string) string {
	idx := strings.Index(markdown, heading)
	if idx < 0 {
		return ""
	}
	rest := markdown[idx+len(heading):]
	if next := strings.Index(rest, "\n## "); next >= 0 {
		rest = rest[:next]
	}
	return strings.TrimSpace(rest)
}

// markdownSubtitle reads the "## <program>" line of a rendered document.
func markdownSubtitle(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "## ") && !strings.HasPrefix(line, "## 1.") {
			return strings.TrimSpace(strings.TrimPrefix(line, "## "))
		}
	}
	return ""
}

// sanitizeBase strips the extension and unsafe characters from an upload
// name so it can seed output file names.
func sanitizeBase(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
