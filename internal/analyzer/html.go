// Package analyzer extracts a functional specification document from an
// uploaded HTML specification export.
package analyzer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fsd-console/backend/internal/models"
)

// Analyzer turns HTML specification exports into FSDDocument models.
// Extraction is table-driven: section headings select which table handler
// consumes the following <table> element.
type Analyzer struct {
	requirements *RequirementList // optional, may be nil
	projectName  string
}

// New creates an Analyzer. requirements may be nil when no requirement
// list workbook is configured.
func New(projectName string, requirements *RequirementList) *Analyzer {
	return &Analyzer{
		projectName:  projectName,
		requirements: requirements,
	}
}

// Analyze parses the HTML content and builds the FSD document model.
func (a *Analyzer) Analyze(content []byte) (*models.FSDDocument, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	fsd := &models.FSDDocument{
		ProjectName: a.projectName,
	}

	fsd.ProgramName = extractTitle(doc)
	fsd.ReportDescription = extractDescription(doc)
	fsd.TransactionCode = extractLabeledValue(doc, "transaction")
	fsd.MenuPath = extractLabeledValue(doc, "menu path")

	a.extractSections(doc, fsd)

	if fsd.UserRequirements == "" {
		fsd.UserRequirements = fsd.ReportDescription
	}
	a.applyRequirementList(fsd)

	return fsd, nil
}

// Statistics computes the insight counters for a document.
func Statistics(fsd *models.FSDDocument, markdown string) models.Stats {
	return models.Stats{
		Sections:       strings.Count(markdown, "\n## ") + strings.Count(markdown, "\n### "),
		Tables:         strings.Count(markdown, "\n|---"),
		Parameters:     len(fsd.SelectionParameters),
		FieldMappings:  len(fsd.FieldMappings),
		ErrorScenarios: len(fsd.ErrorScenarios),
		TestScenarios:  len(fsd.TestScenarios),
	}
}

func extractTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractDescription(doc *goquery.Document) string {
	var desc string
	doc.Find("h1").First().NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "p" {
			desc = strings.TrimSpace(s.Text())
			return false
		}
		// Stop at the next heading
		return !isHeading(s)
	})
	if desc == "" {
		desc = strings.TrimSpace(doc.Find("p").First().Text())
	}
	return desc
}

// extractLabeledValue finds "Label: value" pairs in paragraphs or list items.
func extractLabeledValue(doc *goquery.Document, label string) string {
	var value string
	doc.Find("p, li, td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, label) {
			if idx := strings.Index(text, ":"); idx >= 0 {
				value = strings.TrimSpace(text[idx+1:])
				return false
			}
		}
		return true
	})
	return value
}

// extractSections walks h2/h3 headings and dispatches the table (or list)
// that follows each one.
func (a *Analyzer) extractSections(doc *goquery.Document, fsd *models.FSDDocument) {
	doc.Find("h2, h3").Each(func(_ int, heading *goquery.Selection) {
		title := strings.ToLower(strings.TrimSpace(heading.Text()))
		switch {
		case strings.Contains(title, "selection"):
			fsd.SelectionParameters = parseSelectionTable(tableAfter(heading))
		case strings.Contains(title, "field") || strings.Contains(title, "processing") || strings.Contains(title, "mapping"):
			if rows := tableAfter(heading); rows != nil {
				fsd.FieldMappings = parseFieldTable(rows)
			}
		case strings.Contains(title, "error"):
			fsd.ErrorScenarios = parseErrorTable(tableAfter(heading))
		case strings.Contains(title, "test"):
			fsd.TestScenarios = parseTestTable(tableAfter(heading))
		case strings.Contains(title, "validation"):
			fsd.ValidationRules = listAfter(heading)
		case strings.Contains(title, "assumption"):
			fsd.Assumptions = listAfter(heading)
		case strings.Contains(title, "authorization"):
			fsd.AuthorizationObjects = listAfter(heading)
		case strings.Contains(title, "related document"):
			fsd.RelatedDocuments = listAfter(heading)
		case strings.HasPrefix(title, "form "):
			if rows := tableAfter(heading); rows != nil {
				fsd.LookupForms = append(fsd.LookupForms, models.LookupForm{
					Title: strings.TrimSpace(heading.Text()),
					Rows:  parseDataConditionRows(rows),
				})
			}
		case strings.Contains(title, "valid dataset") || strings.Contains(title, "valid data"):
			fsd.ValidDatasetRules = parseDataConditionRows(tableAfter(heading))
		}
	})
}

// applyRequirementList resolves RICEFW references against the requirement
// workbook, overriding program name and user requirements when a match
// exists.
func (a *Analyzer) applyRequirementList(fsd *models.FSDDocument) {
	if a.requirements == nil {
		return
	}
	for _, doc := range fsd.RelatedDocuments {
		if !strings.HasPrefix(doc, "RICEFW ID:") {
			continue
		}
		id := strings.TrimSpace(strings.TrimPrefix(doc, "RICEFW ID:"))
		if nodin := a.requirements.AssignNodin(id); nodin != "" {
			fsd.ProgramName = nodin
		}
		if desc := a.requirements.Description(id); desc != "" {
			fsd.UserRequirements = desc
		}
		break
	}
}

func isHeading(s *goquery.Selection) bool {
	switch goquery.NodeName(s) {
	case "h1", "h2", "h3", "h4":
		return true
	}
	return false
}

// tableAfter returns the cell text of the first table between a heading
// and the next heading, header row excluded. Returns nil when the section
// has no table.
func tableAfter(heading *goquery.Selection) [][]string {
	var rows [][]string
	heading.NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if isHeading(s) {
			return false
		}
		if goquery.NodeName(s) != "table" {
			return true
		}
		s.Find("tr").Each(func(i int, tr *goquery.Selection) {
			// Header rows use <th>
			if tr.Find("th").Length() > 0 {
				return
			}
			var cells []string
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(td.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		return false
	})
	return rows
}

// listAfter returns the items of the first <ul>/<ol> between a heading and
// the next heading.
func listAfter(heading *goquery.Selection) []string {
	var items []string
	heading.NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if isHeading(s) {
			return false
		}
		name := goquery.NodeName(s)
		if name != "ul" && name != "ol" {
			return true
		}
		s.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := strings.TrimSpace(li.Text()); text != "" {
				items = append(items, text)
			}
		})
		return false
	})
	return items
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseSelectionTable(rows [][]string) []models.SelectionParameter {
	var params []models.SelectionParameter
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		params = append(params, models.SelectionParameter{
			Name:           cell(row, 0),
			Type:           cell(row, 1),
			Description:    cell(row, 2),
			IsMandatory:    isYes(cell(row, 3)),
			IsSelectOption: isYes(cell(row, 4)),
			HasNoIntervals: isYes(cell(row, 5)),
			DefaultValue:   cell(row, 6),
		})
	}
	return params
}

func parseFieldTable(rows [][]string) []models.FieldMapping {
	var fields []models.FieldMapping
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		logic := cell(row, 3)
		fields = append(fields, models.FieldMapping{
			DisplayName:     cell(row, 0),
			TechnicalField:  cell(row, 1),
			SourceTable:     cell(row, 2),
			ProcessingLogic: logic,
			ProcessingType:  classifyProcessing(logic),
		})
	}
	return fields
}

func parseErrorTable(rows [][]string) []models.ErrorScenario {
	var scenarios []models.ErrorScenario
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		severity := cell(row, 3)
		if severity == "" {
			severity = "ERROR"
		}
		scenarios = append(scenarios, models.ErrorScenario{
			ErrorDescription: cell(row, 0),
			Resolution:       cell(row, 1),
			ErrorCode:        cell(row, 2),
			Severity:         severity,
		})
	}
	return scenarios
}

func parseTestTable(rows [][]string) []models.TestScenario {
	var scenarios []models.TestScenario
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		priority := cell(row, 3)
		if priority == "" {
			priority = "HIGH"
		}
		scenarios = append(scenarios, models.TestScenario{
			Condition:      cell(row, 0),
			ExpectedResult: cell(row, 1),
			TestData:       cell(row, 2),
			Priority:       priority,
		})
	}
	return scenarios
}

func parseDataConditionRows(rows [][]string) []models.DataConditionRow {
	var out []models.DataConditionRow
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		out = append(out, models.DataConditionRow{
			Data:      cell(row, 0),
			Condition: cell(row, 1),
		})
	}
	return out
}

// classifyProcessing derives the processing type from the logic text.
func classifyProcessing(logic string) models.ProcessingType {
	lower := strings.ToLower(logic)
	switch {
	case strings.Contains(lower, "lookup") || strings.Contains(lower, "read table") || strings.Contains(lower, "select single"):
		return models.ProcessingLookup
	case strings.Contains(lower, "sum") || strings.Contains(lower, "total") || strings.Contains(lower, "count"):
		return models.ProcessingAggregation
	case strings.Contains(lower, "calculat") || strings.Contains(lower, "compute") || strings.Contains(lower, "derive"):
		return models.ProcessingCalculation
	case strings.HasPrefix(strings.TrimSpace(logic), "'") || strings.Contains(lower, "constant"):
		return models.ProcessingConstant
	default:
		return models.ProcessingDirect
	}
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "x":
		return true
	}
	return false
}
