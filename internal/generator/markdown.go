// Package generator renders analyzed specification documents into
// markdown, JSON and filled document templates.
package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsd-console/backend/internal/models"
)

// Markdown renders the FSD document in the standard section layout.
func Markdown(fsd *models.FSDDocument) string {
	return MarkdownAt(fsd, time.Now())
}

// MarkdownAt renders with an explicit generation timestamp.
func MarkdownAt(fsd *models.FSDDocument, now time.Time) string {
	var b strings.Builder

	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	// Title block
	line("# Functional Specification Design (FSD)")
	line("## " + fsd.ProgramName)
	line("### " + fsd.ReportDescription)
	line("")
	line("**Generated on:** " + now.Format("2006-01-02 15:04:05"))
	line("")

	// 1. Document information
	line("## 1. INFORMASI DOKUMEN")
	line("")
	line("- **Project**: " + fsd.ProjectName)
	line("- **Document Location**: " + fsd.DocumentLocation)
	line("")

	if len(fsd.RelatedDocuments) > 0 {
		line("- **Related Documents**:")
		for _, doc := range fsd.RelatedDocuments {
			line("  - " + doc)
		}
		line("")
	}

	if len(fsd.Reviewers) > 0 {
		line("- **Reviewers**:")
		for _, r := range fsd.Reviewers {
			line(fmt.Sprintf("  - %s: %s", r.Role, r.Name))
		}
		line("")
	}

	if len(fsd.VersionHistory) > 0 {
		line("- **Version History**:")
		for _, v := range fsd.VersionHistory {
			line(fmt.Sprintf("  - %s: %s by %s on %s", v.Version, v.Change, v.Author, v.Date))
		}
		line("")
	}

	// 2. General requirements
	line("## 2. PERSYARATAN UMUM")
	line("")
	line("**User Requirements**: " + fsd.UserRequirements)
	line("")
	line("**Assumptions**:")
	for _, a := range fsd.Assumptions {
		line("- " + a)
	}
	line("")

	// 3. Existing SAP objects
	line("## 3. EXISTING SAP OBJECTS")
	line("")
	line("- **Program Name**: " + fsd.ProgramName)
	line("- **Transaction Code**: " + fsd.TransactionCode)
	line("- **Menu Path**: " + fsd.MenuPath)
	line("")

	// 4. Design
	line("## 4. DESAIN")
	line("")
	line("### 4.1 Description detail dari Report")
	line("")
	line(fsd.ReportDescription)
	line("")

	if len(fsd.SelectionParameters) > 0 {
		line("### 4.2 Selection Screen")
		line("")
		line("| Parameter | Type | Description | Mandatory | Select-Option | No Intervals |")
		line("|-----------|------|-------------|-----------|---------------|--------------|")
		for _, p := range fsd.SelectionParameters {
			line(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |",
				p.Name, p.Type, p.Description,
				yesNo(p.IsMandatory), yesNo(p.IsSelectOption), yesNo(p.HasNoIntervals)))
		}
		line("")
	}

	if len(fsd.FieldMappings) > 0 {
		line("### 4.3 Detail Processing")
		line("")
		line("| Field Name | Technical Field | Source Table | Processing Logic | Processing Type |")
		line("|------------|-----------------|--------------|------------------|-----------------|")
		for _, f := range fsd.FieldMappings {
			line(fmt.Sprintf("| %s | %s | %s | %s | %s |",
				f.DisplayName, f.TechnicalField, f.SourceTable, f.ProcessingLogic, f.ProcessingType))
		}
		line("")
	}

	if len(fsd.ValidDatasetRules) > 0 {
		line("### 4.4 Detail Process Only valid datasets")
		line("")
		line("| Data | Kondisi |")
		line("|------|---------|")
		for _, r := range fsd.ValidDatasetRules {
			line(fmt.Sprintf("| %s | %s |", r.Data, r.Condition))
		}
		line("")
	}

	for _, form := range fsd.LookupForms {
		line("### " + form.Title)
		line("")
		line("| Data | Kondisi |")
		line("|------|---------|")
		for _, r := range form.Rows {
			line(fmt.Sprintf("| %s | %s |", r.Data, r.Condition))
		}
		line("")
	}

	// 5. Error handling
	if len(fsd.ErrorScenarios) > 0 {
		line("## 5. PENANGANAN ERROR")
		line("")
		line("| No | Error Description | Resolution | Error Code | Severity |")
		line("|----|-------------------|------------|------------|----------|")
		for i, e := range fsd.ErrorScenarios {
			line(fmt.Sprintf("| %d | %s | %s | %s | %s |",
				i+1, e.ErrorDescription, e.Resolution, e.ErrorCode, e.Severity))
		}
		line("")
	}

	// 6. Testing requirements
	if len(fsd.TestScenarios) > 0 {
		line("## 6. PERSYARATAN PENGUJIAN")
		line("")
		line("| No | Test Condition | Expected Result | Test Data | Priority |")
		line("|----|----------------|-----------------|-----------|----------|")
		for i, s := range fsd.TestScenarios {
			line(fmt.Sprintf("| %d | %s | %s | %s | %s |",
				i+1, s.Condition, s.ExpectedResult, s.TestData, s.Priority))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Summary renders the short plain-text digest written next to the main
// outputs.
func Summary(fsd *models.FSDDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FSD Summary: %s\n", fsd.ProgramName)
	fmt.Fprintf(&b, "Project: %s\n", fsd.ProjectName)
	fmt.Fprintf(&b, "Description: %s\n", fsd.ReportDescription)
	fmt.Fprintf(&b, "Selection parameters: %d\n", len(fsd.SelectionParameters))
	fmt.Fprintf(&b, "Field mappings: %d\n", len(fsd.FieldMappings))
	fmt.Fprintf(&b, "Error scenarios: %d\n", len(fsd.ErrorScenarios))
	fmt.Fprintf(&b, "Test scenarios: %d\n", len(fsd.TestScenarios))
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
