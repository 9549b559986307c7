package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/fsd-console/backend/internal/models"
)

func sampleFSD() *models.FSDDocument {
	return &models.FSDDocument{
		ProjectName:       "Payroll Migration",
		ProgramName:       "ZHR_PAYROLL_REPORT",
		ReportDescription: "Monthly payroll posting report.",
		TransactionCode:   "ZHR01",
		MenuPath:          "HR > Payroll",
		UserRequirements:  "Report payroll postings per company code.",
		Assumptions:       []string{"Payroll results exist"},
		RelatedDocuments:  []string{"RICEFW ID: R-0042"},
		SelectionParameters: []models.SelectionParameter{
			{Name: "P_BUKRS", Type: "BUKRS", Description: "Company code", IsMandatory: true},
		},
		FieldMappings: []models.FieldMapping{
			{DisplayName: "Employee Name", TechnicalField: "ENAME", SourceTable: "PA0001",
				ProcessingLogic: "Lookup by PERNR", ProcessingType: models.ProcessingLookup},
		},
		ErrorScenarios: []models.ErrorScenario{
			{ErrorDescription: "No data found", Resolution: "Check period", ErrorCode: "E001", Severity: "WARNING"},
		},
		TestScenarios: []models.TestScenario{
			{Condition: "Valid company code", ExpectedResult: "Employees listed", Priority: "HIGH"},
		},
		LookupForms: []models.LookupForm{
			{Title: "Form Get_Country_Info", Rows: []models.DataConditionRow{{Data: "LAND1", Condition: "From T001"}}},
		},
	}
}

func TestMarkdown_Sections(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	md := MarkdownAt(sampleFSD(), now)

	for _, want := range []string{
		"# Functional Specification Design (FSD)",
		"## ZHR_PAYROLL_REPORT",
		"**Generated on:** 2025-03-01 10:00:00",
		"## 1. INFORMASI DOKUMEN",
		"- **Project**: Payroll Migration",
		"## 2. PERSYARATAN UMUM",
		"**User Requirements**: Report payroll postings per company code.",
		"## 3. EXISTING SAP OBJECTS",
		"- **Transaction Code**: ZHR01",
		"### 4.1 Description detail dari Report",
		"### 4.2 Selection Screen",
		"| P_BUKRS | BUKRS | Company code | Yes | No | No |",
		"### 4.3 Detail Processing",
		"| Employee Name | ENAME | PA0001 | Lookup by PERNR | LOOKUP |",
		"### Form Get_Country_Info",
		"| LAND1 | From T001 |",
		"## 5. PENANGANAN ERROR",
		"| 1 | No data found | Check period | E001 | WARNING |",
		"## 6. PERSYARATAN PENGUJIAN",
		"| 1 | Valid company code | Employees listed |  | HIGH |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdown_OmitsEmptySections(t *testing.T) {
	fsd := &models.FSDDocument{
		ProjectName:       "P",
		ProgramName:       "Z",
		ReportDescription: "d",
	}
	md := Markdown(fsd)

	if strings.Contains(md, "### 4.2 Selection Screen") {
		t.Error("selection screen section should be omitted without parameters")
	}
	if strings.Contains(md, "## 5. PENANGANAN ERROR") {
		t.Error("error section should be omitted without scenarios")
	}
	if strings.Contains(md, "## 6. PERSYARATAN PENGUJIAN") {
		t.Error("test section should be omitted without scenarios")
	}
}

func TestSummary(t *testing.T) {
	s := Summary(sampleFSD())
	for _, want := range []string{
		"FSD Summary: ZHR_PAYROLL_REPORT",
		"Selection parameters: 1",
		"Field mappings: 1",
		"Error scenarios: 1",
		"Test scenarios: 1",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
