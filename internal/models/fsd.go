package models

// ProcessingType classifies how a report field is derived.
type ProcessingType string

const (
	ProcessingDirect      ProcessingType = "DIRECT"
	ProcessingLookup      ProcessingType = "LOOKUP"
	ProcessingCalculation ProcessingType = "CALCULATION"
	ProcessingConstant    ProcessingType = "CONSTANT"
	ProcessingAggregation ProcessingType = "AGGREGATION"
)

// FieldMapping is one row of the Detail Processing table.
type FieldMapping struct {
	DisplayName     string         `json:"displayName"`
	TechnicalField  string         `json:"technicalField"`
	SourceTable     string         `json:"sourceTable"`
	ProcessingLogic string         `json:"processingLogic"`
	ProcessingType  ProcessingType `json:"processingType"`
	JoinCondition   string         `json:"joinCondition,omitempty"`
	WhereCondition  string         `json:"whereCondition,omitempty"`
}

// SelectionParameter is one entry of the report's selection screen.
type SelectionParameter struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	IsMandatory    bool   `json:"isMandatory"`
	IsSelectOption bool   `json:"isSelectOption"`
	HasNoIntervals bool   `json:"hasNoIntervals"`
	DefaultValue   string `json:"defaultValue,omitempty"`
}

// ErrorScenario describes an error condition and its resolution.
type ErrorScenario struct {
	ErrorDescription string `json:"errorDescription"`
	Resolution       string `json:"resolution"`
	ErrorCode        string `json:"errorCode,omitempty"`
	Severity         string `json:"severity"`
}

// TestScenario describes a test condition and expected result.
type TestScenario struct {
	Condition      string `json:"condition"`
	ExpectedResult string `json:"expectedResult"`
	TestData       string `json:"testData,omitempty"`
	Priority       string `json:"priority"`
}

// DataConditionRow is a generic data/condition table row used by the
// valid-dataset and lookup-form sections.
type DataConditionRow struct {
	Data      string `json:"data"`
	Condition string `json:"condition"`
}

// Reviewer is a named review role in the document information block.
type Reviewer struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// VersionEntry is one row of the document version history.
type VersionEntry struct {
	Version string `json:"version"`
	Change  string `json:"change"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// FSDDocument is the complete functional specification document model
// produced by analyzing an uploaded HTML specification export.
type FSDDocument struct {
	// Document information
	ProjectName      string         `json:"projectName"`
	DocumentLocation string         `json:"documentLocation,omitempty"`
	RelatedDocuments []string       `json:"relatedDocuments,omitempty"`
	Reviewers        []Reviewer     `json:"reviewers,omitempty"`
	VersionHistory   []VersionEntry `json:"versionHistory,omitempty"`

	// General requirements
	UserRequirements string   `json:"userRequirements"`
	Assumptions      []string `json:"assumptions,omitempty"`

	// Existing SAP objects
	ProgramName     string `json:"programName"`
	TransactionCode string `json:"transactionCode,omitempty"`
	MenuPath        string `json:"menuPath,omitempty"`

	// Design
	ReportDescription   string               `json:"reportDescription"`
	SelectionParameters []SelectionParameter `json:"selectionParameters,omitempty"`
	FieldMappings       []FieldMapping       `json:"fieldMappings,omitempty"`
	ValidationRules     []string             `json:"validationRules,omitempty"`
	ValidDatasetRules   []DataConditionRow   `json:"validDatasetRules,omitempty"`
	LookupForms         []LookupForm         `json:"lookupForms,omitempty"`

	// Authorization
	AuthorizationObjects []string `json:"authorizationObjects,omitempty"`
	UserRoles            []string `json:"userRoles,omitempty"`

	// Constraints
	Constraints  []string `json:"constraints,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`

	// Error handling and testing
	ErrorScenarios   []ErrorScenario `json:"errorScenarios,omitempty"`
	TestScenarios    []TestScenario  `json:"testScenarios,omitempty"`
	TestDataLocation string          `json:"testDataLocation,omitempty"`
}

// LookupForm is a named data/condition table extracted from a lookup
// subroutine section (for example "Form Get_Country_Info").
type LookupForm struct {
	Title string             `json:"title"`
	Rows  []DataConditionRow `json:"rows"`
}

// Stats summarizes an analysis for the console's insights panel.
type Stats struct {
	Sections       int `json:"sections"`
	Tables         int `json:"tables"`
	Parameters     int `json:"parameters"`
	FieldMappings  int `json:"fieldMappings"`
	ErrorScenarios int `json:"errorScenarios"`
	TestScenarios  int `json:"testScenarios"`
}
