package models

// TemplateType selects which document template a generation targets.
type TemplateType string

const (
	TemplateFunctional TemplateType = "functional"
	TemplateTechnical  TemplateType = "technical"
	TemplateTestCases  TemplateType = "test-cases"
)

// DocumentTemplate is a static document template with named placeholders.
// Templates are never mutated at runtime.
type DocumentTemplate struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Type      TemplateType `json:"type" yaml:"type"`
	Template  string       `json:"template" yaml:"template"`
	Variables []string     `json:"variables" yaml:"variables"`
}

// KnowledgeRecord is one row of the static knowledge base used for
// keyword lookup.
type KnowledgeRecord struct {
	ID              int    `json:"id"`
	Category        string `json:"category"`
	Keyword         string `json:"keyword"`
	Description     string `json:"description"`
	TemplateMapping string `json:"templateMapping"`
	Priority        int    `json:"priority"`
}
