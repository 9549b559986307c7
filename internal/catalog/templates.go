// Package catalog holds the static document templates and the keyword
// knowledge base used by the generation console.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fsd-console/backend/internal/models"
)

// Catalog is the read model for document templates. The tables are built
// once at startup and never mutated afterwards.
type Catalog struct {
	templates map[string]models.DocumentTemplate
	sections  map[string]string // workflow section id -> template id
}

// NewCatalog returns a catalog populated with the built-in templates.
func NewCatalog() *Catalog {
	c := &Catalog{
		templates: make(map[string]models.DocumentTemplate),
		sections:  make(map[string]string),
	}
	for _, t := range defaultTemplates() {
		c.templates[t.ID] = t
	}
	for section, id := range defaultSectionMap() {
		c.sections[section] = id
	}
	return c
}

// LoadOverrides merges templates from a YAML file over the built-in table.
// A missing file is not an error; the defaults stay in place.
func (c *Catalog) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading template overrides: %w", err)
	}

	var overrides []models.DocumentTemplate
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parsing template overrides: %w", err)
	}

	for _, t := range overrides {
		if t.ID == "" {
			continue
		}
		c.templates[t.ID] = t
	}
	return nil
}

// Get returns a template by id.
func (c *Catalog) Get(id string) (models.DocumentTemplate, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// ForSection resolves a workflow section identifier to its template.
func (c *Catalog) ForSection(section string) (models.DocumentTemplate, bool) {
	id, ok := c.sections[section]
	if !ok {
		return models.DocumentTemplate{}, false
	}
	return c.Get(id)
}

// ForType returns the first template of the given type. The built-in table
// carries exactly one template per type.
func (c *Catalog) ForType(tt models.TemplateType) (models.DocumentTemplate, bool) {
	for _, t := range c.List() {
		if t.Type == tt {
			return t, true
		}
	}
	return models.DocumentTemplate{}, false
}

// List returns all templates in id order.
func (c *Catalog) List() []models.DocumentTemplate {
	ids := make([]string, 0, len(c.templates))
	for id := range c.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.DocumentTemplate, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.templates[id])
	}
	return out
}

// Fill substitutes {token} placeholders in a template body. Tokens without
// a value stay literal so a half-filled document is visibly half-filled.
func Fill(t models.DocumentTemplate, values map[string]string) string {
	result := t.Template
	for _, v := range t.Variables {
		if val, ok := values[v]; ok {
			result = strings.ReplaceAll(result, "{"+v+"}", val)
		}
	}
	return result
}

func defaultTemplates() []models.DocumentTemplate {
	return []models.DocumentTemplate{
		{
			ID:   "fsd-functional",
			Name: "Functional Specification Document",
			Type: models.TemplateFunctional,
			Template: strings.Join([]string{
				"# Functional Specification Document",
				"## {program_name}",
				"",
				"**Project:** {project_name}",
				"**Generated:** {generated_at}",
				"",
				"## Description",
				"{description}",
				"",
				"{body}",
				"",
				"---",
				"Selection parameters: {parameter_count} | Field mappings: {field_count}",
			}, "\n"),
			Variables: []string{"program_name", "project_name", "generated_at", "description", "body", "parameter_count", "field_count"},
		},
		{
			ID:   "fsd-technical",
			Name: "Technical Specification Document",
			Type: models.TemplateTechnical,
			Template: strings.Join([]string{
				"# Technical Specification Document",
				"## {program_name}",
				"",
				"**Transaction:** {transaction_code}",
				"**Generated:** {generated_at}",
				"",
				"## Processing Design",
				"{body}",
				"",
				"## Error Handling",
				"{error_section}",
			}, "\n"),
			Variables: []string{"program_name", "transaction_code", "generated_at", "body", "error_section"},
		},
		{
			ID:   "fsd-test-cases",
			Name: "Test Case Catalog",
			Type: models.TemplateTestCases,
			Template: strings.Join([]string{
				"# Test Case Catalog",
				"## {program_name}",
				"",
				"**Generated:** {generated_at}",
				"",
				"## Scenarios",
				"{test_section}",
				"",
				"Total scenarios: {test_count}",
			}, "\n"),
			Variables: []string{"program_name", "generated_at", "test_section", "test_count"},
		},
	}
}

// defaultSectionMap maps console workflow sections to template ids. The
// functional/technical split follows the team selector in the console.
func defaultSectionMap() map[string]string {
	return map[string]string{
		"upload-functional": "fsd-functional",
		"upload-technical":  "fsd-technical",
		"test-design":       "fsd-test-cases",
	}
}
