package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fsd-console/backend/internal/models"
)

// KeywordIndex is a static lookup table over the knowledge base records.
type KeywordIndex struct {
	records []models.KnowledgeRecord
}

// NewKeywordIndex returns an index populated with the built-in records.
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{records: defaultRecords()}
}

// LoadCSV replaces the record table with rows from a knowledge-base CSV.
// Expected header: id,category,keyword,description,template_mapping,priority.
// A missing file keeps the defaults.
func (k *KeywordIndex) LoadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening knowledge base: %w", err)
	}
	defer f.Close()

	records, err := parseRecords(f)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		k.records = records
	}
	return nil
}

// Search returns records whose keyword or description contains the query,
// case-insensitive, optionally filtered by category, sorted by ascending
// priority.
func (k *KeywordIndex) Search(query, category string) []models.KnowledgeRecord {
	q := strings.ToLower(strings.TrimSpace(query))

	var out []models.KnowledgeRecord
	for _, r := range k.records {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(r.Keyword), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Categories returns the distinct record categories, sorted.
func (k *KeywordIndex) Categories() []string {
	seen := make(map[string]struct{})
	for _, r := range k.records {
		seen[r.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of records in the index.
func (k *KeywordIndex) Len() int {
	return len(k.records)
}

func parseRecords(r io.Reader) ([]models.KnowledgeRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 6
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing knowledge base csv: %w", err)
	}

	var records []models.KnowledgeRecord
	for i, row := range rows {
		// Skip the header row
		if i == 0 && strings.EqualFold(row[0], "id") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad id %q", i+1, row[0])
		}
		priority, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad priority %q", i+1, row[5])
		}
		records = append(records, models.KnowledgeRecord{
			ID:              id,
			Category:        row[1],
			Keyword:         row[2],
			Description:     row[3],
			TemplateMapping: row[4],
			Priority:        priority,
		})
	}
	return records, nil
}

func defaultRecords() []models.KnowledgeRecord {
	return []models.KnowledgeRecord{
		{ID: 1, Category: "selection", Keyword: "select-options", Description: "Range selection on the selection screen", TemplateMapping: "fsd-functional", Priority: 1},
		{ID: 2, Category: "selection", Keyword: "parameters", Description: "Single-value selection screen input", TemplateMapping: "fsd-functional", Priority: 2},
		{ID: 3, Category: "validation", Keyword: "validation", Description: "Input validation rules for selection fields", TemplateMapping: "fsd-functional", Priority: 1},
		{ID: 4, Category: "validation", Keyword: "authority-check", Description: "Authorization validation before report execution", TemplateMapping: "fsd-technical", Priority: 3},
		{ID: 5, Category: "processing", Keyword: "lookup", Description: "Master data lookup during detail processing", TemplateMapping: "fsd-technical", Priority: 2},
		{ID: 6, Category: "processing", Keyword: "aggregation", Description: "Aggregated totals per control-break group", TemplateMapping: "fsd-technical", Priority: 4},
		{ID: 7, Category: "error", Keyword: "error handling", Description: "Error scenario and resolution tables", TemplateMapping: "fsd-functional", Priority: 2},
		{ID: 8, Category: "error", Keyword: "message class", Description: "Message class used for validation failures", TemplateMapping: "fsd-technical", Priority: 5},
		{ID: 9, Category: "testing", Keyword: "test scenario", Description: "Test conditions with expected results and priorities", TemplateMapping: "fsd-test-cases", Priority: 1},
		{ID: 10, Category: "testing", Keyword: "unit test", Description: "Validation of a single processing rule in isolation", TemplateMapping: "fsd-test-cases", Priority: 2},
	}
}
