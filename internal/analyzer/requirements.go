package analyzer

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// RequirementList resolves RICEFW ids against the project requirement
// workbook. The workbook's first sheet is expected to carry a header row
// followed by columns: RICEFW ID, Assign Nodin, Requirement Description.
type RequirementList struct {
	mu      sync.RWMutex
	nodin   map[string]string
	descrip map[string]string
}

// LoadRequirementList reads the workbook at path. A path pointing to a
// missing file returns an empty list rather than an error so deployments
// without a requirement list keep working.
func LoadRequirementList(path string) (*RequirementList, error) {
	rl := &RequirementList{
		nodin:   make(map[string]string),
		descrip: make(map[string]string),
	}
	if path == "" {
		return rl, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return rl, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening requirement list: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return rl, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading requirement list: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		if len(row) > 1 {
			rl.nodin[id] = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			rl.descrip[id] = strings.TrimSpace(row[2])
		}
	}

	return rl, nil
}

// AssignNodin returns the nodin assignment for a RICEFW id, or "".
func (r *RequirementList) AssignNodin(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodin[id]
}

// Description returns the requirement description for a RICEFW id, or "".
func (r *RequirementList) Description(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descrip[id]
}

// Len reports the number of loaded requirement rows.
func (r *RequirementList) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodin)
}
