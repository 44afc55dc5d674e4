package scorecard

import (
	"fmt"
	"strings"

	"github.com/yungbote/scorecard-dashboard/internal/domain"
	"github.com/yungbote/scorecard-dashboard/internal/platform/fileformat"
)

const (
	colID     = "id"
	colOnOff  = "on_off"
	colOption = "option"
)

// normalizeRecords validates ids and options, defaulting a blank option to medium.
func normalizeRecords(records []domain.ScorecardRecord) ([]domain.ScorecardRecord, error) {
	out := make([]domain.ScorecardRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	var bad []string
	for i, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			bad = append(bad, fmt.Sprintf("records[%d].id", i))
			continue
		}
		if seen[id] {
			bad = append(bad, fmt.Sprintf("records[%d].id (duplicate %q)", i, id))
			continue
		}
		seen[id] = true
		opt, err := domain.ParseOption(string(r.Option))
		if err != nil {
			bad = append(bad, fmt.Sprintf("records[%d].option", i))
			continue
		}
		out = append(out, domain.ScorecardRecord{ID: id, OnOff: r.OnOff, Option: opt})
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Fields: bad, Reason: "invalid records"}
	}
	return out, nil
}

func recordsToTable(records []domain.ScorecardRecord) *fileformat.Table {
	t := fileformat.NewTable(colID, colOnOff, colOption)
	for _, r := range records {
		t.Append(r.ID, domain.FormatBool(r.OnOff), string(r.Option))
	}
	return t
}

// RecordsFromTable reads the authoritative columns and ignores the rest. Files
// without an on_off column only ever held switched-on rows.
func RecordsFromTable(t *fileformat.Table) ([]domain.ScorecardRecord, error) {
	if t.Len() > 0 && !t.HasColumn(colID) {
		return nil, fmt.Errorf("scorecard data has no %q column", colID)
	}
	hasOnOff := t.HasColumn(colOnOff)
	out := make([]domain.ScorecardRecord, 0, t.Len())
	seen := map[string]bool{}
	for i := 0; i < t.Len(); i++ {
		id := t.Cell(i, colID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		on := true
		if hasOnOff {
			v, err := domain.ParseBool(t.Cell(i, colOnOff))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			on = v
		}
		opt, err := domain.ParseOption(t.Cell(i, colOption))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, domain.ScorecardRecord{ID: id, OnOff: on, Option: opt})
	}
	return out, nil
}
