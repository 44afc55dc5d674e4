package fileformat

import "strings"

// Table is a header row plus string cells. Codecs never interpret cell values;
// typed parsing happens in the domain layer.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Index returns the position of col (case-insensitive, trimmed) or -1.
func (t *Table) Index(col string) int {
	want := normalizeHeader(col)
	for i, c := range t.Columns {
		if normalizeHeader(c) == want {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(col string) bool { return t.Index(col) >= 0 }

// Cell returns row[col] or "" when either is out of range.
func (t *Table) Cell(row int, col string) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	return cellValue(t.Rows[row], t.Index(col))
}

func (t *Table) Append(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records returns each row keyed by column name.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[c] = cellValue(row, i)
		}
		out = append(out, rec)
	}
	return out
}

// fromGrid treats the first non-empty row as the header.
func fromGrid(rows [][]string) *Table {
	for len(rows) > 0 && isBlankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return &Table{}
	}
	t := &Table{Columns: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		t.Columns[i] = strings.TrimSpace(h)
	}
	for _, r := range rows[1:] {
		if isBlankRow(r) {
			continue
		}
		row := make([]string, len(t.Columns))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *Table) grid() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Columns)
	for _, r := range t.Rows {
		row := make([]string, len(t.Columns))
		copy(row, r)
		out = append(out, row)
	}
	return out
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
