package fileformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// JSON holds tables as an array of objects (records orientation) and is the
// document codec for metadata sidecars.
type JSON struct{}

func (JSON) ReadTable(data []byte) (*Table, error) {
	objs, err := decodeOrderedObjects(data)
	if err != nil {
		return nil, err
	}
	return tableFromObjects(objs), nil
}

func (JSON) WriteTable(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(col)
			v, _ := json.Marshal(cellValue(row, j))
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (JSON) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSON) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

type orderedObject struct {
	keys   []string
	values map[string]string
}

// decodeOrderedObjects reads a JSON array of flat objects while keeping key order.
func decodeOrderedObjects(data []byte) ([]orderedObject, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("parse json: expected array of objects")
	}
	var out []orderedObject
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("parse json: expected object at row %d", len(out))
		}
		obj := orderedObject{values: map[string]string{}}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("parse json: %w", err)
			}
			key, _ := kt.(string)
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("parse json: %w", err)
			}
			if _, seen := obj.values[key]; !seen {
				obj.keys = append(obj.keys, key)
			}
			obj.values[key] = scalarString(raw)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		out = append(out, obj)
	}
	return out, nil
}

func tableFromObjects(objs []orderedObject) *Table {
	t := &Table{}
	seen := map[string]bool{}
	for _, o := range objs {
		for _, k := range o.keys {
			if !seen[k] {
				seen[k] = true
				t.Columns = append(t.Columns, k)
			}
		}
	}
	for _, o := range objs {
		row := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = o.values[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func scalarString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "null":
		return ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return str
		}
	}
	return s
}
