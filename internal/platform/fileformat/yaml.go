package fileformat

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML holds tables as a sequence of mappings.
type YAML struct{}

func (YAML) ReadTable(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return &Table{}, nil
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parse yaml: expected a sequence of mappings")
	}
	objs := make([]orderedObject, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("parse yaml: expected mapping at row %d", i)
		}
		o := orderedObject{values: map[string]string{}}
		for j := 0; j+1 < len(item.Content); j += 2 {
			key := item.Content[j].Value
			if _, seen := o.values[key]; !seen {
				o.keys = append(o.keys, key)
			}
			o.values[key] = yamlScalar(item.Content[j+1])
		}
		objs = append(objs, o)
	}
	return tableFromObjects(objs), nil
}

func (YAML) WriteTable(t *Table) ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, c := range t.Columns {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: c},
				&yaml.Node{Kind: yaml.ScalarNode, Value: cellValue(row, i)},
			)
		}
		seq.Content = append(seq.Content, m)
	}
	return yaml.Marshal(seq)
}

func (YAML) Decode(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func (YAML) Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func yamlScalar(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			return ""
		}
		return n.Value
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
