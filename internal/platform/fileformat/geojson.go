package fileformat

import (
	"encoding/json"
	"fmt"
)

// GeometryColumn carries a feature's raw geometry JSON through a Table.
const GeometryColumn = "geometry"

// GeoJSON reads a FeatureCollection into one row per feature: the properties
// followed by the geometry as raw JSON.
type GeoJSON struct{}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

func (GeoJSON) ReadTable(data []byte) (*Table, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse geojson: expected FeatureCollection, got %q", fc.Type)
	}
	props := make([]orderedObject, 0, len(fc.Features))
	for i, f := range fc.Features {
		body := []byte(f.Properties)
		if len(body) == 0 || string(body) == "null" {
			body = []byte("{}")
		}
		arr := append(append([]byte{'['}, body...), ']')
		objs, err := decodeOrderedObjects(arr)
		if err != nil {
			return nil, fmt.Errorf("parse geojson feature %d: %w", i, err)
		}
		o := objs[0]
		o.keys = append(o.keys, GeometryColumn)
		o.values[GeometryColumn] = scalarString(f.Geometry)
		props = append(props, o)
	}
	return tableFromObjects(props), nil
}

func (GeoJSON) WriteTable(t *Table) ([]byte, error) {
	gi := t.Index(GeometryColumn)
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(t.Rows))}
	for _, row := range t.Rows {
		props := map[string]string{}
		for i, c := range t.Columns {
			if i == gi {
				continue
			}
			props[c] = cellValue(row, i)
		}
		p, err := json.Marshal(props)
		if err != nil {
			return nil, err
		}
		geom := json.RawMessage("null")
		if g := cellValue(row, gi); g != "" {
			if !json.Valid([]byte(g)) {
				return nil, fmt.Errorf("write geojson: invalid geometry %q", g)
			}
			geom = json.RawMessage(g)
		}
		fc.Features = append(fc.Features, feature{Type: "Feature", Properties: p, Geometry: geom})
	}
	return json.Marshal(fc)
}
