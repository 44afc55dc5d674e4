package fileformat

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCSVReadsHeaderAndSkipsBlankRows(t *testing.T) {
	data := "\xef\xbb\xbfid,on_off,option\nspace-safety,True,high\n,,\nnav,False,\n"
	tbl, err := CSV{}.ReadTable([]byte(data))
	require.NoError(t, err)
	require.Equal(t, []string{"id", "on_off", "option"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, "high", tbl.Cell(0, "OPTION"))
	require.Equal(t, "", tbl.Cell(1, "option"))
	require.Equal(t, "", tbl.Cell(1, "missing"))
}

func TestCSVWritePadsShortRows(t *testing.T) {
	tbl := NewTable("id", "on_off", "option")
	tbl.Rows = append(tbl.Rows, []string{"nav"})
	out, err := CSV{}.WriteTable(tbl)
	require.NoError(t, err)
	require.Equal(t, "id,on_off,option\nnav,,\n", string(out))
}

func TestJSONKeepsColumnOrderAndUnionsKeys(t *testing.T) {
	data := `[{"id":"a","on_off":true,"option":"low"},{"id":"b","cost":1.5,"option":null}]`
	tbl, err := JSON{}.ReadTable([]byte(data))
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"id", "on_off", "option", "cost"}, tbl.Columns); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
	require.Equal(t, "true", tbl.Cell(0, "on_off"))
	require.Equal(t, "1.5", tbl.Cell(1, "cost"))
	require.Equal(t, "", tbl.Cell(1, "option"))
}

func TestJSONRejectsNonArray(t *testing.T) {
	_, err := JSON{}.ReadTable([]byte(`{"id":"a"}`))
	require.Error(t, err)
}

func TestYAMLReadsSequenceOfMappings(t *testing.T) {
	data := "- id: a\n  on_off: True\n  option: high\n- id: b\n  option: ~\n"
	tbl, err := YAML{}.ReadTable([]byte(data))
	require.NoError(t, err)
	require.Equal(t, []string{"id", "on_off", "option"}, tbl.Columns)
	require.Equal(t, "True", tbl.Cell(0, "on_off"))
	require.Equal(t, "", tbl.Cell(1, "option"))

	out, err := YAML{}.WriteTable(tbl)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "- id: a\n"), string(out))
}

func TestGeoJSONCarriesGeometry(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"Paris","pop":2},"geometry":{"type":"Point","coordinates":[2.35,48.85]}},{"type":"Feature","properties":null,"geometry":null}]}`
	tbl, err := GeoJSON{}.ReadTable([]byte(data))
	require.NoError(t, err)
	require.Equal(t, []string{"name", "pop", GeometryColumn}, tbl.Columns)
	require.Equal(t, `{"type":"Point","coordinates":[2.35,48.85]}`, tbl.Cell(0, GeometryColumn))
	require.Equal(t, "", tbl.Cell(1, "name"))

	out, err := GeoJSON{}.WriteTable(tbl)
	require.NoError(t, err)
	require.Contains(t, string(out), `"coordinates":[2.35,48.85]`)
}

func TestXLSXWriteThenReadFirstSheet(t *testing.T) {
	tbl := NewTable("policy_options", "medium")
	tbl.Append("Space Safety", "12.5")
	out, err := XLSX{}.WriteTable(tbl)
	require.NoError(t, err)

	got, err := XLSX{}.ReadTable(out)
	require.NoError(t, err)
	require.Equal(t, tbl.Columns, got.Columns)
	require.Equal(t, "12.5", got.Cell(0, "medium"))
}

func TestXLSWriteUnsupported(t *testing.T) {
	_, err := XLS{}.WriteTable(NewTable("id"))
	var ue *UnsupportedFormatError
	require.True(t, errors.As(err, &ue))
	require.Equal(t, "write", ue.Op)
}

func TestRegistryResolvesByExtension(t *testing.T) {
	r := Default()
	_, err := r.For("saved_scorecards/a.CSV")
	require.NoError(t, err)

	_, err = r.For("saved_scorecards/a.parquet")
	var ue *UnsupportedFormatError
	require.True(t, errors.As(err, &ue))
	require.Equal(t, ".parquet", ue.Ext)

	err = r.DecodeDocument("a.csv", []byte("x"), &struct{}{})
	require.True(t, errors.As(err, &ue))
	require.Equal(t, "documents", ue.Op)
}

func TestRegistryDocumentRoundTripJSON(t *testing.T) {
	r := Default()
	type doc struct {
		Name string `json:"name" yaml:"name"`
	}
	out, err := r.EncodeDocument("meta.json", doc{Name: "plan"})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"plan"}`, string(out))

	var got doc
	require.NoError(t, r.DecodeDocument("meta.yaml", []byte("name: plan\n"), &got))
	require.Equal(t, "plan", got.Name)
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register("tsv", CSV{})
	require.Equal(t, []string{".tsv"}, r.Extensions())
}
