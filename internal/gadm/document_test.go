package gadm

import (
	"errors"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{
		"type": "FeatureCollection",
		"name": "gadm41_AFG_2",
		"features": [
			{"type": "Feature", "properties": {"GID_0": "AFG"}, "geometry": null},
			{"type": "Feature", "properties": {"GID_0": "FRA"}}
		]
	}`))
	require.NoError(t, err)
	assert.Len(t, doc.Features, 2)
}

func TestDecode_EmptyFeatures(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"features": []}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Features)
}

func TestDecode_Malformed(t *testing.T) {
	for _, input := range []string{"not json", "", `{"features": [`, `{"features": []} trailing`} {
		t.Run(input, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrDecode), "want ErrDecode, got %v", err)
			assert.True(t, errors.Is(err, ErrDecode))
		})
	}
}

func TestDecode_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no features key", `{"type": "FeatureCollection"}`},
		{"features not array", `{"features": {"a": 1}}`},
		{"features null", `{"features": null}`},
		{"top-level array", `[{"properties": {"GID_0": "AFG"}}]`},
		{"top-level null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "want *SchemaError, got %T", err)
			assert.Equal(t, -1, schemaErr.Index)
			assert.Equal(t, "features", schemaErr.Field)
			assert.False(t, eris.Is(err, ErrDecode))
		})
	}
}

func TestDecodeFeature(t *testing.T) {
	f, err := decodeFeature(0, []byte(`{"properties": {"GID_0": "AFG", "NAME_1": "Zabul", "CC_2": 1234, "VARNAME_2": null}}`))
	require.NoError(t, err)

	v, ok := f.Properties.Lookup("NAME_1")
	assert.True(t, ok)
	assert.Equal(t, "Zabul", v)

	v, ok = f.Properties.Lookup("CC_2")
	assert.True(t, ok)
	assert.Equal(t, "1234", v)

	v, ok = f.Properties.Lookup("VARNAME_2")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = f.Properties.Lookup("NAME_2")
	assert.False(t, ok)
}

func TestDecodeFeature_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"no properties", `{"type": "Feature"}`, "properties"},
		{"null properties", `{"properties": null}`, "properties"},
		{"string properties", `{"properties": "AFG"}`, "properties"},
		{"null feature", `null`, "properties"},
		{"no GID_0", `{"properties": {"COUNTRY": "Afghanistan"}}`, "GID_0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeFeature(3, []byte(tt.raw))
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, 3, schemaErr.Index)
			assert.Equal(t, tt.field, schemaErr.Field)
			assert.Contains(t, err.Error(), "gadm: feature 3: missing "+tt.field)
		})
	}
}

func TestPropertyString(t *testing.T) {
	assert.Equal(t, "", propertyString(nil))
	assert.Equal(t, "NA", propertyString("NA"))
	assert.Equal(t, "true", propertyString(true))
	assert.Equal(t, `["a","b"]`, propertyString([]any{"a", "b"}))
}

func TestSchemaError_Message(t *testing.T) {
	assert.Equal(t, "gadm: document: missing features", (&SchemaError{Index: -1, Field: "features"}).Error())
	assert.Equal(t, "gadm: feature 0: missing GID_0", (&SchemaError{Index: 0, Field: "GID_0"}).Error())
}
