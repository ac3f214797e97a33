// Package gadm turns GADM GeoJSON feature collections into flat location name
// rows enriched with country metadata.
package gadm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
)

// ErrDecode is returned when the input is not well-formed JSON.
var ErrDecode = eris.New("gadm: input is not valid JSON")

// SchemaError reports a well-formed document that does not follow the GADM
// layout. Index is the zero-based feature position, or -1 for the document.
type SchemaError struct {
	Index int
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("gadm: feature %d: missing %s", e.Index, e.Field)
	if e.Index < 0 {
		msg = fmt.Sprintf("gadm: document: missing %s", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Document is a decoded feature collection. Features stay raw until iterated.
type Document struct {
	Features []json.RawMessage
}

// Feature is the part of a GeoJSON feature the transformer reads.
type Feature struct {
	Properties Properties `json:"properties"`
}

// Properties holds a feature's property values. Numbers keep their JSON text.
type Properties map[string]any

// Lookup returns the textual value of key and whether the key is present.
// A JSON null is present with an empty value.
func (p Properties) Lookup(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	return propertyString(v), true
}

func propertyString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// Decode reads the whole input and splits out its features. Malformed JSON
// yields an error matching ErrDecode; a JSON value without a features array
// yields a *SchemaError.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "gadm: read input")
	}

	if !json.Valid(data) {
		var v any
		syntaxErr := json.Unmarshal(data, &v)
		return nil, eris.Wrapf(ErrDecode, "%v", syntaxErr)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &SchemaError{Index: -1, Field: "features", Err: eris.New("document is not an object")}
	}

	raw, ok := top["features"]
	if !ok {
		return nil, &SchemaError{Index: -1, Field: "features"}
	}

	var features []json.RawMessage
	if err := json.Unmarshal(raw, &features); err != nil || features == nil {
		return nil, &SchemaError{Index: -1, Field: "features", Err: eris.New("features is not an array")}
	}

	return &Document{Features: features}, nil
}

// decodeFeature parses the feature at index i, requiring properties and GID_0.
func decodeFeature(i int, raw json.RawMessage) (Feature, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var f Feature
	if err := dec.Decode(&f); err != nil {
		return Feature{}, &SchemaError{Index: i, Field: "properties", Err: eris.Wrap(err, "decode feature")}
	}
	if f.Properties == nil {
		return Feature{}, &SchemaError{Index: i, Field: "properties"}
	}
	if _, ok := f.Properties[KeyISO3]; !ok {
		return Feature{}, &SchemaError{Index: i, Field: KeyISO3}
	}
	return f, nil
}
