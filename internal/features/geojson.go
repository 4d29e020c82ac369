package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// geojsonOpener reads feature properties from a GeoJSON FeatureCollection.
type geojsonOpener struct{}

func (geojsonOpener) CanOpen(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".geojson" || ext == ".json"
}

type geojsonDoc struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Features []struct {
		Properties json.RawMessage `json:"properties"`
	} `json:"features"`
}

func (geojsonOpener) Open(path, _ string) (Collection, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	var doc geojsonDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	if doc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("geojson %s: expected FeatureCollection, got %q", filepath.Base(path), doc.Type)
	}
	name := doc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var fields []string
	seen := map[string]bool{}
	rows := make([]map[string]any, 0, len(doc.Features))
	for i, f := range doc.Features {
		props := map[string]any{}
		if len(f.Properties) > 0 && string(f.Properties) != "null" {
			keys, err := objectKeys(f.Properties)
			if err != nil {
				return nil, fmt.Errorf("feature %d properties: %w", i, err)
			}
			for _, k := range keys {
				if !seen[k] {
					seen[k] = true
					fields = append(fields, k)
				}
			}
			dec := json.NewDecoder(bytes.NewReader(f.Properties))
			dec.UseNumber()
			if err := dec.Decode(&props); err != nil {
				return nil, fmt.Errorf("feature %d properties: %w", i, err)
			}
		}
		rows = append(rows, props)
	}
	return NewMemory(name, fields, rows), nil
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("properties is not an object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
