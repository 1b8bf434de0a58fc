package terminology

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gofhir/fhir/r4"
)

// LoadDictionary reads a dictionary written by a previous run. Both the flat
// {"code": "description"} form and an R4 CodeSystem resource are accepted.
func LoadDictionary(r io.Reader, system System) (*Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	// Detect resource type
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	d := NewDictionary(system)

	if probe.ResourceType == "CodeSystem" {
		var cs r4.CodeSystem
		if err := json.Unmarshal(data, &cs); err != nil {
			return nil, fmt.Errorf("failed to parse CodeSystem: %w", err)
		}
		if err := d.LoadCodeSystem(&cs); err != nil {
			return nil, err
		}
		return d, nil
	}

	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}
	for code, desc := range flat {
		d.Set(code, desc)
	}
	return d, nil
}

// LoadDictionaryFile is LoadDictionary for a file path.
func LoadDictionaryFile(path string, system System) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := LoadDictionary(f, system)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
