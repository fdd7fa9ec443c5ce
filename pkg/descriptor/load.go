package descriptor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML shape description.
func LoadYAML(r io.Reader) (*Descriptor, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("descriptor: decode yaml: %w", err)
	}
	return Decode(v)
}

// LoadJSON reads a JSON shape description.
func LoadJSON(r io.Reader) (*Descriptor, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("descriptor: decode json: %w", err)
	}
	return Decode(v)
}

// LoadFile reads a shape description from disk. Files ending in .json are
// parsed as JSON, everything else as YAML.
func LoadFile(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// MarshalYAML encodes d in the record form accepted by LoadYAML.
func MarshalYAML(d *Descriptor) ([]byte, error) {
	return yaml.Marshal(d.Record())
}
