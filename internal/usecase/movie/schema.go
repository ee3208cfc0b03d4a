package movie

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"notioner/internal/infra/notion"
)

//go:embed schema.yaml
var defaultSchemaYAML []byte

// Property describes one property of the movies database.
type Property struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
}

// Schema is the ordered list of movie properties written to Notion.
type Schema struct {
	Properties []Property `yaml:"properties"`
}

// DefaultSchema returns the embedded movies database schema.
func DefaultSchema() (*Schema, error) {
	return ParseSchema(defaultSchemaYAML)
}

// LoadSchema reads a schema file. An empty path yields the embedded schema.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// ParseSchema decodes and validates a YAML schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that names are unique, ids are set and types are known.
func (s *Schema) Validate() error {
	if len(s.Properties) == 0 {
		return fmt.Errorf("schema has no properties")
	}
	seen := make(map[string]struct{}, len(s.Properties))
	for i, p := range s.Properties {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("property %d: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("property %q: duplicate name", name)
		}
		seen[name] = struct{}{}
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("property %q: id is required", name)
		}
		if !notion.KnownPropertyType(p.Type) {
			return fmt.Errorf("property %q: unsupported type %q", name, p.Type)
		}
	}
	return nil
}

// Lookup returns the property with the given name.
func (s *Schema) Lookup(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}
