// Package specfile reads collection specs from YAML so deployments can declare
// collections without rebuilding the service.
package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"tasky/internal/schema/domain/model"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout
type File struct {
	Collections []Collection `yaml:"collections"`
}

// Collection is one entry of File.Collections
type Collection struct {
	Name     string           `yaml:"name"`
	Required []string         `yaml:"required"`
	Fields   map[string]Field `yaml:"fields"`
}

// Field declares a property's type and optional description
type Field struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
}

// Load reads specs from path. An empty path yields the built-in defaults.
func Load(path string) ([]model.CollectionSpec, error) {
	if path == "" {
		return model.DefaultSpecs(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	specs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// Parse decodes YAML into specs. Unknown keys are rejected; spec invariants are
// checked per collection, duplicates are left for the bootstrapper to reject.
func Parse(data []byte) ([]model.CollectionSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode spec file: %w", err)
	}

	specs := make([]model.CollectionSpec, 0, len(f.Collections))
	for i, c := range f.Collections {
		spec := model.CollectionSpec{
			Name:           c.Name,
			RequiredFields: append([]string(nil), c.Required...),
			FieldTypes:     make(map[string]model.FieldType, len(c.Fields)),
			Descriptions:   make(map[string]string),
		}
		for name, field := range c.Fields {
			t, err := model.ParseFieldType(field.Type)
			if err != nil {
				return nil, fmt.Errorf("collections[%d] %q field %q: %w", i, c.Name, name, err)
			}
			spec.FieldTypes[name] = t
			if field.Description != "" {
				spec.Descriptions[name] = field.Description
			}
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Marshal renders specs in the file layout, used by `schemactl show --format yaml`
func Marshal(specs []model.CollectionSpec) ([]byte, error) {
	f := File{Collections: make([]Collection, 0, len(specs))}
	for _, spec := range specs {
		c := Collection{
			Name:     spec.Name,
			Required: spec.RequiredFields,
			Fields:   make(map[string]Field, len(spec.FieldTypes)),
		}
		for name, t := range spec.FieldTypes {
			c.Fields[name] = Field{Type: string(t), Description: spec.Descriptions[name]}
		}
		f.Collections = append(f.Collections, c)
	}
	return yaml.Marshal(f)
}
