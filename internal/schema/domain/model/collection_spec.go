package model

import (
	"fmt"
	"strings"
)

// FieldType is the primitive type tag a field value must carry.
// The string values are the MongoDB $jsonSchema bsonType names.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeBool     FieldType = "bool"
	FieldTypeObjectID FieldType = "objectId"
)

// ParseFieldType accepts the bsonType names plus a few common spellings.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str":
		return FieldTypeString, nil
	case "bool", "boolean":
		return FieldTypeBool, nil
	case "objectid", "object-id", "object-reference-id", "ref":
		return FieldTypeObjectID, nil
	default:
		return "", fmt.Errorf("unknown field type %q", s)
	}
}

// IsPrimitive reports whether t is one of the declared primitive tags
func (t FieldType) IsPrimitive() bool {
	switch t {
	case FieldTypeString, FieldTypeBool, FieldTypeObjectID:
		return true
	}
	return false
}

func (t FieldType) phrase() string {
	switch t {
	case FieldTypeString:
		return "a string"
	case FieldTypeBool:
		return "a boolean"
	case FieldTypeObjectID:
		return "an objectId"
	default:
		return "of type " + string(t)
	}
}

// CollectionSpec declares a collection and the shape its documents must have.
// Specs are built once at startup and treated as immutable afterwards.
type CollectionSpec struct {
	Name           string               `json:"name" yaml:"name"`
	RequiredFields []string             `json:"required" yaml:"required"`
	FieldTypes     map[string]FieldType `json:"fieldTypes" yaml:"fieldTypes"`
	Descriptions   map[string]string    `json:"descriptions,omitempty" yaml:"descriptions,omitempty"`
}

// Validate checks the spec's own invariants.
func (s CollectionSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &InvalidSpecError{Name: s.Name, Reason: "collection name cannot be empty"}
	}
	if strings.ContainsAny(s.Name, "$\x00") || strings.HasPrefix(s.Name, "system.") {
		return &InvalidSpecError{Name: s.Name, Reason: "collection name is not allowed"}
	}

	seen := make(map[string]struct{}, len(s.RequiredFields))
	for _, field := range s.RequiredFields {
		if _, ok := s.FieldTypes[field]; !ok {
			return &InvalidSpecError{Name: s.Name, Reason: fmt.Sprintf("required field %q has no declared type", field)}
		}
		if _, dup := seen[field]; dup {
			return &InvalidSpecError{Name: s.Name, Reason: fmt.Sprintf("required field %q listed twice", field)}
		}
		seen[field] = struct{}{}
	}
	for field, t := range s.FieldTypes {
		if field == "" {
			return &InvalidSpecError{Name: s.Name, Reason: "field name cannot be empty"}
		}
		if !t.IsPrimitive() {
			return &InvalidSpecError{Name: s.Name, Reason: fmt.Sprintf("field %q has unsupported type %q", field, t)}
		}
	}
	return nil
}

// IsRequired reports whether field is in RequiredFields
func (s CollectionSpec) IsRequired(field string) bool {
	for _, f := range s.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

// Rule derives the validation rule for the spec. The result is a fresh value;
// mutating it never affects the spec.
func (s CollectionSpec) Rule() ValidationRule {
	rule := ValidationRule{
		Required:   append([]string(nil), s.RequiredFields...),
		Properties: make(map[string]FieldRule, len(s.FieldTypes)),
	}
	for field, t := range s.FieldTypes {
		desc := s.Descriptions[field]
		if desc == "" {
			desc = "must be " + t.phrase()
			if s.IsRequired(field) {
				desc += " and is required"
			}
		}
		rule.Properties[field] = FieldRule{Type: t, Description: desc}
	}
	return rule
}

// CheckUniqueNames returns a DuplicateSpecError for the first repeated name
func CheckUniqueNames(specs []CollectionSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if _, ok := seen[spec.Name]; ok {
			return &DuplicateSpecError{Name: spec.Name}
		}
		seen[spec.Name] = struct{}{}
	}
	return nil
}
