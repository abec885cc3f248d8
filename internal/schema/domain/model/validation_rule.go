package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldRule constrains a single property
type FieldRule struct {
	Type        FieldType `json:"bsonType"`
	Description string    `json:"description,omitempty"`
}

// ValidationRule says: the document is a structured record, it contains every
// Required field, and each present property matches its declared type.
type ValidationRule struct {
	Required   []string             `json:"required"`
	Properties map[string]FieldRule `json:"properties"`
}

// RequiredFields returns a copy of the required field list in declaration order
func (r ValidationRule) RequiredFields() []string {
	return append([]string(nil), r.Required...)
}

// FieldTypes returns the field -> type pairs the rule declares
func (r ValidationRule) FieldTypes() map[string]FieldType {
	out := make(map[string]FieldType, len(r.Properties))
	for field, fr := range r.Properties {
		out[field] = fr.Type
	}
	return out
}

// FieldNames returns the declared property names sorted
func (r ValidationRule) FieldNames() []string {
	names := make([]string, 0, len(r.Properties))
	for name := range r.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check validates a document against the rule the same way the server-side
// validator would for the primitive types we declare.
func (r ValidationRule) Check(doc map[string]interface{}) error {
	var problems []string
	for _, field := range r.Required {
		if _, ok := doc[field]; !ok {
			problems = append(problems, fmt.Sprintf("%s is required", field))
		}
	}
	for _, field := range r.FieldNames() {
		val, ok := doc[field]
		if !ok {
			continue
		}
		if !valueMatches(r.Properties[field].Type, val) {
			problems = append(problems, fmt.Sprintf("%s %s", field, r.Properties[field].Description))
		}
	}
	if len(problems) > 0 {
		return &DocumentValidationError{Problems: problems}
	}
	return nil
}

func valueMatches(t FieldType, val interface{}) bool {
	switch t {
	case FieldTypeString:
		_, ok := val.(string)
		return ok
	case FieldTypeBool:
		_, ok := val.(bool)
		return ok
	case FieldTypeObjectID:
		_, ok := val.(primitive.ObjectID)
		return ok
	default:
		return false
	}
}

// ConflictPolicy decides when an existing validator counts as compatible
type ConflictPolicy string

const (
	// PolicyStrict requires the same required set and the same field types.
	PolicyStrict ConflictPolicy = "strict"
	// PolicyLenient requires the same required set and agreeing types on
	// fields both sides declare; optional fields known to one side only are tolerated.
	PolicyLenient ConflictPolicy = "lenient"
)

// ParseConflictPolicy maps a config value onto a policy
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyLenient:
		return PolicyLenient, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q", s)
	}
}

// ruleShape is the comparable part of a rule. Descriptions never participate.
type ruleShape struct {
	Required []string
	Types    map[string]FieldType
}

func shapeOf(r ValidationRule) ruleShape {
	required := r.RequiredFields()
	if required == nil {
		required = []string{}
	}
	sort.Strings(required)
	return ruleShape{Required: required, Types: r.FieldTypes()}
}

// Compatible reports whether an existing rule satisfies the desired one under
// policy. When it does not, diff describes the mismatch (-existing +desired).
func Compatible(existing, desired ValidationRule, policy ConflictPolicy) (bool, string) {
	have, want := shapeOf(existing), shapeOf(desired)

	if policy == PolicyLenient {
		if cmp.Equal(have.Required, want.Required) && commonTypesAgree(have.Types, want.Types) {
			return true, ""
		}
	} else if cmp.Equal(have, want) {
		return true, ""
	}

	return false, cmp.Diff(have, want)
}

func commonTypesAgree(a, b map[string]FieldType) bool {
	for field, t := range a {
		if other, ok := b[field]; ok && other != t {
			return false
		}
	}
	return true
}
