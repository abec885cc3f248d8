package mongodb

import (
	"errors"
	"fmt"
	"strings"

	"tasky/internal/schema/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// JSONSchema renders a rule as a $jsonSchema document. Properties are sorted so
// the output is stable across runs.
func JSONSchema(rule model.ValidationRule) bson.D {
	properties := bson.D{}
	for _, field := range rule.FieldNames() {
		fr := rule.Properties[field]
		prop := bson.D{{Key: "bsonType", Value: string(fr.Type)}}
		if fr.Description != "" {
			prop = append(prop, bson.E{Key: "description", Value: fr.Description})
		}
		properties = append(properties, bson.E{Key: field, Value: prop})
	}

	required := rule.RequiredFields()
	if required == nil {
		required = []string{}
	}

	schema := bson.D{{Key: "bsonType", Value: "object"}}
	if len(required) > 0 {
		schema = append(schema, bson.E{Key: "required", Value: required})
	}
	return append(schema, bson.E{Key: "properties", Value: properties})
}

// Validator wraps the schema the way createCollection expects it
func Validator(rule model.ValidationRule) bson.D {
	return bson.D{{Key: "$jsonSchema", Value: JSONSchema(rule)}}
}

// Keywords a comparable $jsonSchema may carry. Anything else constrains
// documents in ways a ValidationRule cannot express.
var (
	schemaKeywords   = map[string]bool{"bsonType": true, "required": true, "properties": true, "title": true, "description": true}
	propertyKeywords = map[string]bool{"bsonType": true, "title": true, "description": true}
)

type jsonSchemaDoc struct {
	BSONType   interface{}            `bson:"bsonType"`
	Required   []string               `bson:"required"`
	Properties map[string]propertyDoc `bson:"properties"`
}

type propertyDoc struct {
	BSONType    interface{} `bson:"bsonType"`
	Description string      `bson:"description"`
}

// RuleFromOptions reads the validator out of a collection's options document.
// It returns a nil rule when there is no validator, and opaque=true when the
// validator is something other than a plain object $jsonSchema using only
// bsonType, required and properties.
func RuleFromOptions(opts bson.Raw) (rule *model.ValidationRule, opaque bool, err error) {
	if len(opts) == 0 {
		return nil, false, nil
	}

	val, err := opts.LookupErr("validator")
	if errors.Is(err, bsoncore.ErrElementNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read collection options: %w", err)
	}

	var validator bson.M
	if err := val.Unmarshal(&validator); err != nil {
		return nil, false, fmt.Errorf("decode validator: %w", err)
	}
	if len(validator) == 0 {
		return nil, false, nil
	}
	if _, ok := validator["$jsonSchema"]; !ok || len(validator) != 1 {
		return nil, true, nil
	}

	rawSchema := val.Document().Lookup("$jsonSchema")
	if !onlyKnownKeywords(rawSchema) {
		return nil, true, nil
	}

	var schema jsonSchemaDoc
	if err := rawSchema.Unmarshal(&schema); err != nil {
		return nil, false, fmt.Errorf("decode $jsonSchema: %w", err)
	}
	if schema.BSONType != nil && typeName(schema.BSONType) != "object" {
		return nil, true, nil
	}

	out := &model.ValidationRule{
		Required:   schema.Required,
		Properties: make(map[string]model.FieldRule, len(schema.Properties)),
	}
	for field, prop := range schema.Properties {
		out.Properties[field] = model.FieldRule{
			Type:        model.FieldType(typeName(prop.BSONType)),
			Description: prop.Description,
		}
	}
	return out, false, nil
}

// onlyKnownKeywords reports whether the schema and each of its properties
// stick to the keywords a ValidationRule round-trips.
func onlyKnownKeywords(schema bson.RawValue) bool {
	doc, ok := schema.DocumentOK()
	if !ok {
		return false
	}
	elems, err := doc.Elements()
	if err != nil {
		return false
	}
	for _, elem := range elems {
		if !schemaKeywords[elem.Key()] {
			return false
		}
	}

	propsVal, err := doc.LookupErr("properties")
	if errors.Is(err, bsoncore.ErrElementNotFound) {
		return true
	}
	props, ok := propsVal.DocumentOK()
	if !ok {
		return false
	}
	fields, err := props.Elements()
	if err != nil {
		return false
	}
	for _, field := range fields {
		prop, ok := field.Value().DocumentOK()
		if !ok {
			return false
		}
		keys, err := prop.Elements()
		if err != nil {
			return false
		}
		for _, key := range keys {
			if !propertyKeywords[key.Key()] {
				return false
			}
		}
	}
	return true
}

// EnforcementFromOptions returns why a collection's validator would let
// invalid documents through, or "" when it is applied strictly with errors.
// Absent settings mean the server defaults, strict and error.
func EnforcementFromOptions(opts bson.Raw) string {
	if len(opts) == 0 {
		return ""
	}
	if level, ok := opts.Lookup("validationLevel").StringValueOK(); ok && level != "strict" {
		return fmt.Sprintf("validationLevel is %q, want \"strict\"", level)
	}
	if action, ok := opts.Lookup("validationAction").StringValueOK(); ok && action != "error" {
		return fmt.Sprintf("validationAction is %q, want \"error\"", action)
	}
	return ""
}

// typeName flattens a bsonType that may be a single name or a list of names
func typeName(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bson.A:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, "|")
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
