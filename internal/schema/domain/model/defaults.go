package model

// Collection names of the built-in specs
const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

// DefaultSpecs returns the built-in users and tasks specs. Each call builds
// fresh values so callers can never share mutable maps.
func DefaultSpecs() []CollectionSpec {
	return []CollectionSpec{UsersSpec(), TasksSpec()}
}

// UsersSpec declares the users collection
func UsersSpec() CollectionSpec {
	return CollectionSpec{
		Name:           UsersCollection,
		RequiredFields: []string{"name", "email", "password"},
		FieldTypes: map[string]FieldType{
			"name":     FieldTypeString,
			"email":    FieldTypeString,
			"password": FieldTypeString,
		},
	}
}

// TasksSpec declares the tasks collection
func TasksSpec() CollectionSpec {
	return CollectionSpec{
		Name:           TasksCollection,
		RequiredFields: []string{"title", "userId"},
		FieldTypes: map[string]FieldType{
			"title":       FieldTypeString,
			"description": FieldTypeString,
			"completed":   FieldTypeBool,
			"userId":      FieldTypeObjectID,
		},
	}
}

// FindSpec returns the spec with the given name
func FindSpec(specs []CollectionSpec, name string) (CollectionSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return CollectionSpec{}, false
}
