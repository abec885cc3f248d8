package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "tasky context key " + string(c)
}

// RequestIDKey is the key for the per-request correlation id in context.Context
const RequestIDKey = contextKey("requestID")

// ComponentKey is the key for the component name used in log entries
const ComponentKey = contextKey("component")

// OperationKey is the key for the operation name used in log entries
const OperationKey = contextKey("operation")

// CollectionKey is the key for the collection a bootstrap step is working on
const CollectionKey = contextKey("collection")

// AdminSubjectKey holds the subject of a verified admin token
const AdminSubjectKey = contextKey("adminSubject")
