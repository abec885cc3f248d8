package utils

import (
	"context"
	"errors"

	"tasky/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrRequestIDNotFound     = errors.New("requestID not found in context")
	ErrRequestIDNotString    = errors.New("requestID in context is not a string")
	ErrAdminSubjectNotFound  = errors.New("admin subject not found in context")
	ErrAdminSubjectNotString = errors.New("admin subject in context is not a string")
)

func stringFromContext(ctx context.Context, key interface{}, notFound, notString error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", notFound
	}
	s, ok := val.(string)
	if !ok {
		return "", notString
	}
	return s, nil
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

// GetAdminSubjectFromContext retrieves the subject of the verified admin token.
func GetAdminSubjectFromContext(ctx context.Context) (string, error) {
	return stringFromContext(ctx, contextkeys.AdminSubjectKey, ErrAdminSubjectNotFound, ErrAdminSubjectNotString)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithAdminSubject returns a new context carrying the admin token subject.
func WithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextkeys.AdminSubjectKey, subject)
}

// WithComponent returns a new context with the component name set.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, contextkeys.ComponentKey, component)
}

// WithOperation returns a new context with the operation name set.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// WithCollection returns a new context naming the collection being worked on.
func WithCollection(ctx context.Context, collection string) context.Context {
	return context.WithValue(ctx, contextkeys.CollectionKey, collection)
}

// GetRequestIDOrDefault returns the request ID or def if none is set.
func GetRequestIDOrDefault(ctx context.Context, def string) string {
	if id, err := GetRequestIDFromContext(ctx); err == nil {
		return id
	}
	return def
}
