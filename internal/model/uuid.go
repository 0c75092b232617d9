package model

import "github.com/google/uuid"

// NewID returns a fresh identifier for a folder or bookmark.
func NewID() string {
	return uuid.New().String()
}

// StringPtr returns nil for the empty string, otherwise a pointer to s.
// Parent ids use nil for the top level.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
