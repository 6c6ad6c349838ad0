package ptr

import (
	"strings"

	"github.com/google/uuid"
)

// PointTo creates a typed pointer of whatever you hand in as parameter
func PointTo[T any](t T) *T {
	return &t
}

func IsValidStrPtr(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func IsNotNilUUID(ptr *uuid.UUID) bool {
	return ptr != nil && *ptr != uuid.Nil
}

// GetSafeDeref returns the dereferenced value of a pointer or the zero value of T if the pointer is nil.
func GetSafeDeref[T any](ptr *T) T {
	var res T
	if ptr != nil {
		res = *ptr
	}

	return res
}

// Equal reports whether both pointers are nil or point to equal values.
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
