package ptr_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openkcm/tenancy/utils/ptr"
)

func TestIsValidStrPtr(t *testing.T) {
	validStr := "valid"
	emptyStr := ""
	whitespaceStr := "   "

	tests := []struct {
		name     string
		input    *string
		expected bool
	}{
		{"Valid string pointer", &validStr, true},
		{"Empty string pointer", &emptyStr, false},
		{"Whitespace string pointer", &whitespaceStr, false},
		{"Nil pointer", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ptr.IsValidStrPtr(tt.input))
		})
	}
}

func TestGetSafeDeref(t *testing.T) {
	t.Run("Should string on string pointer", func(t *testing.T) {
		assert.Equal(t, "test", ptr.GetSafeDeref(ptr.PointTo("test")))
	})

	t.Run("Should zero on nil bool pointer", func(t *testing.T) {
		assert.False(t, ptr.GetSafeDeref[bool](nil))
	})
}

func TestIsNotNilUUID(t *testing.T) {
	assert.True(t, ptr.IsNotNilUUID(ptr.PointTo(uuid.New())))
	assert.False(t, ptr.IsNotNilUUID(ptr.PointTo(uuid.Nil)))
	assert.False(t, ptr.IsNotNilUUID(nil))
}

func TestEqual(t *testing.T) {
	id := uuid.New()

	assert.True(t, ptr.Equal[uuid.UUID](nil, nil))
	assert.True(t, ptr.Equal(ptr.PointTo(id), ptr.PointTo(id)))
	assert.False(t, ptr.Equal(ptr.PointTo(id), nil))
	assert.False(t, ptr.Equal(ptr.PointTo(id), ptr.PointTo(uuid.New())))
}
