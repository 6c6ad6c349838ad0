package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/tenancy/utils/validator"
)

func TestParseUUID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{
			name: "valid UUID",
			id:   "123e4567-e89b-12d3-a456-426614174000",
		},
		{
			name:    "invalid UUID",
			id:      "invalid-uuid",
			wantErr: true,
		},
		{
			name:    "empty string",
			id:      "",
			wantErr: true,
		},
		{
			name:    "nil UUID",
			id:      "00000000-0000-0000-0000-000000000000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := validator.ParseUUID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, validator.ErrValidator)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.id, id.String())
		})
	}
}
