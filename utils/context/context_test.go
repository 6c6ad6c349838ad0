package context_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tenancycontext "github.com/openkcm/tenancy/utils/context"
)

func TestExtractTenantSchema(t *testing.T) {
	tests := []struct {
		name      string
		schema    string
		want      string
		expectErr bool
	}{
		{
			name:   "Valid schema",
			schema: "acme",
			want:   "acme",
		},
		{
			name:      "Empty schema",
			schema:    "",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tenancycontext.CreateTenantContext(t.Context(), tt.schema)

			got, err := tenancycontext.ExtractTenantSchema(ctx)
			if tt.expectErr {
				assert.True(t, errors.Is(err, tenancycontext.ErrExtractTenantSchema))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithOptions(t *testing.T) {
	//nolint:staticcheck
	ctx := tenancycontext.New(nil,
		tenancycontext.WithTenant("acme"),
		tenancycontext.WithRequestID("req-1"),
	)

	schema, err := tenancycontext.ExtractTenantSchema(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme", schema)

	id, err := tenancycontext.GetRequestID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-1", id)
}

func TestRequestID(t *testing.T) {
	t.Run("Should fail without request id", func(t *testing.T) {
		_, err := tenancycontext.GetRequestID(context.Background())
		assert.ErrorIs(t, err, tenancycontext.ErrGetRequestID)
	})

	t.Run("Should inject a fresh id", func(t *testing.T) {
		ctx := tenancycontext.InjectRequestID(t.Context())

		id, err := tenancycontext.GetRequestID(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})
}
