package view_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/internal/testutils"
	"github.com/openkcm/tenancy/internal/view"
	"github.com/openkcm/tenancy/utils/ptr"
)

func website() *model.Website {
	w := &model.Website{ID: uuid.New(), TenantID: uuid.New(), Active: true}
	db := testutils.TestDatabase
	db.Password = "hunter2"
	w.Apply(model.WebsiteAttributes{Slug: ptr.PointTo("acme"), Database: &db})

	return w
}

func TestTenantView(t *testing.T) {
	t.Run("Should be tenant-less by default", func(t *testing.T) {
		v := view.FromContext(t.Context())
		assert.False(t, v.Resolved())
		assert.Nil(t, v.Hostname())
		assert.Nil(t, v.Website())

		data, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, `{"hostname":null,"website":null}`, string(data))
	})

	t.Run("Should expose copies without credentials", func(t *testing.T) {
		w := website()
		v := view.New(&model.Hostname{ID: uuid.New(), Hostname: "acme.example.com"}, w)
		assert.True(t, v.Resolved())

		v.Website().Slug = "changed"
		assert.Equal(t, "acme", v.Website().Slug)

		data, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"slug":"acme"`)
		assert.Contains(t, string(data), `"hostname":"acme.example.com"`)
		assert.NotContains(t, string(data), "hunter2")
	})
}

func TestComposer(t *testing.T) {
	v := view.New(nil, website())
	ctx := view.WithView(t.Context(), v)

	data := view.Composer{}.Compose(ctx, map[string]any{"title": "Home"})
	assert.Equal(t, "Home", data["title"])
	assert.Equal(t, v, data["tenant"])

	data = view.Composer{}.Compose(t.Context(), nil)
	assert.Equal(t, view.TenantView{}, data["tenant"])
}
