package daemon

import (
	"encoding/json"
	"net/http"

	"github.com/openkcm/tenancy/internal/apierrors"
	"github.com/openkcm/tenancy/internal/directory"
	"github.com/openkcm/tenancy/internal/log"
	"github.com/openkcm/tenancy/internal/view"
)

const (
	TenantPath  = "GET /tenant"
	PathsPath   = "GET /tenant/paths"
	HealthzPath = "GET /healthz"
)

// tenantHandler returns the tenant view of the request.
func tenantHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := view.Composer{}.Compose(ctx, map[string]any{})

	writeJSON(w, r, data)
}

// pathsHandler lists the storage roots of the request.
func pathsHandler(w http.ResponseWriter, r *http.Request) {
	paths, ok := directory.PathsFromContext(r.Context())
	if !ok {
		apierrors.ErrorResponse(r.Context(), w, apierrors.NotFoundMessage())
		return
	}

	writeJSON(w, r, map[string]any{"roots": paths.Roots()})
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		log.Error(r.Context(), "Failed to encode response", err)
	}
}
