// Package audit exposes the decision log over HTTP.
package audit

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/crewplan/core/store"
)

// NewLogHandler returns an HTTP handler listing audit entries of the tenant
// named by the tenantID route parameter. The entity_id query parameter
// narrows the result to one proposal.
func NewLogHandler(reader store.AuditReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")
		entityID := r.URL.Query().Get("entity_id")
		entries, err := reader.Query(r.Context(), tenantID, entityID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
