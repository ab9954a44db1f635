// Package planning exposes the manual planning trigger over HTTP.
package planning

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/crewplan/core/logger"
	"github.com/kilianp07/crewplan/core/model"
	coreplanning "github.com/kilianp07/crewplan/core/planning"
)

// Runner runs one tenant cycle on demand.
type Runner interface {
	RunTenant(ctx context.Context, tenantID string) (coreplanning.CycleReport, error)
}

type errorResponse struct {
	Error    string                    `json:"error"`
	TenantID string                    `json:"tenant_id"`
	Report   *coreplanning.CycleReport `json:"report,omitempty"`
}

// NewRunHandler returns the handler of
// POST /api/v1/tenants/{tenantID}/planning-runs. A completed cycle answers
// 200 with its report, including cycles where individual needs failed.
func NewRunHandler(runner Runner, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")
		if tenantID == "" {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "tenant id is required"})
			return
		}
		rep, err := runner.RunTenant(r.Context(), tenantID)
		if err != nil {
			status := StatusFor(err)
			log.Warnf("manual run for tenant %s: %v", tenantID, err)
			resp := errorResponse{Error: err.Error(), TenantID: tenantID}
			if len(rep.Outcomes) > 0 {
				resp.Report = &rep
			}
			respondJSON(w, status, resp)
			return
		}
		respondJSON(w, http.StatusOK, rep)
	})
}

// StatusFor maps a run error to an HTTP status.
func StatusFor(err error) int {
	var (
		ce  *model.ConfigError
		dae *model.DataAccessError
	)
	switch {
	case errors.As(err, &ce):
		return http.StatusUnprocessableEntity
	case errors.As(err, &dae):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
