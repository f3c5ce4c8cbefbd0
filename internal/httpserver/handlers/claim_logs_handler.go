package handlers

import (
	"net/http"

	"claimflow/internal/claims"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ClaimLogs returns a claim's audit trail, oldest entry first. Employees can
// only read the trail of their own claims.
func ClaimLogs(svc *claims.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := visibleClaim(r, svc, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, c.Logs)
	}
}
