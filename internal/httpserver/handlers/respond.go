package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"claimflow/internal/apperr"
	"claimflow/internal/auth"
	"claimflow/internal/claims"

	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondCreated(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondError writes err with the status code of its kind. Errors without a
// kind are logged and reported as a bare 500.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind == apperr.KindInternal {
		lg.Errorw("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Error(w, ae.Error(), ae.Kind.HTTPStatus())
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "malformed request body")
	}
	return nil
}

// actor returns the authenticated caller. Routes using it sit behind
// auth.Authenticate, so a missing identity is a wiring bug.
func actor(r *http.Request) (claims.Actor, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return claims.Actor{}, apperr.New(apperr.KindUnauthenticated, "no identity on request")
	}
	return claims.Actor{UserID: id.UserID, Name: id.Name, Role: id.Role}, nil
}
