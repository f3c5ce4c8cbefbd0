package handlers

import (
	"errors"
	"net/http"
	"strings"

	"claimflow/internal/apperr"
	"claimflow/internal/models"
	"claimflow/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListUsers returns every user in creation order, or only one role with
// ?role=.
func ListUsers(users store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			out []models.User
			err error
		)
		if role := models.Role(r.URL.Query().Get("role")); role != "" {
			if !role.Valid() {
				respondError(w, lg, apperr.Validation("unknown role %q", role))
				return
			}
			out, err = users.ListUsersByRole(r.Context(), role)
		} else {
			out, err = users.ListUsers(r.Context())
		}
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func GetUser(users store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		u, err := users.GetUser(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, lg, apperr.NotFound("user %s", id))
			return
		}
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, u)
	}
}

func CreateUser(users store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name  string      `json:"name"`
			Email string      `json:"email"`
			Role  models.Role `json:"role"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, lg, err)
			return
		}
		u := models.User{
			Name:  strings.TrimSpace(req.Name),
			Email: strings.ToLower(strings.TrimSpace(req.Email)),
			Role:  req.Role,
		}
		if u.Name == "" || u.Email == "" {
			respondError(w, lg, apperr.Validation("name and email required"))
			return
		}
		if !u.Role.Valid() {
			respondError(w, lg, apperr.Validation("unknown role %q", u.Role))
			return
		}
		err := users.CreateUser(r.Context(), &u)
		if errors.Is(err, store.ErrDuplicate) {
			respondError(w, lg, apperr.Validation("email %s already registered", u.Email))
			return
		}
		if err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("user created", "user_id", u.ID, "role", u.Role)
		respondCreated(w, u)
	}
}
