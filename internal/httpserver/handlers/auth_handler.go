package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"claimflow/internal/apperr"
	"claimflow/internal/auth"
	"claimflow/internal/models"
	"claimflow/internal/store"
)

type loginReq struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type loginResp struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Login issues a token for an existing user picked by ID or email. There is
// no password; the token only carries who the caller acts as.
func Login(users store.UserStore, signer *auth.Signer, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, lg, err)
			return
		}
		var (
			u   *models.User
			err error
		)
		switch {
		case strings.TrimSpace(req.UserID) != "":
			u, err = users.GetUser(r.Context(), strings.TrimSpace(req.UserID))
		case strings.TrimSpace(req.Email) != "":
			u, err = users.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
		default:
			respondError(w, lg, apperr.Validation("user_id or email required"))
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, lg, apperr.New(apperr.KindUnauthenticated, "unknown user"))
			return
		}
		if err != nil {
			respondError(w, lg, err)
			return
		}
		tok, exp, err := signer.Sign(*u)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		lg.Infow("login", "user_id", u.ID, "role", u.Role)
		respondJSON(w, loginResp{Token: tok, ExpiresAt: exp, User: *u})
	}
}

func Me(users store.UserStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		u, err := users.GetUser(r.Context(), id.UserID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, lg, apperr.NotFound("user %s", id.UserID))
			return
		}
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, u)
	}
}
