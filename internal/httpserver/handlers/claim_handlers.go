package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"claimflow/internal/apperr"
	"claimflow/internal/claims"
	"claimflow/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type createClaimReq struct {
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// CreateClaim submits a claim owned by the caller.
func CreateClaim(svc *claims.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := actor(r)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		var req createClaimReq
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, lg, err)
			return
		}
		c, err := svc.Create(r.Context(), claims.CreateInput{
			UserID:      who.UserID,
			UserName:    who.Name,
			Title:       req.Title,
			Amount:      req.Amount,
			Description: req.Description,
			Date:        strings.TrimSpace(req.Date),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondCreated(w, c)
	}
}

// ListClaims returns all claims, newest first; ?status= narrows to one status.
func ListClaims(svc *claims.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), models.Status(r.URL.Query().Get("status")))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func MyClaims(svc *claims.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := actor(r)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		out, err := svc.ListByUser(r.Context(), who.UserID)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

// Queue lists the claims waiting on the caller's approval level.
func Queue(svc *claims.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := actor(r)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		out, err := svc.Queue(r.Context(), who.Role)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func GetClaim(svc *claims.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := visibleClaim(r, svc, chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, c)
	}
}

// visibleClaim loads a claim the caller may read: admins see every claim,
// employees only their own.
func visibleClaim(r *http.Request, svc *claims.Service, id string) (*models.Claim, error) {
	who, err := actor(r)
	if err != nil {
		return nil, err
	}
	c, err := svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !who.Role.IsAdmin() && c.UserID != who.UserID {
		return nil, apperr.New(apperr.KindForbidden, "claim %s belongs to another user", id)
	}
	return c, nil
}

type decisionReq struct {
	Remarks string `json:"remarks"`
}

type decisionResp struct {
	ID     string        `json:"id"`
	Status models.Status `json:"status"`
}

func ApproveClaim(svc *claims.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return decide(svc.Approve, lg)
}

func RejectClaim(svc *claims.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return decide(svc.Reject, lg)
}

type decisionFunc func(ctx context.Context, claimID, remarks string, actor claims.Actor) (models.Status, error)

func decide(fn decisionFunc, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := actor(r)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		var req decisionReq
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, lg, err)
			return
		}
		id := chi.URLParam(r, "id")
		status, err := fn(r.Context(), id, req.Remarks, who)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, decisionResp{ID: id, Status: status})
	}
}
