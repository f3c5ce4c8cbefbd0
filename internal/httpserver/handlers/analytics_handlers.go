package handlers

import (
	"net/http"

	"claimflow/internal/analytics"
	"claimflow/internal/insights"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func dateRange(r *http.Request) analytics.DateRange {
	q := r.URL.Query()
	return analytics.DateRange{Start: q.Get("startDate"), End: q.Get("endDate")}
}

func Overview(svc *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Overview(r.Context(), dateRange(r))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

// TimeSeries takes ?granularity=day|week|month, daily by default.
func TimeSeries(svc *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := analytics.Granularity(r.URL.Query().Get("granularity"))
		out, err := svc.TimeSeries(r.Context(), dateRange(r), g)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func EmployeeStatistics(svc *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.EmployeeStatistics(r.Context(), dateRange(r))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func AdminPerformance(svc *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.AdminPerformance(r.Context(), dateRange(r))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func UserStats(svc *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.UserDetailedStats(r.Context(), chi.URLParam(r, "id"), dateRange(r))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

// DetailedClaims takes ?status=all|pending|approved|rejected.
func DetailedClaims(svc *analytics.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := analytics.StatusFilter(r.URL.Query().Get("status"))
		out, err := svc.AllClaimsDetailed(r.Context(), dateRange(r), f)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}

func Insights(svc *insights.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Generate(r.Context(), dateRange(r))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}
