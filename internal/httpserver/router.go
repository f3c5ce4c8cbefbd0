package httpserver

import (
	"net/http"

	"claimflow/internal/analytics"
	"claimflow/internal/auth"
	"claimflow/internal/claims"
	"claimflow/internal/httpserver/handlers"
	"claimflow/internal/insights"
	"claimflow/internal/models"
	"claimflow/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type Deps struct {
	Store     store.Store
	Signer    *auth.Signer
	Claims    *claims.Service
	Analytics *analytics.Service
	Insights  *insights.Service
}

func NewRouter(d Deps, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger, traceRoutes)
	r.Post("/v1/auth/login", handlers.Login(d.Store, d.Signer, lg))
	r.Group(func(protected chi.Router) {
		protected.Use(auth.Authenticate(d.Signer))
		protected.Get("/v1/me", handlers.Me(d.Store, lg))
		protected.Get("/v1/users", handlers.ListUsers(d.Store, lg))
		protected.Get("/v1/users/{id}", handlers.GetUser(d.Store, lg))

		protected.With(auth.RequireRole(models.RoleUser)).Post("/v1/claims", handlers.CreateClaim(d.Claims, lg))
		protected.Get("/v1/claims/mine", handlers.MyClaims(d.Claims, lg))
		protected.Get("/v1/claims/{id}", handlers.GetClaim(d.Claims, lg))
		protected.Get("/v1/claims/{id}/logs", handlers.ClaimLogs(d.Claims, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireAdmin())
			admin.Post("/v1/users", handlers.CreateUser(d.Store, lg))
			admin.Get("/v1/claims", handlers.ListClaims(d.Claims, lg))
			admin.Get("/v1/claims/queue", handlers.Queue(d.Claims, lg))
			admin.Post("/v1/claims/{id}/approve", handlers.ApproveClaim(d.Claims, lg))
			admin.Post("/v1/claims/{id}/reject", handlers.RejectClaim(d.Claims, lg))

			admin.Get("/v1/analytics/overview", handlers.Overview(d.Analytics, lg))
			admin.Get("/v1/analytics/timeseries", handlers.TimeSeries(d.Analytics, lg))
			admin.Get("/v1/analytics/employees", handlers.EmployeeStatistics(d.Analytics, lg))
			admin.Get("/v1/analytics/admins", handlers.AdminPerformance(d.Analytics, lg))
			admin.Get("/v1/analytics/users/{id}", handlers.UserStats(d.Analytics, lg))
			admin.Get("/v1/analytics/claims", handlers.DetailedClaims(d.Analytics, lg))
			admin.Post("/v1/analytics/insights", handlers.Insights(d.Insights, lg))
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

var tracer = otel.Tracer("claimflow/internal/httpserver")

// traceRoutes opens a span per request, named once chi has resolved the route.
func traceRoutes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
			}
		}
		span.SetAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.Int("http.response.status_code", ww.Status()),
		)
	})
}
