// Package handler wires the HTTP surface of the tax engine: the chi router,
// the per-route handlers and the middleware stack.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/taxbot-india/engine-go/internal/domain"
	"github.com/taxbot-india/engine-go/internal/infra/observability"
	"github.com/taxbot-india/engine-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger reports backing-store connectivity for the health probe. The Redis
// cache implements it; the in-memory cache has nothing to probe and passes nil.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
// When authSvc is nil the API runs open and no auth routes are mounted.
func NewRouter(taxSvc *service.TaxService, predictSvc *service.PredictionService, authSvc *service.AuthService, cachePing Pinger, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(cachePing, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		if authSvc != nil {
			r.Post("/auth/token", authTokenHandler(authSvc, logger))
		}

		r.Group(func(r chi.Router) {
			if authSvc != nil {
				r.Use(JWTAuthMiddleware(authSvc, logger))
			}

			r.Route("/tax", func(r chi.Router) {
				r.Post("/calculate", calculateTaxHandler(taxSvc, logger))
				r.Get("/tips", tipsHandler(taxSvc, logger))
				r.Get("/brackets", bracketsHandler(taxSvc, logger))
				r.Post("/predict", predictHandler(predictSvc, logger))
			})

			r.Get("/metrics/engine", engineMetricsHandler(metrics, logger))
		})
	})

	return r
}

// ============================================================
// Calculation — POST /v1/tax/calculate
// ============================================================

func calculateTaxHandler(svc *service.TaxService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/tax/calculate")
		defer span.End()

		var req domain.CalculateTaxRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		span.SetAttributes(attribute.Int64("tax.income", req.Income))

		resp := svc.Calculate(ctx, &req)
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Tips — GET /v1/tax/tips
// ============================================================

func tipsHandler(svc *service.TaxService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/tax/tips")
		defer span.End()

		var income int64
		var deductions domain.DeductionSet
		for name, dst := range map[string]*int64{
			"income":                  &income,
			"investments_80c":         &deductions.Investments80C,
			"health_insurance":        &deductions.HealthInsurance,
			"home_loan_interest":      &deductions.HomeLoanInterest,
			"education_loan_interest": &deductions.EducationLoanInterest,
		} {
			v, ok := queryInt64(r, name)
			if !ok {
				writeError(w, http.StatusBadRequest, name+" must be a non-negative integer")
				return
			}
			*dst = v
		}

		tips := svc.Tips(ctx, income, deductions)
		writeJSON(w, http.StatusOK, map[string]any{"tips": tips})
	}
}

// ============================================================
// Brackets — GET /v1/tax/brackets?regime=old|new
// ============================================================

func bracketsHandler(svc *service.TaxService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/tax/brackets")
		defer span.End()

		var regime domain.Regime
		switch r.URL.Query().Get("regime") {
		case "old":
			regime = domain.RegimeOld
		case "new", "":
			regime = domain.RegimeNew
		default:
			writeError(w, http.StatusBadRequest, "regime must be 'old' or 'new'")
			return
		}
		span.SetAttributes(attribute.String("tax.regime", string(regime)))

		writeJSON(w, http.StatusOK, map[string]any{
			"regime":    regime,
			"cess_rate": 0.04,
			"brackets":  svc.Brackets(ctx, regime),
		})
	}
}

// ============================================================
// Prediction — POST /v1/tax/predict
// ============================================================

func predictHandler(svc *service.PredictionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/tax/predict")
		defer span.End()

		var req domain.PredictRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		resp, err := svc.Predict(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Engine metrics — GET /v1/metrics/engine
// ============================================================

func engineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/engine")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetEngineSnapshot())
	}
}

// ============================================================
// Auth — POST /v1/auth/token
// ============================================================

func authTokenHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/token")
		defer span.End()

		var req domain.TokenRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		resp, err := authSvc.IssueToken(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Health probes
// ============================================================

func healthzHandler(cachePing Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "taxbot-engine", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if cachePing != nil {
			start := time.Now()
			err := cachePing.Ping(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
				logger.Warn("healthz: cache ping failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "redis", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		httpStatus := http.StatusOK
		for _, s := range services {
			if s.Status != "healthy" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, httpStatus, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
