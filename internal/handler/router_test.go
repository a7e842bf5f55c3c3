package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/taxbot-india/engine-go/internal/domain"
	"github.com/taxbot-india/engine-go/internal/handler"
	"github.com/taxbot-india/engine-go/internal/infra/cache"
	"github.com/taxbot-india/engine-go/internal/infra/observability"
	"github.com/taxbot-india/engine-go/internal/infra/resilience"
	"github.com/taxbot-india/engine-go/internal/predictor"
	"github.com/taxbot-india/engine-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T, authSvc *service.AuthService) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	taxSvc := service.NewTaxService(metrics, logger)
	predictSvc := service.NewPredictionService(
		predictor.New(predictor.DefaultSeed, predictor.DefaultSamples),
		cache.New[domain.Prediction](time.Minute),
		resilience.NewBulkhead(4),
		metrics,
		logger,
	)
	return handler.NewRouter(taxSvc, predictSvc, authSvc, nil, metrics, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCalculateTax(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/tax/calculate", domain.CalculateTaxRequest{
		Income: 600_000,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.CalculateTaxResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Recommendation.Regime != domain.RegimeNew {
		t.Errorf("recommendation = %q, want New Regime", resp.Recommendation.Regime)
	}
	if resp.NewRegime.Breakdown.TotalTax != 15_600 {
		t.Errorf("new regime total = %v, want 15600", resp.NewRegime.Breakdown.TotalTax)
	}
}

func TestCalculateTax_RejectsNegativeIncome(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodPost, "/v1/tax/calculate", map[string]any{
		"income": -1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCalculateTax_RejectsMalformedBody(t *testing.T) {
	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/tax/calculate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestTips(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet,
		"/v1/tax/tips?income=1500000&investments_80c=100000", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Tips []string `json:"tips"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Tips) == 0 {
		t.Error("expected at least one tip")
	}
}

func TestTips_RejectsMalformedQuery(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/v1/tax/tips?income=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBrackets(t *testing.T) {
	for _, regime := range []string{"old", "new"} {
		rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/v1/tax/brackets?regime="+regime, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("regime %s: expected 200, got %d", regime, rec.Code)
		}
	}

	rec := doJSON(t, newTestRouter(t, nil), http.MethodGet, "/v1/tax/brackets?regime=flat", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown regime, got %d", rec.Code)
	}
}

func TestPredict(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodPost, "/v1/tax/predict", domain.PredictRequest{
		Income:           1_000_000,
		Investments80C:   150_000,
		HealthInsurance:  25_000,
		HomeLoanInterest: 200_000,
		Age:              40,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.PredictResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PredictionID == "" {
		t.Error("expected a prediction ID")
	}
	if resp.ConfidencePercent < 0 || resp.ConfidencePercent > 100 {
		t.Errorf("confidence %v out of range", resp.ConfidencePercent)
	}
	if resp.Explanation == "" {
		t.Error("expected an explanation")
	}
}

func TestPredict_RejectsUnderageProfile(t *testing.T) {
	rec := doJSON(t, newTestRouter(t, nil), http.MethodPost, "/v1/tax/predict", domain.PredictRequest{
		Income: 500_000,
		Age:    15,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestEngineMetrics(t *testing.T) {
	router := newTestRouter(t, nil)

	doJSON(t, router, http.MethodPost, "/v1/tax/calculate", domain.CalculateTaxRequest{Income: 600_000})

	rec := doJSON(t, router, http.MethodGet, "/v1/metrics/engine", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var snapshot domain.EngineMetrics
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.TotalCalculations != 1 {
		t.Errorf("total calculations = %d, want 1", snapshot.TotalCalculations)
	}
	if snapshot.NewRegimeRecommended != 1 {
		t.Errorf("new regime recommended = %d, want 1", snapshot.NewRegimeRecommended)
	}
}

// --- Auth-enabled routing ---

func newAuthService(t *testing.T, apiKey string) *service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return service.NewAuthService(string(hash), "test-secret", time.Hour, zap.NewNop())
}

func TestAuth_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, newAuthService(t, "secret-key"))

	rec := doJSON(t, router, http.MethodPost, "/v1/tax/calculate", domain.CalculateTaxRequest{Income: 600_000})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAuth_TokenFlow(t *testing.T) {
	router := newTestRouter(t, newAuthService(t, "secret-key"))

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/token", domain.TokenRequest{APIKey: "secret-key"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from token exchange, got %d: %s", rec.Code, rec.Body.String())
	}
	var token domain.TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&token); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(domain.CalculateTaxRequest{Income: 600_000})
	req := httptest.NewRequest(http.MethodPost, "/v1/tax/calculate", &buf)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d: %s", res.Code, res.Body.String())
	}
}

func TestAuth_WrongAPIKeyRejected(t *testing.T) {
	router := newTestRouter(t, newAuthService(t, "secret-key"))

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/token", domain.TokenRequest{APIKey: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_OpenModeMountsNoTokenRoute(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/token", domain.TokenRequest{APIKey: "anything"})
	if rec.Code == http.StatusOK {
		t.Error("expected token route to be absent in open mode")
	}
}
