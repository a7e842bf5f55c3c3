package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taxbot-india/engine-go/internal/domain"
	"github.com/taxbot-india/engine-go/internal/infra/observability"
	"github.com/taxbot-india/engine-go/internal/infra/resilience"
	"github.com/taxbot-india/engine-go/internal/port"
	"github.com/taxbot-india/engine-go/internal/predictor"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var predictTracer = otel.Tracer("service/prediction")

// PredictionService serves regime predictions through a cache, a bulkhead and
// request coalescing. Identical concurrent requests share one model walk.
type PredictionService struct {
	model    port.RegimePredictor
	cache    port.Cache[domain.Prediction]
	bulkhead *resilience.Bulkhead
	group    singleflight.Group
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewPredictionService creates a new prediction service.
func NewPredictionService(model port.RegimePredictor, cache port.Cache[domain.Prediction], bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		model:    model,
		cache:    cache,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// Predict classifies the profile, serving from cache when possible.
func (s *PredictionService) Predict(ctx context.Context, req *domain.PredictRequest) (*domain.PredictResponse, error) {
	ctx, span := predictTracer.Start(ctx, "PredictionService.Predict")
	defer span.End()
	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("predict", time.Since(start))
	}()

	age := req.Age
	if age <= 0 {
		age = predictor.DefaultAge
	}
	key := predictionKey(req, age)

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("prediction")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return s.respond(cached), nil
	}
	s.metrics.IncrCacheMiss("prediction")

	v, err, shared := s.group.Do(key, func() (any, error) {
		if err := s.bulkhead.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.bulkhead.Release()

		pred := s.model.Predict(req.Income, req.Investments80C, req.HealthInsurance,
			req.HRAExemption, req.HomeLoanInterest, req.EducationLoanInterest, age)
		s.cache.Set(key, pred)
		return pred, nil
	})
	if err != nil {
		return nil, err
	}
	pred := v.(domain.Prediction)

	span.SetAttributes(
		attribute.Bool("cache.hit", false),
		attribute.Bool("singleflight.shared", shared),
		attribute.String("prediction.regime", string(pred.Regime)),
	)
	s.metrics.IncrPrediction(string(pred.Regime))

	s.logger.Debug("regime predicted",
		zap.Int64("income", req.Income),
		zap.String("regime", string(pred.Regime)),
		zap.Float64("confidence", pred.ConfidencePercent),
	)

	return s.respond(pred), nil
}

func (s *PredictionService) respond(pred domain.Prediction) *domain.PredictResponse {
	return &domain.PredictResponse{
		PredictionID: uuid.New().String(),
		Prediction:   pred,
	}
}

// predictionKey is the cache and coalescing key: the full input vector, so two
// profiles collide only when every field matches.
func predictionKey(req *domain.PredictRequest, age int) string {
	return fmt.Sprintf("predict:%d:%d:%d:%d:%d:%d:%d",
		req.Income, req.Investments80C, req.HealthInsurance,
		req.HRAExemption, req.HomeLoanInterest, req.EducationLoanInterest, age)
}
