package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"coffee-quality-api/models"
)

const probabilityTolerance = 1e-6

type ClassifierService struct {
	model   Model
	loadErr error
}

func NewClassifierService(model Model) *ClassifierService {
	if model == nil {
		return &ClassifierService{loadErr: ErrModelUnavailable}
	}
	return &ClassifierService{model: model}
}

// NewClassifierServiceFromFile loads the artifact once. On failure the
// returned service is still usable and reports ErrModelUnavailable on every
// Classify call; the load is never retried.
func NewClassifierServiceFromFile(path string) (*ClassifierService, error) {
	m, err := LoadModel(path)
	if err != nil {
		return &ClassifierService{loadErr: err}, err
	}
	return &ClassifierService{model: m}, nil
}

func (s *ClassifierService) Available() bool {
	return s.model != nil
}

func (s *ClassifierService) LoadError() error {
	return s.loadErr
}

func (s *ClassifierService) Classes() []string {
	if s.model == nil {
		return nil
	}
	return s.model.Classes()
}

func (s *ClassifierService) Classify(ctx context.Context, sample models.CoffeeSample) (models.PredictionResult, error) {
	if s.model == nil {
		predictionsFailed.WithLabelValues("model_unavailable").Inc()
		return models.PredictionResult{}, s.loadErr
	}
	if err := ctx.Err(); err != nil {
		return models.PredictionResult{}, err
	}
	if err := sample.Validate(); err != nil {
		predictionsFailed.WithLabelValues("invalid_sample").Inc()
		return models.PredictionResult{}, err
	}

	start := time.Now()
	defer func() {
		predictionDuration.Observe(time.Since(start).Seconds())
	}()

	row := sample.Features()
	label, err := s.model.Predict(row)
	if err != nil {
		predictionsFailed.WithLabelValues("inference").Inc()
		return models.PredictionResult{}, fmt.Errorf("%w: predict: %w", ErrInferenceError, err)
	}
	proba, err := s.model.PredictProba(row)
	if err != nil {
		predictionsFailed.WithLabelValues("inference").Inc()
		return models.PredictionResult{}, fmt.Errorf("%w: predict_proba: %w", ErrInferenceError, err)
	}

	result, err := buildResult(label, s.model.Classes(), proba)
	if err != nil {
		predictionsFailed.WithLabelValues("inference").Inc()
		return models.PredictionResult{}, err
	}
	predictionsTotal.WithLabelValues(result.Label).Inc()
	return result, nil
}

func buildResult(label string, classes []string, proba []float64) (models.PredictionResult, error) {
	if len(proba) != len(classes) {
		return models.PredictionResult{}, fmt.Errorf("%w: %d probabilities for %d classes",
			ErrInferenceError, len(proba), len(classes))
	}

	known := false
	sum := 0.0
	probs := make([]models.ClassProbability, len(classes))
	for i, c := range classes {
		p := proba[i]
		if math.IsNaN(p) || p < 0 || p > 1 {
			return models.PredictionResult{}, fmt.Errorf("%w: probability %v for class %q outside [0, 1]",
				ErrInferenceError, p, c)
		}
		if c == label {
			known = true
		}
		sum += p
		probs[i] = models.ClassProbability{Class: c, Probability: p}
	}
	if !known {
		return models.PredictionResult{}, fmt.Errorf("%w: label %q is not a model class", ErrInferenceError, label)
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return models.PredictionResult{}, fmt.Errorf("%w: probabilities sum to %v", ErrInferenceError, sum)
	}

	return models.PredictionResult{Label: label, Probabilities: probs}, nil
}
