package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"coffee-quality-api/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Model is the classifier contract. Probabilities returned by PredictProba
// are ordered like Classes.
type Model interface {
	Classes() []string
	Predict(row models.FeatureRow) (string, error)
	PredictProba(row models.FeatureRow) ([]float64, error)
}

// ModelArtifact is the on-disk form of a multinomial logistic regression:
// two standard-scaled numeric columns followed by a one-hot process column.
type ModelArtifact struct {
	Version           string      `json:"version"`
	Classes           []string    `json:"classes"`
	NumericMeans      []float64   `json:"numeric_means"`
	NumericScales     []float64   `json:"numeric_scales"`
	ProcessCategories []string    `json:"process_categories"`
	Coefficients      [][]float64 `json:"coefficients"`
	Intercepts        []float64   `json:"intercepts"`
}

const numericFeatures = 2

type LogisticModel struct {
	version    string
	classes    []string
	means      []float64
	scales     []float64
	categories map[string]int
	weights    *mat.Dense
	intercepts *mat.VecDense
}

func LoadModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrModelUnavailable, path, err)
	}
	m, err := NewLogisticModel(artifact)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return m, nil
}

func NewLogisticModel(a ModelArtifact) (*LogisticModel, error) {
	if len(a.Classes) == 0 {
		return nil, errors.New("artifact has no classes")
	}
	seen := make(map[string]bool, len(a.Classes))
	for _, c := range a.Classes {
		if seen[c] {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = true
	}
	if len(a.NumericMeans) != numericFeatures || len(a.NumericScales) != numericFeatures {
		return nil, fmt.Errorf("want %d numeric means and scales, got %d and %d",
			numericFeatures, len(a.NumericMeans), len(a.NumericScales))
	}
	for i, s := range a.NumericScales {
		if s == 0 {
			return nil, fmt.Errorf("numeric scale %d is zero", i)
		}
	}
	if len(a.ProcessCategories) == 0 {
		return nil, errors.New("artifact has no process categories")
	}
	categories := make(map[string]int, len(a.ProcessCategories))
	for i, c := range a.ProcessCategories {
		categories[c] = i
	}

	nFeatures := numericFeatures + len(a.ProcessCategories)
	if len(a.Coefficients) != len(a.Classes) {
		return nil, fmt.Errorf("want %d coefficient rows, got %d", len(a.Classes), len(a.Coefficients))
	}
	if len(a.Intercepts) != len(a.Classes) {
		return nil, fmt.Errorf("want %d intercepts, got %d", len(a.Classes), len(a.Intercepts))
	}
	flat := make([]float64, 0, len(a.Classes)*nFeatures)
	for i, row := range a.Coefficients {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("coefficient row %d has %d values, want %d", i, len(row), nFeatures)
		}
		flat = append(flat, row...)
	}

	return &LogisticModel{
		version:    a.Version,
		classes:    append([]string(nil), a.Classes...),
		means:      append([]float64(nil), a.NumericMeans...),
		scales:     append([]float64(nil), a.NumericScales...),
		categories: categories,
		weights:    mat.NewDense(len(a.Classes), nFeatures, flat),
		intercepts: mat.NewVecDense(len(a.Intercepts), append([]float64(nil), a.Intercepts...)),
	}, nil
}

func (m *LogisticModel) Version() string { return m.version }

func (m *LogisticModel) Classes() []string {
	return append([]string(nil), m.classes...)
}

func (m *LogisticModel) Predict(row models.FeatureRow) (string, error) {
	proba, err := m.PredictProba(row)
	if err != nil {
		return "", err
	}
	return m.classes[floats.MaxIdx(proba)], nil
}

func (m *LogisticModel) PredictProba(row models.FeatureRow) ([]float64, error) {
	x, err := m.encode(row)
	if err != nil {
		return nil, err
	}

	var z mat.VecDense
	z.MulVec(m.weights, x)
	z.AddVec(&z, m.intercepts)

	logits := make([]float64, z.Len())
	copy(logits, z.RawVector().Data)
	return softmax(logits)
}

func (m *LogisticModel) encode(row models.FeatureRow) (*mat.VecDense, error) {
	_, nFeatures := m.weights.Dims()
	x := make([]float64, nFeatures)
	for i, v := range []float64{row.Caffeine, row.Acidity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature %q is not finite", models.FeatureColumns[i])
		}
		x[i] = (v - m.means[i]) / m.scales[i]
	}
	idx, ok := m.categories[row.Process]
	if !ok {
		return nil, fmt.Errorf("unknown category %q for %q", row.Process, models.FeatureColumns[2])
	}
	x[numericFeatures+idx] = 1
	return mat.NewVecDense(nFeatures, x), nil
}

func softmax(logits []float64) ([]float64, error) {
	floats.AddConst(-floats.Max(logits), logits)
	for i, v := range logits {
		logits[i] = math.Exp(v)
	}
	sum := floats.Sum(logits)
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, errors.New("softmax is not finite")
	}
	floats.Scale(1/sum, logits)
	return logits, nil
}
