package services

import (
	"errors"

	"coffee-quality-api/models"
)

// stubModel returns fixed outputs regardless of the row.
type stubModel struct {
	classes    []string
	label      string
	proba      []float64
	predictErr error
	probaErr   error
	rows       []models.FeatureRow
}

func (m *stubModel) Classes() []string { return m.classes }

func (m *stubModel) Predict(row models.FeatureRow) (string, error) {
	m.rows = append(m.rows, row)
	if m.predictErr != nil {
		return "", m.predictErr
	}
	return m.label, nil
}

func (m *stubModel) PredictProba(row models.FeatureRow) ([]float64, error) {
	if m.probaErr != nil {
		return nil, m.probaErr
	}
	return m.proba, nil
}

func newStubModel() *stubModel {
	return &stubModel{
		classes: []string{"Rendah", "Sedang", "Tinggi"},
		label:   "Tinggi",
		proba:   []float64{0.1, 0.25, 0.65},
	}
}

func testArtifact() ModelArtifact {
	return ModelArtifact{
		Version:           "test",
		Classes:           []string{"Rendah", "Sedang", "Tinggi"},
		NumericMeans:      []float64{125, 4.5},
		NumericScales:     []float64{40, 1.8},
		ProcessCategories: []string{"Honey", "Natural", "Washed"},
		Coefficients: [][]float64{
			{0.9, -1.1, 0.2, 0.1, -0.4},
			{0.1, 0.3, 0.3, 0.0, 0.1},
			{-0.8, 0.9, -0.1, 0.2, 0.6},
		},
		Intercepts: []float64{-0.2, 0.3, -0.1},
	}
}

var errBoom = errors.New("boom")
