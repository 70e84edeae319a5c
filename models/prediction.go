package models

type ClassProbability struct {
	Class       string  `json:"class"`
	Probability float64 `json:"probability"`
}

// PredictionResult keeps probabilities in the model's class order.
type PredictionResult struct {
	Label         string             `json:"label"`
	Probabilities []ClassProbability `json:"probabilities"`
}

func (r PredictionResult) Confidence() float64 {
	best := 0.0
	for _, p := range r.Probabilities {
		if p.Probability > best {
			best = p.Probability
		}
	}
	return best
}

func (r PredictionResult) ConfidencePct() float64 {
	return r.Confidence() * 100
}

func (r PredictionResult) Sum() float64 {
	total := 0.0
	for _, p := range r.Probabilities {
		total += p.Probability
	}
	return total
}

func (r PredictionResult) Probability(class string) (float64, bool) {
	for _, p := range r.Probabilities {
		if p.Class == class {
			return p.Probability, true
		}
	}
	return 0, false
}

func (r PredictionResult) Classes() []string {
	out := make([]string, len(r.Probabilities))
	for i, p := range r.Probabilities {
		out[i] = p.Class
	}
	return out
}
