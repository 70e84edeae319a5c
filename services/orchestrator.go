package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"coffee-quality-api/models"
)

type State string

const (
	StateIdle            State = "idle"
	StatePredicting      State = "predicting"
	StateWeatherFetching State = "weather_fetching"
	StateDisplaying      State = "displaying"
	StateErrorDisplaying State = "error_displaying"
)

const (
	OutcomePrediction = "prediction"
	OutcomeWeather    = "weather"
)

const (
	msgPredictionSuccess = "Prediksi berhasil! Selamat menikmati kopi terbaikmu"
	msgModelUnavailable  = "Model belum tersedia. Prediksi tidak dapat dilakukan."
)

type Classifier interface {
	Classify(ctx context.Context, sample models.CoffeeSample) (models.PredictionResult, error)
}

type WeatherLookup interface {
	Lookup(ctx context.Context, city string) (models.WeatherReading, error)
}

// Dependencies is the application context shared by every session. It is
// built once at startup.
type Dependencies struct {
	Classifier Classifier
	Weather    WeatherLookup
	History    HistoryStore
	Events     EventPublisher
	Now        func() time.Time
}

// Outcome is what a trigger leaves on screen. Err is kept for callers that
// map failures to transport status codes.
type Outcome struct {
	Kind          string                   `json:"kind"`
	State         State                    `json:"state"`
	Sample        *models.CoffeeSample     `json:"sample,omitempty"`
	Prediction    *models.PredictionResult `json:"prediction,omitempty"`
	ConfidencePct float64                  `json:"confidence_pct,omitempty"`
	Caption       string                   `json:"caption,omitempty"`
	Chart         *models.ChartSpec        `json:"chart,omitempty"`
	Reading       *models.WeatherReading   `json:"reading,omitempty"`
	Suggestion    *models.RoastSuggestion  `json:"suggestion,omitempty"`
	Message       string                   `json:"message"`
	Warning       string                   `json:"warning,omitempty"`
	Err           error                    `json:"-"`
}

// Orchestrator drives one session. Triggers run one at a time; a finished
// display returns to Idle when the next trigger arrives. lastTouch is read
// without mu so the registry never waits on a running trigger.
type Orchestrator struct {
	mu        sync.Mutex
	id        string
	deps      Dependencies
	state     State
	last      *Outcome
	lastTouch atomic.Int64
}

func NewOrchestrator(id string, deps Dependencies) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	o := &Orchestrator{id: id, deps: deps, state: StateIdle}
	o.touch()
	return o
}

func (o *Orchestrator) ID() string { return o.id }

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Last() *Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

func (o *Orchestrator) Predict(ctx context.Context, sample models.CoffeeSample) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.begin(StatePredicting)

	out := Outcome{Kind: OutcomePrediction, Sample: &sample}
	result, err := o.deps.Classifier.Classify(ctx, sample)
	if err != nil {
		out.Message = predictionErrorMessage(err)
		return o.fail(out, err)
	}

	record := models.NewHistoryRecord(o.deps.Now(), sample, result)
	if o.deps.History != nil {
		if err := o.deps.History.Append(ctx, record); err != nil {
			log.Printf("history append failed session=%s: %v", o.id, err)
			out.Warning = fmt.Sprintf("Riwayat prediksi gagal disimpan: %v", err)
			out.Err = err
		}
	}
	if o.deps.Events != nil {
		ev := PredictionEvent{SessionID: o.id, Record: record, Probabilities: result.Probabilities}
		if err := o.deps.Events.PublishPrediction(ctx, ev); err != nil {
			log.Printf("prediction event publish failed session=%s: %v", o.id, err)
		}
	}

	chart := models.NewChartSpec(result)
	out.Prediction = &result
	out.ConfidencePct = record.ConfidencePct
	out.Caption = fmt.Sprintf("Model confidence: %.2f%%", record.ConfidencePct)
	out.Chart = &chart
	out.Message = msgPredictionSuccess
	return o.display(out)
}

func (o *Orchestrator) FetchWeather(ctx context.Context, city string) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.begin(StateWeatherFetching)

	out := Outcome{Kind: OutcomeWeather}
	reading, err := o.deps.Weather.Lookup(ctx, city)
	if err != nil {
		out.Message = weatherErrorMessage(city, err)
		return o.fail(out, err)
	}

	suggestion := Advise(reading.TemperatureC)
	out.Reading = &reading
	out.Suggestion = &suggestion
	out.Message = RoastMessage(reading, suggestion)
	return o.display(out)
}

// Acknowledge returns a finished display to Idle without starting a trigger.
func (o *Orchestrator) Acknowledge() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.toIdle()
	o.touch()
}

func (o *Orchestrator) touch() {
	o.lastTouch.Store(o.deps.Now().UnixNano())
}

func (o *Orchestrator) idleSince() time.Time {
	return time.Unix(0, o.lastTouch.Load())
}

func (o *Orchestrator) begin(s State) {
	o.toIdle()
	o.state = s
	o.touch()
}

func (o *Orchestrator) toIdle() {
	if o.state == StateDisplaying || o.state == StateErrorDisplaying {
		o.state = StateIdle
	}
}

func (o *Orchestrator) display(out Outcome) Outcome {
	o.touch()
	o.state = StateDisplaying
	out.State = o.state
	o.last = &out
	return out
}

func (o *Orchestrator) fail(out Outcome, err error) Outcome {
	o.touch()
	o.state = StateErrorDisplaying
	out.State = o.state
	out.Err = err
	o.last = &out
	return out
}

func predictionErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return msgModelUnavailable
	case errors.Is(err, models.ErrInvalidSample):
		return fmt.Sprintf("Parameter kopi tidak valid: %v", err)
	case errors.Is(err, ErrInferenceError):
		return fmt.Sprintf("Prediksi gagal: %v", err)
	default:
		return fmt.Sprintf("Terjadi kesalahan: %v", err)
	}
}

func weatherErrorMessage(city string, err error) string {
	if errors.Is(err, ErrCityNotFound) {
		return fmt.Sprintf("Kota '%s' tidak ditemukan.", city)
	}
	return err.Error()
}
